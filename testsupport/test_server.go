package testsupport

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
	"github.com/DaDevFox/task-systems/forecast-core/internal/events"
	"github.com/DaDevFox/task-systems/forecast-core/internal/metrics"
	"github.com/DaDevFox/task-systems/forecast-core/internal/repository"
	"github.com/DaDevFox/task-systems/forecast-core/internal/rpc"
	"github.com/DaDevFox/task-systems/forecast-core/internal/service"
)

// ForecastTestServer is a forecast gRPC server on a loopback port backed by a bolt repository
type ForecastTestServer struct {
	Address  string
	Conn     *grpc.ClientConn
	Client   *rpc.Client
	Repo     repository.PharmacyRepository
	EventBus *events.EventBus
	Metrics  *metrics.Metrics
	cleanup  func()
}

// StartForecastTestServer starts a server; opts are passed to both forecasting services
func StartForecastTestServer(t *testing.T, ctx context.Context, opts ...service.Option) (*ForecastTestServer, error) {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	repo, err := repository.NewPharmacyRepository(filepath.Join(t.TempDir(), "forecast-test-db"), repository.DatabaseTypeBolt)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}

	eventBus := events.NewEventBus(fmt.Sprintf("forecast-functional-%d", time.Now().UnixNano()), logger)
	m := metrics.New(prometheus.NewRegistry())

	opts = append([]service.Option{service.WithMetrics(m), service.WithEventPublisher(eventBus)}, opts...)
	forecaster := service.NewForecastService(repo, logger, opts...)
	planner := service.NewRestockPlanner(forecaster, repo, logger, opts...)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to listen for forecast server: %w", err)
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(rpc.NewLoggingInterceptor(logger).Unary()))
	rpc.RegisterForecastServiceServer(grpcServer, rpc.NewServer(forecaster, planner,
		rpc.Defaults{Horizon: 3, PeriodType: domain.PeriodMonthly}, logger))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()

	conn, err := grpc.NewClient(listener.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		grpcServer.GracefulStop()
		listener.Close()
		repo.Close()
		return nil, fmt.Errorf("failed to dial forecast server: %w", err)
	}

	select {
	case err = <-serveErr:
		conn.Close()
		grpcServer.GracefulStop()
		repo.Close()
		return nil, fmt.Errorf("forecast server terminated unexpectedly: %w", err)
	default:
	}

	handle := &ForecastTestServer{
		Address:  listener.Addr().String(),
		Conn:     conn,
		Client:   rpc.NewClient(conn),
		Repo:     repo,
		EventBus: eventBus,
		Metrics:  m,
	}

	handle.cleanup = func() {
		conn.Close()
		grpcServer.GracefulStop()
		repo.Close()

		select {
		case srvErr := <-serveErr:
			if srvErr != nil {
				logger.WithError(srvErr).Debug("forecast test server stopped with error")
			}
		default:
		}
	}

	t.Cleanup(handle.Shutdown)

	return handle, nil
}

// Shutdown stops the server; safe to call more than once
func (h *ForecastTestServer) Shutdown() {
	if h.cleanup == nil {
		return
	}

	h.cleanup()
	h.cleanup = nil
}

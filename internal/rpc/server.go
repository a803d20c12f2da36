package rpc

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
	"github.com/DaDevFox/task-systems/forecast-core/internal/service"
)

// RestockGenerator produces restock recommendations
type RestockGenerator interface {
	GenerateRestockForecast(ctx context.Context, productID string, periodType domain.PeriodType, horizon int) map[string]*domain.RestockRecommendation
}

// Defaults apply when a request leaves the period type or horizon unset
type Defaults struct {
	Horizon    int
	PeriodType domain.PeriodType
}

// Server implements ForecastServiceServer on top of the forecasting services
type Server struct {
	forecaster service.SalesForecaster
	planner    RestockGenerator
	defaults   Defaults
	logger     logrus.FieldLogger
}

// NewServer creates a forecast service server
func NewServer(forecaster service.SalesForecaster, planner RestockGenerator, defaults Defaults, logger logrus.FieldLogger) *Server {
	if defaults.Horizon < 1 {
		defaults.Horizon = 3
	}
	if !defaults.PeriodType.Valid() {
		defaults.PeriodType = domain.PeriodMonthly
	}

	return &Server{
		forecaster: forecaster,
		planner:    planner,
		defaults:   defaults,
		logger:     logger,
	}
}

// GenerateSalesForecast forecasts demand and revenue
func (s *Server) GenerateSalesForecast(ctx context.Context, req *SalesForecastRequest) (*SalesForecastResponse, error) {
	periodType, horizon, err := s.resolve(req.PeriodType, req.Horizon)
	if err != nil {
		return nil, toStatus(err)
	}

	forecast, err := s.forecaster.GenerateSalesForecast(ctx, strings.TrimSpace(req.ProductID), periodType, horizon)
	if err != nil {
		s.logger.WithError(err).WithField("product_id", req.ProductID).Warn("sales forecast failed")
		return nil, toStatus(err)
	}

	return &SalesForecastResponse{
		Forecasts:       forecast.Forecasts,
		SkippedProducts: forecast.SkippedProducts,
	}, nil
}

// GenerateRestockForecast recommends restock points; forecast failures yield an empty result
func (s *Server) GenerateRestockForecast(ctx context.Context, req *RestockForecastRequest) (*RestockForecastResponse, error) {
	periodType, horizon, err := s.resolve(req.PeriodType, req.Horizon)
	if err != nil {
		return nil, toStatus(err)
	}

	return &RestockForecastResponse{
		Recommendations: s.planner.GenerateRestockForecast(ctx, strings.TrimSpace(req.ProductID), periodType, horizon),
	}, nil
}

func (s *Server) resolve(rawPeriod string, horizon int) (domain.PeriodType, int, error) {
	periodType := s.defaults.PeriodType
	if strings.TrimSpace(rawPeriod) != "" {
		parsed, err := domain.ParsePeriodType(rawPeriod)
		if err != nil {
			return "", 0, err
		}
		periodType = parsed
	}

	switch {
	case horizon == 0:
		horizon = s.defaults.Horizon
	case horizon < 0:
		return "", 0, domain.ErrInvalidHorizon
	}

	return periodType, horizon, nil
}

// toStatus maps domain errors onto gRPC status codes
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidHorizon), errors.Is(err, domain.ErrInvalidPeriodType):
		return status.Error(codes.InvalidArgument, err.Error())
	case domain.IsInsufficientData(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

package rpc

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor logs every unary call with its outcome and latency
type LoggingInterceptor struct {
	logger logrus.FieldLogger
	quiet  map[string]struct{}
}

// Option customizes the interceptor behaviour.
type Option func(*LoggingInterceptor)

// WithQuietMethods registers fully qualified method names that are logged at debug level only.
func WithQuietMethods(methods ...string) Option {
	return func(i *LoggingInterceptor) {
		for _, m := range methods {
			i.quiet[m] = struct{}{}
		}
	}
}

// NewLoggingInterceptor constructs a request logging interceptor.
func NewLoggingInterceptor(logger logrus.FieldLogger, opts ...Option) *LoggingInterceptor {
	if logger == nil {
		logger = logrus.New()
	}

	i := &LoggingInterceptor{
		logger: logger,
		quiet:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Unary returns a unary server interceptor
func (i *LoggingInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		entry := i.logger.WithFields(logrus.Fields{
			"method":      info.FullMethod,
			"code":        status.Code(err).String(),
			"duration_ms": time.Since(start).Milliseconds(),
		})

		switch {
		case err != nil:
			entry.WithError(err).Warn("rpc failed")
		case i.isQuiet(info.FullMethod):
			entry.Debug("rpc completed")
		default:
			entry.Info("rpc completed")
		}

		return resp, err
	}
}

func (i *LoggingInterceptor) isQuiet(method string) bool {
	_, ok := i.quiet[method]
	return ok
}

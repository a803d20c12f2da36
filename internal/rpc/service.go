package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
)

const (
	ServiceName = "forecast.v1.ForecastService"

	GenerateSalesForecastMethod   = "/" + ServiceName + "/GenerateSalesForecast"
	GenerateRestockForecastMethod = "/" + ServiceName + "/GenerateRestockForecast"
)

// SalesForecastRequest selects the products, granularity and horizon of a forecast.
// An empty ProductID selects every product; empty PeriodType and zero Horizon use server defaults.
type SalesForecastRequest struct {
	ProductID  string `json:"product_id,omitempty"`
	PeriodType string `json:"period_type,omitempty"`
	Horizon    int    `json:"horizon,omitempty"`
}

type SalesForecastResponse struct {
	Forecasts       map[string]*domain.ForecastResult `json:"forecasts"`
	SkippedProducts []string                          `json:"skipped_products"`
}

type RestockForecastRequest struct {
	ProductID  string `json:"product_id,omitempty"`
	PeriodType string `json:"period_type,omitempty"`
	Horizon    int    `json:"horizon,omitempty"`
}

type RestockForecastResponse struct {
	Recommendations map[string]*domain.RestockRecommendation `json:"recommendations"`
}

// ForecastServiceServer is the server API for the forecast service
type ForecastServiceServer interface {
	GenerateSalesForecast(context.Context, *SalesForecastRequest) (*SalesForecastResponse, error)
	GenerateRestockForecast(context.Context, *RestockForecastRequest) (*RestockForecastResponse, error)
}

// RegisterForecastServiceServer registers srv on a gRPC server
func RegisterForecastServiceServer(s grpc.ServiceRegistrar, srv ForecastServiceServer) {
	s.RegisterService(&ForecastServiceDesc, srv)
}

// ForecastServiceDesc describes the forecast service for grpc.Server
var ForecastServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ForecastServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GenerateSalesForecast",
			Handler:    generateSalesForecastHandler,
		},
		{
			MethodName: "GenerateRestockForecast",
			Handler:    generateRestockForecastHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "forecast/v1/forecast.json",
}

func generateSalesForecastHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SalesForecastRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ForecastServiceServer).GenerateSalesForecast(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GenerateSalesForecastMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ForecastServiceServer).GenerateSalesForecast(ctx, req.(*SalesForecastRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func generateRestockForecastHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RestockForecastRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ForecastServiceServer).GenerateRestockForecast(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GenerateRestockForecastMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ForecastServiceServer).GenerateRestockForecast(ctx, req.(*RestockForecastRequest))
	}
	return interceptor(ctx, in, info, handler)
}

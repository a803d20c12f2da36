package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// Client is a typed client of the forecast service using the JSON codec
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps an established connection
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// GenerateSalesForecast calls the remote sales forecast
func (c *Client) GenerateSalesForecast(ctx context.Context, in *SalesForecastRequest, opts ...grpc.CallOption) (*SalesForecastResponse, error) {
	out := new(SalesForecastResponse)
	if err := c.conn.Invoke(ctx, GenerateSalesForecastMethod, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateRestockForecast calls the remote restock planner
func (c *Client) GenerateRestockForecast(ctx context.Context, in *RestockForecastRequest, opts ...grpc.CallOption) (*RestockForecastResponse, error) {
	out := new(RestockForecastResponse)
	if err := c.conn.Invoke(ctx, GenerateRestockForecastMethod, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
}

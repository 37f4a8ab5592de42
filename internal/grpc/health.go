package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health check name reported alongside the overall ("")
// status.
const ServiceName = "tutoring.Scheduler"

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewServer builds the gRPC server with the health service registered. A
// non-empty serviceToken guards every unary call, health checks included.
func NewServer(serviceToken string, log *zap.Logger) (*grpc.Server, *health.Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	interceptors := []grpc.UnaryServerInterceptor{loggingUnaryInterceptor(log)}
	if serviceToken != "" {
		auth, err := NewServiceAuthUnaryInterceptor(serviceToken)
		if err != nil {
			return nil, nil, err
		}
		interceptors = append(interceptors, auth)
	}

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)
	return server, healthServer, nil
}

// WatchDatabase flips the health status with the result of a periodic
// ping until ctx is done.
func WatchDatabase(ctx context.Context, hs *health.Server, db Pinger, interval time.Duration, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		status := healthpb.HealthCheckResponse_SERVING
		if err := db.Ping(pingCtx); err != nil {
			log.Warn("database ping failed", zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", status)
		hs.SetServingStatus(ServiceName, status)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
			check()
		}
	}
}

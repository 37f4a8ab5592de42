package grpc

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type fakePinger struct {
	fail atomic.Bool
}

func (p *fakePinger) Ping(context.Context) error {
	if p.fail.Load() {
		return errors.New("down")
	}
	return nil
}

func TestServiceAuthInterceptor(t *testing.T) {
	if _, err := NewServiceAuthUnaryInterceptor(""); err == nil {
		t.Fatalf("expected empty token to error")
	}
	interceptor, err := NewServiceAuthUnaryInterceptor("secret")
	if err != nil {
		t.Fatalf("interceptor error: %v", err)
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) { return "ok", nil }
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	if _, err := interceptor(context.Background(), nil, info, handler); status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	bad := metadata.NewIncomingContext(context.Background(), metadata.Pairs(serviceTokenHeader, "nope"))
	if _, err := interceptor(bad, nil, info, handler); status.Code(err) != codes.PermissionDenied {
		t.Fatalf("expected permission denied, got %v", err)
	}
	good := metadata.NewIncomingContext(context.Background(), metadata.Pairs(serviceTokenHeader, " secret "))
	resp, err := interceptor(good, nil, info, handler)
	if err != nil || resp != "ok" {
		t.Fatalf("expected pass through, got %v %v", resp, err)
	}
}

func TestNewServer(t *testing.T) {
	server, hs, err := NewServer("secret", nil)
	if err != nil || server == nil || hs == nil {
		t.Fatalf("expected server, got %v", err)
	}
	if _, ok := server.GetServiceInfo()["grpc.health.v1.Health"]; !ok {
		t.Fatalf("expected health service registered")
	}
	server.Stop()
}

// servingStatus reports UNKNOWN until the watcher has set a status.
func servingStatus(hs *health.Server) healthpb.HealthCheckResponse_ServingStatus {
	resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN
	}
	return resp.Status
}

func TestWatchDatabase(t *testing.T) {
	hs := health.NewServer()
	pinger := &fakePinger{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		WatchDatabase(ctx, hs, pinger, 10*time.Millisecond, nil)
		close(done)
	}()

	waitFor(t, func() bool { return servingStatus(hs) == healthpb.HealthCheckResponse_SERVING })
	pinger.fail.Store(true)
	waitFor(t, func() bool { return servingStatus(hs) == healthpb.HealthCheckResponse_NOT_SERVING })

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("watcher did not stop")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

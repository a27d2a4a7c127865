package grpc_control

import (
	"context"
	"net"
	"testing"
	"time"

	"market-buzz/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startHealth(t *testing.T) (*HealthService, healthpb.HealthClient) {
	t.Helper()

	cfg := &models.MConfig{Name: "market-buzz", LogLevel: "ERROR"}
	svc := NewHealthService(cfg, nil)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = svc.Serve(lis) }()
	t.Cleanup(svc.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return svc, healthpb.NewHealthClient(conn)
}

func check(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealthService_StartsServing(t *testing.T) {
	_, client := startHealth(t)

	for _, name := range Services {
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, name), name)
	}
}

func TestHealthService_SetServing(t *testing.T) {
	svc, client := startHealth(t)

	svc.SetServing(models.ServiceSocialSource, false)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, models.ServiceSocialSource))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))

	svc.SetServing(models.ServiceMarketBuzz, false)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ""))

	svc.SetServing(models.ServiceMarketBuzz, true)
	svc.SetServing(models.ServiceSocialSource, true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, models.ServiceSocialSource))
}

func TestHealthService_Address(t *testing.T) {
	svc := NewHealthService(&models.MConfig{GrpcHost: "127.0.0.1"}, nil)
	assert.Equal(t, "127.0.0.1:50051", svc.Address())

	svc.Config.GrpcPort = 6000
	assert.Equal(t, "127.0.0.1:6000", svc.Address())
}

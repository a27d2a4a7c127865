package grpc_control

import (
	"fmt"
	"net"
	"sync"

	"market-buzz/src/logger"
	"market-buzz/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// DefaultPort is used when grpc_port is not configured.
const DefaultPort = 50051

// Services reported by the health endpoint. The empty name is the overall
// server status expected by most probes.
var Services = []string{
	"",
	models.ServiceMarketBuzz,
	models.ServiceStockSource,
	models.ServiceSocialSource,
}

// -----------------------------------------------------------------------------
// HealthService
// -----------------------------------------------------------------------------

// HealthService exposes the standard gRPC health protocol so orchestrators
// can probe the engine and its upstream sources.
type HealthService struct {
	Config *models.MConfig
	Logger *logger.Logger
	Server *grpc.Server
	health *health.Server

	mu       sync.Mutex
	listener net.Listener
}

// -----------------------------------------------------------------------------

// NewHealthService registers health and reflection on a fresh gRPC server.
// Every service starts as SERVING until a failure says otherwise.
func NewHealthService(cfg *models.MConfig, log *logger.Logger) *HealthService {
	if log == nil {
		log = logger.NewLogger(cfg, "HealthService")
	}

	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	for _, name := range Services {
		hs.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}

	return &HealthService{
		Config: cfg,
		Logger: log,
		Server: srv,
		health: hs,
	}
}

// -----------------------------------------------------------------------------

// SetServing flips the status of one service. The overall status follows
// the market-buzz service.
func (h *HealthService) SetServing(service string, serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}

	h.health.SetServingStatus(service, status)
	if service == models.ServiceMarketBuzz {
		h.health.SetServingStatus("", status)
	}
	if !serving {
		h.Logger.Warning("Service %s reported NOT_SERVING", service)
	}
}

// -----------------------------------------------------------------------------

// Address is host:port the service listens on.
func (h *HealthService) Address() string {
	port := h.Config.GrpcPort
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("%s:%d", h.Config.GrpcHost, port)
}

// -----------------------------------------------------------------------------

// Start listens on the configured address and blocks serving requests.
func (h *HealthService) Start() error {
	lis, err := net.Listen("tcp", h.Address())
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}
	return h.Serve(lis)
}

// -----------------------------------------------------------------------------

// Serve blocks serving on an existing listener.
func (h *HealthService) Serve(lis net.Listener) error {
	h.mu.Lock()
	h.listener = lis
	h.mu.Unlock()

	h.Logger.Info("Starting gRPC health service on %s", lis.Addr())
	if err := h.Server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop marks everything NOT_SERVING so probes drain, then stops the server.
func (h *HealthService) Stop() {
	h.health.Shutdown()
	h.Server.GracefulStop()
}

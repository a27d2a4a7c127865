package main

import (
	"market-buzz/src/grpc_control"
	"market-buzz/src/logger"
	"market-buzz/src/server"
)

// -----------------------------------------------------------------------------

// startServers runs the HTTP/WebSocket server and the gRPC health service in
// the background. A failure of either stops the process through errs.
func startServers(
	srv *server.FastAPIServer,
	healthService *grpc_control.HealthService,
	appLogger *logger.Logger,
) <-chan error {
	errs := make(chan error, 2)

	// 1. FastAPIServer
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
			errs <- err
		}
	}()

	// 2. gRPC Health Service
	go func() {
		if err := healthService.Start(); err != nil {
			appLogger.Error("gRPC health service failed: %v", err)
			errs <- err
		}
	}()

	return errs
}

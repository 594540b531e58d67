package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"

	"github.com/andrescamacho/craftplan-go/internal/application/common"
	"github.com/andrescamacho/craftplan-go/internal/application/mediator"
)

// ServerOptions tunes the daemon server
type ServerOptions struct {
	RequestsPerSecond float64
	Burst             int
	ShutdownTimeout   time.Duration
	Logger            common.Logger

	// DefaultCeiling applies to plan requests that carry no ceiling
	DefaultCeiling int64
}

// DaemonServer serves the planner service over a Unix socket
type DaemonServer struct {
	listener   net.Listener
	socketPath string
	grpcServer *grpc.Server
	options    ServerOptions
}

// NewDaemonServer creates a server listening on socketPath
func NewDaemonServer(med mediator.Mediator, socketPath string, options ServerOptions) (*DaemonServer, error) {
	// Remove existing socket file if present
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
	}

	// Set socket permissions (owner only)
	if err := os.Chmod(socketPath, 0o600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	server := NewDaemonServerWithListener(med, listener, options)
	server.socketPath = socketPath
	return server, nil
}

// NewDaemonServerWithListener serves on an existing listener
func NewDaemonServerWithListener(med mediator.Mediator, listener net.Listener, options ServerOptions) *DaemonServer {
	if options.Logger == nil {
		options.Logger = common.LoggerFromContext(context.Background())
	}
	if options.ShutdownTimeout <= 0 {
		options.ShutdownTimeout = 30 * time.Second
	}

	interceptors := []grpc.UnaryServerInterceptor{loggingInterceptor(options.Logger)}
	if options.RequestsPerSecond > 0 {
		burst := options.Burst
		if burst < 1 {
			burst = 1
		}
		interceptors = append(interceptors, rateLimitInterceptor(rate.NewLimiter(rate.Limit(options.RequestsPerSecond), burst)))
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	RegisterPlannerServiceServer(grpcServer, newPlannerServiceImpl(med, options.DefaultCeiling))

	return &DaemonServer{
		listener:   listener,
		grpcServer: grpcServer,
		options:    options,
	}
}

// Addr returns the listening address
func (s *DaemonServer) Addr() net.Addr {
	return s.listener.Addr()
}

// Start serves until ctx is cancelled, then stops gracefully. Calls still in
// flight after the shutdown timeout are cut off.
func (s *DaemonServer) Start(ctx context.Context) error {
	s.options.Logger.Log("INFO", "Planner daemon listening", map[string]interface{}{
		"address": s.listener.Addr().String(),
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.options.Logger.Log("INFO", "Initiating graceful shutdown of gRPC server", nil)
	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(s.options.ShutdownTimeout):
		s.options.Logger.Log("WARNING", "Graceful shutdown timed out, forcing stop", nil)
		s.grpcServer.Stop()
	}

	if s.socketPath != "" {
		_ = os.Remove(s.socketPath)
	}
	return nil
}

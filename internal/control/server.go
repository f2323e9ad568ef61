package control

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/penguingram/messenger/internal/logging"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Server serves the control service on a profile's Unix domain socket.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	socketPath string
	logger     *zap.Logger
}

// NewServer binds socketPath and registers svc.
func NewServer(socketPath string, svc ControlServer, logger *zap.Logger) (*Server, error) {
	// Clean stale socket if it exists.
	if _, err := os.Stat(socketPath); err == nil {
		_ = os.Remove(socketPath)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listen unix socket: %w", err)
	}
	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}

	srv := grpc.NewServer()
	srv.RegisterService(&ServiceDesc, svc)

	return &Server{
		grpcServer: srv,
		listener:   listener,
		socketPath: socketPath,
		logger:     logging.OrNop(logger),
	}, nil
}

// Start serves requests. Blocks until stopped.
func (s *Server) Start() error {
	s.logger.Info("control server starting", zap.String("socket", s.socketPath))
	return s.grpcServer.Serve(s.listener)
}

// Stop shuts down gracefully and removes the socket file.
func (s *Server) Stop(_ context.Context) {
	s.logger.Info("control server stopping")
	s.grpcServer.GracefulStop()
	_ = os.Remove(s.socketPath)
}

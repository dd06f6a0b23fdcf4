package server

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/hdwhdw/webpath/pkg/gnoi/server/services/file"
	"github.com/hdwhdw/webpath/pkg/webpath"
	gnoi_file "github.com/openconfig/gnoi/file"
	"github.com/spf13/afero"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/reflection"
	"k8s.io/klog/v2"
)

// Server serves the gNOI File service over web-relative paths
type Server struct {
	address    string
	grpcServer *grpc.Server
	listener   net.Listener
	fileServer *file.Service
	mu         sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Address string
	WebRoot string      // Directory that web-relative paths resolve under
	Logger  klog.Logger // Optional, receives translator trace output
	Fs      afero.Fs    // Optional, defaults to the OS filesystem
}

// NewServer creates a new gNOI server
func NewServer(cfg Config) (*Server, error) {
	// Default address
	if cfg.Address == "" {
		cfg.Address = "localhost:8080"
	}

	// Default web root
	if cfg.WebRoot == "" {
		cfg.WebRoot = "/tmp/webpath"
	}

	var opts []webpath.Option
	if cfg.Logger.GetSink() != nil {
		opts = append(opts, webpath.WithLogger(cfg.Logger))
	}
	if cfg.Fs != nil {
		opts = append(opts, webpath.WithFs(cfg.Fs))
	}

	// Create path translator
	translator, err := webpath.New(cfg.WebRoot, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create path translator: %w", err)
	}

	return &Server{
		address:    cfg.Address,
		fileServer: file.NewService(translator),
	}, nil
}

// Start starts the gRPC server
func (s *Server) Start(ctx context.Context) error {
	klog.InfoS("Starting gNOI server", "address", s.address)

	// Create listener
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}

	// Create gRPC server with insecure credentials
	grpcServer := grpc.NewServer(
		grpc.Creds(insecure.NewCredentials()),
	)

	// Register services
	gnoi_file.RegisterFileServer(grpcServer, s.fileServer)

	// Enable reflection for debugging with grpcurl
	reflection.Register(grpcServer)

	// Protect listener and server assignment
	s.mu.Lock()
	s.listener = listener
	s.grpcServer = grpcServer
	s.mu.Unlock()

	// Start serving in goroutine
	errCh := make(chan error, 1)
	go func() {
		klog.InfoS("gNOI server listening", "address", s.address)
		if err := grpcServer.Serve(listener); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		klog.InfoS("Shutting down gNOI server")
		return s.Stop()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	}
}

// Stop gracefully stops the server. GracefulStop also closes the listener.
func (s *Server) Stop() error {
	s.mu.RLock()
	grpcServer := s.grpcServer
	s.mu.RUnlock()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	return nil
}

// GetAddress returns the server's listening address
func (s *Server) GetAddress() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.address
}

// GetFileService returns the file service (for testing)
func (s *Server) GetFileService() *file.Service {
	return s.fileServer
}

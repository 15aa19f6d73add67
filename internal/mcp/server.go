package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Server exposes the boundary operations as MCP tools over stdio.
type Server struct {
	logger *zap.Logger
	mcp    *server.MCPServer
}

// NewServer creates an MCP server with every boundary tool registered.
func NewServer(b Boundary, logger *zap.Logger, version string) (*Server, error) {
	if b == nil {
		return nil, fmt.Errorf("boundary is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := server.NewMCPServer(
		"memgrep",
		version,
		server.WithToolCapabilities(true),
	)

	AddSearchTool(s, b, logger)
	AddSearchDirectoryTool(s, b, logger)
	AddFilterDirectoryFilesTool(s, b, logger)
	AddGrepTool(s, b, logger)
	AddGrepCmdTool(s, b, logger)

	return &Server{logger: logger, mcp: s}, nil
}

// MCP returns the underlying server for in-process clients.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve runs the server on stdio until a shutdown signal, a transport error
// or ctx cancellation.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal, stopping", zap.String("signal", sig.String()))
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

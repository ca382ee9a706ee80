// Package mcp serves codegrep searches over the Model Context Protocol.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/codegrep/internal/analyzer"
	"github.com/mvp-joe/codegrep/internal/config"
)

// ServerConfig configures a Server.
type ServerConfig struct {
	ProjectPath string
	Config      *config.Config
	Version     string
}

// Server manages the MCP server lifecycle.
type Server struct {
	config   *ServerConfig
	cache    *analyzer.Cache
	watcher  *analyzer.Watcher
	searcher *Searcher
	mcp      *server.MCPServer
}

// NewServer creates a server with an analysis cache and, when enabled, a
// file watcher that invalidates cached files on change.
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg == nil || cfg.Config == nil {
		return nil, fmt.Errorf("server configuration is required")
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	a := analyzer.New(nil, nil)
	cache, err := analyzer.NewCache(a, cfg.Config.MCP.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	var watcher *analyzer.Watcher
	if cfg.Config.MCP.Watch {
		watcher, err = analyzer.NewWatcher(cache)
		if err != nil {
			cache.Close()
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}
		cache.OnStore(watcher.Track)
	}

	searcher := NewSearcher(cfg.ProjectPath, cfg.Config, a, cache)

	mcpServer := server.NewMCPServer(
		"codegrep-mcp",
		cfg.Version,
		server.WithToolCapabilities(true),
	)
	AddSearchTool(mcpServer, searcher)

	return &Server{
		config:   cfg,
		cache:    cache,
		watcher:  watcher,
		searcher: searcher,
		mcp:      mcpServer,
	}, nil
}

// Searcher returns the searcher behind the codegrep_search tool.
func (s *Server) Searcher() *Searcher {
	return s.searcher
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	if s.watcher != nil {
		s.watcher.Start(ctx)
		defer s.watcher.Stop()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases all resources.
func (s *Server) Close() error {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.cache != nil {
		s.cache.Close()
	}
	return nil
}

// Package ssecmd provides functionality for creating and running an SSE server
// without any dependencies on specific CLI or configuration systems.
package ssecmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/EvieHwang/eviebot-mcp-github/internal/ghmcp"
	"github.com/EvieHwang/eviebot-mcp-github/pkg/translations"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// Config holds all configuration options for the SSE server
type Config struct {
	Token           string
	TokenProvider   ghmcp.TokenProvider
	Host            string
	Owner           string
	Address         string
	BasePath        string
	LogFilePath     string
	LogLevel        string
	EnabledToolsets []string
	ReadOnly        bool
	Version         string
}

// DefaultConfig creates a basic Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Address:  "localhost:8080",
		BasePath: "",
		ReadOnly: false,
	}
}

// Server represents an SSE server that can be started and stopped
type Server struct {
	config    Config
	logger    *logrus.Logger
	closeLog  func()
	sseServer *server.SSEServer
}

// NewServer creates a new SSE server with the provided configuration.
// A missing token is not an error here; tools report it when called.
func NewServer(config Config) (*Server, error) {
	logger, closeLog, err := ghmcp.NewLogger(config.LogFilePath, config.LogLevel)
	if err != nil {
		return nil, err
	}

	mcpServer, err := ghmcp.NewMCPServer(ghmcp.MCPServerConfig{
		Version:         config.Version,
		Host:            config.Host,
		Owner:           config.Owner,
		Token:           config.Token,
		TokenProvider:   config.TokenProvider,
		EnabledToolsets: config.EnabledToolsets,
		ReadOnly:        config.ReadOnly,
		Translator:      translations.NullTranslationHelper,
		Logger:          logger,
	})
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}

	sseServer := server.NewSSEServer(mcpServer,
		server.WithStaticBasePath(config.BasePath),
	)

	return &Server{
		config:    config,
		logger:    logger,
		closeLog:  closeLog,
		sseServer: sseServer,
	}, nil
}

// Handler returns the SSE and message endpoints as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.sseServer
}

// Start starts the SSE server
func (s *Server) Start() error {
	_, _ = fmt.Fprintf(os.Stderr, "EvieBot GitHub MCP Server running in SSE mode on %s with base path %s\n",
		s.config.Address, s.config.BasePath)
	s.logger.WithField("address", s.config.Address).Info("starting SSE server")

	return s.sseServer.Start(s.config.Address)
}

// Shutdown stops the server and closes the log file.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.closeLog()
	return s.sseServer.Shutdown(ctx)
}

// RunSSEServer is a convenience function that creates and starts an SSE server in one call
func RunSSEServer(config Config) error {
	server, err := NewServer(config)
	if err != nil {
		return err
	}
	return server.Start()
}

// ServerOption represents an option for configuring an SSE server
type ServerOption func(*Config)

// WithAddress sets the address for the SSE server
func WithAddress(address string) ServerOption {
	return func(c *Config) {
		c.Address = address
	}
}

// WithBasePath sets the base path for SSE server URLs
func WithBasePath(basePath string) ServerOption {
	return func(c *Config) {
		c.BasePath = basePath
	}
}

// WithLogFilePath sets the log file path for the SSE server
func WithLogFilePath(logFilePath string) ServerOption {
	return func(c *Config) {
		c.LogFilePath = logFilePath
	}
}

// WithLogLevel sets the logrus level name
func WithLogLevel(level string) ServerOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// WithReadOnly sets the read-only mode for the SSE server
func WithReadOnly(readOnly bool) ServerOption {
	return func(c *Config) {
		c.ReadOnly = readOnly
	}
}

// WithEnabledToolsets sets the enabled toolsets for the SSE server
func WithEnabledToolsets(enabledToolsets []string) ServerOption {
	return func(c *Config) {
		c.EnabledToolsets = enabledToolsets
	}
}

// WithHost sets the GitHub host for the SSE server
func WithHost(host string) ServerOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithOwner sets the owner used for bare repository names
func WithOwner(owner string) ServerOption {
	return func(c *Config) {
		c.Owner = owner
	}
}

// WithToken sets the GitHub token for the SSE server
func WithToken(token string) ServerOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithTokenProvider sets a function consulted for the token on first use
func WithTokenProvider(provider ghmcp.TokenProvider) ServerOption {
	return func(c *Config) {
		c.TokenProvider = provider
	}
}

// WithVersion sets the version for the SSE server
func WithVersion(version string) ServerOption {
	return func(c *Config) {
		c.Version = version
	}
}

// CreateServerWithOptions creates a new SSE server with the provided options
func CreateServerWithOptions(options ...ServerOption) (*Server, error) {
	config := DefaultConfig()
	for _, option := range options {
		option(&config)
	}
	return NewServer(config)
}

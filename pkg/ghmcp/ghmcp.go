// Package ghmcp exposes the server for use by other Go modules.
//
// Usage example with static token:
//
//	config := ghmcp.StdioServerConfig{
//	    Version:         "1.0.0",
//	    Token:           os.Getenv("GITHUB_TOKEN"),
//	    EnabledToolsets: []string{"repos", "issues"},
//	}
//
//	if err := ghmcp.RunStdioServer(config); err != nil {
//	    log.Fatal(err)
//	}
//
// Usage example with a token provider:
//
//	config := ghmcp.StdioServerConfig{
//	    Version:       "1.0.0",
//	    Owner:         "EvieHwang",
//	    TokenProvider: func() string { return os.Getenv("GITHUB_TOKEN") },
//	}
//
// The token provider is consulted the first time a tool needs GitHub, so the
// server starts even when no token is configured yet.
package ghmcp

import (
	"github.com/EvieHwang/eviebot-mcp-github/internal/ghmcp"
	"github.com/mark3labs/mcp-go/server"
)

// TokenProvider returns the current GitHub token.
type TokenProvider = ghmcp.TokenProvider

// StdioServerConfig contains configuration for running the server in stdio mode.
type StdioServerConfig = ghmcp.StdioServerConfig

// MCPServerConfig contains configuration for creating a new MCP Server instance.
type MCPServerConfig = ghmcp.MCPServerConfig

// RunStdioServer runs the server using stdio for communication.
// It is not concurrent safe.
func RunStdioServer(cfg StdioServerConfig) error {
	return ghmcp.RunStdioServer(cfg)
}

// NewMCPServer creates a new MCP Server instance with the given configuration.
func NewMCPServer(cfg MCPServerConfig) (*server.MCPServer, error) {
	return ghmcp.NewMCPServer(cfg)
}

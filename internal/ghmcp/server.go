package ghmcp

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/EvieHwang/eviebot-mcp-github/pkg/github"
	mcplog "github.com/EvieHwang/eviebot-mcp-github/pkg/log"
	"github.com/EvieHwang/eviebot-mcp-github/pkg/translations"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// TokenProvider returns the current GitHub token. It is called when a tool
// first needs GitHub, never at startup.
type TokenProvider = github.TokenProvider

type MCPServerConfig struct {
	// Version of the server
	Version string

	// GitHub Host to target for API requests (e.g. github.com or github.enterprise.com)
	Host string

	// Owner of repositories referenced by bare name, defaults to github.DefaultOwner
	Owner string

	// GitHub Token to authenticate with the GitHub API
	Token string

	// TokenProvider takes precedence over Token when set
	TokenProvider TokenProvider

	// EnabledToolsets is a list of toolsets to enable
	EnabledToolsets []string

	// ReadOnly indicates if we should only offer read-only tools
	ReadOnly bool

	// Translator provides translated text for the server tooling
	Translator translations.TranslationHelperFunc

	// Logger receives HTTP and tool call logs, defaults to the logrus standard logger
	Logger *logrus.Logger

	// Transport sits under the logging and authentication layers, defaults to http.DefaultTransport
	Transport http.RoundTripper
}

func NewMCPServer(cfg MCPServerConfig) (*server.MCPServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	t := cfg.Translator
	if t == nil {
		t = translations.NullTranslationHelper
	}

	tokenProvider := cfg.TokenProvider
	if tokenProvider == nil {
		tokenProvider = github.StaticToken(cfg.Token)
	}

	conn := github.NewConnectionProvider(tokenProvider,
		github.WithOwner(cfg.Owner),
		github.WithHost(cfg.Host),
		github.WithTransport(mcplog.NewTransport(cfg.Transport, logger)),
		github.WithUserAgentVersion(cfg.Version),
	)

	enabledToolsets := cfg.EnabledToolsets
	if len(enabledToolsets) == 0 {
		enabledToolsets = github.DefaultTools
	}

	ghServer := github.NewServer(cfg.Version, conn.Owner())

	tsg, err := github.InitToolsets(enabledToolsets, cfg.ReadOnly, conn, t)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize toolsets: %w", err)
	}

	middleware := mcplog.ToolCallMiddleware(logger)

	// The context toolset is always on, whatever --toolsets says.
	github.InitContextToolset(conn, t).RegisterTools(ghServer, middleware)
	tsg.RegisterAll(ghServer, middleware)

	logger.WithFields(logrus.Fields{
		"owner":    conn.Owner(),
		"toolsets": enabledToolsets,
		"readOnly": cfg.ReadOnly,
	}).Debug("registered tools")

	return ghServer, nil
}

type StdioServerConfig struct {
	// Version of the server
	Version string

	// GitHub Host to target for API requests (e.g. github.com or github.enterprise.com)
	Host string

	// Owner of repositories referenced by bare name
	Owner string

	// GitHub Token to authenticate with the GitHub API
	Token string

	// TokenProvider takes precedence over Token when set
	TokenProvider TokenProvider

	// EnabledToolsets is a list of toolsets to enable
	EnabledToolsets []string

	// ReadOnly indicates if we should only register read-only tools
	ReadOnly bool

	// ExportTranslations indicates if we should export translations
	ExportTranslations bool

	// EnableCommandLogging indicates if we should log commands
	EnableCommandLogging bool

	// Path to the log file if not stderr
	LogFilePath string

	// LogLevel is a logrus level name, defaults to info
	LogLevel string
}

// RunStdioServer is not concurrent safe.
func RunStdioServer(cfg StdioServerConfig) error {
	// Create app context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logrusLogger, closeLog, err := NewLogger(cfg.LogFilePath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	t, dumpTranslations := translations.TranslationHelper()

	ghServer, err := NewMCPServer(MCPServerConfig{
		Version:         cfg.Version,
		Host:            cfg.Host,
		Owner:           cfg.Owner,
		Token:           cfg.Token,
		TokenProvider:   cfg.TokenProvider,
		EnabledToolsets: cfg.EnabledToolsets,
		ReadOnly:        cfg.ReadOnly,
		Translator:      t,
		Logger:          logrusLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	stdioServer := server.NewStdioServer(ghServer)

	stdLogger := stdlog.New(logrusLogger.Writer(), "stdioserver", 0)
	stdioServer.SetErrorLogger(stdLogger)

	if cfg.ExportTranslations {
		// Once server is initialized, all translations are loaded
		dumpTranslations()
	}

	// Start listening for messages
	errC := make(chan error, 1)
	go func() {
		in, out := io.Reader(os.Stdin), io.Writer(os.Stdout)

		if cfg.EnableCommandLogging {
			loggedIO := mcplog.NewIOLogger(in, out, logrusLogger)
			in, out = loggedIO, loggedIO
		}

		errC <- stdioServer.Listen(ctx, in, out)
	}()

	// Announce on stderr, stdout carries the protocol
	_, _ = fmt.Fprintf(os.Stderr, "EvieBot GitHub MCP Server running on stdio\n")

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
		logrusLogger.Infof("shutting down server...")
	case err := <-errC:
		if err != nil {
			return fmt.Errorf("error running server: %w", err)
		}
	}

	return nil
}

// NewLogger returns a logger writing to logFilePath, or to stderr when it is
// empty, and a function that closes the file.
func NewLogger(logFilePath, level string) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	closeLog := func() {}

	lvl := logrus.InfoLevel
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, closeLog, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}
	logger.SetLevel(lvl)

	if logFilePath == "" {
		logger.SetOutput(os.Stderr)
		return logger, closeLog, nil
	}

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, closeLog, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(file)
	return logger, func() { _ = file.Close() }, nil
}

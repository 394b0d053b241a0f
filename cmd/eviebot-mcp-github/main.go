package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/EvieHwang/eviebot-mcp-github/internal/ghmcp"
	"github.com/EvieHwang/eviebot-mcp-github/pkg/github"
	"github.com/EvieHwang/eviebot-mcp-github/pkg/ssecmd"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	rootCmd = &cobra.Command{
		Use:     "eviebot-mcp-github",
		Short:   "EvieBot GitHub MCP Server",
		Long:    `An MCP server that exposes the EvieHwang GitHub account as tools.`,
		Version: buildInfo.String(),
	}

	sseCmd = &cobra.Command{
		Use:   "sse",
		Short: "Start SSE server",
		Long:  `Start a Server-Sent Events (SSE) server that serves the MCP tools over HTTP.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			enabledToolsets, err := toolsetsFromConfig()
			if err != nil {
				return err
			}

			server, err := ssecmd.CreateServerWithOptions(
				ssecmd.WithTokenProvider(tokenFromConfig),
				ssecmd.WithHost(viper.GetString("host")),
				ssecmd.WithOwner(viper.GetString("owner")),
				ssecmd.WithAddress(viper.GetString("address")),
				ssecmd.WithBasePath(viper.GetString("base-path")),
				ssecmd.WithLogFilePath(viper.GetString("log-file")),
				ssecmd.WithLogLevel(viper.GetString("log-level")),
				ssecmd.WithReadOnly(viper.GetBool("read-only")),
				ssecmd.WithEnabledToolsets(enabledToolsets),
				ssecmd.WithVersion(buildInfo.version),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errC := make(chan error, 1)
			go func() {
				errC <- server.Start()
			}()

			select {
			case err := <-errC:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			}
		},
	}

	stdioCmd = &cobra.Command{
		Use:   "stdio",
		Short: "Start stdio server",
		Long:  `Start a server that communicates via standard input/output streams using JSON-RPC messages.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			enabledToolsets, err := toolsetsFromConfig()
			if err != nil {
				return err
			}

			stdioServerConfig := ghmcp.StdioServerConfig{
				Version:              buildInfo.version,
				Host:                 viper.GetString("host"),
				Owner:                viper.GetString("owner"),
				TokenProvider:        tokenFromConfig,
				EnabledToolsets:      enabledToolsets,
				ReadOnly:             viper.GetBool("read-only"),
				ExportTranslations:   viper.GetBool("export-translations"),
				EnableCommandLogging: viper.GetBool("enable-command-logging"),
				LogFilePath:          viper.GetString("log-file"),
				LogLevel:             viper.GetString("log-level"),
			}
			return ghmcp.RunStdioServer(stdioServerConfig)
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.SetGlobalNormalizationFunc(wordSepNormalizeFunc)

	rootCmd.SetVersionTemplate("{{.Short}}\n{{.Version}}\n")

	// Add global flags that will be shared by all commands
	rootCmd.PersistentFlags().StringSlice("toolsets", github.DefaultTools, "An optional comma separated list of groups of tools to allow, defaults to enabling all")
	rootCmd.PersistentFlags().Bool("read-only", false, "Restrict the server to read-only operations")
	rootCmd.PersistentFlags().String("owner", github.DefaultOwner, "Owner used for repository names given without one")
	rootCmd.PersistentFlags().String("log-file", "", "Path to log file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("enable-command-logging", false, "When enabled, the server will log all command requests and responses to the log file")
	rootCmd.PersistentFlags().Bool("export-translations", false, "Save translations to a JSON file")
	rootCmd.PersistentFlags().String("gh-host", "", "Specify the GitHub hostname (for GitHub Enterprise etc.)")

	// Bind flag to viper
	_ = viper.BindPFlag("toolsets", rootCmd.PersistentFlags().Lookup("toolsets"))
	_ = viper.BindPFlag("read-only", rootCmd.PersistentFlags().Lookup("read-only"))
	_ = viper.BindPFlag("owner", rootCmd.PersistentFlags().Lookup("owner"))
	_ = viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("enable-command-logging", rootCmd.PersistentFlags().Lookup("enable-command-logging"))
	_ = viper.BindPFlag("export-translations", rootCmd.PersistentFlags().Lookup("export-translations"))
	_ = viper.BindPFlag("host", rootCmd.PersistentFlags().Lookup("gh-host"))

	// Setup flags for SSE command
	sseCmd.Flags().String("address", "localhost:8080", "Address to listen on for SSE server")
	sseCmd.Flags().String("base-path", "", "Base path for SSE server URLs")

	// Bind SSE flags to viper
	_ = viper.BindPFlag("address", sseCmd.Flags().Lookup("address"))
	_ = viper.BindPFlag("base-path", sseCmd.Flags().Lookup("base-path"))

	// Add subcommands
	rootCmd.AddCommand(stdioCmd)
	rootCmd.AddCommand(sseCmd)
}

func initConfig() {
	// GITHUB_TOKEN, GITHUB_HOST and GITHUB_OWNER map onto token, host and owner
	viper.SetEnvPrefix("github")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// tokenFromConfig is read when a tool first needs GitHub, so the token may be
// set after the server starts.
func tokenFromConfig() string {
	return viper.GetString("token")
}

// If you're wondering why we're not using viper.GetStringSlice("toolsets"),
// it's because viper doesn't handle comma-separated values correctly for env
// vars when using GetStringSlice.
// https://github.com/spf13/viper/issues/380
func toolsetsFromConfig() ([]string, error) {
	var enabledToolsets []string
	if err := viper.UnmarshalKey("toolsets", &enabledToolsets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal toolsets: %w", err)
	}
	return enabledToolsets, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func wordSepNormalizeFunc(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	from := []string{"_"}
	to := "-"
	for _, sep := range from {
		name = strings.ReplaceAll(name, sep, to)
	}
	return pflag.NormalizedName(name)
}

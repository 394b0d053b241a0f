package github

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	ghErrors "github.com/EvieHwang/eviebot-mcp-github/pkg/errors"
	"github.com/google/go-github/v69/github"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// listLimit caps every list tool.
	listLimit = 50
	// searchLimit caps code search results.
	searchLimit = 20
	// descriptionLimit is the longest repository description shown in a listing.
	descriptionLimit = 80
	// noValue stands in for absent optional fields in formatted output.
	noValue = "—"
)

// NewServer creates an MCP server with tool capabilities for the given
// version. The instructions tell clients how bare names resolve to owner.
func NewServer(version, owner string, opts ...server.ServerOption) *server.MCPServer {
	defaultOpts := []server.ServerOption{
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithInstructions(Instructions(owner)),
	}
	opts = append(defaultOpts, opts...)

	return server.NewMCPServer(
		"eviebot-mcp-github",
		version,
		opts...,
	)
}

// Instructions is the usage summary sent to clients on initialize.
func Instructions(owner string) string {
	if owner == "" {
		owner = DefaultOwner
	}
	return fmt.Sprintf("Manage GitHub repositories for %[1]s. "+
		"Use list_repositories and get_repository to browse repositories, "+
		"list_files, read_file and write_file for repository content, "+
		"list_issues, get_issue, create_issue and update_issue for issues, "+
		"list_pull_requests, get_pr and merge_pr for pull requests. "+
		"Repository names can be 'name' (owned by %[1]s) or 'owner/name'.", owner)
}

// textHandlerFunc is the body of a tool: it returns the text shown to the
// caller, or an error that is rendered into an error result.
type textHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (string, error)

// textTool adapts a textHandlerFunc into an MCP handler. Every failure,
// including a panic, becomes an error result; the handler never returns a
// Go error to the protocol layer.
func textTool(handler textHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				result = ghErrors.NewToolResultError(fmt.Errorf("unexpected failure: %v", r))
				err = nil
			}
		}()

		text, err := handler(ctx, request)
		if err != nil {
			return ghErrors.NewToolResultError(err), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func readOnlyAnnotation(title string) mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		Title:           title,
		ReadOnlyHint:    ToBoolPtr(true),
		DestructiveHint: ToBoolPtr(false),
		IdempotentHint:  ToBoolPtr(true),
		OpenWorldHint:   ToBoolPtr(false),
	}
}

func writeAnnotation(title string, idempotent bool) mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		Title:           title,
		ReadOnlyHint:    ToBoolPtr(false),
		DestructiveHint: ToBoolPtr(false),
		IdempotentHint:  ToBoolPtr(idempotent),
		OpenWorldHint:   ToBoolPtr(false),
	}
}

// RequiredParam is a helper function that can be used to fetch a requested parameter from the request.
// It does the following checks:
// 1. Checks if the parameter is present in the request.
// 2. Checks if the parameter is of the expected type.
// 3. Checks if the parameter is not empty, i.e: non-zero value
func RequiredParam[T comparable](r mcp.CallToolRequest, p string) (T, error) {
	var zero T

	v, ok := r.Params.Arguments[p]
	if !ok {
		return zero, fmt.Errorf("missing required parameter: %s", p)
	}

	value, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("parameter %s is not of type %T", p, zero)
	}

	if value == zero {
		return zero, fmt.Errorf("missing required parameter: %s", p)
	}

	return value, nil
}

// RequiredInt fetches a required numeric parameter. JSON numbers arrive as
// float64, so fractional values are rejected rather than truncated.
func RequiredInt(r mcp.CallToolRequest, p string) (int, error) {
	v, err := RequiredParam[float64](r, p)
	if err != nil {
		return 0, err
	}
	if v != float64(int(v)) {
		return 0, fmt.Errorf("parameter %s must be a whole number", p)
	}
	return int(v), nil
}

// RequiredStringAllowEmpty fetches a string parameter that must be present
// but may be empty, such as the content of a file.
func RequiredStringAllowEmpty(r mcp.CallToolRequest, p string) (string, error) {
	v, ok := r.Params.Arguments[p]
	if !ok {
		return "", fmt.Errorf("missing required parameter: %s", p)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s is not of type string", p)
	}
	return s, nil
}

// OptionalParam is a helper function that can be used to fetch a requested parameter from the request.
// It does the following checks:
// 1. Checks if the parameter is present in the request, if not, it returns its zero-value
// 2. If it is present, it checks if the parameter is of the expected type and returns it
func OptionalParam[T any](r mcp.CallToolRequest, p string) (T, error) {
	var zero T

	v, ok := r.Params.Arguments[p]
	if !ok || v == nil {
		return zero, nil
	}

	value, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("parameter %s is not of type %T, is %T", p, zero, v)
	}

	return value, nil
}

// OptionalStringParamWithDefault behaves like OptionalParam but falls back to
// d when the parameter is absent or empty.
func OptionalStringParamWithDefault(r mcp.CallToolRequest, p string, d string) (string, error) {
	v, err := OptionalParam[string](r, p)
	if err != nil {
		return "", err
	}
	if v == "" {
		return d, nil
	}
	return v, nil
}

// OptionalBoolParamWithDefault behaves like OptionalParam but falls back to d
// when the parameter is absent or null.
func OptionalBoolParamWithDefault(r mcp.CallToolRequest, p string, d bool) (bool, error) {
	if v, ok := r.Params.Arguments[p]; !ok || v == nil {
		return d, nil
	}
	v, err := OptionalParam[bool](r, p)
	if err != nil {
		return false, err
	}
	return v, nil
}

// requiredRepository reads the "repo" parameter and resolves it against the
// default owner.
func requiredRepository(conn Connector, r mcp.CallToolRequest) (fullName, owner, repo string, err error) {
	name, err := RequiredParam[string](r, "repo")
	if err != nil {
		return "", "", "", err
	}
	fullName = conn.ResolveRepository(strings.TrimSpace(name))
	owner, repo, err = splitRepository(fullName)
	if err != nil {
		return "", "", "", err
	}
	return fullName, owner, repo, nil
}

// oneOf checks value against the allowed set advertised in a tool's schema.
func oneOf(p, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q: must be one of %s", p, value, strings.Join(allowed, ", "))
}

// commaSeparated splits a comma separated list, dropping blank entries.
func commaSeparated(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// truncate shortens s to at most limit runes, marking the cut with "...".
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-3]) + "..."
}

func orNoValue(s string) string {
	if s == "" {
		return noValue
	}
	return s
}

func formatTimestamp(ts github.Timestamp) string {
	if ts.IsZero() {
		return noValue
	}
	return ts.UTC().Format(time.RFC3339)
}

func ToBoolPtr(b bool) *bool {
	return &b
}

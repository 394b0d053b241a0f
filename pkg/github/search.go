package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/EvieHwang/eviebot-mcp-github/pkg/translations"
	"github.com/google/go-github/v69/github"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SearchCode creates a tool to search code in one repository or across the default owner's repositories.
func SearchCode(conn Connector, t translations.TranslationHelperFunc) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool("search_code",
			mcp.WithDescription(t("TOOL_SEARCH_CODE_DESCRIPTION", "Search code in a repository, or in every repository of the default owner")),
			mcp.WithToolAnnotation(readOnlyAnnotation(t("TOOL_SEARCH_CODE_USER_TITLE", "Search code"))),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Search query using GitHub code search syntax"),
			),
			mcp.WithString("repo",
				mcp.Description("Limit the search to this repository"),
			),
		),
		textTool(func(ctx context.Context, request mcp.CallToolRequest) (string, error) {
			query, err := RequiredParam[string](request, "query")
			if err != nil {
				return "", err
			}
			repo, err := OptionalParam[string](request, "repo")
			if err != nil {
				return "", err
			}

			client, err := conn.Client(ctx)
			if err != nil {
				return "", err
			}

			scoped := scopedCodeQuery(conn, query, strings.TrimSpace(repo))
			result, _, err := client.Search.Code(ctx, scoped, &github.SearchOptions{
				ListOptions: github.ListOptions{
					PerPage: searchLimit,
				},
			})
			if err != nil {
				return "", fmt.Errorf("failed to search code: %w", err)
			}

			if len(result.CodeResults) == 0 {
				return fmt.Sprintf("No code found matching: %s", query), nil
			}

			lines := make([]string, 0, searchLimit)
			for i, match := range result.CodeResults {
				if i == searchLimit {
					break
				}
				lines = append(lines, fmt.Sprintf("- %s/%s", match.GetRepository().GetFullName(), match.GetPath()))
			}
			return strings.Join(lines, "\n"), nil
		})
}

func scopedCodeQuery(conn Connector, query, repo string) string {
	if repo != "" {
		return fmt.Sprintf("%s repo:%s", query, conn.CurrentUserRepository(repo))
	}
	return fmt.Sprintf("%s user:%s", query, conn.Owner())
}

package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/EvieHwang/eviebot-mcp-github/pkg/translations"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/shurcooL/githubv4"
)

// GetMe creates a tool to describe the account the server acts as.
func GetMe(conn Connector, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("get_me",
		mcp.WithDescription(t("TOOL_GET_ME_DESCRIPTION", "Get details of the authenticated GitHub account. Use this when a request is about \"me\" or \"my\" repositories, or to learn the default owner for bare repository names.")),
		mcp.WithToolAnnotation(readOnlyAnnotation(t("TOOL_GET_ME_USER_TITLE", "Get my user profile"))),
	)

	handler := textTool(func(ctx context.Context, _ mcp.CallToolRequest) (string, error) {
		gqlClient, err := conn.GQLClient(ctx)
		if err != nil {
			return "", err
		}

		var q struct {
			Viewer struct {
				Login        githubv4.String
				Name         githubv4.String
				Repositories struct {
					TotalCount githubv4.Int
				} `graphql:"repositories(ownerAffiliations: OWNER)"`
			}
		}
		if err := gqlClient.Query(ctx, &q, nil); err != nil {
			return "", fmt.Errorf("failed to get authenticated user: %w", err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Login: %s\n", q.Viewer.Login)
		fmt.Fprintf(&b, "Name: %s\n", orNoValue(string(q.Viewer.Name)))
		fmt.Fprintf(&b, "Owned repositories: %d\n", q.Viewer.Repositories.TotalCount)
		fmt.Fprintf(&b, "Default owner: %s", conn.Owner())
		return b.String(), nil
	})

	return tool, handler
}

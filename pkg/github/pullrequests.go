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

// ListPullRequests creates a tool to list pull requests in a repository.
func ListPullRequests(conn Connector, t translations.TranslationHelperFunc) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool("list_pull_requests",
			mcp.WithDescription(t("TOOL_LIST_PULL_REQUESTS_DESCRIPTION", "List pull requests in a repository")),
			mcp.WithToolAnnotation(readOnlyAnnotation(t("TOOL_LIST_PULL_REQUESTS_USER_TITLE", "List pull requests"))),
			mcp.WithString("repo",
				mcp.Required(),
				mcp.Description("Repository name, or owner/name for repositories of other accounts"),
			),
			mcp.WithString("state",
				mcp.Description("Filter by state, defaults to open"),
				mcp.Enum("open", "closed", "all"),
			),
		),
		textTool(func(ctx context.Context, request mcp.CallToolRequest) (string, error) {
			fullName, owner, repoName, err := requiredRepository(conn, request)
			if err != nil {
				return "", err
			}
			state, err := OptionalStringParamWithDefault(request, "state", "open")
			if err != nil {
				return "", err
			}
			if err := oneOf("state", state, "open", "closed", "all"); err != nil {
				return "", err
			}

			client, err := conn.Client(ctx)
			if err != nil {
				return "", err
			}

			prs, _, err := client.PullRequests.List(ctx, owner, repoName, &github.PullRequestListOptions{
				State: state,
				ListOptions: github.ListOptions{
					PerPage: listLimit,
				},
			})
			if err != nil {
				return "", fmt.Errorf("failed to list pull requests: %w", err)
			}

			if len(prs) == 0 {
				return fmt.Sprintf("No %s pull requests found in %s.", state, fullName), nil
			}

			lines := make([]string, 0, len(prs))
			for i, pr := range prs {
				if i == listLimit {
					break
				}
				lines = append(lines, fmt.Sprintf("#%d %s (%s) [%s -> %s]",
					pr.GetNumber(), pr.GetTitle(), pr.GetState(), pr.GetHead().GetRef(), pr.GetBase().GetRef()))
			}
			return strings.Join(lines, "\n"), nil
		})
}

// GetPullRequest creates a tool to show one pull request in full.
func GetPullRequest(conn Connector, t translations.TranslationHelperFunc) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool("get_pr",
			mcp.WithDescription(t("TOOL_GET_PR_DESCRIPTION", "Get details of a pull request")),
			mcp.WithToolAnnotation(readOnlyAnnotation(t("TOOL_GET_PR_USER_TITLE", "Get pull request"))),
			mcp.WithString("repo",
				mcp.Required(),
				mcp.Description("Repository name, or owner/name for repositories of other accounts"),
			),
			mcp.WithNumber("pr_number",
				mcp.Required(),
				mcp.Description("Pull request number"),
			),
		),
		textTool(func(ctx context.Context, request mcp.CallToolRequest) (string, error) {
			_, owner, repoName, err := requiredRepository(conn, request)
			if err != nil {
				return "", err
			}
			number, err := RequiredInt(request, "pr_number")
			if err != nil {
				return "", err
			}

			client, err := conn.Client(ctx)
			if err != nil {
				return "", err
			}

			pr, _, err := client.PullRequests.Get(ctx, owner, repoName, number)
			if err != nil {
				return "", fmt.Errorf("failed to get pull request #%d: %w", number, err)
			}

			mergeable := "unknown"
			if pr.Mergeable != nil {
				mergeable = fmt.Sprintf("%t", pr.GetMergeable())
			}

			var b strings.Builder
			fmt.Fprintf(&b, "#%d %s\n", pr.GetNumber(), pr.GetTitle())
			fmt.Fprintf(&b, "State: %s\n", pr.GetState())
			fmt.Fprintf(&b, "Author: %s\n", orNoValue(pr.GetUser().GetLogin()))
			fmt.Fprintf(&b, "Branch: %s -> %s\n", pr.GetHead().GetRef(), pr.GetBase().GetRef())
			fmt.Fprintf(&b, "Mergeable: %s\n", mergeable)
			fmt.Fprintf(&b, "Changes: +%d -%d in %d files\n", pr.GetAdditions(), pr.GetDeletions(), pr.GetChangedFiles())
			fmt.Fprintf(&b, "Created: %s\n", formatTimestamp(pr.GetCreatedAt()))
			fmt.Fprintf(&b, "Updated: %s\n", formatTimestamp(pr.GetUpdatedAt()))
			fmt.Fprintf(&b, "URL: %s\n\n", pr.GetHTMLURL())
			if body := pr.GetBody(); body != "" {
				b.WriteString(body)
			} else {
				b.WriteString("No description provided.")
			}
			return b.String(), nil
		})
}

// MergePullRequest creates a tool to merge a pull request.
func MergePullRequest(conn Connector, t translations.TranslationHelperFunc) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool("merge_pr",
			mcp.WithDescription(t("TOOL_MERGE_PR_DESCRIPTION", "Merge a pull request")),
			mcp.WithToolAnnotation(writeAnnotation(t("TOOL_MERGE_PR_USER_TITLE", "Merge pull request"), false)),
			mcp.WithString("repo",
				mcp.Required(),
				mcp.Description("Repository name, or owner/name for repositories of other accounts"),
			),
			mcp.WithNumber("pr_number",
				mcp.Required(),
				mcp.Description("Pull request number"),
			),
			mcp.WithString("merge_method",
				mcp.Description("Merge method, defaults to squash"),
				mcp.Enum("merge", "squash", "rebase"),
			),
		),
		textTool(func(ctx context.Context, request mcp.CallToolRequest) (string, error) {
			_, owner, repoName, err := requiredRepository(conn, request)
			if err != nil {
				return "", err
			}
			number, err := RequiredInt(request, "pr_number")
			if err != nil {
				return "", err
			}
			method, err := OptionalStringParamWithDefault(request, "merge_method", "squash")
			if err != nil {
				return "", err
			}
			if err := oneOf("merge_method", method, "merge", "squash", "rebase"); err != nil {
				return "", err
			}

			client, err := conn.Client(ctx)
			if err != nil {
				return "", err
			}

			result, _, err := client.PullRequests.Merge(ctx, owner, repoName, number, "", &github.PullRequestOptions{
				MergeMethod: method,
			})
			if err != nil {
				return "", fmt.Errorf("failed to merge pull request #%d: %w", number, err)
			}

			if !result.GetMerged() {
				return fmt.Sprintf("Failed to merge PR #%d: %s", number, result.GetMessage()), nil
			}
			return fmt.Sprintf("Merged PR #%d via %s: %s", number, method, result.GetMessage()), nil
		})
}

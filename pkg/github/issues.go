package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/EvieHwang/eviebot-mcp-github/pkg/translations"
	"github.com/go-viper/mapstructure/v2"
	"github.com/google/go-github/v69/github"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ListIssues creates a tool to list issues in a repository. Pull requests,
// which the issues API also returns, are left out.
func ListIssues(conn Connector, t translations.TranslationHelperFunc) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool("list_issues",
			mcp.WithDescription(t("TOOL_LIST_ISSUES_DESCRIPTION", "List issues in a repository")),
			mcp.WithToolAnnotation(readOnlyAnnotation(t("TOOL_LIST_ISSUES_USER_TITLE", "List issues"))),
			mcp.WithString("repo",
				mcp.Required(),
				mcp.Description("Repository name, or owner/name for repositories of other accounts"),
			),
			mcp.WithString("state",
				mcp.Description("Filter by state, defaults to open"),
				mcp.Enum("open", "closed", "all"),
			),
			mcp.WithString("labels",
				mcp.Description("Comma separated label names to filter by"),
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
			labels, err := OptionalParam[string](request, "labels")
			if err != nil {
				return "", err
			}

			client, err := conn.Client(ctx)
			if err != nil {
				return "", err
			}

			issues, _, err := client.Issues.ListByRepo(ctx, owner, repoName, &github.IssueListByRepoOptions{
				State:  state,
				Labels: commaSeparated(labels),
				ListOptions: github.ListOptions{
					PerPage: listLimit,
				},
			})
			if err != nil {
				return "", fmt.Errorf("failed to list issues: %w", err)
			}

			var lines []string
			for _, issue := range issues {
				if issue.IsPullRequest() {
					continue
				}
				lines = append(lines, fmt.Sprintf("#%d %s%s (%s)",
					issue.GetNumber(), issue.GetTitle(), labelSuffix(issue.Labels), issue.GetState()))
			}

			if len(lines) == 0 {
				return fmt.Sprintf("No %s issues found in %s.", state, fullName), nil
			}
			return strings.Join(lines, "\n"), nil
		})
}

// CreateIssue creates a tool to open a new issue.
func CreateIssue(conn Connector, t translations.TranslationHelperFunc) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool("create_issue",
			mcp.WithDescription(t("TOOL_CREATE_ISSUE_DESCRIPTION", "Create an issue in a repository")),
			mcp.WithToolAnnotation(writeAnnotation(t("TOOL_CREATE_ISSUE_USER_TITLE", "Create issue"), false)),
			mcp.WithString("repo",
				mcp.Required(),
				mcp.Description("Repository name, or owner/name for repositories of other accounts"),
			),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Issue title"),
			),
			mcp.WithString("body",
				mcp.Description("Issue body in Markdown"),
			),
			mcp.WithString("labels",
				mcp.Description("Comma separated label names"),
			),
			mcp.WithString("assignees",
				mcp.Description("Comma separated usernames to assign"),
			),
		),
		textTool(func(ctx context.Context, request mcp.CallToolRequest) (string, error) {
			_, owner, repoName, err := requiredRepository(conn, request)
			if err != nil {
				return "", err
			}
			title, err := RequiredParam[string](request, "title")
			if err != nil {
				return "", err
			}
			body, err := OptionalParam[string](request, "body")
			if err != nil {
				return "", err
			}
			labels, err := OptionalParam[string](request, "labels")
			if err != nil {
				return "", err
			}
			assignees, err := OptionalParam[string](request, "assignees")
			if err != nil {
				return "", err
			}

			client, err := conn.Client(ctx)
			if err != nil {
				return "", err
			}

			issueRequest := &github.IssueRequest{
				Title: github.Ptr(title),
			}
			if body != "" {
				issueRequest.Body = github.Ptr(body)
			}
			if l := commaSeparated(labels); len(l) > 0 {
				issueRequest.Labels = &l
			}
			if a := commaSeparated(assignees); len(a) > 0 {
				issueRequest.Assignees = &a
			}

			issue, _, err := client.Issues.Create(ctx, owner, repoName, issueRequest)
			if err != nil {
				return "", fmt.Errorf("failed to create issue: %w", err)
			}

			return fmt.Sprintf("Created issue #%d: %s\nURL: %s", issue.GetNumber(), issue.GetTitle(), issue.GetHTMLURL()), nil
		})
}

// GetIssue creates a tool to show one issue in full.
func GetIssue(conn Connector, t translations.TranslationHelperFunc) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool("get_issue",
			mcp.WithDescription(t("TOOL_GET_ISSUE_DESCRIPTION", "Get details of an issue")),
			mcp.WithToolAnnotation(readOnlyAnnotation(t("TOOL_GET_ISSUE_USER_TITLE", "Get issue"))),
			mcp.WithString("repo",
				mcp.Required(),
				mcp.Description("Repository name, or owner/name for repositories of other accounts"),
			),
			mcp.WithNumber("issue_number",
				mcp.Required(),
				mcp.Description("Issue number"),
			),
		),
		textTool(func(ctx context.Context, request mcp.CallToolRequest) (string, error) {
			_, owner, repoName, err := requiredRepository(conn, request)
			if err != nil {
				return "", err
			}
			number, err := RequiredInt(request, "issue_number")
			if err != nil {
				return "", err
			}

			client, err := conn.Client(ctx)
			if err != nil {
				return "", err
			}

			issue, _, err := client.Issues.Get(ctx, owner, repoName, number)
			if err != nil {
				return "", fmt.Errorf("failed to get issue #%d: %w", number, err)
			}

			assignees := make([]string, 0, len(issue.Assignees))
			for _, a := range issue.Assignees {
				assignees = append(assignees, a.GetLogin())
			}

			var b strings.Builder
			fmt.Fprintf(&b, "#%d %s\n", issue.GetNumber(), issue.GetTitle())
			fmt.Fprintf(&b, "State: %s\n", issue.GetState())
			fmt.Fprintf(&b, "Author: %s\n", orNoValue(issue.GetUser().GetLogin()))
			fmt.Fprintf(&b, "Labels: %s\n", joinOrNone(labelNames(issue.Labels)))
			fmt.Fprintf(&b, "Assignees: %s\n", joinOrNone(assignees))
			fmt.Fprintf(&b, "Comments: %d\n", issue.GetComments())
			fmt.Fprintf(&b, "Created: %s\n", formatTimestamp(issue.GetCreatedAt()))
			fmt.Fprintf(&b, "Updated: %s\n", formatTimestamp(issue.GetUpdatedAt()))
			fmt.Fprintf(&b, "URL: %s\n\n", issue.GetHTMLURL())
			if body := issue.GetBody(); body != "" {
				b.WriteString(body)
			} else {
				b.WriteString("No description provided.")
			}
			return b.String(), nil
		})
}

// issueUpdate holds the optional fields update_issue may change. A nil or
// empty field is left untouched on GitHub.
type issueUpdate struct {
	Title  *string `mapstructure:"title"`
	Body   *string `mapstructure:"body"`
	State  *string `mapstructure:"state"`
	Labels *string `mapstructure:"labels"`
}

// UpdateIssue creates a tool to change the title, body, state or labels of an issue.
func UpdateIssue(conn Connector, t translations.TranslationHelperFunc) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool("update_issue",
			mcp.WithDescription(t("TOOL_UPDATE_ISSUE_DESCRIPTION", "Update an issue. Only the fields provided are changed; labels replace the existing set")),
			mcp.WithToolAnnotation(writeAnnotation(t("TOOL_UPDATE_ISSUE_USER_TITLE", "Update issue"), true)),
			mcp.WithString("repo",
				mcp.Required(),
				mcp.Description("Repository name, or owner/name for repositories of other accounts"),
			),
			mcp.WithNumber("issue_number",
				mcp.Required(),
				mcp.Description("Issue number"),
			),
			mcp.WithString("title",
				mcp.Description("New title"),
			),
			mcp.WithString("body",
				mcp.Description("New body in Markdown"),
			),
			mcp.WithString("state",
				mcp.Description("New state"),
				mcp.Enum("open", "closed"),
			),
			mcp.WithString("labels",
				mcp.Description("Comma separated label names replacing the current labels"),
			),
		),
		textTool(func(ctx context.Context, request mcp.CallToolRequest) (string, error) {
			_, owner, repoName, err := requiredRepository(conn, request)
			if err != nil {
				return "", err
			}
			number, err := RequiredInt(request, "issue_number")
			if err != nil {
				return "", err
			}

			var update issueUpdate
			if err := mapstructure.Decode(request.Params.Arguments, &update); err != nil {
				return "", fmt.Errorf("invalid update: %w", err)
			}

			client, err := conn.Client(ctx)
			if err != nil {
				return "", err
			}

			issueRequest := &github.IssueRequest{}
			var changed []string
			if v := update.Title; v != nil && *v != "" {
				issueRequest.Title = v
				changed = append(changed, "title")
			}
			if v := update.Body; v != nil && *v != "" {
				issueRequest.Body = v
				changed = append(changed, "body")
			}
			if v := update.State; v != nil && *v != "" {
				if err := oneOf("state", *v, "open", "closed"); err != nil {
					return "", err
				}
				issueRequest.State = v
				changed = append(changed, "state")
			}
			if v := update.Labels; v != nil && *v != "" {
				labels := commaSeparated(*v)
				issueRequest.Labels = &labels
				changed = append(changed, "labels")
			}

			if len(changed) == 0 {
				return fmt.Sprintf("No fields to update for issue #%d.", number), nil
			}

			issue, _, err := client.Issues.Edit(ctx, owner, repoName, number, issueRequest)
			if err != nil {
				return "", fmt.Errorf("failed to update issue #%d: %w", number, err)
			}

			return fmt.Sprintf("Updated issue #%d (%s): %s\nState: %s\nURL: %s",
				number, strings.Join(changed, ", "), issue.GetTitle(), issue.GetState(), issue.GetHTMLURL()), nil
		})
}

func labelNames(labels []*github.Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.GetName())
	}
	return names
}

func labelSuffix(labels []*github.Label) string {
	if len(labels) == 0 {
		return ""
	}
	return " [" + strings.Join(labelNames(labels), ", ") + "]"
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}

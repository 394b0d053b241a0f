package github

import (
	"github.com/EvieHwang/eviebot-mcp-github/pkg/toolsets"
	"github.com/EvieHwang/eviebot-mcp-github/pkg/translations"
)

var DefaultTools = []string{"all"}

func InitToolsets(passedToolsets []string, readOnly bool, conn Connector, t translations.TranslationHelperFunc) (*toolsets.ToolsetGroup, error) {
	// Create a new toolset group
	tsg := toolsets.NewToolsetGroup(readOnly)

	repos := toolsets.NewToolset("repos", "Repository, file, branch and code search tools").
		AddReadTools(
			toolsets.NewServerTool(ListRepositories(conn, t)),
			toolsets.NewServerTool(GetRepository(conn, t)),
			toolsets.NewServerTool(ListFiles(conn, t)),
			toolsets.NewServerTool(ReadFile(conn, t)),
			toolsets.NewServerTool(SearchCode(conn, t)),
		).
		AddWriteTools(
			toolsets.NewServerTool(WriteFile(conn, t)),
			toolsets.NewServerTool(CreateRepository(conn, t)),
			toolsets.NewServerTool(CreateBranch(conn, t)),
		)
	issues := toolsets.NewToolset("issues", "GitHub Issues related tools").
		AddReadTools(
			toolsets.NewServerTool(ListIssues(conn, t)),
			toolsets.NewServerTool(GetIssue(conn, t)),
		).
		AddWriteTools(
			toolsets.NewServerTool(CreateIssue(conn, t)),
			toolsets.NewServerTool(UpdateIssue(conn, t)),
		)
	pullRequests := toolsets.NewToolset("pull_requests", "GitHub Pull Request related tools").
		AddReadTools(
			toolsets.NewServerTool(ListPullRequests(conn, t)),
			toolsets.NewServerTool(GetPullRequest(conn, t)),
		).
		AddWriteTools(
			toolsets.NewServerTool(MergePullRequest(conn, t)),
		)

	tsg.AddToolset(repos)
	tsg.AddToolset(issues)
	tsg.AddToolset(pullRequests)

	if err := tsg.EnableToolsets(passedToolsets); err != nil {
		return nil, err
	}

	return tsg, nil
}

// InitContextToolset returns the always-on toolset describing the account in use.
func InitContextToolset(conn Connector, t translations.TranslationHelperFunc) *toolsets.Toolset {
	contextTools := toolsets.NewToolset("context", "Tools that provide context about the account the server acts as").
		AddReadTools(
			toolsets.NewServerTool(GetMe(conn, t)),
		)
	contextTools.Enabled = true
	return contextTools
}

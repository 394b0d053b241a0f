package github

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	ghErrors "github.com/EvieHwang/eviebot-mcp-github/pkg/errors"
	"github.com/EvieHwang/eviebot-mcp-github/pkg/translations"
	"github.com/google/go-github/v69/github"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ListRepositories creates a tool to list repositories of the authenticated account.
func ListRepositories(conn Connector, t translations.TranslationHelperFunc) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool("list_repositories",
			mcp.WithDescription(t("TOOL_LIST_REPOSITORIES_DESCRIPTION", "List repositories of the authenticated account, most recently updated first")),
			mcp.WithToolAnnotation(readOnlyAnnotation(t("TOOL_LIST_REPOSITORIES_USER_TITLE", "List repositories"))),
			mcp.WithString("visibility",
				mcp.Description("Filter by visibility"),
				mcp.Enum("all", "public", "private"),
			),
		),
		textTool(func(ctx context.Context, request mcp.CallToolRequest) (string, error) {
			visibility, err := OptionalStringParamWithDefault(request, "visibility", "all")
			if err != nil {
				return "", err
			}
			if err := oneOf("visibility", visibility, "all", "public", "private"); err != nil {
				return "", err
			}

			client, err := conn.Client(ctx)
			if err != nil {
				return "", err
			}

			repos, _, err := client.Repositories.ListByAuthenticatedUser(ctx, &github.RepositoryListByAuthenticatedUserOptions{
				Visibility: visibility,
				Sort:       "updated",
				ListOptions: github.ListOptions{
					PerPage: listLimit,
				},
			})
			if err != nil {
				return "", fmt.Errorf("failed to list repositories: %w", err)
			}

			if len(repos) == 0 {
				return "No repositories found.", nil
			}

			lines := make([]string, 0, len(repos))
			for i, repo := range repos {
				if i == listLimit {
					break
				}
				line := fmt.Sprintf("- **%s** [%s] (%s) %s",
					repo.GetName(),
					visibilityOf(repo),
					orNoValue(repo.GetLanguage()),
					truncate(repo.GetDescription(), descriptionLimit),
				)
				lines = append(lines, strings.TrimRight(line, " "))
			}
			return strings.Join(lines, "\n"), nil
		})
}

// GetRepository creates a tool to show a summary of one repository.
func GetRepository(conn Connector, t translations.TranslationHelperFunc) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool("get_repository",
			mcp.WithDescription(t("TOOL_GET_REPOSITORY_DESCRIPTION", "Get details of a repository")),
			mcp.WithToolAnnotation(readOnlyAnnotation(t("TOOL_GET_REPOSITORY_USER_TITLE", "Get repository"))),
			mcp.WithString("repo",
				mcp.Required(),
				mcp.Description("Repository name, or owner/name for repositories of other accounts"),
			),
		),
		textTool(func(ctx context.Context, request mcp.CallToolRequest) (string, error) {
			fullName, owner, repoName, err := requiredRepository(conn, request)
			if err != nil {
				return "", err
			}

			client, err := conn.Client(ctx)
			if err != nil {
				return "", err
			}

			repo, _, err := client.Repositories.Get(ctx, owner, repoName)
			if err != nil {
				return "", fmt.Errorf("failed to get repository %s: %w", fullName, err)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Name: %s\n", repo.GetFullName())
			fmt.Fprintf(&b, "Description: %s\n", orNoValue(repo.GetDescription()))
			fmt.Fprintf(&b, "Visibility: %s\n", visibilityOf(repo))
			fmt.Fprintf(&b, "Default branch: %s\n", repo.GetDefaultBranch())
			fmt.Fprintf(&b, "Language: %s\n", orNoValue(repo.GetLanguage()))
			fmt.Fprintf(&b, "Stars: %d\n", repo.GetStargazersCount())
			fmt.Fprintf(&b, "Open issues: %d\n", repo.GetOpenIssuesCount())
			fmt.Fprintf(&b, "Last updated: %s\n", formatTimestamp(repo.GetUpdatedAt()))
			fmt.Fprintf(&b, "URL: %s", repo.GetHTMLURL())
			return b.String(), nil
		})
}

// ListFiles creates a tool to list the entries of a directory.
func ListFiles(conn Connector, t translations.TranslationHelperFunc) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool("list_files",
			mcp.WithDescription(t("TOOL_LIST_FILES_DESCRIPTION", "List files and directories at a path in a repository")),
			mcp.WithToolAnnotation(readOnlyAnnotation(t("TOOL_LIST_FILES_USER_TITLE", "List files"))),
			mcp.WithString("repo",
				mcp.Required(),
				mcp.Description("Repository name, or owner/name for repositories of other accounts"),
			),
			mcp.WithString("path",
				mcp.Description("Directory path, defaults to the repository root"),
			),
			mcp.WithString("ref",
				mcp.Description("Branch, tag or commit SHA, defaults to the default branch"),
			),
		),
		textTool(func(ctx context.Context, request mcp.CallToolRequest) (string, error) {
			_, owner, repoName, err := requiredRepository(conn, request)
			if err != nil {
				return "", err
			}
			path, err := OptionalParam[string](request, "path")
			if err != nil {
				return "", err
			}
			ref, err := OptionalParam[string](request, "ref")
			if err != nil {
				return "", err
			}
			path = strings.Trim(path, "/")

			client, err := conn.Client(ctx)
			if err != nil {
				return "", err
			}

			file, entries, _, err := client.Repositories.GetContents(ctx, owner, repoName, path, &github.RepositoryContentGetOptions{Ref: ref})
			if err != nil {
				return "", fmt.Errorf("failed to list files: %w", err)
			}
			if file != nil {
				entries = []*github.RepositoryContent{file}
			}

			if len(entries) == 0 {
				if path == "" {
					return "Empty directory: /", nil
				}
				return fmt.Sprintf("Empty directory: %s", path), nil
			}

			sort.SliceStable(entries, func(i, j int) bool {
				iDir, jDir := entries[i].GetType() == "dir", entries[j].GetType() == "dir"
				if iDir != jDir {
					return iDir
				}
				return strings.ToLower(entries[i].GetName()) < strings.ToLower(entries[j].GetName())
			})

			lines := make([]string, 0, len(entries))
			for _, entry := range entries {
				switch entry.GetType() {
				case "dir":
					lines = append(lines, fmt.Sprintf("[DIR] %s", entry.GetName()))
				case "file":
					lines = append(lines, fmt.Sprintf("[FILE] %s  %d bytes", entry.GetName(), entry.GetSize()))
				default:
					lines = append(lines, fmt.Sprintf("[FILE] %s", entry.GetName()))
				}
			}
			return strings.Join(lines, "\n"), nil
		})
}

// ReadFile creates a tool to read the decoded text of a file.
func ReadFile(conn Connector, t translations.TranslationHelperFunc) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool("read_file",
			mcp.WithDescription(t("TOOL_READ_FILE_DESCRIPTION", "Read the contents of a file in a repository")),
			mcp.WithToolAnnotation(readOnlyAnnotation(t("TOOL_READ_FILE_USER_TITLE", "Read file"))),
			mcp.WithString("repo",
				mcp.Required(),
				mcp.Description("Repository name, or owner/name for repositories of other accounts"),
			),
			mcp.WithString("path",
				mcp.Required(),
				mcp.Description("Path of the file"),
			),
			mcp.WithString("ref",
				mcp.Description("Branch, tag or commit SHA, defaults to the default branch"),
			),
		),
		textTool(func(ctx context.Context, request mcp.CallToolRequest) (string, error) {
			_, owner, repoName, err := requiredRepository(conn, request)
			if err != nil {
				return "", err
			}
			path, err := RequiredParam[string](request, "path")
			if err != nil {
				return "", err
			}
			ref, err := OptionalParam[string](request, "ref")
			if err != nil {
				return "", err
			}

			client, err := conn.Client(ctx)
			if err != nil {
				return "", err
			}

			file, _, _, err := client.Repositories.GetContents(ctx, owner, repoName, path, &github.RepositoryContentGetOptions{Ref: ref})
			if err != nil {
				return "", fmt.Errorf("failed to read file: %w", err)
			}
			if file == nil {
				return fmt.Sprintf("Path is a directory, not a file: %s", path), nil
			}

			content, err := file.GetContent()
			if err != nil {
				return "", fmt.Errorf("failed to decode content of %s: %w", path, err)
			}
			if !utf8.ValidString(content) {
				return fmt.Sprintf("Binary file: %s\nSize: %d bytes\nSHA: %s", file.GetName(), file.GetSize(), file.GetSHA()), nil
			}
			return content, nil
		})
}

// WriteFile creates a tool that creates a file or replaces an existing one in a single commit.
func WriteFile(conn Connector, t translations.TranslationHelperFunc) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool("write_file",
			mcp.WithDescription(t("TOOL_WRITE_FILE_DESCRIPTION", "Create a file, or replace the contents of an existing one, in a single commit")),
			mcp.WithToolAnnotation(writeAnnotation(t("TOOL_WRITE_FILE_USER_TITLE", "Write file"), true)),
			mcp.WithString("repo",
				mcp.Required(),
				mcp.Description("Repository name, or owner/name for repositories of other accounts"),
			),
			mcp.WithString("path",
				mcp.Required(),
				mcp.Description("Path of the file"),
			),
			mcp.WithString("content",
				mcp.Required(),
				mcp.Description("New file contents"),
			),
			mcp.WithString("message",
				mcp.Required(),
				mcp.Description("Commit message"),
			),
			mcp.WithString("branch",
				mcp.Description("Branch to commit to, defaults to the default branch"),
			),
		),
		textTool(func(ctx context.Context, request mcp.CallToolRequest) (string, error) {
			fullName, owner, repoName, err := requiredRepository(conn, request)
			if err != nil {
				return "", err
			}
			path, err := RequiredParam[string](request, "path")
			if err != nil {
				return "", err
			}
			content, err := RequiredStringAllowEmpty(request, "content")
			if err != nil {
				return "", err
			}
			message, err := RequiredParam[string](request, "message")
			if err != nil {
				return "", err
			}
			branch, err := OptionalParam[string](request, "branch")
			if err != nil {
				return "", err
			}

			client, err := conn.Client(ctx)
			if err != nil {
				return "", err
			}

			opts := &github.RepositoryContentFileOptions{
				Message: github.Ptr(message),
				Content: []byte(content),
			}
			if branch != "" {
				opts.Branch = github.Ptr(branch)
			}

			existing, _, _, err := client.Repositories.GetContents(ctx, owner, repoName, path, &github.RepositoryContentGetOptions{Ref: branch})
			switch {
			case err == nil && existing == nil:
				return fmt.Sprintf("Path is a directory, not a file: %s", path), nil
			case err == nil:
				opts.SHA = github.Ptr(existing.GetSHA())
				if _, _, err := client.Repositories.UpdateFile(ctx, owner, repoName, path, opts); err != nil {
					return "", fmt.Errorf("failed to update file: %w", err)
				}
				return fmt.Sprintf("Updated %s in %s (commit: %s)", path, fullName, message), nil
			case ghErrors.IsNotFound(err):
				if _, _, err := client.Repositories.CreateFile(ctx, owner, repoName, path, opts); err != nil {
					return "", fmt.Errorf("failed to create file: %w", err)
				}
				return fmt.Sprintf("Created %s in %s (commit: %s)", path, fullName, message), nil
			default:
				return "", fmt.Errorf("failed to check for existing file: %w", err)
			}
		})
}

// CreateRepository creates a tool to create a repository under the authenticated account.
func CreateRepository(conn Connector, t translations.TranslationHelperFunc) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool("create_repository",
			mcp.WithDescription(t("TOOL_CREATE_REPOSITORY_DESCRIPTION", "Create a repository under the authenticated account")),
			mcp.WithToolAnnotation(writeAnnotation(t("TOOL_CREATE_REPOSITORY_USER_TITLE", "Create repository"), false)),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Repository name"),
			),
			mcp.WithString("description",
				mcp.Description("Repository description"),
			),
			mcp.WithBoolean("private",
				mcp.Description("Whether the repository is private, defaults to true"),
			),
			mcp.WithBoolean("auto_init",
				mcp.Description("Initialize the repository with a README, defaults to false"),
			),
		),
		textTool(func(ctx context.Context, request mcp.CallToolRequest) (string, error) {
			name, err := RequiredParam[string](request, "name")
			if err != nil {
				return "", err
			}
			description, err := OptionalParam[string](request, "description")
			if err != nil {
				return "", err
			}
			private, err := OptionalBoolParamWithDefault(request, "private", true)
			if err != nil {
				return "", err
			}
			autoInit, err := OptionalBoolParamWithDefault(request, "auto_init", false)
			if err != nil {
				return "", err
			}

			client, err := conn.Client(ctx)
			if err != nil {
				return "", err
			}

			repo := &github.Repository{
				Name:     github.Ptr(name),
				Private:  github.Ptr(private),
				AutoInit: github.Ptr(autoInit),
			}
			if description != "" {
				repo.Description = github.Ptr(description)
			}

			created, _, err := client.Repositories.Create(ctx, "", repo)
			if err != nil {
				return "", fmt.Errorf("failed to create repository: %w", err)
			}

			return fmt.Sprintf("Created repository: %s\nVisibility: %s\nURL: %s",
				created.GetFullName(), visibilityOf(created), created.GetHTMLURL()), nil
		})
}

// CreateBranch creates a tool to create a branch from the head of another branch.
func CreateBranch(conn Connector, t translations.TranslationHelperFunc) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool("create_branch",
			mcp.WithDescription(t("TOOL_CREATE_BRANCH_DESCRIPTION", "Create a branch from the current head of another branch")),
			mcp.WithToolAnnotation(writeAnnotation(t("TOOL_CREATE_BRANCH_USER_TITLE", "Create branch"), false)),
			mcp.WithString("repo",
				mcp.Required(),
				mcp.Description("Repository name, or owner/name for repositories of other accounts"),
			),
			mcp.WithString("branch",
				mcp.Required(),
				mcp.Description("Name of the new branch"),
			),
			mcp.WithString("from_branch",
				mcp.Description("Source branch, defaults to the repository's default branch"),
			),
		),
		textTool(func(ctx context.Context, request mcp.CallToolRequest) (string, error) {
			fullName, owner, repoName, err := requiredRepository(conn, request)
			if err != nil {
				return "", err
			}
			branch, err := RequiredParam[string](request, "branch")
			if err != nil {
				return "", err
			}
			fromBranch, err := OptionalParam[string](request, "from_branch")
			if err != nil {
				return "", err
			}

			client, err := conn.Client(ctx)
			if err != nil {
				return "", err
			}

			if fromBranch == "" {
				repo, _, err := client.Repositories.Get(ctx, owner, repoName)
				if err != nil {
					return "", fmt.Errorf("failed to get repository %s: %w", fullName, err)
				}
				fromBranch = repo.GetDefaultBranch()
			}

			source, _, err := client.Git.GetRef(ctx, owner, repoName, "refs/heads/"+fromBranch)
			if err != nil {
				return "", fmt.Errorf("failed to get branch %s: %w", fromBranch, err)
			}

			ref := &github.Reference{
				Ref: github.Ptr("refs/heads/" + branch),
				Object: &github.GitObject{
					SHA: github.Ptr(source.GetObject().GetSHA()),
				},
			}
			if _, _, err := client.Git.CreateRef(ctx, owner, repoName, ref); err != nil {
				return "", fmt.Errorf("failed to create branch: %w", err)
			}

			return fmt.Sprintf("Created branch '%s' from '%s' in %s", branch, fromBranch, fullName), nil
		})
}

func visibilityOf(repo *github.Repository) string {
	if v := repo.GetVisibility(); v != "" {
		return v
	}
	if repo.GetPrivate() {
		return "private"
	}
	return "public"
}

package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/EvieHwang/eviebot-mcp-github/pkg/translations"
	"github.com/google/go-github/v69/github"
	"github.com/migueleliasweb/go-github-mock/src/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	getContentsRoot = mock.EndpointPattern{
		Pattern: "/repos/{owner}/{repo}/contents/",
		Method:  "GET",
	}
	getBranchRef = mock.EndpointPattern{
		Pattern: "/repos/{owner}/{repo}/git/ref/heads/{branch}",
		Method:  "GET",
	}
)

func Test_ListRepositories(t *testing.T) {
	// Verify tool definition once
	tool, _ := ListRepositories(stubConnector(http.DefaultClient), translations.NullTranslationHelper)

	assert.Equal(t, "list_repositories", tool.Name)
	assert.NotEmpty(t, tool.Description)
	assert.Contains(t, tool.InputSchema.Properties, "visibility")
	assert.Empty(t, tool.InputSchema.Required)
	assert.True(t, *tool.Annotations.ReadOnlyHint)

	longDescription := strings.Repeat("x", 100)
	mockRepos := []*github.Repository{
		{
			Name:        github.Ptr("notes"),
			Private:     github.Ptr(true),
			Language:    github.Ptr("Go"),
			Description: github.Ptr("Personal notes"),
		},
		{
			Name:        github.Ptr("site"),
			Visibility:  github.Ptr("public"),
			Description: github.Ptr(longDescription),
		},
	}

	tests := []struct {
		name           string
		mockedClient   *http.Client
		requestArgs    map[string]any
		expectError    bool
		expectedLines  []string
		expectedErrMsg string
	}{
		{
			name: "lists repositories most recently updated first",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					mock.GetUserRepos,
					expectQueryParams(t, map[string]string{
						"visibility": "all",
						"sort":       "updated",
						"per_page":   "50",
					}).andThen(
						mockResponse(t, http.StatusOK, mockRepos),
					),
				),
			),
			requestArgs: map[string]any{},
			expectedLines: []string{
				"- **notes** [private] (Go) Personal notes",
				"- **site** [public] (—) " + strings.Repeat("x", 77) + "...",
			},
		},
		{
			name: "passes visibility filter",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					mock.GetUserRepos,
					expectQueryParams(t, map[string]string{
						"visibility": "private",
						"sort":       "updated",
						"per_page":   "50",
					}).andThen(
						mockResponse(t, http.StatusOK, mockRepos[:1]),
					),
				),
			),
			requestArgs: map[string]any{
				"visibility": "private",
			},
			expectedLines: []string{"- **notes** [private] (Go) Personal notes"},
		},
		{
			name: "no repositories",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatch(mock.GetUserRepos, []*github.Repository{}),
			),
			requestArgs:   map[string]any{},
			expectedLines: []string{"No repositories found."},
		},
		{
			name:         "rejects unknown visibility",
			mockedClient: mock.NewMockedHTTPClient(),
			requestArgs: map[string]any{
				"visibility": "internal",
			},
			expectError:    true,
			expectedErrMsg: `Error: invalid visibility "internal"`,
		},
		{
			name: "bad credentials",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					mock.GetUserRepos,
					mockResponse(t, http.StatusUnauthorized, `{"message": "Bad credentials"}`),
				),
			),
			requestArgs:    map[string]any{},
			expectError:    true,
			expectedErrMsg: "GitHub API error (401): Bad credentials",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, handler := ListRepositories(stubConnector(tc.mockedClient), translations.NullTranslationHelper)

			result, err := handler(context.Background(), createMCPRequest(tc.requestArgs))
			require.NoError(t, err)

			if tc.expectError {
				errorContent := getErrorResult(t, result)
				assert.Contains(t, errorContent.Text, tc.expectedErrMsg)
				return
			}

			textContent := getTextResult(t, result)
			assert.Equal(t, strings.Join(tc.expectedLines, "\n"), textContent.Text)
		})
	}
}

func Test_GetRepository(t *testing.T) {
	tool, _ := GetRepository(stubConnector(http.DefaultClient), translations.NullTranslationHelper)

	assert.Equal(t, "get_repository", tool.Name)
	assert.NotEmpty(t, tool.Description)
	assert.Contains(t, tool.InputSchema.Properties, "repo")
	assert.ElementsMatch(t, tool.InputSchema.Required, []string{"repo"})

	mockRepo := &github.Repository{
		FullName:        github.Ptr("EvieHwang/notes"),
		Private:         github.Ptr(false),
		DefaultBranch:   github.Ptr("main"),
		Language:        github.Ptr("Markdown"),
		StargazersCount: github.Ptr(3),
		OpenIssuesCount: github.Ptr(2),
		UpdatedAt:       &github.Timestamp{Time: time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)},
		HTMLURL:         github.Ptr("https://github.com/EvieHwang/notes"),
	}

	tests := []struct {
		name           string
		mockedClient   *http.Client
		requestArgs    map[string]any
		expectError    bool
		expectedText   []string
		expectedErrMsg string
	}{
		{
			name: "bare name resolves to default owner",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					mock.GetReposByOwnerByRepo,
					http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						assert.Equal(t, "/repos/EvieHwang/notes", r.URL.Path)
						mockResponse(t, http.StatusOK, mockRepo)(w, r)
					}),
				),
			),
			requestArgs: map[string]any{"repo": "notes"},
			expectedText: []string{
				"Name: EvieHwang/notes",
				"Description: —",
				"Visibility: public",
				"Default branch: main",
				"Language: Markdown",
				"Last updated: 2025-03-01T12:30:00Z",
				"URL: https://github.com/EvieHwang/notes",
			},
		},
		{
			name: "qualified name is used as is",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					mock.GetReposByOwnerByRepo,
					http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						assert.Equal(t, "/repos/octocat/hello-world", r.URL.Path)
						mockResponse(t, http.StatusOK, &github.Repository{FullName: github.Ptr("octocat/hello-world")})(w, r)
					}),
				),
			),
			requestArgs:  map[string]any{"repo": "octocat/hello-world"},
			expectedText: []string{"Name: octocat/hello-world", "Last updated: —"},
		},
		{
			name: "repository not found",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					mock.GetReposByOwnerByRepo,
					mockResponse(t, http.StatusNotFound, `{"message": "Not Found"}`),
				),
			),
			requestArgs:    map[string]any{"repo": "missing"},
			expectError:    true,
			expectedErrMsg: "GitHub API error (404): Not Found",
		},
		{
			name:           "missing repo parameter",
			mockedClient:   mock.NewMockedHTTPClient(),
			requestArgs:    map[string]any{},
			expectError:    true,
			expectedErrMsg: "Error: missing required parameter: repo",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, handler := GetRepository(stubConnector(tc.mockedClient), translations.NullTranslationHelper)

			result, err := handler(context.Background(), createMCPRequest(tc.requestArgs))
			require.NoError(t, err)

			if tc.expectError {
				errorContent := getErrorResult(t, result)
				assert.Equal(t, tc.expectedErrMsg, errorContent.Text)
				return
			}

			textContent := getTextResult(t, result)
			for _, line := range tc.expectedText {
				assert.Contains(t, textContent.Text, line)
			}
		})
	}
}

func Test_ListFiles(t *testing.T) {
	tool, _ := ListFiles(stubConnector(http.DefaultClient), translations.NullTranslationHelper)

	assert.Equal(t, "list_files", tool.Name)
	assert.Contains(t, tool.InputSchema.Properties, "repo")
	assert.Contains(t, tool.InputSchema.Properties, "path")
	assert.Contains(t, tool.InputSchema.Properties, "ref")
	assert.ElementsMatch(t, tool.InputSchema.Required, []string{"repo"})

	rootEntries := []*github.RepositoryContent{
		{Type: github.Ptr("file"), Name: github.Ptr("b.txt"), Size: github.Ptr(10)},
		{Type: github.Ptr("dir"), Name: github.Ptr("src")},
		{Type: github.Ptr("file"), Name: github.Ptr("A.md"), Size: github.Ptr(5)},
		{Type: github.Ptr("dir"), Name: github.Ptr("Docs")},
	}

	tests := []struct {
		name           string
		mockedClient   *http.Client
		requestArgs    map[string]any
		expectError    bool
		expectedText   string
		expectedErrMsg string
	}{
		{
			name: "directories first then files, case insensitive",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatch(getContentsRoot, rootEntries),
			),
			requestArgs:  map[string]any{"repo": "notes"},
			expectedText: "[DIR] Docs\n[DIR] src\n[FILE] A.md  5 bytes\n[FILE] b.txt  10 bytes",
		},
		{
			name: "ref is passed through",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					getContentsRoot,
					expectQueryParams(t, map[string]string{"ref": "dev"}).andThen(
						mockResponse(t, http.StatusOK, rootEntries[:1]),
					),
				),
			),
			requestArgs:  map[string]any{"repo": "notes", "ref": "dev"},
			expectedText: "[FILE] b.txt  10 bytes",
		},
		{
			name: "empty directory",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatch(mock.GetReposContentsByOwnerByRepoByPath, []*github.RepositoryContent{}),
			),
			requestArgs:  map[string]any{"repo": "notes", "path": "docs/"},
			expectedText: "Empty directory: docs",
		},
		{
			name: "path pointing at a file lists that file",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatch(mock.GetReposContentsByOwnerByRepoByPath, &github.RepositoryContent{
					Type: github.Ptr("file"),
					Name: github.Ptr("README.md"),
					Size: github.Ptr(12),
				}),
			),
			requestArgs:  map[string]any{"repo": "notes", "path": "README.md"},
			expectedText: "[FILE] README.md  12 bytes",
		},
		{
			name: "path not found",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					mock.GetReposContentsByOwnerByRepoByPath,
					mockResponse(t, http.StatusNotFound, `{"message": "Not Found"}`),
				),
			),
			requestArgs:    map[string]any{"repo": "notes", "path": "nope"},
			expectError:    true,
			expectedErrMsg: "GitHub API error (404): Not Found",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, handler := ListFiles(stubConnector(tc.mockedClient), translations.NullTranslationHelper)

			result, err := handler(context.Background(), createMCPRequest(tc.requestArgs))
			require.NoError(t, err)

			if tc.expectError {
				errorContent := getErrorResult(t, result)
				assert.Equal(t, tc.expectedErrMsg, errorContent.Text)
				return
			}

			textContent := getTextResult(t, result)
			assert.Equal(t, tc.expectedText, textContent.Text)
		})
	}
}

func Test_ReadFile(t *testing.T) {
	tool, _ := ReadFile(stubConnector(http.DefaultClient), translations.NullTranslationHelper)

	assert.Equal(t, "read_file", tool.Name)
	assert.ElementsMatch(t, tool.InputSchema.Required, []string{"repo", "path"})

	encode := func(b []byte) *string {
		return github.Ptr(base64.StdEncoding.EncodeToString(b))
	}

	tests := []struct {
		name           string
		mockedClient   *http.Client
		requestArgs    map[string]any
		expectError    bool
		expectedText   string
		expectedErrMsg string
	}{
		{
			name: "decodes text content",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatch(mock.GetReposContentsByOwnerByRepoByPath, &github.RepositoryContent{
					Type:     github.Ptr("file"),
					Name:     github.Ptr("README.md"),
					Encoding: github.Ptr("base64"),
					Content:  encode([]byte("# Notes\nhéllo\n")),
				}),
			),
			requestArgs:  map[string]any{"repo": "notes", "path": "README.md"},
			expectedText: "# Notes\nhéllo\n",
		},
		{
			name: "summarizes binary content",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatch(mock.GetReposContentsByOwnerByRepoByPath, &github.RepositoryContent{
					Type:     github.Ptr("file"),
					Name:     github.Ptr("logo.png"),
					Size:     github.Ptr(4),
					SHA:      github.Ptr("f00d"),
					Encoding: github.Ptr("base64"),
					Content:  encode([]byte{0xff, 0xd8, 0xff, 0xe0}),
				}),
			),
			requestArgs:  map[string]any{"repo": "notes", "path": "logo.png"},
			expectedText: "Binary file: logo.png\nSize: 4 bytes\nSHA: f00d",
		},
		{
			name: "directory path",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatch(mock.GetReposContentsByOwnerByRepoByPath, []*github.RepositoryContent{
					{Type: github.Ptr("file"), Name: github.Ptr("a.md")},
				}),
			),
			requestArgs:  map[string]any{"repo": "notes", "path": "docs"},
			expectedText: "Path is a directory, not a file: docs",
		},
		{
			name: "file not found",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					mock.GetReposContentsByOwnerByRepoByPath,
					mockResponse(t, http.StatusNotFound, `{"message": "Not Found"}`),
				),
			),
			requestArgs:    map[string]any{"repo": "notes", "path": "missing.md"},
			expectError:    true,
			expectedErrMsg: "GitHub API error (404): Not Found",
		},
		{
			name:           "missing path",
			mockedClient:   mock.NewMockedHTTPClient(),
			requestArgs:    map[string]any{"repo": "notes"},
			expectError:    true,
			expectedErrMsg: "Error: missing required parameter: path",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, handler := ReadFile(stubConnector(tc.mockedClient), translations.NullTranslationHelper)

			result, err := handler(context.Background(), createMCPRequest(tc.requestArgs))
			require.NoError(t, err)

			if tc.expectError {
				errorContent := getErrorResult(t, result)
				assert.Equal(t, tc.expectedErrMsg, errorContent.Text)
				return
			}

			textContent := getTextResult(t, result)
			assert.Equal(t, tc.expectedText, textContent.Text)
		})
	}
}

func Test_WriteFile(t *testing.T) {
	tool, _ := WriteFile(stubConnector(http.DefaultClient), translations.NullTranslationHelper)

	assert.Equal(t, "write_file", tool.Name)
	assert.ElementsMatch(t, tool.InputSchema.Required, []string{"repo", "path", "content", "message"})
	assert.False(t, *tool.Annotations.ReadOnlyHint)
	assert.True(t, *tool.Annotations.IdempotentHint)

	existing := &github.RepositoryContent{
		Type: github.Ptr("file"),
		Name: github.Ptr("README.md"),
		SHA:  github.Ptr("abc123"),
	}
	commitResponse := &github.RepositoryContentResponse{
		Commit: github.Commit{SHA: github.Ptr("def456")},
	}
	encoded := func(s string) string {
		return base64.StdEncoding.EncodeToString([]byte(s))
	}

	tests := []struct {
		name           string
		mockedClient   *http.Client
		requestArgs    map[string]any
		expectError    bool
		expectedText   string
		expectedErrMsg string
	}{
		{
			name: "updates an existing file with its sha",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					mock.GetReposContentsByOwnerByRepoByPath,
					expectQueryParams(t, map[string]string{"ref": "main"}).andThen(
						mockResponse(t, http.StatusOK, existing),
					),
				),
				mock.WithRequestMatchHandler(
					mock.PutReposContentsByOwnerByRepoByPath,
					expectRequestBody(t, map[string]any{
						"message": "Update readme",
						"content": encoded("new contents"),
						"sha":     "abc123",
						"branch":  "main",
					}).andThen(
						mockResponse(t, http.StatusOK, commitResponse),
					),
				),
			),
			requestArgs: map[string]any{
				"repo":    "notes",
				"path":    "README.md",
				"content": "new contents",
				"message": "Update readme",
				"branch":  "main",
			},
			expectedText: "Updated README.md in EvieHwang/notes (commit: Update readme)",
		},
		{
			name: "creates a missing file without a sha",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					mock.GetReposContentsByOwnerByRepoByPath,
					mockResponse(t, http.StatusNotFound, `{"message": "Not Found"}`),
				),
				mock.WithRequestMatchHandler(
					mock.PutReposContentsByOwnerByRepoByPath,
					expectRequestBody(t, map[string]any{
						"message": "Add todo",
						"content": encoded("- [ ] first\n"),
					}).andThen(
						mockResponse(t, http.StatusCreated, commitResponse),
					),
				),
			),
			requestArgs: map[string]any{
				"repo":    "notes",
				"path":    "TODO.md",
				"content": "- [ ] first\n",
				"message": "Add todo",
			},
			expectedText: "Created TODO.md in EvieHwang/notes (commit: Add todo)",
		},
		{
			name: "non-404 lookup failure is not swallowed",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					mock.GetReposContentsByOwnerByRepoByPath,
					mockResponse(t, http.StatusForbidden, `{"message": "Resource not accessible by integration"}`),
				),
				mock.WithRequestMatchHandler(
					mock.PutReposContentsByOwnerByRepoByPath,
					failOnCall(t),
				),
			),
			requestArgs: map[string]any{
				"repo":    "notes",
				"path":    "README.md",
				"content": "x",
				"message": "m",
			},
			expectError:    true,
			expectedErrMsg: "GitHub API error (403): Resource not accessible by integration",
		},
		{
			name: "directory path is refused",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatch(mock.GetReposContentsByOwnerByRepoByPath, []*github.RepositoryContent{}),
				mock.WithRequestMatchHandler(
					mock.PutReposContentsByOwnerByRepoByPath,
					failOnCall(t),
				),
			),
			requestArgs: map[string]any{
				"repo":    "notes",
				"path":    "docs",
				"content": "x",
				"message": "m",
			},
			expectedText: "Path is a directory, not a file: docs",
		},
		{
			name: "conflict on update",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatch(mock.GetReposContentsByOwnerByRepoByPath, existing),
				mock.WithRequestMatchHandler(
					mock.PutReposContentsByOwnerByRepoByPath,
					mockResponse(t, http.StatusConflict, `{"message": "README.md does not match abc123"}`),
				),
			),
			requestArgs: map[string]any{
				"repo":    "notes",
				"path":    "README.md",
				"content": "x",
				"message": "m",
			},
			expectError:    true,
			expectedErrMsg: "GitHub API error (409): README.md does not match abc123",
		},
		{
			name:         "missing message",
			mockedClient: mock.NewMockedHTTPClient(),
			requestArgs: map[string]any{
				"repo":    "notes",
				"path":    "README.md",
				"content": "x",
			},
			expectError:    true,
			expectedErrMsg: "Error: missing required parameter: message",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, handler := WriteFile(stubConnector(tc.mockedClient), translations.NullTranslationHelper)

			result, err := handler(context.Background(), createMCPRequest(tc.requestArgs))
			require.NoError(t, err)

			if tc.expectError {
				errorContent := getErrorResult(t, result)
				assert.Equal(t, tc.expectedErrMsg, errorContent.Text)
				return
			}

			textContent := getTextResult(t, result)
			assert.Equal(t, tc.expectedText, textContent.Text)
		})
	}
}

func Test_CreateRepository(t *testing.T) {
	tool, _ := CreateRepository(stubConnector(http.DefaultClient), translations.NullTranslationHelper)

	assert.Equal(t, "create_repository", tool.Name)
	assert.Contains(t, tool.InputSchema.Properties, "private")
	assert.Contains(t, tool.InputSchema.Properties, "auto_init")
	assert.ElementsMatch(t, tool.InputSchema.Required, []string{"name"})
	assert.False(t, *tool.Annotations.IdempotentHint)

	created := &github.Repository{
		FullName: github.Ptr("EvieHwang/scratch"),
		Private:  github.Ptr(true),
		HTMLURL:  github.Ptr("https://github.com/EvieHwang/scratch"),
	}

	expectBodyFields := func(expected map[string]any, absent ...string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			for k, v := range expected {
				assert.Equal(t, v, body[k], "field %s", k)
			}
			for _, k := range absent {
				assert.NotContains(t, body, k)
			}
			mockResponse(t, http.StatusCreated, created)(w, r)
		}
	}

	tests := []struct {
		name           string
		mockedClient   *http.Client
		requestArgs    map[string]any
		expectError    bool
		expectedText   string
		expectedErrMsg string
	}{
		{
			name: "defaults to private without auto init",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					mock.PostUserRepos,
					expectBodyFields(map[string]any{
						"name":      "scratch",
						"private":   true,
						"auto_init": false,
					}, "description"),
				),
			),
			requestArgs:  map[string]any{"name": "scratch"},
			expectedText: "Created repository: EvieHwang/scratch\nVisibility: private\nURL: https://github.com/EvieHwang/scratch",
		},
		{
			name: "explicit options",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					mock.PostUserRepos,
					expectBodyFields(map[string]any{
						"name":        "scratch",
						"description": "Throwaway",
						"private":     false,
						"auto_init":   true,
					}),
				),
			),
			requestArgs: map[string]any{
				"name":        "scratch",
				"description": "Throwaway",
				"private":     false,
				"auto_init":   true,
			},
			expectedText: "Created repository: EvieHwang/scratch",
		},
		{
			name: "null private keeps the private default",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					mock.PostUserRepos,
					expectBodyFields(map[string]any{
						"name":      "scratch",
						"private":   true,
						"auto_init": false,
					}),
				),
			),
			requestArgs:  map[string]any{"name": "scratch", "private": nil, "auto_init": nil},
			expectedText: "Visibility: private",
		},
		{
			name: "name already taken",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					mock.PostUserRepos,
					mockResponse(t, http.StatusUnprocessableEntity, `{"message": "Repository creation failed."}`),
				),
			),
			requestArgs:    map[string]any{"name": "notes"},
			expectError:    true,
			expectedErrMsg: "GitHub API error (422): Repository creation failed.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, handler := CreateRepository(stubConnector(tc.mockedClient), translations.NullTranslationHelper)

			result, err := handler(context.Background(), createMCPRequest(tc.requestArgs))
			require.NoError(t, err)

			if tc.expectError {
				errorContent := getErrorResult(t, result)
				assert.Equal(t, tc.expectedErrMsg, errorContent.Text)
				return
			}

			textContent := getTextResult(t, result)
			assert.Contains(t, textContent.Text, tc.expectedText)
		})
	}
}

func Test_CreateBranch(t *testing.T) {
	tool, _ := CreateBranch(stubConnector(http.DefaultClient), translations.NullTranslationHelper)

	assert.Equal(t, "create_branch", tool.Name)
	assert.Contains(t, tool.InputSchema.Properties, "from_branch")
	assert.ElementsMatch(t, tool.InputSchema.Required, []string{"repo", "branch"})

	branchAt := func(name, sha string) *github.Reference {
		return &github.Reference{
			Ref:    github.Ptr("refs/heads/" + name),
			Object: &github.GitObject{SHA: github.Ptr(sha), Type: github.Ptr("commit")},
		}
	}
	createdRef := &github.Reference{
		Ref:    github.Ptr("refs/heads/feature"),
		Object: &github.GitObject{SHA: github.Ptr("abc123")},
	}

	tests := []struct {
		name           string
		mockedClient   *http.Client
		requestArgs    map[string]any
		expectError    bool
		expectedText   string
		expectedErrMsg string
	}{
		{
			name: "from an explicit branch",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					getBranchRef,
					http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						assert.Equal(t, "/repos/EvieHwang/notes/git/ref/heads/dev", r.URL.Path)
						mockResponse(t, http.StatusOK, branchAt("dev", "abc123"))(w, r)
					}),
				),
				mock.WithRequestMatchHandler(
					mock.PostReposGitRefsByOwnerByRepo,
					expectRequestBody(t, map[string]any{
						"ref": "refs/heads/feature",
						"sha": "abc123",
					}).andThen(
						mockResponse(t, http.StatusCreated, createdRef),
					),
				),
			),
			requestArgs: map[string]any{
				"repo":        "notes",
				"branch":      "feature",
				"from_branch": "dev",
			},
			expectedText: "Created branch 'feature' from 'dev' in EvieHwang/notes",
		},
		{
			name: "from the default branch",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatch(mock.GetReposByOwnerByRepo, &github.Repository{DefaultBranch: github.Ptr("trunk")}),
				mock.WithRequestMatch(getBranchRef, branchAt("trunk", "fff000")),
				mock.WithRequestMatchHandler(
					mock.PostReposGitRefsByOwnerByRepo,
					expectRequestBody(t, map[string]any{
						"ref": "refs/heads/feature",
						"sha": "fff000",
					}).andThen(
						mockResponse(t, http.StatusCreated, createdRef),
					),
				),
			),
			requestArgs: map[string]any{
				"repo":   "notes",
				"branch": "feature",
			},
			expectedText: "Created branch 'feature' from 'trunk' in EvieHwang/notes",
		},
		{
			name: "branch already exists",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatch(getBranchRef, branchAt("main", "abc123")),
				mock.WithRequestMatchHandler(
					mock.PostReposGitRefsByOwnerByRepo,
					mockResponse(t, http.StatusUnprocessableEntity, `{"message": "Reference already exists"}`),
				),
			),
			requestArgs: map[string]any{
				"repo":        "notes",
				"branch":      "feature",
				"from_branch": "main",
			},
			expectError:    true,
			expectedErrMsg: "GitHub API error (422): Reference already exists",
		},
		{
			name: "source branch missing",
			mockedClient: mock.NewMockedHTTPClient(
				mock.WithRequestMatchHandler(
					getBranchRef,
					mockResponse(t, http.StatusNotFound, `{"message": "Branch not found"}`),
				),
			),
			requestArgs: map[string]any{
				"repo":        "notes",
				"branch":      "feature",
				"from_branch": "gone",
			},
			expectError:    true,
			expectedErrMsg: "GitHub API error (404): Branch not found",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, handler := CreateBranch(stubConnector(tc.mockedClient), translations.NullTranslationHelper)

			result, err := handler(context.Background(), createMCPRequest(tc.requestArgs))
			require.NoError(t, err)

			if tc.expectError {
				errorContent := getErrorResult(t, result)
				assert.Equal(t, tc.expectedErrMsg, errorContent.Text)
				return
			}

			textContent := getTextResult(t, result)
			assert.Equal(t, tc.expectedText, textContent.Text)
		})
	}
}

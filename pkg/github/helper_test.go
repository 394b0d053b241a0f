package github

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConnector builds a real ConnectionProvider whose traffic goes to
// httpClient's transport, typically a go-github-mock backend.
func stubConnector(httpClient *http.Client) *ConnectionProvider {
	return NewConnectionProvider(StaticToken("test-token"), WithTransport(httpClient.Transport))
}

type requestMatcher struct {
	t                   *testing.T
	expectedQueryParams map[string]string
	expectedRequestBody any
	partialBody         bool
}

// expectQueryParams asserts that the request carries exactly these query parameters.
func expectQueryParams(t *testing.T, params map[string]string) *requestMatcher {
	return &requestMatcher{t: t, expectedQueryParams: params}
}

// expectRequestBody asserts that the JSON request body decodes to body.
func expectRequestBody(t *testing.T, body any) *requestMatcher {
	return &requestMatcher{t: t, expectedRequestBody: body}
}

// expectRequestBodyFields asserts only the listed top-level JSON fields.
func expectRequestBodyFields(t *testing.T, fields map[string]any) *requestMatcher {
	return &requestMatcher{t: t, expectedRequestBody: fields, partialBody: true}
}

func (m *requestMatcher) andThen(responseHandler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.expectedQueryParams != nil {
			query := r.URL.Query()
			assert.Len(m.t, query, len(m.expectedQueryParams))
			for k, v := range m.expectedQueryParams {
				assert.Equal(m.t, v, query.Get(k), "query parameter %s", k)
			}
		}

		if m.expectedRequestBody != nil {
			raw, err := io.ReadAll(r.Body)
			require.NoError(m.t, err)

			var actual any
			require.NoError(m.t, json.Unmarshal(raw, &actual))

			expected, err := json.Marshal(m.expectedRequestBody)
			require.NoError(m.t, err)
			var expectedDecoded any
			require.NoError(m.t, json.Unmarshal(expected, &expectedDecoded))

			if m.partialBody {
				actualFields, ok := actual.(map[string]any)
				require.True(m.t, ok, "request body is not a JSON object")
				for k, v := range expectedDecoded.(map[string]any) {
					assert.Equal(m.t, v, actualFields[k], "request body field %s", k)
				}
			} else {
				assert.Equal(m.t, expectedDecoded, actual)
			}
		}

		responseHandler(w, r)
	}
}

func mockResponse(t *testing.T, code int, body any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if s, ok := body.(string); ok {
			_, _ = w.Write([]byte(s))
			return
		}
		b, err := json.Marshal(body)
		require.NoError(t, err)
		_, _ = w.Write(b)
	}
}

// failOnCall fails the test if any request reaches the backend.
func failOnCall(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// createMCPRequest is a helper function to create a MCP request with the given arguments.
func createMCPRequest(args map[string]any) mcp.CallToolRequest {
	var request mcp.CallToolRequest
	request.Params.Arguments = args
	return request
}

func getTextResult(t *testing.T, result *mcp.CallToolResult) mcp.TextContent {
	t.Helper()
	require.NotNil(t, result)
	require.False(t, result.IsError, "unexpected error result: %v", result.Content)
	return requireTextContent(t, result)
}

func getErrorResult(t *testing.T, result *mcp.CallToolResult) mcp.TextContent {
	t.Helper()
	require.NotNil(t, result)
	require.True(t, result.IsError, "expected an error result")
	return requireTextContent(t, result)
}

func requireTextContent(t *testing.T, result *mcp.CallToolResult) mcp.TextContent {
	t.Helper()
	require.Len(t, result.Content, 1)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected content to be of type TextContent")
	assert.Equal(t, "text", textContent.Type)
	return textContent
}

package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	ghErrors "github.com/EvieHwang/eviebot-mcp-github/pkg/errors"
	"github.com/google/go-github/v69/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

const (
	// DefaultOwner owns every repository referenced by bare name.
	DefaultOwner = "EvieHwang"

	// TokenEnvVar names the setting that holds the access token.
	TokenEnvVar = "GITHUB_TOKEN"

	// HostEnvVar names the setting that points at a GitHub Enterprise host.
	HostEnvVar = "GITHUB_HOST"
)

// TokenProvider returns the current GitHub token, or "" when none is
// configured. It is consulted when the connection is first needed, not when
// the server starts.
type TokenProvider func() string

// StaticToken returns a TokenProvider that always yields token.
func StaticToken(token string) TokenProvider {
	return func() string { return token }
}

// Connector is everything a tool needs to reach GitHub on behalf of the
// configured account.
type Connector interface {
	Client(ctx context.Context) (*github.Client, error)
	GQLClient(ctx context.Context) (*githubv4.Client, error)
	ResolveRepository(name string) string
	CurrentUserRepository(name string) string
	Owner() string
}

type connection struct {
	rest *github.Client
	gql  *githubv4.Client
}

// ConnectionProvider lazily creates one authenticated connection and hands
// the same one to every tool call for the rest of the process.
type ConnectionProvider struct {
	owner     string
	host      string
	userAgent string
	token     TokenProvider
	transport http.RoundTripper

	mu   sync.Mutex
	conn *connection
}

type ConnectionOption func(*ConnectionProvider)

// WithOwner sets the account that owns bare repository names.
func WithOwner(owner string) ConnectionOption {
	return func(p *ConnectionProvider) {
		if owner != "" {
			p.owner = owner
		}
	}
}

// WithHost targets a GitHub Enterprise Server, e.g. "https://ghe.example.com".
func WithHost(host string) ConnectionOption {
	return func(p *ConnectionProvider) {
		p.host = host
	}
}

// WithTransport sets the round tripper under the authentication layer.
func WithTransport(transport http.RoundTripper) ConnectionOption {
	return func(p *ConnectionProvider) {
		p.transport = transport
	}
}

// WithUserAgentVersion tags API requests with the server version.
func WithUserAgentVersion(version string) ConnectionOption {
	return func(p *ConnectionProvider) {
		p.userAgent = fmt.Sprintf("eviebot-mcp-github/%s", version)
	}
}

func NewConnectionProvider(token TokenProvider, opts ...ConnectionOption) *ConnectionProvider {
	p := &ConnectionProvider{
		owner:     DefaultOwner,
		userAgent: "eviebot-mcp-github",
		token:     token,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Client returns the shared REST client, creating it on first use.
func (p *ConnectionProvider) Client(_ context.Context) (*github.Client, error) {
	conn, err := p.connect()
	if err != nil {
		return nil, err
	}
	return conn.rest, nil
}

// GQLClient returns the shared GraphQL client, creating it on first use.
func (p *ConnectionProvider) GQLClient(_ context.Context) (*githubv4.Client, error) {
	conn, err := p.connect()
	if err != nil {
		return nil, err
	}
	return conn.gql, nil
}

// connect never caches a failure, so a missing token keeps producing the
// same configuration error on every call.
func (p *ConnectionProvider) connect() (*connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		return p.conn, nil
	}

	var token string
	if p.token != nil {
		token = strings.TrimSpace(p.token())
	}
	if token == "" {
		return nil, ghErrors.NewMissingSettingError(TokenEnvVar, "Cannot access GitHub API.")
	}

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   p.transport,
		},
	}

	conn, err := newConnection(httpClient, p.host, p.userAgent)
	if err != nil {
		return nil, err
	}
	p.conn = conn
	return conn, nil
}

func newConnection(httpClient *http.Client, host, userAgent string) (*connection, error) {
	rest := github.NewClient(httpClient)
	rest.UserAgent = userAgent

	if isDotCom(host) {
		return &connection{
			rest: rest,
			gql:  githubv4.NewClient(httpClient),
		}, nil
	}

	u, err := url.Parse(strings.TrimSpace(host))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, ghErrors.NewConfigurationError(HostEnvVar,
			fmt.Sprintf("%s must be an absolute URL such as https://github.example.com, got %q", HostEnvVar, host))
	}
	base := strings.TrimSuffix(u.String(), "/")

	rest, err = rest.WithEnterpriseURLs(base+"/api/v3/", base+"/api/uploads/")
	if err != nil {
		return nil, fmt.Errorf("failed to configure enterprise URLs: %w", err)
	}

	return &connection{
		rest: rest,
		gql:  githubv4.NewEnterpriseClient(base+"/api/graphql", httpClient),
	}, nil
}

func isDotCom(host string) bool {
	switch strings.TrimSuffix(strings.TrimSpace(host), "/") {
	case "", "github.com", "https://github.com", "https://api.github.com":
		return true
	}
	return false
}

// ResolveRepository returns name unchanged when it already carries an owner,
// otherwise it qualifies it with the default owner. Resolving twice is the
// same as resolving once.
func (p *ConnectionProvider) ResolveRepository(name string) string {
	if strings.Contains(name, "/") {
		return name
	}
	return p.owner + "/" + name
}

// CurrentUserRepository applies the same rule as ResolveRepository. Search
// uses it to scope a query without fetching the repository.
func (p *ConnectionProvider) CurrentUserRepository(name string) string {
	return p.ResolveRepository(name)
}

func (p *ConnectionProvider) Owner() string {
	return p.owner
}

// splitRepository splits a resolved "owner/name" reference.
func splitRepository(fullName string) (owner string, repo string, err error) {
	owner, repo, found := strings.Cut(fullName, "/")
	if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository %q: expected \"name\" or \"owner/name\"", fullName)
	}
	return owner, repo, nil
}

// Package github fetches public profile statistics from the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/badgedex/internal/model"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com"

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 15 * time.Second

var (
	// ErrUserNotFound means the user does not exist or the name is not a valid login.
	ErrUserNotFound = errors.New("user not found")
	// ErrFetchFailed covers every other failure while reading statistics.
	ErrFetchFailed = errors.New("failed to fetch user profile")
)

var errNotFound = errors.New("not found")

var loginPattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,37}[A-Za-z0-9])?$`)

// Client reads user statistics. It never retries.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithToken sends a bearer token with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for degraded sub-steps.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient returns a client for the public API unless overridden.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ValidLogin reports whether name could be a GitHub login.
func ValidLogin(name string) bool {
	return loginPattern.MatchString(name) && !strings.Contains(name, "--")
}

// UserMessage maps a fetch error to the text shown to the user.
func UserMessage(err error) string {
	if errors.Is(err, ErrUserNotFound) {
		return "User not found"
	}
	return "Failed to fetch user profile"
}

type userResponse struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
}

type searchResponse struct {
	TotalCount int `json:"total_count"`
}

type repoResponse struct {
	StargazersCount int `json:"stargazers_count"`
}

// FetchUserStats reads the profile, then the merged PR count and the star sum
// concurrently. Only the star sum may degrade, to zero.
func (c *Client) FetchUserStats(ctx context.Context, username string) (model.UserStats, error) {
	username = strings.TrimSpace(username)
	if !ValidLogin(username) {
		return model.UserStats{}, fmt.Errorf("invalid login %q: %w", username, ErrUserNotFound)
	}
	login := url.PathEscape(username)

	var user userResponse
	if err := c.getJSON(ctx, "/users/"+login, nil, &user); err != nil {
		if errors.Is(err, errNotFound) {
			return model.UserStats{}, fmt.Errorf("%s: %w", username, ErrUserNotFound)
		}
		return model.UserStats{}, err
	}
	stats := model.UserStats{
		Username:    user.Login,
		DisplayName: user.Name,
		AvatarURL:   user.AvatarURL,
		PublicRepos: user.PublicRepos,
		Followers:   user.Followers,
	}
	if stats.Username == "" {
		stats.Username = username
	}
	if stats.DisplayName == "" {
		stats.DisplayName = stats.Username
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var search searchResponse
		query := url.Values{
			"q":        {fmt.Sprintf("author:%s type:pr is:merged", stats.Username)},
			"per_page": {"1"},
		}
		if err := c.getJSON(gctx, "/search/issues", query, &search); err != nil {
			return fmt.Errorf("failed to count merged pull requests: %w", asFetchFailed(err))
		}
		stats.MergedPRs = search.TotalCount
		return nil
	})
	g.Go(func() error {
		var repos []repoResponse
		query := url.Values{"per_page": {"100"}, "type": {"owner"}}
		if err := c.getJSON(gctx, "/users/"+login+"/repos", query, &repos); err != nil {
			c.logger.Warn("star count unavailable", zap.String("user", stats.Username), zap.Error(err))
			return nil
		}
		total := 0
		for _, r := range repos {
			total += r.StargazersCount
		}
		stats.TotalStars = total
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.UserStats{}, err
	}
	return stats, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w: %w", err, ErrFetchFailed)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "badgedex")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w: %w", err, ErrFetchFailed)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, errNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("unexpected status %s for %s: %w", resp.Status, path, ErrFetchFailed)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w: %w", path, err, ErrFetchFailed)
	}
	return nil
}

func asFetchFailed(err error) error {
	if errors.Is(err, ErrFetchFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", err, ErrFetchFailed)
}

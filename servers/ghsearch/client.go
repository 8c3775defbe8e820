package ghsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.github.com"

// maxErrorBodyBytes bounds how much of an error response body is reported.
const maxErrorBodyBytes = 512

// apiError is a non-2xx response from the GitHub API.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("GitHub API returned %d: %s", e.Status, e.Body)
}

// retryable reports whether the request should be retried. Rate-limit and
// server-side failures are retryable, as are transport errors. Anything
// else, such as a decode failure on a successful response, is not.
func retryable(err error) bool {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// UserResult is one row of a user search.
type UserResult struct {
	Login string  `json:"login"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// UserProfile is a single user's public profile.
type UserProfile struct {
	Login       string `json:"login"`
	Name        string `json:"name,omitempty"`
	URL         string `json:"url"`
	Location    string `json:"location,omitempty"`
	Bio         string `json:"bio,omitempty"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
}

// Client talks to the GitHub REST API with client-side rate limiting and
// bounded retries.
type Client struct {
	http    *http.Client
	base    string
	token   string
	limiter *rate.Limiter
}

// ClientConfig configures a GitHub API client.
type ClientConfig struct {
	// BaseURL overrides the GitHub API endpoint, mainly for tests.
	BaseURL string
	// Token is the optional GITHUB_TOKEN for authenticated requests.
	Token string
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
	// RequestsPerSecond bounds outbound calls. Defaults to the
	// unauthenticated search budget of 10 requests per minute.
	RequestsPerSecond float64
}

// NewClient creates a GitHub API client.
func NewClient(cfg ClientConfig) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10.0 / 60.0
	}
	return &Client{
		http:    httpClient,
		base:    strings.TrimRight(base, "/"),
		token:   cfg.Token,
		limiter: rate.NewLimiter(rate.Limit(rps), 3),
	}
}

// SearchUsers searches public users by login fragment and/or location.
func (c *Client) SearchUsers(ctx context.Context, name, location string, perPage int) ([]UserResult, error) {
	var parts []string
	if name != "" {
		parts = append(parts, name+" in:login")
	}
	if location != "" {
		parts = append(parts, "location:"+location)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("provide at least one of name or location")
	}

	query := url.Values{}
	query.Set("q", strings.Join(parts, " "))
	query.Set("per_page", strconv.Itoa(perPage))

	var payload struct {
		Items []struct {
			Login   string  `json:"login"`
			HTMLURL string  `json:"html_url"`
			Score   float64 `json:"score"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/search/users?"+query.Encode(), &payload); err != nil {
		return nil, err
	}

	results := make([]UserResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		results = append(results, UserResult{
			Login: item.Login,
			URL:   item.HTMLURL,
			Score: item.Score,
		})
	}
	return results, nil
}

// GetUser fetches a single user's public profile.
func (c *Client) GetUser(ctx context.Context, login string) (*UserProfile, error) {
	if login == "" {
		return nil, fmt.Errorf("login is required")
	}

	var payload struct {
		Login       string `json:"login"`
		Name        string `json:"name"`
		HTMLURL     string `json:"html_url"`
		Location    string `json:"location"`
		Bio         string `json:"bio"`
		PublicRepos int    `json:"public_repos"`
		Followers   int    `json:"followers"`
	}
	if err := c.get(ctx, "/users/"+url.PathEscape(login), &payload); err != nil {
		return nil, err
	}

	return &UserProfile{
		Login:       payload.Login,
		Name:        payload.Name,
		URL:         payload.HTMLURL,
		Location:    payload.Location,
		Bio:         payload.Bio,
		PublicRepos: payload.PublicRepos,
		Followers:   payload.Followers,
	}, nil
}

// get performs a rate-limited GET with bounded retries and decodes the
// JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "application/vnd.github.v3+json")
			if c.token != "" {
				req.Header.Set("Authorization", "token "+c.token)
			}

			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
				return &apiError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
			}

			return json.NewDecoder(resp.Body).Decode(out)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(retryable),
		retry.LastErrorOnly(true),
	)
}

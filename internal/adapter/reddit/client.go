// Package reddit implements the platform collaborator ports against the
// reddit OAuth API: the comment and submission feeds, the write actions,
// wiki storage, and the subreddit directory lookups.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/rNothingTech/NothingTechBot/internal/platform/version"
)

const (
	defaultOAuthURL = "https://www.reddit.com/api/v1/access_token"
	defaultAPIURL   = "https://oauth.reddit.com"

	// tokenSlack refreshes the access token this long before its actual
	// expiry so in-flight requests never race the deadline.
	tokenSlack = 60 * time.Second
)

// Credentials is the script-app identity the bot authenticates as.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	// OTP is appended to the password for accounts with two-factor
	// auth enabled; empty when 2FA is off.
	OTP string
	// UserAgent overrides the default descriptor; reddit requires a
	// unique, descriptive one per bot.
	UserAgent string
}

// Client is the shared transport under all reddit adapters: one OAuth
// token, one rate limiter, one retrying HTTP client.
type Client struct {
	http      *retryablehttp.Client
	limiter   *rate.Limiter
	clock     clockwork.Clock
	creds     Credentials
	userAgent string

	oauthURL string // overridable for tests
	apiURL   string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(creds Credentials, clock clockwork.Clock) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 3
	httpClient.Logger = nil

	userAgent := creds.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent(creds.Username)
	}

	return &Client{
		http: httpClient,
		// reddit allows 60 requests per minute for script apps
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		clock:     clock,
		creds:     creds,
		userAgent: userAgent,
		oauthURL:  defaultOAuthURL,
		apiURL:    defaultAPIURL,
	}
}

// apiError is a non-2xx response from the API.
type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("reddit api status %d: %s", e.StatusCode, e.Body)
}

// IsStatus reports whether err is an API error with the given status.
func IsStatus(err error, status int) bool {
	var ae *apiError
	return errors.As(err, &ae) && ae.StatusCode == status
}

// ensureToken runs the password grant when no valid token is cached.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.clock.Now().Add(tokenSlack).Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	password := c.creds.Password
	if c.creds.OTP != "" {
		password += ":" + c.creds.OTP
	}
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", c.creds.Username)
	form.Set("password", password)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.oauthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token grant: %w", &apiError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if result.Error != "" || result.AccessToken == "" {
		return "", fmt.Errorf("token grant rejected: %q", result.Error)
	}

	c.accessToken = result.AccessToken
	c.tokenExpiry = c.clock.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

// get performs a rate-limited authenticated GET and decodes the JSON
// response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.call(ctx, http.MethodGet, path, query, nil, out)
}

// postForm performs a rate-limited authenticated form POST, decoding the
// response into out when out is non-nil.
func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.call(ctx, http.MethodPost, path, nil, form, out)
}

func (c *Client) call(ctx context.Context, method, path string, query, form url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	u := c.apiURL + path
	if query == nil {
		query = url.Values{}
	}
	query.Set("raw_json", "1")
	u += "?" + query.Encode()

	var payload io.Reader
	if form != nil {
		form.Set("api_type", "json")
		payload = strings.NewReader(form.Encode())
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", path, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		// token revoked out of band; drop it so the next call re-grants
		c.mu.Lock()
		c.accessToken = ""
		c.mu.Unlock()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %w", method, path, &apiError{StatusCode: resp.StatusCode, Body: truncate(string(body), 256)})
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

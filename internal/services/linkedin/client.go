package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vidscribe/internal/services"
)

const (
	defaultBaseURL     = "https://api.linkedin.com/v2"
	defaultHTTPTimeout = 15 * time.Second
	restliVersion      = "2.0.0"
)

// Config holds LinkedIn API connection settings.
type Config struct {
	AccessToken    string
	BaseURL        string
	TimeoutSeconds int
}

// Client talks to the LinkedIn REST API for sharing transcripts as posts.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a LinkedIn client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.AccessToken = strings.TrimSpace(cfg.AccessToken)
	if cfg.AccessToken == "" {
		return nil, errors.New("linkedin: access token required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Profile identifies the authenticated member.
type Profile struct {
	ID        string `json:"id"`
	FirstName string `json:"localizedFirstName"`
	LastName  string `json:"localizedLastName"`
}

// URN returns the member URN used as post author.
func (p Profile) URN() string {
	return "urn:li:person:" + p.ID
}

// DisplayName returns the member's full name.
func (p Profile) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Profile fetches the authenticated member's profile.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	var profile Profile
	body, err := c.do(ctx, http.MethodGet, "/me", nil)
	if err != nil {
		return profile, fmt.Errorf("linkedin profile: %w", err)
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		return profile, fmt.Errorf("linkedin profile: decode: %w", err)
	}
	if profile.ID == "" {
		return profile, errors.New("linkedin profile: response missing member id")
	}
	return profile, nil
}

// CreatePost publishes a text share on behalf of the given author URN and
// returns the created post ID.
func (c *Client) CreatePost(ctx context.Context, authorURN, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("linkedin post: text required")
	}
	if strings.TrimSpace(authorURN) == "" {
		return "", errors.New("linkedin post: author urn required")
	}

	payload := map[string]any{
		"author":         authorURN,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary": map[string]any{
					"text": text,
				},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	body, err := c.do(ctx, http.MethodPost, "/ugcPosts", payload)
	if err != nil {
		return "", fmt.Errorf("linkedin post: %w", err)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("linkedin post: decode: %w", err)
	}
	if created.ID == "" {
		return "", errors.New("linkedin post: response missing post id")
	}
	return created.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("X-Restli-Protocol-Version", restliVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "linkedin", method+" "+path, "http error", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "linkedin", method+" "+path, "read body", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.Wrap(services.ErrExternalTool, "linkedin", method+" "+path,
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	return body, nil
}

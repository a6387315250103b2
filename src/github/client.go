package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"versioning-backend/src/config"
	"versioning-backend/src/logger"
)

// apiVersion pins the GitHub REST API version header.
const apiVersion = "2022-11-28"

const defaultBaseURL = "https://api.github.com"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 10 << 20

// Client is an authenticated handle to the GitHub REST API backed by App
// installation credentials.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	auth         *appAuth
	clientSecret string
	logger       logger.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     logger.Logger
	now        func() time.Time
}

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) { o.httpClient = httpClient }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(log logger.Logger) Option {
	return func(o *options) { o.logger = log }
}

// WithClock overrides the time source used for JWT claims and token expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Init builds a Client from App credentials and validates them with one
// GET /app request, whose response is logged at debug level. Missing or
// malformed credentials return a *config.ConfigError before any request is
// made; a failed exchange returns an *AuthError. Nothing is retried.
func Init(ctx context.Context, cfg config.GitHubConfig, opts ...Option) (*Client, error) {
	client, err := NewClient(cfg, opts...)
	if err != nil {
		return nil, err
	}

	app, err := client.GetApp(ctx)
	if err != nil {
		return nil, &AuthError{Op: "get app", Err: err}
	}

	if appJSON, err := json.Marshal(app); err != nil {
		client.logger.Debug("app parameters %+v", *app)
	} else {
		client.logger.Debug("app parameters %s", appJSON)
	}

	return client, nil
}

// NewClient builds a Client without contacting GitHub.
func NewClient(cfg config.GitHubConfig, opts ...Option) (*Client, error) {
	o := options{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.NewSilentLogger(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "https://") {
		return nil, &config.ConfigError{Field: "github.base_url", Reason: fmt.Sprintf("must use HTTPS (got %q)", baseURL)}
	}

	auth, err := newAppAuth(cfg.AppID, cfg.InstallationID, []byte(cfg.PrivateKey), o.now)
	if err != nil {
		return nil, &config.ConfigError{Field: "github.private_key", Reason: "malformed", Err: err}
	}
	auth.httpClient = o.httpClient
	auth.baseURL = baseURL

	return &Client{
		baseURL:      baseURL,
		httpClient:   o.httpClient,
		auth:         auth,
		clientSecret: cfg.ClientSecret,
		logger:       o.logger,
	}, nil
}

// ClientSecret returns the App's OAuth client secret for components that
// drive the OAuth web flow.
func (client *Client) ClientSecret() string {
	return client.clientSecret
}

// GetApp returns the authenticated App's metadata. Authenticates with the
// App JWT, not an installation token.
func (client *Client) GetApp(ctx context.Context) (*App, error) {
	authorization, err := client.auth.appAuthorization()
	if err != nil {
		return nil, err
	}

	var app App
	if err := client.send(ctx, http.MethodGet, "/app", authorization, nil, &app); err != nil {
		return nil, fmt.Errorf("getting app info: %w", err)
	}
	return &app, nil
}

// Do issues an installation-authenticated request. requestBody is JSON
// encoded when non-nil and the response is decoded into result when non-nil.
func (client *Client) Do(ctx context.Context, method, path string, requestBody, result any) error {
	authorization, err := client.auth.installationAuthorization(ctx)
	if err != nil {
		return err
	}
	return client.send(ctx, method, path, authorization, requestBody, result)
}

func (client *Client) send(ctx context.Context, method, path, authorization string, requestBody, result any) error {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("github: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("github: creating request: %w", err)
	}
	request.Header.Set("Authorization", authorization)
	request.Header.Set("Accept", "application/vnd.github+json")
	request.Header.Set("X-GitHub-Api-Version", apiVersion)
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("github: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("github: reading response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return parseAPIError(response.StatusCode, body)
	}

	if result == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("github: decoding response: %w", err)
	}
	return nil
}

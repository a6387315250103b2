package github

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenRotationMargin is how far before expiry the installation token is
// replaced. GitHub installation tokens live for one hour.
const tokenRotationMargin = 5 * time.Minute

// jwtLifetime is the validity of App JWTs. GitHub rejects anything over ten minutes.
const jwtLifetime = 10 * time.Minute

// appAuth signs App JWTs and exchanges them for installation tokens.
type appAuth struct {
	appID          int64
	installationID int64
	privateKey     *rsa.PrivateKey
	now            func() time.Time

	httpClient *http.Client
	baseURL    string

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func newAppAuth(appID, installationID int64, privateKeyPEM []byte, now func() time.Time) (*appAuth, error) {
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	return &appAuth{
		appID:          appID,
		installationID: installationID,
		privateKey:     privateKey,
		now:            now,
	}, nil
}

// generateJWT creates an RS256 App JWT. iat is backdated 60s for clock skew.
func (auth *appAuth) generateJWT() (string, error) {
	now := auth.now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-60 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(jwtLifetime)),
		Issuer:    strconv.FormatInt(auth.appID, 10),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(auth.privateKey)
	if err != nil {
		return "", fmt.Errorf("signing JWT: %w", err)
	}
	return signed, nil
}

// appAuthorization returns the header value for App-level endpoints.
func (auth *appAuth) appAuthorization() (string, error) {
	signed, err := auth.generateJWT()
	if err != nil {
		return "", err
	}
	return "Bearer " + signed, nil
}

// installationAuthorization returns the header value for installation
// endpoints, rotating the cached token when it is near expiry.
func (auth *appAuth) installationAuthorization(ctx context.Context) (string, error) {
	auth.mu.Lock()
	defer auth.mu.Unlock()

	if auth.token != "" && auth.now().Before(auth.expiresAt.Add(-tokenRotationMargin)) {
		return "token " + auth.token, nil
	}

	token, expiresAt, err := auth.exchange(ctx)
	if err != nil {
		return "", err
	}

	auth.token = token
	auth.expiresAt = expiresAt
	return "token " + token, nil
}

// exchange trades a fresh App JWT for an installation token.
// Must be called with auth.mu held.
func (auth *appAuth) exchange(ctx context.Context) (string, time.Time, error) {
	authorization, err := auth.appAuthorization()
	if err != nil {
		return "", time.Time{}, &AuthError{Op: "generate JWT", Err: err}
	}

	url := auth.baseURL + "/app/installations/" + strconv.FormatInt(auth.installationID, 10) + "/access_tokens"
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", time.Time{}, &AuthError{Op: "exchange installation token", Err: err}
	}
	request.Header.Set("Authorization", authorization)
	request.Header.Set("Accept", "application/vnd.github+json")
	request.Header.Set("X-GitHub-Api-Version", apiVersion)

	response, err := auth.httpClient.Do(request)
	if err != nil {
		return "", time.Time{}, &AuthError{Op: "exchange installation token", Err: err}
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return "", time.Time{}, &AuthError{Op: "exchange installation token", Err: err}
	}
	if response.StatusCode != http.StatusCreated {
		return "", time.Time{}, &AuthError{Op: "exchange installation token", Err: parseAPIError(response.StatusCode, body)}
	}

	var result struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", time.Time{}, &AuthError{Op: "decode installation token", Err: err}
	}
	if result.Token == "" {
		return "", time.Time{}, &AuthError{Op: "exchange installation token", Err: fmt.Errorf("empty token in response")}
	}

	return result.Token, result.ExpiresAt, nil
}

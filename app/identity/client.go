package identity

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	signInFailed  = "Sign-in failed. Please try again."
	signUpFailed  = "Sign-up failed. Please try again."
	signOutFailed = "Failed to log out. Please try again."
)

var _ Provider = (*Client)(nil)

// Client talks to an Nhost-compatible authentication API.
type Client struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type sessionResponse struct {
	Session *Session `json:"session"`
}

func NewClient(baseURL, userAgent string, timeout time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		timeout:    timeout,
		httpClient: httpClient,
	}
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}

	var resp sessionResponse
	if err := c.post(ctx, "/signin/email-password", body, &resp, signInFailed); err != nil {
		return nil, err
	}

	if resp.Session == nil {
		return nil, &AuthError{
			Status:  http.StatusUnauthorized,
			Code:    "unverified-user",
			Message: "Please verify your email before logging in. Check your inbox for the verification link.",
		}
	}

	slog.Debug("Signed in", "user_id", resp.Session.User.ID)

	return resp.Session, nil
}

func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*SignUpResult, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"options": map[string]any{
			"displayName": displayName,
		},
	}

	var resp sessionResponse
	if err := c.post(ctx, "/signup/email-password", body, &resp, signUpFailed); err != nil {
		return nil, err
	}

	return &SignUpResult{
		Session:                resp.Session,
		NeedsEmailVerification: resp.Session == nil,
	}, nil
}

func (c *Client) SignOut(ctx context.Context, refreshToken string) error {
	body := map[string]any{
		"refreshToken": refreshToken,
	}
	return c.post(ctx, "/signout", body, nil, signOutFailed)
}

func (c *Client) post(ctx context.Context, path string, body any, out any, fallback string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Identity request failed", "path", path, "error", err)
		return &AuthError{Message: fallback}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		_ = json.Unmarshal(data, &errResp)
		return &AuthError{
			Status:  resp.StatusCode,
			Code:    errResp.Error,
			Message: cmp.Or(errResp.Message, fallback),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

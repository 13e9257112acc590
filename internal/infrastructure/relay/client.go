// Package relay is the wizard's HTTP client for the relay service
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"layerdemo/internal/domain/applicant"
	"layerdemo/internal/domain/layer"
	"layerdemo/internal/domain/signup"
)

const (
	defaultTimeout         = 30 * time.Second
	createSessionTokenPath = "/server/tokens/create_session_token"
	fetchSessionInfoPath   = "/server/tokens/fetch_account_session_info"
	registerApplicantPath  = "/server/applicants/register"
)

// Client calls the relay endpoints
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Ensure Client implements signup.Relay
var _ signup.Relay = (*Client)(nil)

// NewClient creates a relay client for the server at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ServerError is a non-2xx answer from the relay. Message is the body's
// "error" field when it has one, otherwise the whole body.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return "Server Error: " + e.Message
}

// CreateSessionToken asks the relay for a link token for clientUserID
func (c *Client) CreateSessionToken(ctx context.Context, clientUserID string) (string, error) {
	req := struct {
		ClientUserID string `json:"clientUserId"`
	}{ClientUserID: clientUserID}

	var resp struct {
		LinkToken string `json:"linkToken"`
	}
	if err := c.post(ctx, createSessionTokenPath, req, &resp); err != nil {
		return "", err
	}
	return resp.LinkToken, nil
}

// FetchAccountSessionInfo exchanges the widget's public token for the
// user's identity and linked accounts
func (c *Client) FetchAccountSessionInfo(ctx context.Context, publicToken string) (*layer.AccountSessionInfo, error) {
	req := struct {
		PublicToken string `json:"publicToken"`
	}{PublicToken: publicToken}

	var info layer.AccountSessionInfo
	if err := c.post(ctx, fetchSessionInfoPath, req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// RegisterApplicant submits the manual sign-up form
func (c *Client) RegisterApplicant(ctx context.Context, params applicant.RegisterParams) (*applicant.Applicant, error) {
	var created applicant.Applicant
	if err := c.post(ctx, registerApplicantPath, params, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServerError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var withError struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &withError); err == nil && withError.Error != "" {
		return withError.Error
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err == nil {
		return compact.String()
	}
	return strings.TrimSpace(string(body))
}

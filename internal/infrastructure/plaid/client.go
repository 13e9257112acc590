package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout            = 30 * time.Second
	apiVersion                = "2020-09-14"
	sessionTokenCreatePath    = "/session/token/create"
	userAccountSessionGetPath = "/user_account/session/get"
	accountsGetPath           = "/accounts/get"
)

// Client handles communication with the Plaid API
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new Plaid API client. baseURL selects the environment
// (sandbox or production) and has no trailing slash.
func NewClient(baseURL, clientID, secret string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:  baseURL,
		clientID: clientID,
		secret:   secret,
	}
}

// SessionTokenCreateRequest is the body of /session/token/create
type SessionTokenCreateRequest struct {
	TemplateID string           `json:"template_id"`
	User       SessionTokenUser `json:"user"`
}

// SessionTokenUser identifies the end user to the vendor
type SessionTokenUser struct {
	ClientUserID string `json:"client_user_id"`
}

// SessionTokenCreateResponse represents the API response for a Layer session token
type SessionTokenCreateResponse struct {
	Link      *LinkToken `json:"link"`
	RequestID string     `json:"request_id"`
}

// LinkToken is the widget credential nested in a session token response
type LinkToken struct {
	LinkToken  string `json:"link_token"`
	Expiration string `json:"expiration"`
}

// UserAccountSessionGetResponse represents the API response for a completed Layer session
type UserAccountSessionGetResponse struct {
	Identity  *Identity         `json:"identity"`
	Items     []UserAccountItem `json:"items"`
	RequestID string            `json:"request_id"`
}

// Identity holds the identity fields the user shared through the widget
type Identity struct {
	Name        *Name    `json:"name,omitempty"`
	Address     *Address `json:"address,omitempty"`
	PhoneNumber string   `json:"phone_number"`
	Email       string   `json:"email,omitempty"`
	DateOfBirth string   `json:"date_of_birth,omitempty"`
	SSN         string   `json:"ssn,omitempty"`
	SSNLast4    string   `json:"ssn_last_4,omitempty"`
}

// Name represents a person's name as returned by the vendor
type Name struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Address represents a postal address as returned by the vendor
type Address struct {
	Street     string `json:"street,omitempty"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// UserAccountItem is a bank connection created during the Layer session
type UserAccountItem struct {
	ItemID      string `json:"item_id"`
	AccessToken string `json:"access_token"`
}

// AccountsGetResponse represents the API response for /accounts/get
type AccountsGetResponse struct {
	Accounts  []Account `json:"accounts"`
	Item      Item      `json:"item"`
	RequestID string    `json:"request_id"`
}

// Account represents an account from the Plaid API
type Account struct {
	AccountID    string   `json:"account_id"`
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name"`
	Mask         string   `json:"mask"`
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
	Balances     Balances `json:"balances"`
}

// Balances holds the balance figures of an account; any of them may be null
type Balances struct {
	Available       *float64 `json:"available"`
	Current         *float64 `json:"current"`
	Limit           *float64 `json:"limit"`
	ISOCurrencyCode string   `json:"iso_currency_code"`
}

// Item represents the bank connection an account belongs to
type Item struct {
	ItemID          string `json:"item_id"`
	InstitutionID   string `json:"institution_id"`
	InstitutionName string `json:"institution_name"`
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	ErrorType      string `json:"error_type"`
	ErrorCode      string `json:"error_code"`
	ErrorMessage   string `json:"error_message"`
	DisplayMessage string `json:"display_message"`
	RequestID      string `json:"request_id"`
}

// APIError is returned for any non-2xx vendor response. Body holds the raw
// payload so it can be forwarded untouched.
type APIError struct {
	StatusCode int
	Body       []byte
	ErrorResponse
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("API error (status %d): %s - %s", e.StatusCode, e.ErrorCode, e.ErrorMessage)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, string(e.Body))
}

// SessionTokenCreate creates a session token for the Layer flow
func (c *Client) SessionTokenCreate(ctx context.Context, req SessionTokenCreateRequest) (*SessionTokenCreateResponse, error) {
	var resp SessionTokenCreateResponse
	if err := c.post(ctx, sessionTokenCreatePath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UserAccountSessionGet exchanges a public token for the session's identity and items
func (c *Client) UserAccountSessionGet(ctx context.Context, publicToken string) (*UserAccountSessionGetResponse, error) {
	body := struct {
		PublicToken string `json:"public_token"`
	}{PublicToken: publicToken}

	var resp UserAccountSessionGetResponse
	if err := c.post(ctx, userAccountSessionGetPath, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AccountsGet fetches the accounts attached to an item
func (c *Client) AccountsGet(ctx context.Context, accessToken string) (*AccountsGetResponse, error) {
	body := struct {
		AccessToken string `json:"access_token"`
	}{AccessToken: accessToken}

	var resp AccountsGetResponse
	if err := c.post(ctx, accountsGetPath, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
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
	req.Header.Set("PLAID-CLIENT-ID", c.clientID)
	req.Header.Set("PLAID-SECRET", c.secret)
	req.Header.Set("Plaid-Version", apiVersion)

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
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: body}
		// Non-JSON bodies still surface through Body
		_ = json.Unmarshal(body, &apiErr.ErrorResponse)
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

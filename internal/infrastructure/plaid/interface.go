package plaid

import (
	"context"
)

// ClientInterface defines the methods required from the Plaid API client
type ClientInterface interface {
	SessionTokenCreate(ctx context.Context, req SessionTokenCreateRequest) (*SessionTokenCreateResponse, error)
	UserAccountSessionGet(ctx context.Context, publicToken string) (*UserAccountSessionGetResponse, error)
	AccountsGet(ctx context.Context, accessToken string) (*AccountsGetResponse, error)
}

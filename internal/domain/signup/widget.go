package signup

import (
	"context"

	"layerdemo/internal/domain/applicant"
	"layerdemo/internal/domain/layer"
)

// Widget is an initialized vendor sign-up widget. Callbacks may fire from
// inside Open and Submit.
type Widget interface {
	Open() error
	Submit(data SubmitData) error
}

// WidgetLauncher initializes a widget for a link token. The handler receives
// every callback the widget produces, with ctx passed through.
type WidgetLauncher interface {
	Launch(ctx context.Context, linkToken string, handler EventHandler) (Widget, error)
}

// EventHandler receives the widget's callbacks
type EventHandler interface {
	OnEvent(ctx context.Context, name EventName)
	OnExit(ctx context.Context, err error)
	OnSuccess(ctx context.Context, publicToken string)
}

// Relay is the wizard's view of its own backend
type Relay interface {
	CreateSessionToken(ctx context.Context, clientUserID string) (string, error)
	FetchAccountSessionInfo(ctx context.Context, publicToken string) (*layer.AccountSessionInfo, error)
	RegisterApplicant(ctx context.Context, params applicant.RegisterParams) (*applicant.Applicant, error)
}

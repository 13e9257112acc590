package signup

import (
	"errors"

	"layerdemo/internal/domain/applicant"
	"layerdemo/internal/domain/layer"
)

// FlowState is the wizard screen currently shown
type FlowState string

const (
	StateWelcome       FlowState = "WELCOME"
	StatePhoneInput    FlowState = "PHONE_INPUT"
	StateBirthdayInput FlowState = "BIRTHDAY_INPUT"
	StateManualForm    FlowState = "MANUAL_FORM"
	StateSuccess       FlowState = "SUCCESS"
)

// EventName is a widget event the wizard reacts to. Other event names are
// logged and otherwise ignored.
type EventName string

const (
	EventLayerReady                EventName = "LAYER_READY"
	EventLayerNotAvailable         EventName = "LAYER_NOT_AVAILABLE"
	EventLayerAutofillNotAvailable EventName = "LAYER_AUTOFILL_NOT_AVAILABLE"
	EventVerifyPhone               EventName = "VERIFY_PHONE"
)

// Domain errors
var (
	ErrInvalidTransition = errors.New("action not allowed in the current state")
	ErrWidgetNotReady    = errors.New("widget has not been initialized yet")
	ErrMissingInput      = errors.New("input is required")
)

// SubmitData is what the wizard hands to the widget. Exactly one field is
// set per submission.
type SubmitData struct {
	PhoneNumber string `json:"phone_number,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

// Snapshot is a point-in-time copy of the wizard for rendering
type Snapshot struct {
	State            FlowState
	DebugInfo        string
	ClientUserID     string
	LinkToken        string
	PhoneNumber      string
	DateOfBirth      string
	ExtendedAutofill bool
	AccountInfo      *layer.AccountSessionInfo
	Applicant        *applicant.Applicant
}

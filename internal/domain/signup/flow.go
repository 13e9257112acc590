// Package signup drives the fast sign-up wizard: a five-screen state machine
// fed by widget callbacks and form submissions.
package signup

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"layerdemo/internal/domain/applicant"
	"layerdemo/internal/domain/layer"
	"layerdemo/internal/shared/messages"
)

// Flow is one user's pass through the wizard. The client user ID is
// generated once and never changes. SUCCESS is terminal.
//
// The mutex is never held while calling the widget or the relay, since the
// widget may call back into the Flow synchronously.
type Flow struct {
	relay    Relay
	launcher WidgetLauncher
	messages *messages.Messages

	mu               sync.Mutex
	clientUserID     string
	linkToken        string
	widget           Widget
	state            FlowState
	debugInfo        string
	phoneNumber      string
	dateOfBirth      string
	extendedAutofill bool
	accountInfo      *layer.AccountSessionInfo
	applicant        *applicant.Applicant
	observer         func(Snapshot)
}

// Ensure Flow implements EventHandler
var _ EventHandler = (*Flow)(nil)

// NewFlow creates a wizard in WELCOME. msgs may be nil to use the built-in
// texts.
func NewFlow(relay Relay, launcher WidgetLauncher, msgs *messages.Messages) *Flow {
	if msgs == nil {
		msgs = messages.Default()
	}
	return &Flow{
		relay:        relay,
		launcher:     launcher,
		messages:     msgs,
		clientUserID: uuid.NewString(),
		state:        StateWelcome,
		debugInfo:    msgs.Initial,
	}
}

// Observe registers fn to receive a snapshot after every change
func (f *Flow) Observe(fn func(Snapshot)) {
	f.mu.Lock()
	f.observer = fn
	f.mu.Unlock()
}

// Snapshot returns a copy of the current wizard state
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// State returns the current screen
func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// DebugInfo returns the text currently shown in the debug panel
func (f *Flow) DebugInfo() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.debugInfo
}

// ClientUserID returns the session identifier sent to the relay
func (f *Flow) ClientUserID() string {
	return f.clientUserID
}

// Start requests a link token and initializes the widget right away so it is
// ready before the user reaches the phone screen. Failures are shown in the
// debug panel and returned.
func (f *Flow) Start(ctx context.Context) error {
	f.update(func() {
		f.debugInfo = f.stateTextLocked()
	})

	token, err := f.relay.CreateSessionToken(ctx, f.clientUserID)
	if err != nil {
		f.showError(err)
		return fmt.Errorf("failed to create session token: %w", err)
	}
	if token == "" {
		f.showError(layer.ErrMissingLinkToken)
		return layer.ErrMissingLinkToken
	}

	f.update(func() {
		f.linkToken = token
		f.debugInfo = f.stateTextLocked()
	})

	widget, err := f.launcher.Launch(ctx, token, f)
	if err != nil {
		f.showError(err)
		return fmt.Errorf("failed to launch widget: %w", err)
	}

	f.mu.Lock()
	f.widget = widget
	f.mu.Unlock()
	return nil
}

// ClickCreateAccount moves from WELCOME to the phone screen
func (f *Flow) ClickCreateAccount() error {
	return f.transition(StateWelcome, StatePhoneInput)
}

// SubmitPhone forwards the phone number to the widget. The widget answers
// through OnEvent.
func (f *Flow) SubmitPhone(phoneNumber string) error {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return fmt.Errorf("%w: phone number", ErrMissingInput)
	}

	widget, err := f.widgetFor(StatePhoneInput)
	if err != nil {
		return err
	}

	f.update(func() { f.phoneNumber = phoneNumber })
	return widget.Submit(SubmitData{PhoneNumber: phoneNumber})
}

// SubmitBirthday forwards the date of birth to the widget for the Extended
// Autofill check.
func (f *Flow) SubmitBirthday(dateOfBirth string) error {
	dateOfBirth = strings.TrimSpace(dateOfBirth)
	if dateOfBirth == "" {
		return fmt.Errorf("%w: date of birth", ErrMissingInput)
	}

	widget, err := f.widgetFor(StateBirthdayInput)
	if err != nil {
		return err
	}

	f.update(func() { f.dateOfBirth = dateOfBirth })
	return widget.Submit(SubmitData{DateOfBirth: dateOfBirth})
}

// SubmitManualForm registers the user through the traditional form. Phone
// and birthday already entered in the wizard fill any blanks in params.
func (f *Flow) SubmitManualForm(ctx context.Context, params applicant.RegisterParams) (*applicant.Applicant, error) {
	f.mu.Lock()
	if f.state != StateManualForm {
		state := f.state
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: manual form submitted in %s", ErrInvalidTransition, state)
	}
	if params.PhoneNumber == "" {
		params.PhoneNumber = f.phoneNumber
	}
	if params.DateOfBirth == "" {
		params.DateOfBirth = isoDate(f.dateOfBirth)
	}
	f.mu.Unlock()

	created, err := f.relay.RegisterApplicant(ctx, params)
	if err != nil {
		f.showError(err)
		return nil, err
	}

	f.update(func() {
		if f.state == StateSuccess {
			return
		}
		f.applicant = created
		f.accountInfo = &layer.AccountSessionInfo{
			Identity: &layer.Identity{
				Name:        &layer.Name{FirstName: created.FirstName, LastName: created.LastName},
				Email:       created.Email,
				PhoneNumber: created.PhoneNumber,
				DateOfBirth: created.DateOfBirth,
			},
			AccountObjects: []layer.AccountObject{},
		}
		f.setStateLocked(StateSuccess)
	})
	return created, nil
}

// OnEvent handles widget events
func (f *Flow) OnEvent(ctx context.Context, name EventName) {
	log.Printf("Widget event %s (client_user_id=%s)", name, f.clientUserID)

	var open Widget
	f.update(func() {
		if f.state == StateSuccess {
			return
		}

		switch name {
		case EventLayerReady:
			if f.widget == nil {
				return
			}
			open = f.widget
			f.debugInfo = f.messages.LayerReadyFor(f.extendedAutofill)
		case EventVerifyPhone:
			f.debugInfo = f.messages.VerifyPhone
		case EventLayerNotAvailable:
			f.extendedAutofill = true
			f.setStateLocked(StateBirthdayInput)
		case EventLayerAutofillNotAvailable:
			f.setStateLocked(StateManualForm)
		}
	})

	if open != nil {
		if err := open.Open(); err != nil {
			f.showError(err)
		}
	}
}

// OnExit sends the user to the manual form
func (f *Flow) OnExit(ctx context.Context, err error) {
	if err != nil {
		log.Printf("Widget exited with error: %v", err)
	} else {
		log.Printf("Widget exited")
	}

	f.update(func() {
		if f.state == StateSuccess {
			return
		}
		f.setStateLocked(StateManualForm)
	})
}

// OnSuccess exchanges the public token through the relay and shows the
// result. If the relay fails the wizard stays where it is and shows the error.
func (f *Flow) OnSuccess(ctx context.Context, publicToken string) {
	log.Printf("Widget succeeded (client_user_id=%s)", f.clientUserID)

	if f.State() == StateSuccess {
		return
	}

	info, err := f.relay.FetchAccountSessionInfo(ctx, publicToken)
	if err != nil {
		log.Printf("Error fetching account session info: %v", err)
		f.showError(err)
		return
	}

	f.update(func() {
		if f.state == StateSuccess {
			return
		}
		f.accountInfo = info
		f.setStateLocked(StateSuccess)
	})
}

func (f *Flow) transition(from, to FlowState) error {
	var err error
	f.update(func() {
		if f.state != from {
			err = fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.state, to)
			return
		}
		f.setStateLocked(to)
	})
	return err
}

func (f *Flow) widgetFor(state FlowState) (Widget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != state {
		return nil, fmt.Errorf("%w: expected %s, in %s", ErrInvalidTransition, state, f.state)
	}
	if f.widget == nil {
		return nil, ErrWidgetNotReady
	}
	return f.widget, nil
}

// isoDate rewrites a MM/DD/YYYY birthday as YYYY-MM-DD. Anything else is
// returned unchanged for the relay to validate.
func isoDate(s string) string {
	if t, err := time.Parse("01/02/2006", s); err == nil {
		return t.Format(time.DateOnly)
	}
	return s
}

func (f *Flow) showError(err error) {
	f.update(func() {
		f.debugInfo = "❌ " + err.Error()
	})
}

// update applies fn under the lock and then notifies the observer
func (f *Flow) update(fn func()) {
	f.mu.Lock()
	fn()
	snap := f.snapshotLocked()
	observer := f.observer
	f.mu.Unlock()

	if observer != nil {
		observer(snap)
	}
}

func (f *Flow) setStateLocked(state FlowState) {
	f.state = state
	f.debugInfo = f.stateTextLocked()
}

func (f *Flow) stateTextLocked() string {
	switch f.state {
	case StateWelcome:
		return f.messages.Welcome(f.linkToken)
	case StatePhoneInput:
		return f.messages.PhoneInput
	case StateBirthdayInput:
		return f.messages.BirthdayInput
	case StateManualForm:
		return f.messages.ManualForm
	case StateSuccess:
		if f.applicant != nil {
			return f.messages.ManualSuccess
		}
		return f.messages.Success
	}
	return f.debugInfo
}

func (f *Flow) snapshotLocked() Snapshot {
	return Snapshot{
		State:            f.state,
		DebugInfo:        f.debugInfo,
		ClientUserID:     f.clientUserID,
		LinkToken:        f.linkToken,
		PhoneNumber:      f.phoneNumber,
		DateOfBirth:      f.dateOfBirth,
		ExtendedAutofill: f.extendedAutofill,
		AccountInfo:      f.accountInfo,
		Applicant:        f.applicant,
	}
}

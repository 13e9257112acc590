// Package sandbox simulates the vendor's sign-up widget with the sandbox
// test identities, so the wizard can run end to end without a browser.
package sandbox

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"layerdemo/internal/domain/signup"
)

// Sandbox identities
const (
	EligiblePhone    = "4155550011"
	IneligiblePhone  = "4155550000"
	EligibleBirthday = "1975-01-18"

	publicTokenPrefix = "public-sandbox-"
	eventOpen         = signup.EventName("OPEN")
)

var birthdayLayouts = []string{time.DateOnly, "01/02/2006"}

var (
	ErrMissingLinkToken = errors.New("sandbox widget needs a link token")
	ErrNothingSubmitted = errors.New("submit needs a phone number or a date of birth")
	ErrNotEligible      = errors.New("widget cannot open before the user is found eligible")
	ErrClosed           = errors.New("widget session already finished")
)

// Launcher creates sandbox widgets
type Launcher struct{}

// Ensure Launcher implements signup.WidgetLauncher
var _ signup.WidgetLauncher = (*Launcher)(nil)

func NewLauncher() *Launcher {
	return &Launcher{}
}

func (l *Launcher) Launch(ctx context.Context, linkToken string, handler signup.EventHandler) (signup.Widget, error) {
	if linkToken == "" {
		return nil, ErrMissingLinkToken
	}
	return &Widget{ctx: ctx, linkToken: linkToken, handler: handler}, nil
}

// Widget answers submissions the way the vendor sandbox does. Callbacks run
// on the caller's goroutine.
type Widget struct {
	ctx       context.Context
	linkToken string
	handler   signup.EventHandler

	mu       sync.Mutex
	eligible bool
	closed   bool
}

// Submit checks the phone number or, after a phone miss, the birthday
func (w *Widget) Submit(data signup.SubmitData) error {
	var event signup.EventName
	switch {
	case data.PhoneNumber != "":
		event = signup.EventLayerNotAvailable
		if normalizePhone(data.PhoneNumber) == EligiblePhone {
			event = signup.EventLayerReady
		}
	case data.DateOfBirth != "":
		event = signup.EventLayerAutofillNotAvailable
		if isEligibleBirthday(data.DateOfBirth) {
			event = signup.EventLayerReady
		}
	default:
		return ErrNothingSubmitted
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.eligible = event == signup.EventLayerReady
	w.mu.Unlock()

	w.handler.OnEvent(w.ctx, event)
	return nil
}

// Open shows the Layer screen. The sandbox user accepts it with code 123456
// straight away, so the phone is verified and the session succeeds.
func (w *Widget) Open() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if !w.eligible {
		w.mu.Unlock()
		return ErrNotEligible
	}
	w.closed = true
	w.mu.Unlock()

	w.handler.OnEvent(w.ctx, eventOpen)
	w.handler.OnEvent(w.ctx, signup.EventVerifyPhone)
	w.handler.OnSuccess(w.ctx, publicTokenPrefix+uuid.NewString())
	return nil
}

// Exit simulates the user closing the widget
func (w *Widget) Exit(err error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	w.handler.OnExit(w.ctx, err)
}

// normalizePhone keeps the last ten digits so +1 prefixes and punctuation
// do not matter.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}

func isEligibleBirthday(dob string) bool {
	dob = strings.TrimSpace(dob)
	for _, layout := range birthdayLayouts {
		if t, err := time.Parse(layout, dob); err == nil {
			return t.Format(time.DateOnly) == EligibleBirthday
		}
	}
	return false
}

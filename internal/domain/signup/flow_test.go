package signup

import (
	"context"
	"errors"
	"strings"
	"testing"

	"layerdemo/internal/domain/applicant"
	"layerdemo/internal/domain/layer"
	"layerdemo/internal/shared/messages"
)

// MockRelay is a mock implementation of Relay interface
type MockRelay struct {
	CreateSessionTokenFunc      func(ctx context.Context, clientUserID string) (string, error)
	FetchAccountSessionInfoFunc func(ctx context.Context, publicToken string) (*layer.AccountSessionInfo, error)
	RegisterApplicantFunc       func(ctx context.Context, params applicant.RegisterParams) (*applicant.Applicant, error)
}

func (m *MockRelay) CreateSessionToken(ctx context.Context, clientUserID string) (string, error) {
	if m.CreateSessionTokenFunc != nil {
		return m.CreateSessionTokenFunc(ctx, clientUserID)
	}
	return "link-sandbox-123", nil
}

func (m *MockRelay) FetchAccountSessionInfo(ctx context.Context, publicToken string) (*layer.AccountSessionInfo, error) {
	if m.FetchAccountSessionInfoFunc != nil {
		return m.FetchAccountSessionInfoFunc(ctx, publicToken)
	}
	return &layer.AccountSessionInfo{
		Identity:       &layer.Identity{PhoneNumber: "+14155550011"},
		BankName:       "First Platypus Bank",
		AccountObjects: []layer.AccountObject{{AcctName: "Plaid Checking"}},
	}, nil
}

func (m *MockRelay) RegisterApplicant(ctx context.Context, params applicant.RegisterParams) (*applicant.Applicant, error) {
	if m.RegisterApplicantFunc != nil {
		return m.RegisterApplicantFunc(ctx, params)
	}
	return &applicant.Applicant{
		ID:          "app-1",
		FirstName:   params.FirstName,
		LastName:    params.LastName,
		Email:       params.Email,
		PhoneNumber: params.PhoneNumber,
		DateOfBirth: params.DateOfBirth,
	}, nil
}

// MockWidget records calls and lets tests script the widget's reaction
type MockWidget struct {
	OpenFunc   func() error
	SubmitFunc func(data SubmitData) error
	opened     int
	submitted  []SubmitData
}

func (m *MockWidget) Open() error {
	m.opened++
	if m.OpenFunc != nil {
		return m.OpenFunc()
	}
	return nil
}

func (m *MockWidget) Submit(data SubmitData) error {
	m.submitted = append(m.submitted, data)
	if m.SubmitFunc != nil {
		return m.SubmitFunc(data)
	}
	return nil
}

// MockLauncher hands out a fixed widget and keeps the handler
type MockLauncher struct {
	Widget    *MockWidget
	Err       error
	linkToken string
	handler   EventHandler
}

func (m *MockLauncher) Launch(ctx context.Context, linkToken string, handler EventHandler) (Widget, error) {
	m.linkToken = linkToken
	m.handler = handler
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Widget, nil
}

func startedFlow(t *testing.T, relay *MockRelay) (*Flow, *MockWidget) {
	t.Helper()
	widget := &MockWidget{}
	flow := NewFlow(relay, &MockLauncher{Widget: widget}, nil)
	if err := flow.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	return flow, widget
}

func TestNewFlow(t *testing.T) {
	flow := NewFlow(&MockRelay{}, &MockLauncher{}, nil)

	if flow.State() != StateWelcome {
		t.Errorf("State() = %s, want %s", flow.State(), StateWelcome)
	}
	if flow.ClientUserID() == "" {
		t.Error("ClientUserID should be generated")
	}
	if flow.DebugInfo() != "Debug info will appear here..." {
		t.Errorf("DebugInfo() = %q", flow.DebugInfo())
	}

	other := NewFlow(&MockRelay{}, &MockLauncher{}, nil)
	if other.ClientUserID() == flow.ClientUserID() {
		t.Error("each flow should get its own client user id")
	}
}

func TestStart(t *testing.T) {
	var gotUserID string
	relay := &MockRelay{
		CreateSessionTokenFunc: func(ctx context.Context, clientUserID string) (string, error) {
			gotUserID = clientUserID
			return "link-sandbox-abc", nil
		},
	}
	launcher := &MockLauncher{Widget: &MockWidget{}}
	flow := NewFlow(relay, launcher, nil)

	if err := flow.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if gotUserID != flow.ClientUserID() {
		t.Errorf("relay got user id %q, want %q", gotUserID, flow.ClientUserID())
	}
	if launcher.linkToken != "link-sandbox-abc" {
		t.Errorf("widget launched with %q", launcher.linkToken)
	}
	if launcher.handler != flow {
		t.Error("flow should be the widget's event handler")
	}
	if flow.State() != StateWelcome {
		t.Errorf("Start() should not change state, got %s", flow.State())
	}
	if !strings.Contains(flow.DebugInfo(), "(link-sandbox-abc)") {
		t.Errorf("DebugInfo() = %q, want the link token", flow.DebugInfo())
	}
}

func TestStart_RelayError(t *testing.T) {
	relay := &MockRelay{
		CreateSessionTokenFunc: func(ctx context.Context, clientUserID string) (string, error) {
			return "", errors.New("Server Error: invalid template")
		},
	}
	launcher := &MockLauncher{Widget: &MockWidget{}}
	flow := NewFlow(relay, launcher, nil)

	if err := flow.Start(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := flow.DebugInfo(); got != "❌ Server Error: invalid template" {
		t.Errorf("DebugInfo() = %q", got)
	}
	if launcher.handler != nil {
		t.Error("widget should not be launched without a token")
	}
}

func TestStart_LaunchError(t *testing.T) {
	flow := NewFlow(&MockRelay{}, &MockLauncher{Err: errors.New("widget script failed")}, nil)

	if err := flow.Start(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(flow.DebugInfo(), "widget script failed") {
		t.Errorf("DebugInfo() = %q", flow.DebugInfo())
	}
}

func TestClickCreateAccount(t *testing.T) {
	flow, _ := startedFlow(t, &MockRelay{})

	if err := flow.ClickCreateAccount(); err != nil {
		t.Fatalf("ClickCreateAccount() failed: %v", err)
	}
	if flow.State() != StatePhoneInput {
		t.Errorf("State() = %s, want %s", flow.State(), StatePhoneInput)
	}
	if !strings.Contains(flow.DebugInfo(), "415-555-0011") {
		t.Errorf("DebugInfo() = %q", flow.DebugInfo())
	}

	if err := flow.ClickCreateAccount(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second click error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestSubmitPhone(t *testing.T) {
	flow, widget := startedFlow(t, &MockRelay{})

	if err := flow.SubmitPhone("415-555-0011"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("SubmitPhone() in WELCOME error = %v", err)
	}

	flow.ClickCreateAccount()
	if err := flow.SubmitPhone("   "); !errors.Is(err, ErrMissingInput) {
		t.Errorf("SubmitPhone(blank) error = %v", err)
	}
	if err := flow.SubmitPhone(" 415-555-0011 "); err != nil {
		t.Fatalf("SubmitPhone() failed: %v", err)
	}

	if len(widget.submitted) != 1 || widget.submitted[0].PhoneNumber != "415-555-0011" {
		t.Errorf("submitted = %+v", widget.submitted)
	}
	if flow.Snapshot().PhoneNumber != "415-555-0011" {
		t.Errorf("phone number not kept")
	}
}

func TestSubmitPhone_WidgetNotReady(t *testing.T) {
	flow := NewFlow(&MockRelay{}, &MockLauncher{}, nil)
	flow.ClickCreateAccount()

	if err := flow.SubmitPhone("415-555-0011"); !errors.Is(err, ErrWidgetNotReady) {
		t.Errorf("error = %v, want %v", err, ErrWidgetNotReady)
	}
}

func TestOnEvent_LayerReadyOpensWidget(t *testing.T) {
	flow, widget := startedFlow(t, &MockRelay{})
	flow.ClickCreateAccount()

	flow.OnEvent(context.Background(), EventLayerReady)

	if widget.opened != 1 {
		t.Errorf("opened = %d, want 1", widget.opened)
	}
	if flow.State() != StatePhoneInput {
		t.Errorf("LAYER_READY should not change state, got %s", flow.State())
	}
	if !strings.Contains(flow.DebugInfo(), "eligible for Layer,") {
		t.Errorf("DebugInfo() = %q", flow.DebugInfo())
	}
}

func TestOnEvent_VerifyPhone(t *testing.T) {
	flow, _ := startedFlow(t, &MockRelay{})
	flow.ClickCreateAccount()

	flow.OnEvent(context.Background(), EventVerifyPhone)

	if flow.State() != StatePhoneInput {
		t.Errorf("State() = %s", flow.State())
	}
	if !strings.Contains(flow.DebugInfo(), "LAYER_AUTHENTICATION_PASSED") {
		t.Errorf("DebugInfo() = %q", flow.DebugInfo())
	}
}

func TestOnEvent_LayerNotAvailable(t *testing.T) {
	flow, widget := startedFlow(t, &MockRelay{})
	flow.ClickCreateAccount()

	flow.OnEvent(context.Background(), EventLayerNotAvailable)

	if flow.State() != StateBirthdayInput {
		t.Fatalf("State() = %s, want %s", flow.State(), StateBirthdayInput)
	}
	if !flow.Snapshot().ExtendedAutofill {
		t.Error("ExtendedAutofill should be set")
	}

	if err := flow.SubmitBirthday("1975-01-18"); err != nil {
		t.Fatalf("SubmitBirthday() failed: %v", err)
	}
	if got := widget.submitted[len(widget.submitted)-1]; got.DateOfBirth != "1975-01-18" || got.PhoneNumber != "" {
		t.Errorf("submitted = %+v", got)
	}

	flow.OnEvent(context.Background(), EventLayerReady)
	if !strings.Contains(flow.DebugInfo(), "eligible for Extended Autofill,") {
		t.Errorf("DebugInfo() = %q", flow.DebugInfo())
	}
}

func TestOnEvent_LayerAutofillNotAvailable(t *testing.T) {
	flow, _ := startedFlow(t, &MockRelay{})
	flow.ClickCreateAccount()
	flow.OnEvent(context.Background(), EventLayerNotAvailable)

	flow.OnEvent(context.Background(), EventLayerAutofillNotAvailable)

	if flow.State() != StateManualForm {
		t.Errorf("State() = %s, want %s", flow.State(), StateManualForm)
	}
}

func TestOnEvent_UnknownIgnored(t *testing.T) {
	flow, _ := startedFlow(t, &MockRelay{})
	before := flow.Snapshot()

	flow.OnEvent(context.Background(), EventName("OPEN"))

	after := flow.Snapshot()
	if after.State != before.State || after.DebugInfo != before.DebugInfo {
		t.Errorf("unknown event changed the flow: %+v -> %+v", before, after)
	}
}

func TestOnExit(t *testing.T) {
	states := []struct {
		name  string
		setup func(f *Flow)
	}{
		{"welcome", func(f *Flow) {}},
		{"phone input", func(f *Flow) { f.ClickCreateAccount() }},
		{"birthday input", func(f *Flow) {
			f.ClickCreateAccount()
			f.OnEvent(context.Background(), EventLayerNotAvailable)
		}},
		{"manual form", func(f *Flow) {
			f.ClickCreateAccount()
			f.OnEvent(context.Background(), EventLayerAutofillNotAvailable)
		}},
	}

	for _, tt := range states {
		t.Run(tt.name, func(t *testing.T) {
			flow, _ := startedFlow(t, &MockRelay{})
			tt.setup(flow)

			flow.OnExit(context.Background(), errors.New("user closed the widget"))

			if flow.State() != StateManualForm {
				t.Errorf("State() = %s, want %s", flow.State(), StateManualForm)
			}
			if !strings.Contains(flow.DebugInfo(), "traditional sign-up form") {
				t.Errorf("DebugInfo() = %q", flow.DebugInfo())
			}
		})
	}
}

func TestOnSuccess(t *testing.T) {
	var gotToken string
	relay := &MockRelay{
		FetchAccountSessionInfoFunc: func(ctx context.Context, publicToken string) (*layer.AccountSessionInfo, error) {
			gotToken = publicToken
			return &layer.AccountSessionInfo{
				Identity:       &layer.Identity{PhoneNumber: "+14155550011"},
				BankName:       "First Platypus Bank",
				AccountObjects: []layer.AccountObject{},
			}, nil
		},
	}
	flow, _ := startedFlow(t, relay)
	flow.ClickCreateAccount()

	flow.OnSuccess(context.Background(), "public-sandbox-1")

	if gotToken != "public-sandbox-1" {
		t.Errorf("relay got %q", gotToken)
	}
	snap := flow.Snapshot()
	if snap.State != StateSuccess {
		t.Fatalf("State = %s, want %s", snap.State, StateSuccess)
	}
	if snap.AccountInfo == nil || snap.AccountInfo.BankName != "First Platypus Bank" {
		t.Errorf("AccountInfo = %+v", snap.AccountInfo)
	}
	if snap.DebugInfo != messages.Default().Success {
		t.Errorf("DebugInfo = %q", snap.DebugInfo)
	}
}

func TestOnSuccess_RelayError(t *testing.T) {
	relay := &MockRelay{
		FetchAccountSessionInfoFunc: func(ctx context.Context, publicToken string) (*layer.AccountSessionInfo, error) {
			return nil, errors.New("Server Error: INVALID_PUBLIC_TOKEN")
		},
	}
	flow, _ := startedFlow(t, relay)
	flow.ClickCreateAccount()

	flow.OnSuccess(context.Background(), "public-sandbox-bad")

	if flow.State() != StatePhoneInput {
		t.Errorf("State() = %s, want to stay in %s", flow.State(), StatePhoneInput)
	}
	if got := flow.DebugInfo(); got != "❌ Server Error: INVALID_PUBLIC_TOKEN" {
		t.Errorf("DebugInfo() = %q", got)
	}
}

func TestSuccessIsTerminal(t *testing.T) {
	calls := 0
	relay := &MockRelay{
		FetchAccountSessionInfoFunc: func(ctx context.Context, publicToken string) (*layer.AccountSessionInfo, error) {
			calls++
			return &layer.AccountSessionInfo{AccountObjects: []layer.AccountObject{}}, nil
		},
	}
	flow, _ := startedFlow(t, relay)
	flow.ClickCreateAccount()
	flow.OnSuccess(context.Background(), "public-sandbox-1")
	debug := flow.DebugInfo()

	flow.OnExit(context.Background(), nil)
	flow.OnEvent(context.Background(), EventLayerNotAvailable)
	flow.OnEvent(context.Background(), EventVerifyPhone)
	flow.OnSuccess(context.Background(), "public-sandbox-2")

	if flow.State() != StateSuccess {
		t.Errorf("State() = %s, want %s", flow.State(), StateSuccess)
	}
	if flow.DebugInfo() != debug {
		t.Errorf("DebugInfo changed after SUCCESS: %q", flow.DebugInfo())
	}
	if calls != 1 {
		t.Errorf("relay called %d times, want 1", calls)
	}
}

func TestSubmitManualForm(t *testing.T) {
	var got applicant.RegisterParams
	relay := &MockRelay{
		RegisterApplicantFunc: func(ctx context.Context, params applicant.RegisterParams) (*applicant.Applicant, error) {
			got = params
			return &applicant.Applicant{
				ID:          "app-1",
				FirstName:   params.FirstName,
				LastName:    params.LastName,
				Email:       params.Email,
				PhoneNumber: params.PhoneNumber,
			}, nil
		},
	}
	flow, _ := startedFlow(t, relay)
	flow.ClickCreateAccount()
	flow.SubmitPhone("415-555-0000")
	flow.OnEvent(context.Background(), EventLayerNotAvailable)
	flow.SubmitBirthday("1990-02-03")
	flow.OnEvent(context.Background(), EventLayerAutofillNotAvailable)

	created, err := flow.SubmitManualForm(context.Background(), applicant.RegisterParams{
		FirstName: "Ann",
		LastName:  "Perkins",
		Email:     "ann@example.com",
		Password:  "nurse-ann-1",
	})
	if err != nil {
		t.Fatalf("SubmitManualForm() failed: %v", err)
	}
	if created.ID != "app-1" {
		t.Errorf("ID = %q", created.ID)
	}
	if got.PhoneNumber != "415-555-0000" || got.DateOfBirth != "1990-02-03" {
		t.Errorf("wizard inputs not carried over: %+v", got)
	}

	snap := flow.Snapshot()
	if snap.State != StateSuccess {
		t.Fatalf("State = %s, want %s", snap.State, StateSuccess)
	}
	if snap.AccountInfo.Identity.Name.FirstName != "Ann" || snap.AccountInfo.BankName != "" {
		t.Errorf("AccountInfo = %+v", snap.AccountInfo)
	}
	if snap.AccountInfo.AccountObjects == nil {
		t.Error("AccountObjects should be empty, not nil")
	}
	if snap.DebugInfo != messages.Default().ManualSuccess {
		t.Errorf("DebugInfo = %q", snap.DebugInfo)
	}
}

func TestSubmitManualForm_WrongState(t *testing.T) {
	flow, _ := startedFlow(t, &MockRelay{})

	_, err := flow.SubmitManualForm(context.Background(), applicant.RegisterParams{})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestSubmitManualForm_RelayError(t *testing.T) {
	relay := &MockRelay{
		RegisterApplicantFunc: func(ctx context.Context, params applicant.RegisterParams) (*applicant.Applicant, error) {
			return nil, errors.New("Server Error: an applicant with this email already exists")
		},
	}
	flow, _ := startedFlow(t, relay)
	flow.OnExit(context.Background(), nil)

	if _, err := flow.SubmitManualForm(context.Background(), applicant.RegisterParams{}); err == nil {
		t.Fatal("expected error")
	}
	if flow.State() != StateManualForm {
		t.Errorf("State() = %s", flow.State())
	}
	if !strings.HasPrefix(flow.DebugInfo(), "❌ Server Error:") {
		t.Errorf("DebugInfo() = %q", flow.DebugInfo())
	}
}

func TestObserve(t *testing.T) {
	flow, _ := startedFlow(t, &MockRelay{})

	var seen []FlowState
	flow.Observe(func(s Snapshot) {
		seen = append(seen, s.State)
	})

	flow.ClickCreateAccount()
	flow.OnEvent(context.Background(), EventLayerNotAvailable)
	flow.OnExit(context.Background(), nil)

	want := []FlowState{StatePhoneInput, StateBirthdayInput, StateManualForm}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %s, want %s", i, seen[i], want[i])
		}
	}
}

func TestCustomMessages(t *testing.T) {
	msgs := messages.Default()
	msgs.PhoneInput = "Type your number"

	flow := NewFlow(&MockRelay{}, &MockLauncher{Widget: &MockWidget{}}, msgs)
	flow.ClickCreateAccount()

	if flow.DebugInfo() != "Type your number" {
		t.Errorf("DebugInfo() = %q", flow.DebugInfo())
	}
}

func TestIsoDate(t *testing.T) {
	tests := map[string]string{
		"01/18/1975": "1975-01-18",
		"1975-01-18": "1975-01-18",
		"":           "",
		"18.01.1975": "18.01.1975",
	}
	for in, want := range tests {
		if got := isoDate(in); got != want {
			t.Errorf("isoDate(%q) = %q, want %q", in, got, want)
		}
	}
}

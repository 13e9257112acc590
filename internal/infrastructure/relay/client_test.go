package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"layerdemo/internal/domain/applicant"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func TestCreateSessionToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/server/tokens/create_session_token" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["clientUserId"] != "user-1" {
			t.Errorf("clientUserId = %q", body["clientUserId"])
		}
		io.WriteString(w, `{"linkToken":"link-sandbox-1"}`)
	})

	token, err := client.CreateSessionToken(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CreateSessionToken() failed: %v", err)
	}
	if token != "link-sandbox-1" {
		t.Errorf("token = %q", token)
	}
}

func TestFetchAccountSessionInfo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["publicToken"] != "public-sandbox-1" {
			t.Errorf("publicToken = %q", body["publicToken"])
		}
		io.WriteString(w, `{
			"identity": {"name": {"first_name": "Leslie", "last_name": "Knope"}, "phone_number": "+14155550011"},
			"bankName": "First Platypus Bank",
			"accountObjects": [{"acctName": "Plaid Checking", "balance": 110, "acctType": "depository", "acctSubtype": "checking", "acctMask": "0000"}]
		}`)
	})

	info, err := client.FetchAccountSessionInfo(context.Background(), "public-sandbox-1")
	if err != nil {
		t.Fatalf("FetchAccountSessionInfo() failed: %v", err)
	}
	if info.Identity.Name.FirstName != "Leslie" || info.BankName != "First Platypus Bank" {
		t.Errorf("info = %+v", info)
	}
	if len(info.AccountObjects) != 1 || *info.AccountObjects[0].Balance != 110 {
		t.Errorf("AccountObjects = %+v", info.AccountObjects)
	}
}

func TestRegisterApplicant(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body applicant.RegisterParams
		json.NewDecoder(r.Body).Decode(&body)
		if body.Email != "ann@example.com" || body.Password != "nurse-ann-1" {
			t.Errorf("body = %+v", body)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"app-1","firstName":"Ann","email":"ann@example.com"}`)
	})

	created, err := client.RegisterApplicant(context.Background(), applicant.RegisterParams{
		FirstName: "Ann",
		Email:     "ann@example.com",
		Password:  "nurse-ann-1",
	})
	if err != nil {
		t.Fatalf("RegisterApplicant() failed: %v", err)
	}
	if created.ID != "app-1" {
		t.Errorf("ID = %q", created.ID)
	}
}

func TestServerErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			name:    "error field",
			status:  http.StatusInternalServerError,
			body:    `{"error":"something broke"}`,
			wantMsg: "Server Error: something broke",
		},
		{
			name:    "vendor body",
			status:  http.StatusInternalServerError,
			body:    `{ "error_code": "INVALID_FIELD", "error_message": "bad template" }`,
			wantMsg: `Server Error: {"error_code":"INVALID_FIELD","error_message":"bad template"}`,
		},
		{
			name:    "bad request",
			status:  http.StatusBadRequest,
			body:    `{"error_code":"INVALID_REQUEST","error_message":"publicToken is required"}`,
			wantMsg: `Server Error: {"error_code":"INVALID_REQUEST","error_message":"publicToken is required"}`,
		},
		{
			name:    "plain text",
			status:  http.StatusBadGateway,
			body:    "bad gateway\n",
			wantMsg: "Server Error: bad gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := client.CreateSessionToken(context.Background(), "user-1")

			var srvErr *ServerError
			if !errors.As(err, &srvErr) {
				t.Fatalf("error = %v, want *ServerError", err)
			}
			if srvErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d", srvErr.StatusCode)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestMalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{not json`)
	})

	_, err := client.FetchAccountSessionInfo(context.Background(), "public-sandbox-1")
	if err == nil {
		t.Fatal("expected error")
	}
	var srvErr *ServerError
	if errors.As(err, &srvErr) {
		t.Error("malformed success body should not be a ServerError")
	}
}

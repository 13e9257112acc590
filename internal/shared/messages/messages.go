// Package messages holds the wizard's debug-panel texts. The defaults are
// embedded; a JSON file with the same keys can replace any of them.
package messages

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

const (
	productLayer            = "Layer"
	productExtendedAutofill = "Extended Autofill"
)

//go:embed messages.json
var defaultJSON []byte

type Messages struct {
	Initial        string `json:"initial"`
	WelcomePending string `json:"welcome_pending"`
	WelcomeReady   string `json:"welcome_ready"`
	PhoneInput     string `json:"phone_input"`
	BirthdayInput  string `json:"birthday_input"`
	ManualForm     string `json:"manual_form"`
	Success        string `json:"success"`
	ManualSuccess  string `json:"manual_success"`
	LayerReady     string `json:"layer_ready"`
	VerifyPhone    string `json:"verify_phone"`
}

var (
	defaults     Messages
	defaultsOnce sync.Once
)

// Default returns the embedded texts
func Default() *Messages {
	defaultsOnce.Do(func() {
		if err := json.Unmarshal(defaultJSON, &defaults); err != nil {
			panic(fmt.Sprintf("embedded messages.json is invalid: %v", err))
		}
	})
	m := defaults
	return &m
}

// Load returns the embedded texts overlaid with the keys present in the file
// at path. An empty path returns the defaults.
func Load(path string) (*Messages, error) {
	m := Default()
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages file: %w", err)
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse messages file: %w", err)
	}
	return m, nil
}

// Welcome is the WELCOME text, which depends on whether the link token has
// arrived yet.
func (m *Messages) Welcome(linkToken string) string {
	if linkToken == "" {
		return m.WelcomePending
	}
	return strings.ReplaceAll(m.WelcomeReady, "{linkToken}", linkToken)
}

// LayerReadyFor names the product the user qualified for
func (m *Messages) LayerReadyFor(extendedAutofill bool) string {
	product := productLayer
	if extendedAutofill {
		product = productExtendedAutofill
	}
	return strings.ReplaceAll(m.LayerReady, "{product}", product)
}

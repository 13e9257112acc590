package layer

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrMissingLinkToken = errors.New("vendor response did not include a link token")
	ErrItemNotFound     = errors.New("linked item not found")
)

// Identity is the identity a user shared through the widget. Every field
// except the phone number is present only when the vendor returned it.
type Identity struct {
	Name        *Name    `json:"name,omitempty"`
	Address     *Address `json:"address,omitempty"`
	DateOfBirth string   `json:"date_of_birth,omitempty"`
	Email       string   `json:"email,omitempty"`
	PhoneNumber string   `json:"phone_number"`
	SSNLast4    string   `json:"ssn_last_4,omitempty"`
}

type Name struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Address struct {
	Street     string `json:"street,omitempty"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// AccountObject is the display-friendly flattening of a linked bank account
type AccountObject struct {
	AcctName    string   `json:"acctName"`
	Balance     *float64 `json:"balance"`
	AcctType    string   `json:"acctType"`
	AcctSubtype string   `json:"acctSubtype"`
	AcctMask    string   `json:"acctMask"`
}

// AccountSessionInfo is everything the wizard shows once Layer succeeds
type AccountSessionInfo struct {
	Identity       *Identity       `json:"identity"`
	BankName       string          `json:"bankName"`
	AccountObjects []AccountObject `json:"accountObjects"`
}

// LinkedItem is a bank connection kept after a successful session
type LinkedItem struct {
	ID              string    `json:"id"`
	ItemID          string    `json:"itemId"`
	AccessToken     string    `json:"-"`
	InstitutionName string    `json:"institutionName"`
	AccountCount    int       `json:"accountCount"`
	CreatedAt       time.Time `json:"createdAt"`
}

// SaveItemParams contains parameters for saving a linked item
type SaveItemParams struct {
	ItemID          string
	AccessToken     string
	InstitutionName string
	AccountCount    int
}

// Validate validates the save parameters
func (p *SaveItemParams) Validate() error {
	if p.ItemID == "" || p.AccessToken == "" {
		return ErrInvalidInput
	}
	return nil
}

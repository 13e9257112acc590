package applicant

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

const (
	minPasswordLength = 8
	// bcrypt ignores anything past 72 bytes
	maxPasswordLength = 72
)

// Domain errors
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrApplicantExists  = errors.New("an applicant with this email already exists")
	ErrApplicantMissing = errors.New("applicant not found")
)

// Applicant is someone who signed up through the manual form because Layer
// could not prefill their details.
type Applicant struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber"`
	DateOfBirth  string    `json:"dateOfBirth"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RegisterParams is what the manual sign-up form submits
type RegisterParams struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	DateOfBirth string `json:"dateOfBirth"`
	Password    string `json:"password"`
}

// CreateParams contains parameters for storing a new applicant
type CreateParams struct {
	FirstName    string
	LastName     string
	Email        string
	PhoneNumber  string
	DateOfBirth  string
	PasswordHash string
}

// ValidationError names the form field that failed validation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Normalize trims whitespace and lowercases the email
func (p *RegisterParams) Normalize() {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
	p.DateOfBirth = strings.TrimSpace(p.DateOfBirth)
}

// Validate validates the form fields
func (p *RegisterParams) Validate() error {
	if p.FirstName == "" {
		return &ValidationError{Field: "firstName", Message: "is required"}
	}
	if p.LastName == "" {
		return &ValidationError{Field: "lastName", Message: "is required"}
	}
	if addr, err := mail.ParseAddress(p.Email); err != nil || addr.Address != p.Email {
		return &ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	if n := len(PhoneDigits(p.PhoneNumber)); n < 10 || n > 15 {
		return &ValidationError{Field: "phoneNumber", Message: "must contain 10 to 15 digits"}
	}
	if p.DateOfBirth != "" {
		dob, err := time.Parse(time.DateOnly, p.DateOfBirth)
		if err != nil {
			return &ValidationError{Field: "dateOfBirth", Message: "must be formatted as YYYY-MM-DD"}
		}
		if dob.After(time.Now()) {
			return &ValidationError{Field: "dateOfBirth", Message: "must be in the past"}
		}
	}
	if len(p.Password) < minPasswordLength {
		return &ValidationError{Field: "password", Message: "must be at least 8 characters"}
	}
	if len(p.Password) > maxPasswordLength {
		return &ValidationError{Field: "password", Message: "must be at most 72 bytes"}
	}
	return nil
}

// PhoneDigits strips everything but digits from a phone number
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package applicant

import (
	"context"
	"errors"
	"fmt"

	"layerdemo/internal/shared/auth"
)

// Service contains the business logic for the manual sign-up fallback
type Service struct {
	repo Repository
}

// NewService creates a new applicant service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register validates the form, hashes the password and stores the applicant
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Applicant, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, params.Email)
	if err != nil && !errors.Is(err, ErrApplicantMissing) {
		return nil, fmt.Errorf("failed to look up applicant: %w", err)
	}
	if existing != nil {
		return nil, ErrApplicantExists
	}

	passwordHash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.Create(ctx, CreateParams{
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        params.Email,
		PhoneNumber:  params.PhoneNumber,
		DateOfBirth:  params.DateOfBirth,
		PasswordHash: passwordHash,
	})
}

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"layerdemo/internal/domain/applicant"
)

// ApplicantRepository indexes applicants by email
type ApplicantRepository struct {
	mu         sync.RWMutex
	applicants map[string]applicant.Applicant
}

// Ensure ApplicantRepository implements applicant.Repository
var _ applicant.Repository = (*ApplicantRepository)(nil)

func NewApplicantRepository() *ApplicantRepository {
	return &ApplicantRepository{applicants: make(map[string]applicant.Applicant)}
}

func (r *ApplicantRepository) Create(ctx context.Context, params applicant.CreateParams) (*applicant.Applicant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.applicants[params.Email]; exists {
		return nil, applicant.ErrApplicantExists
	}

	a := applicant.Applicant{
		ID:           uuid.NewString(),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        params.Email,
		PhoneNumber:  params.PhoneNumber,
		DateOfBirth:  params.DateOfBirth,
		PasswordHash: params.PasswordHash,
		CreatedAt:    time.Now(),
	}
	r.applicants[params.Email] = a
	return &a, nil
}

func (r *ApplicantRepository) GetByEmail(ctx context.Context, email string) (*applicant.Applicant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.applicants[email]
	if !ok {
		return nil, applicant.ErrApplicantMissing
	}
	return &a, nil
}

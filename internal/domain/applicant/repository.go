package applicant

import "context"

// Repository defines the interface for applicant data access
type Repository interface {
	// Create stores a new applicant, returning ErrApplicantExists on a duplicate email
	Create(ctx context.Context, params CreateParams) (*Applicant, error)

	// GetByEmail retrieves an applicant by email, returning ErrApplicantMissing when absent
	GetByEmail(ctx context.Context, email string) (*Applicant, error)
}

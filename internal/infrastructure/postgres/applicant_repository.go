package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"layerdemo/internal/domain/applicant"
)

const uniqueViolation = "23505"

type ApplicantRepository struct {
	db *DB
}

// Ensure ApplicantRepository implements applicant.Repository
var _ applicant.Repository = (*ApplicantRepository)(nil)

func NewApplicantRepository(db *DB) *ApplicantRepository {
	return &ApplicantRepository{db: db}
}

// Create inserts a new applicant. A concurrent registration racing past the
// service's duplicate check still maps to ErrApplicantExists.
func (r *ApplicantRepository) Create(ctx context.Context, params applicant.CreateParams) (*applicant.Applicant, error) {
	query := `
		INSERT INTO applicants (first_name, last_name, email, phone_number, date_of_birth, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	var dob sql.NullString
	if params.DateOfBirth != "" {
		dob = sql.NullString{String: params.DateOfBirth, Valid: true}
	}

	a := &applicant.Applicant{
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        params.Email,
		PhoneNumber:  params.PhoneNumber,
		DateOfBirth:  params.DateOfBirth,
		PasswordHash: params.PasswordHash,
	}

	err := r.db.QueryRowContext(ctx, query,
		params.FirstName, params.LastName, params.Email, params.PhoneNumber, dob, params.PasswordHash,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, applicant.ErrApplicantExists
		}
		return nil, fmt.Errorf("failed to create applicant: %w", err)
	}

	return a, nil
}

// GetByEmail retrieves an applicant by their normalized email
func (r *ApplicantRepository) GetByEmail(ctx context.Context, email string) (*applicant.Applicant, error) {
	query := `
		SELECT id, first_name, last_name, email, phone_number,
		       COALESCE(to_char(date_of_birth, 'YYYY-MM-DD'), ''), password_hash, created_at
		FROM applicants
		WHERE email = $1
	`

	var a applicant.Applicant
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.PhoneNumber,
		&a.DateOfBirth, &a.PasswordHash, &a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, applicant.ErrApplicantMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get applicant: %w", err)
	}
	return &a, nil
}

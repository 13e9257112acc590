package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"layerdemo/internal/domain/applicant"
)

func TestApplicantRepository(t *testing.T) {
	repo := NewApplicantRepository()
	ctx := context.Background()

	params := applicant.CreateParams{
		FirstName:    "Ann",
		LastName:     "Perkins",
		Email:        "ann@example.com",
		PhoneNumber:  "415-555-0000",
		PasswordHash: "hash",
	}

	created, err := repo.Create(ctx, params)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Errorf("created = %+v, want id and timestamp", created)
	}

	if _, err := repo.Create(ctx, params); !errors.Is(err, applicant.ErrApplicantExists) {
		t.Errorf("second Create() error = %v, want %v", err, applicant.ErrApplicantExists)
	}

	got, err := repo.GetByEmail(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %q, want %q", got.ID, created.ID)
	}

	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, applicant.ErrApplicantMissing) {
		t.Errorf("GetByEmail() error = %v, want %v", err, applicant.ErrApplicantMissing)
	}
}

func TestApplicantRepository_ConcurrentCreate(t *testing.T) {
	repo := NewApplicantRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, applicant.CreateParams{Email: "same@example.com"})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("created = %d, want exactly 1", created)
	}
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"layerdemo/internal/domain/layer"
	"layerdemo/internal/infrastructure/crypto"
)

// ItemRepository keeps linked items with their access tokens encrypted at rest
type ItemRepository struct {
	db        *DB
	encryptor *crypto.Encryptor
}

// Ensure ItemRepository implements layer.ItemRepository
var _ layer.ItemRepository = (*ItemRepository)(nil)

func NewItemRepository(db *DB, encryptor *crypto.Encryptor) *ItemRepository {
	return &ItemRepository{db: db, encryptor: encryptor}
}

// Save upserts on item_id. A second session for the same item refreshes the
// token, institution and account count but keeps the original id.
func (r *ItemRepository) Save(ctx context.Context, params layer.SaveItemParams) (*layer.LinkedItem, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	encrypted, err := r.encryptor.Encrypt(params.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	query := `
		INSERT INTO linked_items (item_id, access_token, institution_name, account_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (item_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			institution_name = EXCLUDED.institution_name,
			account_count = EXCLUDED.account_count,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, item_id, institution_name, account_count, created_at
	`

	var item layer.LinkedItem
	err = r.db.QueryRowContext(ctx, query,
		params.ItemID, encrypted, params.InstitutionName, params.AccountCount,
	).Scan(&item.ID, &item.ItemID, &item.InstitutionName, &item.AccountCount, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save linked item: %w", err)
	}

	item.AccessToken = params.AccessToken
	return &item, nil
}

// GetByItemID retrieves a linked item and decrypts its access token
func (r *ItemRepository) GetByItemID(ctx context.Context, itemID string) (*layer.LinkedItem, error) {
	query := `
		SELECT id, item_id, access_token, institution_name, account_count, created_at
		FROM linked_items
		WHERE item_id = $1
	`

	var item layer.LinkedItem
	var encrypted string
	err := r.db.QueryRowContext(ctx, query, itemID).Scan(
		&item.ID, &item.ItemID, &encrypted, &item.InstitutionName, &item.AccountCount, &item.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, layer.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get linked item: %w", err)
	}

	item.AccessToken, err = r.encryptor.Decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	return &item, nil
}

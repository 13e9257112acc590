package layer

import "context"

// ItemRepository defines the interface for linked item storage
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type ItemRepository interface {
	// Save inserts a linked item or refreshes it when the item ID already exists
	Save(ctx context.Context, params SaveItemParams) (*LinkedItem, error)

	// GetByItemID retrieves a linked item by the vendor's item ID
	GetByItemID(ctx context.Context, itemID string) (*LinkedItem, error)
}

package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CartRepository resolves the priced cart of a customer.
type CartRepository interface {
	Snapshot(ctx context.Context, customerID uuid.UUID) (*model.CartSnapshot, error)
}

package repository

import (
	"context"

	"github.com/google/uuid"
)

// AddressRepository answers ownership questions about shipping addresses.
type AddressRepository interface {
	IsOwnedBy(ctx context.Context, addressID, customerID uuid.UUID) (bool, error)
}

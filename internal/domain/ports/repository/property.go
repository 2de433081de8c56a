package repository

import (
	"context"

	"realestate-marketplace/internal/domain/model"
)

type PropertyRepository interface {
	// Save persists a property (insert or update). Callers are expected to
	// have run the visibility gate before saving inside the same transaction.
	Save(ctx context.Context, tx Tx, p *model.Property) error

	// FindByID returns the property; inside a transaction the row is locked
	// FOR UPDATE so promotion activation and admin moderation serialize.
	FindByID(ctx context.Context, tx Tx, id string) (*model.Property, error)

	ListByOwner(ctx context.Context, tx Tx, ownerID string) ([]*model.Property, error)
}

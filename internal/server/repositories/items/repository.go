package items

import (
	"context"

	"github.com/dmitrijs2005/apparel/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	GetByID(ctx context.Context, id string) (*models.Item, error)
	// ListByIDs returns the items that exist among ids, in the order of ids.
	ListByIDs(ctx context.Context, ids []string) ([]models.Item, error)
	// ListForUser returns the user's items in the order they were added.
	ListForUser(ctx context.Context, username string) ([]models.Item, error)
}

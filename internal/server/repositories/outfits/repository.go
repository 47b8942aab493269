package outfits

import (
	"context"

	"github.com/dmitrijs2005/apparel/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, outfit *models.Outfit) (*models.Outfit, error)
	ListForUser(ctx context.Context, username string) ([]models.Outfit, error)
}

package users

import (
	"context"

	"github.com/dmitrijs2005/apparel/internal/server/models"
)

// Repository persists accounts and their owned-id lists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	AppendItemID(ctx context.Context, username, itemID string) error
	AppendOutfitID(ctx context.Context, username, outfitID string) error
	UpdateGender(ctx context.Context, username, gender string) error
	UpdatePicture(ctx context.Context, username, pictureKey string) error
	OwnsItem(ctx context.Context, username, itemID string) (bool, error)
}

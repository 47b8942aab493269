package client

import (
	"context"

	"github.com/dmitrijs2005/apparel/internal/server/models"
)

// Client is the API surface the CLI uses.
type Client interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error

	Items(ctx context.Context, username string) ([]models.Item, error)
	Item(ctx context.Context, id string) (*models.Item, error)
	Outfits(ctx context.Context, username string) ([]models.Outfit, error)
	Search(ctx context.Context, username, keyword string) ([]models.Item, error)
	Filter(ctx context.Context, username, field, keyword string) ([]models.Item, error)
}

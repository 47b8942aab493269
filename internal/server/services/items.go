package services

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/apparel/internal/common"
	"github.com/dmitrijs2005/apparel/internal/dbx"
	"github.com/dmitrijs2005/apparel/internal/server/filter"
	"github.com/dmitrijs2005/apparel/internal/server/importer"
	"github.com/dmitrijs2005/apparel/internal/server/models"
	"github.com/google/uuid"
)

type ItemService struct {
	Deps
}

func NewItemService(deps Deps) *ItemService {
	deps.withDefaults()
	deps.Logger = deps.Logger.With("module", "items")
	return &ItemService{Deps: deps}
}

// Create saves item for username. The insert and the append to the user's
// item list commit together or not at all.
func (s *ItemService) Create(ctx context.Context, username string, item *models.Item, pic *Upload) (*models.Item, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	key, err := s.storePicture(ctx, pic)
	if err != nil {
		return nil, err
	}

	item.ID = uuid.NewString()
	item.PictureKey = key

	err = s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.Repos.Items(tx).Create(ctx, item); err != nil {
			return err
		}
		return s.Repos.Users(tx).AppendItemID(ctx, username, item.ID)
	})
	if err != nil {
		s.discardPicture(ctx, key)
		return nil, persistErr(err)
	}

	item.PictureURL = s.pictureURL(ctx, item.PictureKey)
	s.Logger.Info(ctx, "item created", "user", username, "id", item.ID)
	return item, nil
}

// Get returns item id if username owns it. Items of other users look the
// same as missing ones.
func (s *ItemService) Get(ctx context.Context, username, id string) (*models.Item, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	owns, err := s.Repos.Users(s.DB).OwnsItem(ctx, username, id)
	if err != nil {
		return nil, persistErr(err)
	}
	if !owns {
		return nil, common.ErrorNotFound
	}

	item, err := s.Repos.Items(s.DB).GetByID(ctx, id)
	if err != nil {
		return nil, persistErr(err)
	}
	item.PictureURL = s.pictureURL(ctx, item.PictureKey)
	return item, nil
}

func (s *ItemService) List(ctx context.Context, username string) ([]models.Item, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	items, err := s.Repos.Items(s.DB).ListForUser(ctx, username)
	if err != nil {
		return nil, persistErr(err)
	}
	for i := range items {
		items[i].PictureURL = s.pictureURL(ctx, items[i].PictureKey)
	}
	return items, nil
}

// FilterByField filters the user's items on one field. The field name is
// checked before anything is loaded.
func (s *ItemService) FilterByField(ctx context.Context, username, field, keyword string) ([]models.Item, error) {
	if _, ok := filter.ItemSchema.Lookup(field); !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownField, field)
	}
	items, err := s.List(ctx, username)
	if err != nil {
		return nil, err
	}
	return filter.FilterByField(items, field, keyword)
}

func (s *ItemService) Search(ctx context.Context, username, keyword string) ([]models.Item, error) {
	items, err := s.List(ctx, username)
	if err != nil {
		return nil, err
	}
	return filter.Search(items, keyword), nil
}

// Import parses an .xlsx workbook and saves all its rows for username in a
// single transaction. It returns the number of items saved.
func (s *ItemService) Import(ctx context.Context, username string, r io.Reader, sheet string) (int, error) {
	parsed, err := importer.Parse(r, sheet)
	if err != nil {
		return 0, err
	}
	if len(parsed) == 0 {
		return 0, nil
	}

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	err = s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		items, users := s.Repos.Items(tx), s.Repos.Users(tx)
		for i := range parsed {
			parsed[i].ID = uuid.NewString()
			if _, err := items.Create(ctx, &parsed[i]); err != nil {
				return err
			}
			if err := users.AppendItemID(ctx, username, parsed[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, persistErr(err)
	}

	s.Logger.Info(ctx, "items imported", "user", username, "count", len(parsed))
	return len(parsed), nil
}

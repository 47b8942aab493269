package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/apparel/internal/common"
	"github.com/dmitrijs2005/apparel/internal/dbx"
	"github.com/dmitrijs2005/apparel/internal/server/models"
	"github.com/google/uuid"
)

type OutfitService struct {
	Deps
}

func NewOutfitService(deps Deps) *OutfitService {
	deps.withDefaults()
	deps.Logger = deps.Logger.With("module", "outfits")
	return &OutfitService{Deps: deps}
}

// Create saves an outfit. Every referenced item must exist and belong to
// username.
func (s *OutfitService) Create(ctx context.Context, username string, outfit *models.Outfit, pic *Upload) (*models.Outfit, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	user, err := s.Repos.Users(s.DB).GetByUsername(ctx, username)
	if err != nil {
		return nil, persistErr(err)
	}

	ids := dedupe(outfit.ItemIDs)
	for _, id := range ids {
		if !user.OwnsItem(id) {
			return nil, fmt.Errorf("%w: item %s is not in your wardrobe", common.ErrForbidden, id)
		}
	}
	found, err := s.Repos.Items(s.DB).ListByIDs(ctx, ids)
	if err != nil {
		return nil, persistErr(err)
	}
	if len(found) != len(ids) {
		return nil, fmt.Errorf("%w: outfit references missing items", common.ErrValidation)
	}

	key, err := s.storePicture(ctx, pic)
	if err != nil {
		return nil, err
	}

	outfit.ID = uuid.NewString()
	outfit.ItemIDs = ids
	outfit.PictureKey = key

	err = s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.Repos.Outfits(tx).Create(ctx, outfit); err != nil {
			return err
		}
		return s.Repos.Users(tx).AppendOutfitID(ctx, username, outfit.ID)
	})
	if err != nil {
		s.discardPicture(ctx, key)
		return nil, persistErr(err)
	}

	outfit.PictureURL = s.pictureURL(ctx, outfit.PictureKey)
	s.Logger.Info(ctx, "outfit created", "user", username, "id", outfit.ID, "items", len(ids))
	return outfit, nil
}

func (s *OutfitService) List(ctx context.Context, username string) ([]models.Outfit, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	outfits, err := s.Repos.Outfits(s.DB).ListForUser(ctx, username)
	if err != nil {
		return nil, persistErr(err)
	}
	for i := range outfits {
		outfits[i].PictureURL = s.pictureURL(ctx, outfits[i].PictureKey)
	}
	return outfits, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package outfits

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/apparel/internal/dbx"
	"github.com/dmitrijs2005/apparel/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, o *models.Outfit) (*models.Outfit, error) {
	styles := o.Styles
	if styles == nil {
		styles = []string{}
	}
	stylesDoc, err := json.Marshal(styles)
	if err != nil {
		return nil, fmt.Errorf("encode styles: %w", err)
	}
	itemIDs := o.ItemIDs
	if itemIDs == nil {
		itemIDs = []string{}
	}

	query :=
		`INSERT INTO outfits (id, name, description, styles, season, rating, item_ids, picture_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query,
		o.ID, o.Name, o.Description, stylesDoc, o.Season, dbx.NullInt(o.Rating), itemIDs, o.PictureKey,
	).Scan(&o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, username string) ([]models.Outfit, error) {
	query :=
		`SELECT o.id, o.name, o.description, o.styles, o.season, o.rating, o.item_ids, o.picture_key, o.created_at
		 FROM users u
		 CROSS JOIN LATERAL unnest(u.outfit_ids) WITH ORDINALITY AS owned(id, pos)
		 JOIN outfits o ON o.id = owned.id
		 WHERE u.username = $1
		 ORDER BY owned.pos`

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Outfit, 0)
	for rows.Next() {
		var (
			o      models.Outfit
			styles []byte
			rating sql.NullInt64
		)
		if err := rows.Scan(&o.ID, &o.Name, &o.Description, &styles, &o.Season, &rating,
			dbx.StringArray(&o.ItemIDs), &o.PictureKey, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if len(styles) > 0 {
			if err := json.Unmarshal(styles, &o.Styles); err != nil {
				return nil, fmt.Errorf("outfit %s: decode styles: %w", o.ID, err)
			}
		}
		o.Rating = dbx.IntOrNil(rating)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

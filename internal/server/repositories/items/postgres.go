// Package items stores wardrobe items. Multi-valued attributes (styles,
// palettes, size, purchase) are kept as JSONB documents.
package items

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/apparel/internal/common"
	"github.com/dmitrijs2005/apparel/internal/dbx"
	"github.com/dmitrijs2005/apparel/internal/server/models"
)

const columns = `id, description, category, sub_category, type, styles, fit, length,
	color, material, brand, rating, condition, size, purchase, picture_key, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	doc, err := encode(item)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO items (id, description, category, sub_category, type, styles, fit, length,
			color, material, brand, rating, condition, size, purchase, picture_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query,
		item.ID, item.Description, item.Category, item.SubCategory, item.Type, doc.styles,
		item.Fit, item.Length, doc.color, doc.material, item.Brand,
		dbx.NullInt(item.Rating), dbx.NullInt(item.Condition), doc.size, doc.purchase, item.PictureKey,
	).Scan(&item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM items WHERE id = $1`, id)

	item, err := scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Item, error) {
	if len(ids) == 0 {
		return []models.Item{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	found, err := collect(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Item, len(found))
	for _, it := range found {
		byID[it.ID] = it
	}
	out := make([]models.Item, 0, len(found))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, username string) ([]models.Item, error) {
	query :=
		`SELECT i.id, i.description, i.category, i.sub_category, i.type, i.styles, i.fit, i.length,
			i.color, i.material, i.brand, i.rating, i.condition, i.size, i.purchase, i.picture_key, i.created_at
		 FROM users u
		 CROSS JOIN LATERAL unnest(u.item_ids) WITH ORDINALITY AS owned(id, pos)
		 JOIN items i ON i.id = owned.id
		 WHERE u.username = $1
		 ORDER BY owned.pos`

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collect(rows)
}

type document struct {
	styles, color, material []byte
	size, purchase          []byte
}

func encode(item *models.Item) (*document, error) {
	var d document
	var err error

	styles := item.Styles
	if styles == nil {
		styles = []string{}
	}
	if d.styles, err = json.Marshal(styles); err != nil {
		return nil, fmt.Errorf("encode styles: %w", err)
	}
	if d.color, err = json.Marshal(item.Color); err != nil {
		return nil, fmt.Errorf("encode color: %w", err)
	}
	if d.material, err = json.Marshal(item.Material); err != nil {
		return nil, fmt.Errorf("encode material: %w", err)
	}
	if item.Size.Kind != models.SizeNone {
		if d.size, err = json.Marshal(item.Size); err != nil {
			return nil, fmt.Errorf("encode size: %w", err)
		}
	}
	if item.Purchase != nil {
		if d.purchase, err = json.Marshal(item.Purchase); err != nil {
			return nil, fmt.Errorf("encode purchase: %w", err)
		}
	}
	return &d, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Item, error) {
	var (
		it                models.Item
		d                 document
		rating, condition sql.NullInt64
	)
	err := s.Scan(
		&it.ID, &it.Description, &it.Category, &it.SubCategory, &it.Type, &d.styles, &it.Fit, &it.Length,
		&d.color, &d.material, &it.Brand, &rating, &condition, &d.size, &d.purchase, &it.PictureKey, &it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	it.Rating = dbx.IntOrNil(rating)
	it.Condition = dbx.IntOrNil(condition)
	if err := decode(&d, &it); err != nil {
		return nil, fmt.Errorf("item %s: %w", it.ID, err)
	}
	return &it, nil
}

func decode(d *document, it *models.Item) error {
	if len(d.styles) > 0 {
		if err := json.Unmarshal(d.styles, &it.Styles); err != nil {
			return fmt.Errorf("decode styles: %w", err)
		}
	}
	if len(d.color) > 0 {
		if err := json.Unmarshal(d.color, &it.Color); err != nil {
			return fmt.Errorf("decode color: %w", err)
		}
	}
	if len(d.material) > 0 {
		if err := json.Unmarshal(d.material, &it.Material); err != nil {
			return fmt.Errorf("decode material: %w", err)
		}
	}
	if len(d.size) > 0 {
		if err := json.Unmarshal(d.size, &it.Size); err != nil {
			return fmt.Errorf("decode size: %w", err)
		}
	}
	if len(d.purchase) > 0 {
		it.Purchase = &models.Purchase{}
		if err := json.Unmarshal(d.purchase, it.Purchase); err != nil {
			return fmt.Errorf("decode purchase: %w", err)
		}
	}
	return nil
}

func collect(rows *sql.Rows) ([]models.Item, error) {
	defer rows.Close()

	out := make([]models.Item, 0)
	for rows.Next() {
		it, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

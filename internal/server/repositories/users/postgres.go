package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/apparel/internal/common"
	"github.com/dmitrijs2005/apparel/internal/dbx"
	"github.com/dmitrijs2005/apparel/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts user with the caller-assigned ID. A taken username yields
// common.ErrDuplicateUser.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, username, salt, hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Salt, user.Hash).Scan(&user.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateUser
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query :=
		`SELECT id, username, salt, hash, gender, picture_key, item_ids, outfit_ids, created_at
		 FROM users
		 WHERE username = $1`

	u := &models.User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.Salt, &u.Hash, &u.Gender, &u.PictureKey,
		dbx.StringArray(&u.ItemIDs), dbx.StringArray(&u.OutfitIDs), &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return u, nil
}

// AppendItemID adds itemID to the user's item list unless it is already
// there. The check and the append are one statement, so concurrent appends
// for the same user cannot overwrite each other.
func (r *PostgresRepository) AppendItemID(ctx context.Context, username, itemID string) error {
	return r.appendID(ctx,
		`UPDATE users SET item_ids = array_append(item_ids, $2)
		 WHERE username = $1 AND NOT ($2 = ANY(item_ids))`,
		username, itemID)
}

func (r *PostgresRepository) AppendOutfitID(ctx context.Context, username, outfitID string) error {
	return r.appendID(ctx,
		`UPDATE users SET outfit_ids = array_append(outfit_ids, $2)
		 WHERE username = $1 AND NOT ($2 = ANY(outfit_ids))`,
		username, outfitID)
}

func (r *PostgresRepository) appendID(ctx context.Context, query, username, id string) error {
	res, err := r.db.ExecContext(ctx, query, username, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Nothing changed: either the id is already present or the user does
	// not exist.
	return r.mustExist(ctx, username)
}

func (r *PostgresRepository) UpdateGender(ctx context.Context, username, gender string) error {
	return r.updateOne(ctx, `UPDATE users SET gender = $2 WHERE username = $1`, username, gender)
}

func (r *PostgresRepository) UpdatePicture(ctx context.Context, username, pictureKey string) error {
	return r.updateOne(ctx, `UPDATE users SET picture_key = $2 WHERE username = $1`, username, pictureKey)
}

func (r *PostgresRepository) OwnsItem(ctx context.Context, username, itemID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND $2 = ANY(item_ids))`

	var owns bool
	if err := r.db.QueryRowContext(ctx, query, username, itemID).Scan(&owns); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return owns, nil
}

func (r *PostgresRepository) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) mustExist(ctx context.Context, username string) error {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if !exists {
		return common.ErrorNotFound
	}
	return nil
}

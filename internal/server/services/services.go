// Package services holds the server business logic between the HTTP
// handlers and the repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/apparel/internal/common"
	"github.com/dmitrijs2005/apparel/internal/dbx"
	"github.com/dmitrijs2005/apparel/internal/logging"
	"github.com/dmitrijs2005/apparel/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/apparel/internal/server/storage"
)

// DB is what the services need from the database handle. *sql.DB
// satisfies it.
type DB interface {
	dbx.DBTX
	dbx.Beginner
}

// Upload is an optional picture sent with a record.
type Upload struct {
	Body        io.Reader
	Size        int64
	ContentType string
}

// Deps bundles the collaborators shared by all services.
type Deps struct {
	DB           DB
	Repos        repomanager.RepositoryManager
	Store        storage.ObjectStore
	QueryTimeout time.Duration
	Logger       logging.Logger
	Now          func() time.Time
}

func (d *Deps) withDefaults() {
	if d.QueryTimeout <= 0 {
		d.QueryTimeout = 5 * time.Second
	}
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

func (d *Deps) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.QueryTimeout)
}

func (d *Deps) withTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, d.DB, &sql.TxOptions{}, fn)
}

// storePicture uploads pic under a new key. A nil upload stores nothing and
// returns "".
func (d *Deps) storePicture(ctx context.Context, pic *Upload) (string, error) {
	if pic == nil || pic.Body == nil {
		return "", nil
	}
	if d.Store == nil {
		return "", fmt.Errorf("%w: picture storage is not configured", common.ErrValidation)
	}
	key := storage.NewKey(d.Now())
	if err := d.Store.Put(ctx, key, pic.ContentType, pic.Body, pic.Size); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrPersistenceUnavailable, err)
	}
	return key, nil
}

// discardPicture removes an object whose record was never saved. Failures
// are only logged along with the key so the object can be cleaned up by
// hand.
func (d *Deps) discardPicture(ctx context.Context, key string) {
	if key == "" || d.Store == nil {
		return
	}
	// The request context may be the reason the save failed.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.QueryTimeout)
	defer cancel()
	if err := d.Store.Delete(ctx, key); err != nil {
		d.Logger.Error(ctx, "orphaned picture", "key", key, "error", err)
	}
}

// pictureURL presigns key. Failures only cost the caller the URL, so they
// are logged and swallowed.
func (d *Deps) pictureURL(ctx context.Context, key string) string {
	if key == "" || d.Store == nil {
		return ""
	}
	url, err := d.Store.PresignGet(ctx, key)
	if err != nil {
		d.Logger.Warn(ctx, "presign failed", "key", key, "error", err)
		return ""
	}
	return url
}

var domainErrors = []error{
	common.ErrorNotFound,
	common.ErrDuplicateUser,
	common.ErrInvalidCredentials,
	common.ErrSessionExpired,
	common.ErrInvalidToken,
	common.ErrForbidden,
	common.ErrValidation,
	common.ErrUnknownField,
	common.ErrPersistenceUnavailable,
}

// persistErr keeps domain errors as they are and turns anything else coming
// out of the persistence layer, timeouts included, into
// ErrPersistenceUnavailable.
func persistErr(err error) error {
	if err == nil {
		return nil
	}
	for _, e := range domainErrors {
		if errors.Is(err, e) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", common.ErrPersistenceUnavailable, err)
}

package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/apparel/internal/dbx"
	"github.com/dmitrijs2005/apparel/internal/server/repositories/items"
	"github.com/dmitrijs2005/apparel/internal/server/repositories/outfits"
	"github.com/dmitrijs2005/apparel/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a database handle, so the
// same code runs against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Items(db dbx.DBTX) items.Repository
	Outfits(db dbx.DBTX) outfits.Repository
}

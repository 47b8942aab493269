// Package server wires the apparel backend together: configuration,
// PostgreSQL, object storage, the session store and the HTTP and gRPC
// servers. It handles graceful shutdown on SIGINT and SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/apparel/internal/filex"
	"github.com/dmitrijs2005/apparel/internal/logging"
	"github.com/dmitrijs2005/apparel/internal/server/config"
	"github.com/dmitrijs2005/apparel/internal/server/httpapi"
	"github.com/dmitrijs2005/apparel/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/apparel/internal/server/services"
	"github.com/dmitrijs2005/apparel/internal/server/sessions"
	"github.com/dmitrijs2005/apparel/internal/server/storage"

	gs "github.com/dmitrijs2005/apparel/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	sessions *sessions.Store
	http     *httpapi.Server
	grpc     *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	store, err := storage.NewS3Store(ctx, storage.S3Config{
		Region:   c.S3Region,
		User:     c.S3RootUser,
		Password: c.S3RootPassword,
		Endpoint: c.S3BaseEndpoint,
		Bucket:   c.S3Bucket,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	st, err := sessions.New(c.SessionTTL, c.SessionCapacity,
		sessions.WithSweepInterval(c.SessionSweepInterval),
		sessions.WithLogger(logger.With("module", "sessions")),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	publicDir, err := filex.EnsureDir(c.PublicDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	deps := services.Deps{
		DB:           db,
		Repos:        rm,
		Store:        store,
		QueryTimeout: c.QueryTimeout,
		Logger:       logger,
	}
	us := services.NewUserService(deps, st, services.UserOptions{
		Secret:       []byte(c.SecretKey),
		Iterations:   c.PBKDF2Iterations,
		CookieMaxAge: c.CookieMaxAge,
	})
	is := services.NewItemService(deps)
	ofs := services.NewOutfitService(deps)

	h := httpapi.NewHandler(us, is, ofs, httpapi.Options{
		AllowedOrigin:  c.AllowedOrigin,
		PublicDir:      publicDir,
		RequestTimeout: c.RequestTimeout,
	}, logger)

	prober := gs.NewProber(db, 0, c.QueryTimeout, logger)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		sessions: st,
		http:     httpapi.NewServer(c.HTTPAddr, h.Routes(), logger),
		grpc:     gs.NewGRPCServer(c.GRPCAddr, logger, prober),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until a signal arrives or one of the servers fails, then
// waits for everything to stop and closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sessions.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.http.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.grpc.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}

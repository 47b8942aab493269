// Package httpapi exposes the wardrobe services over HTTP.
package httpapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/apparel/internal/logging"
	"github.com/dmitrijs2005/apparel/internal/server/models"
	"github.com/dmitrijs2005/apparel/internal/server/services"
	"github.com/gorilla/mux"
)

// UserService is implemented by *services.UserService.
type UserService interface {
	Register(ctx context.Context, username, password string) (*services.Session, error)
	Login(ctx context.Context, username, password string) (*services.Session, error)
	Logout(ctx context.Context, username string)
	Authenticate(ctx context.Context, cookie string) (string, error)
	UpdateGender(ctx context.Context, username, gender string) error
	UpdateDetails(ctx context.Context, username string, pic *services.Upload) (*models.Profile, error)
}

// ItemService is implemented by *services.ItemService.
type ItemService interface {
	Create(ctx context.Context, username string, item *models.Item, pic *services.Upload) (*models.Item, error)
	Get(ctx context.Context, username, id string) (*models.Item, error)
	List(ctx context.Context, username string) ([]models.Item, error)
	FilterByField(ctx context.Context, username, field, keyword string) ([]models.Item, error)
	Search(ctx context.Context, username, keyword string) ([]models.Item, error)
	Import(ctx context.Context, username string, r io.Reader, sheet string) (int, error)
}

// OutfitService is implemented by *services.OutfitService.
type OutfitService interface {
	Create(ctx context.Context, username string, outfit *models.Outfit, pic *services.Upload) (*models.Outfit, error)
	List(ctx context.Context, username string) ([]models.Outfit, error)
}

type Options struct {
	AllowedOrigin  string
	PublicDir      string
	RequestTimeout time.Duration
	// MaxUploadSize caps multipart request bodies. Zero means 32 MiB.
	MaxUploadSize int64
}

type Handler struct {
	users   UserService
	items   ItemService
	outfits OutfitService
	opts    Options
	logger  logging.Logger
	now     func() time.Time
}

func NewHandler(users UserService, items ItemService, outfits OutfitService, opts Options, l logging.Logger) *Handler {
	if l == nil {
		l = logging.Nop{}
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = 32 << 20
	}
	return &Handler{
		users:   users,
		items:   items,
		outfits: outfits,
		opts:    opts,
		logger:  l.With("module", "http"),
		now:     time.Now,
	}
}

// Routes builds the full HTTP handler, middleware included.
func (h *Handler) Routes() http.Handler {
	// Match on the escaped path so /filenames/img%2Fuser-data and keywords
	// containing a slash stay within one route variable.
	r := mux.NewRouter().UseEncodedPath()

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/filenames/{dir}", h.filenames).Methods(http.MethodGet)

	authed := r.NewRoute().Subrouter()
	authed.Use(h.requireAuth)
	authed.HandleFunc("/logout", h.logout).Methods(http.MethodPost)
	authed.HandleFunc("/user/gender", h.updateGender).Methods(http.MethodPost)
	authed.HandleFunc("/search/field", h.searchField).Methods(http.MethodPost)
	authed.HandleFunc("/get/oneitem/{id}", h.getItem).Methods(http.MethodGet)

	owner := authed.NewRoute().Subrouter()
	owner.Use(h.requireOwner)
	owner.HandleFunc("/post/item/{user}", h.postItem).Methods(http.MethodPost)
	owner.HandleFunc("/post/outfit/{user}", h.postOutfit).Methods(http.MethodPost)
	owner.HandleFunc("/user/details/{user}", h.updateDetails).Methods(http.MethodPost)
	owner.HandleFunc("/get/items/{user}", h.listItems).Methods(http.MethodGet)
	owner.HandleFunc("/get/outfits/{user}", h.listOutfits).Methods(http.MethodGet)
	owner.HandleFunc("/search/all/{user}/{keyword}", h.searchAll).Methods(http.MethodGet)
	owner.HandleFunc("/import/items/{user}", h.importItems).Methods(http.MethodPost)

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorBody{Error: "not_found", Message: "no such route"})
	})
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorBody{Error: "method_not_allowed", Message: r.Method + " is not allowed"})
	})

	var next http.Handler = r
	next = withTimeout(h.opts.RequestTimeout, next)
	next = h.recoverer(next)
	next = cors(h.opts.AllowedOrigin, next)
	return h.accessLog(next)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "OK")
}

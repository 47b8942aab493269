package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/apparel/internal/common"
	"github.com/dmitrijs2005/apparel/internal/dbx"
	"github.com/dmitrijs2005/apparel/internal/server/models"
	"github.com/dmitrijs2005/apparel/internal/server/repositories/items"
	"github.com/dmitrijs2005/apparel/internal/server/repositories/outfits"
	"github.com/dmitrijs2005/apparel/internal/server/repositories/users"
)

// memRepos is an in-memory RepositoryManager. It ignores the handle it is
// given, so transactions are only observable through sqlmock.
type memRepos struct {
	mu      sync.Mutex
	users   map[string]*models.User
	items   map[string]models.Item
	outfits map[string]models.Outfit

	// fail makes the named method return the error.
	fail map[string]error
	// block makes the named method wait for ctx to end.
	block map[string]bool
}

func newMemRepos() *memRepos {
	return &memRepos{
		users:   map[string]*models.User{},
		items:   map[string]models.Item{},
		outfits: map[string]models.Outfit{},
		fail:    map[string]error{},
		block:   map[string]bool{},
	}
}

func (m *memRepos) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepos) Users(dbx.DBTX) users.Repository              { return &memUsers{m} }
func (m *memRepos) Items(dbx.DBTX) items.Repository              { return &memItems{m} }
func (m *memRepos) Outfits(dbx.DBTX) outfits.Repository          { return &memOutfits{m} }

func (m *memRepos) hook(ctx context.Context, method string) error {
	m.mu.Lock()
	err, block := m.fail[method], m.block[method]
	m.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (m *memRepos) addUser(username string, itemIDs ...string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: "u-" + username, Username: username, ItemIDs: itemIDs}
	m.users[username] = u
	return u
}

func (m *memRepos) addItem(username string, it models.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[it.ID] = it
	if u, ok := m.users[username]; ok {
		u.ItemIDs = append(u.ItemIDs, it.ID)
	}
}

type memUsers struct{ m *memRepos }

func (r *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if err := r.m.hook(ctx, "Users.Create"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[u.Username]; ok {
		return nil, common.ErrDuplicateUser
	}
	cp := *u
	cp.CreatedAt = time.Now()
	r.m.users[u.Username] = &cp
	return &cp, nil
}

func (r *memUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if err := r.m.hook(ctx, "Users.GetByUsername"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	cp.ItemIDs = append([]string(nil), u.ItemIDs...)
	cp.OutfitIDs = append([]string(nil), u.OutfitIDs...)
	return &cp, nil
}

func (r *memUsers) AppendItemID(ctx context.Context, username, id string) error {
	if err := r.m.hook(ctx, "Users.AppendItemID"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[username]
	if !ok {
		return common.ErrorNotFound
	}
	if !u.OwnsItem(id) {
		u.ItemIDs = append(u.ItemIDs, id)
	}
	return nil
}

func (r *memUsers) AppendOutfitID(ctx context.Context, username, id string) error {
	if err := r.m.hook(ctx, "Users.AppendOutfitID"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[username]
	if !ok {
		return common.ErrorNotFound
	}
	u.OutfitIDs = append(u.OutfitIDs, id)
	return nil
}

func (r *memUsers) UpdateGender(ctx context.Context, username, gender string) error {
	if err := r.m.hook(ctx, "Users.UpdateGender"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[username]
	if !ok {
		return common.ErrorNotFound
	}
	u.Gender = gender
	return nil
}

func (r *memUsers) UpdatePicture(ctx context.Context, username, key string) error {
	if err := r.m.hook(ctx, "Users.UpdatePicture"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[username]
	if !ok {
		return common.ErrorNotFound
	}
	u.PictureKey = key
	return nil
}

func (r *memUsers) OwnsItem(ctx context.Context, username, id string) (bool, error) {
	if err := r.m.hook(ctx, "Users.OwnsItem"); err != nil {
		return false, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[username]
	return ok && u.OwnsItem(id), nil
}

type memItems struct{ m *memRepos }

func (r *memItems) Create(ctx context.Context, it *models.Item) (*models.Item, error) {
	if err := r.m.hook(ctx, "Items.Create"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	it.CreatedAt = time.Now()
	r.m.items[it.ID] = *it
	return it, nil
}

func (r *memItems) GetByID(ctx context.Context, id string) (*models.Item, error) {
	if err := r.m.hook(ctx, "Items.GetByID"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	it, ok := r.m.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &it, nil
}

func (r *memItems) ListByIDs(ctx context.Context, ids []string) ([]models.Item, error) {
	if err := r.m.hook(ctx, "Items.ListByIDs"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.Item{}
	for _, id := range ids {
		if it, ok := r.m.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *memItems) ListForUser(ctx context.Context, username string) ([]models.Item, error) {
	if err := r.m.hook(ctx, "Items.ListForUser"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	u, ok := r.m.users[username]
	var ids []string
	if ok {
		ids = append(ids, u.ItemIDs...)
	}
	r.m.mu.Unlock()
	return r.ListByIDs(ctx, ids)
}

type memOutfits struct{ m *memRepos }

func (r *memOutfits) Create(ctx context.Context, o *models.Outfit) (*models.Outfit, error) {
	if err := r.m.hook(ctx, "Outfits.Create"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.outfits[o.ID] = *o
	return o, nil
}

func (r *memOutfits) ListForUser(ctx context.Context, username string) ([]models.Outfit, error) {
	if err := r.m.hook(ctx, "Outfits.ListForUser"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.Outfit{}
	if u, ok := r.m.users[username]; ok {
		for _, id := range u.OutfitIDs {
			out = append(out, r.m.outfits[id])
		}
	}
	return out, nil
}

// memStore is an in-memory storage.ObjectStore.
type memStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	putErr     error
	presignErr error
	deleteErr  error
	deleted    []string
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (s *memStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	return nil
}

func (s *memStore) PresignGet(ctx context.Context, key string) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	return fmt.Sprintf("https://store.test/%s?sig=1", key), nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	return nil
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
		_ = db.Close()
	})
	return db, mock
}

func testDeps(t *testing.T, repos *memRepos, store *memStore) (Deps, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	d := Deps{
		DB:           db,
		Repos:        repos,
		QueryTimeout: time.Second,
		Now:          func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) },
	}
	if store != nil {
		d.Store = store
	}
	return d, mock
}

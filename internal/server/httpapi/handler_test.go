package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/apparel/internal/common"
	"github.com/dmitrijs2005/apparel/internal/server/models"
	"github.com/dmitrijs2005/apparel/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	registerErr error
	loginErr    error
	loggedOut   []string
	gender      map[string]string
	picture     []byte
}

func (f *fakeUsers) Register(ctx context.Context, username, password string) (*services.Session, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &services.Session{Username: username, Cookie: "tok-" + username, MaxAge: 20 * time.Minute}, nil
}

func (f *fakeUsers) Login(ctx context.Context, username, password string) (*services.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.Session{Username: username, Cookie: "tok-" + username, MaxAge: time.Minute}, nil
}

func (f *fakeUsers) Logout(ctx context.Context, username string) {
	f.loggedOut = append(f.loggedOut, username)
}

func (f *fakeUsers) Authenticate(ctx context.Context, cookie string) (string, error) {
	if name, ok := strings.CutPrefix(cookie, "tok-"); ok {
		return name, nil
	}
	if cookie == "expired" {
		return "", common.ErrSessionExpired
	}
	return "", common.ErrInvalidToken
}

func (f *fakeUsers) UpdateGender(ctx context.Context, username, gender string) error {
	if gender == "" {
		return common.ErrValidation
	}
	if f.gender == nil {
		f.gender = map[string]string{}
	}
	f.gender[username] = gender
	return nil
}

func (f *fakeUsers) UpdateDetails(ctx context.Context, username string, pic *services.Upload) (*models.Profile, error) {
	p := &models.Profile{Username: username, ItemIDs: []string{}, OutfitIDs: []string{}}
	if pic != nil {
		b, err := io.ReadAll(pic.Body)
		if err != nil {
			return nil, err
		}
		f.picture = b
		p.PictureURL = "https://store.test/pic"
	}
	return p, nil
}

type fakeItems struct {
	created  []models.Item
	uploads  [][]byte
	items    []models.Item
	err      error
	imported string
	block    bool
	panicky  bool
}

func (f *fakeItems) Create(ctx context.Context, username string, item *models.Item, pic *services.Upload) (*models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	if pic != nil {
		b, _ := io.ReadAll(pic.Body)
		f.uploads = append(f.uploads, b)
	}
	item.ID = fmt.Sprintf("item-%d", len(f.created)+1)
	f.created = append(f.created, *item)
	return item, nil
}

func (f *fakeItems) Get(ctx context.Context, username, id string) (*models.Item, error) {
	for _, it := range f.items {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeItems) List(ctx context.Context, username string) ([]models.Item, error) {
	if f.panicky {
		panic("boom")
	}
	if f.block {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", common.ErrPersistenceUnavailable, ctx.Err())
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeItems) FilterByField(ctx context.Context, username, field, keyword string) ([]models.Item, error) {
	if field != "brand" {
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownField, field)
	}
	out := []models.Item{}
	for _, it := range f.items {
		if strings.EqualFold(it.Brand, keyword) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeItems) Search(ctx context.Context, username, keyword string) ([]models.Item, error) {
	return f.FilterByField(ctx, username, "brand", keyword)
}

func (f *fakeItems) Import(ctx context.Context, username string, r io.Reader, sheet string) (int, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.imported = string(b)
	return 3, nil
}

type fakeOutfits struct {
	err     error
	created []models.Outfit
}

func (f *fakeOutfits) Create(ctx context.Context, username string, o *models.Outfit, pic *services.Upload) (*models.Outfit, error) {
	if f.err != nil {
		return nil, f.err
	}
	o.ID = "outfit-1"
	f.created = append(f.created, *o)
	return o, nil
}

func (f *fakeOutfits) List(ctx context.Context, username string) ([]models.Outfit, error) {
	return []models.Outfit{}, nil
}

type fixture struct {
	users   *fakeUsers
	items   *fakeItems
	outfits *fakeOutfits
	h       http.Handler
	public  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{users: &fakeUsers{}, items: &fakeItems{}, outfits: &fakeOutfits{}, public: t.TempDir()}
	opts := Options{AllowedOrigin: "http://localhost:3000", PublicDir: f.public, RequestTimeout: time.Second}
	f.h = NewHandler(f.users, f.items, f.outfits, opts, nil).Routes()
	return f
}

func (f *fixture) do(req *http.Request, user string) *httptest.ResponseRecorder {
	if user != "" {
		req.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: "tok-" + user})
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func jsonReq(method, path string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formReq(path string, v url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	return req
}

type part struct {
	name, filename, body string
}

func multipartReq(t *testing.T, path string, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, mw.WriteField(p.name, p.body))
			continue
		}
		fw, err := mw.CreateFormFile(p.name, p.filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, p.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error
}

func TestHealthAndCORS(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/health", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = f.do(httptest.NewRequest(http.MethodOptions, "/post/item/alice", nil), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonReq(http.MethodPost, "/register", credentials{Username: "alice", Password: "pw"}), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	res := rec.Result()
	require.Len(t, res.Cookies(), 1)
	c := res.Cookies()[0]
	assert.Equal(t, common.SessionCookieName, c.Name)
	assert.Equal(t, "tok-alice", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
	assert.Equal(t, 1200, c.MaxAge)

	f.users.registerErr = common.ErrDuplicateUser
	rec = f.do(jsonReq(http.MethodPost, "/register", credentials{Username: "alice", Password: "pw"}), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_user", errorCode(t, rec))

	rec = f.do(jsonReq(http.MethodPost, "/login", credentials{Username: "alice", Password: "pw"}), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	f.users.loginErr = common.ErrInvalidCredentials
	rec = f.do(jsonReq(http.MethodPost, "/login", credentials{Username: "alice", Password: "bad"}), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", errorCode(t, rec))
	assert.Empty(t, rec.Result().Cookies())

	rec = f.do(httptest.NewRequest(http.MethodPost, "/register", strings.NewReader("{")), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", errorCode(t, rec))
}

func TestRegisterAndLogin_FormEncoded(t *testing.T) {
	f := newFixture(t)
	creds := url.Values{"username": {"ann"}, "password": {"pw"}}

	rec := f.do(formReq("/register", creds), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"username":"ann"}`, rec.Body.String())
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, "tok-ann", rec.Result().Cookies()[0].Value)

	rec = f.do(formReq("/login", creds), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"username":"ann"}`, rec.Body.String())

	rec = f.do(formReq("/user/gender", url.Values{"gender": {"male"}}), "ann")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "male", f.users.gender["ann"])

	f.items.items = []models.Item{{ID: "i1", Brand: "Acme"}}
	rec = f.do(formReq("/search/field", url.Values{"field": {"brand"}, "keyword": {"acme"}}), "ann")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got []models.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/get/items/alice", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "session_expired", errorCode(t, rec))

	req := httptest.NewRequest(http.MethodGet, "/get/items/alice", nil)
	req.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: "garbage"})
	rec = f.do(req, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", errorCode(t, rec))

	req = httptest.NewRequest(http.MethodGet, "/get/items/alice", nil)
	req.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: "expired"})
	rec = f.do(req, "")
	assert.Equal(t, "session_expired", errorCode(t, rec))

	rec = f.do(httptest.NewRequest(http.MethodGet, "/get/items/alice", nil), "bob")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorCode(t, rec))

	rec = f.do(httptest.NewRequest(http.MethodGet, "/get/items/alice", nil), "alice")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/logout", nil), "alice")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"alice"}, f.users.loggedOut)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.True(t, rec.Result().Cookies()[0].MaxAge < 0)
}

func TestPostItem(t *testing.T) {
	f := newFixture(t)

	req := multipartReq(t, "/post/item/alice",
		part{name: "item", body: `{"description":"Wool coat","brand":"Acme","size":"M"}`},
		part{name: "image", filename: "coat.jpg", body: "jpegbytes"},
	)
	rec := f.do(req, "alice")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body idResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "item-1", body.ID)
	require.Len(t, f.items.created, 1)
	assert.Equal(t, "Acme", f.items.created[0].Brand)
	assert.Equal(t, models.LetterSize("M"), f.items.created[0].Size)
	assert.Equal(t, [][]byte{[]byte("jpegbytes")}, f.items.uploads)

	rec = f.do(multipartReq(t, "/post/item/alice", part{name: "other", body: "x"}), "alice")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(multipartReq(t, "/post/item/alice", part{name: "item", body: "{not json"}), "alice")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.items.err = common.ErrPersistenceUnavailable
	rec = f.do(multipartReq(t, "/post/item/alice", part{name: "item", body: `{}`}), "alice")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "persistence_unavailable", errorCode(t, rec))
}

func TestPostOutfit(t *testing.T) {
	f := newFixture(t)

	rec := f.do(multipartReq(t, "/post/outfit/alice", part{name: "outfit", body: `{"name":"Friday","items":["a","b"]}`}), "alice")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, f.outfits.created, 1)
	assert.Equal(t, []string{"a", "b"}, f.outfits.created[0].ItemIDs)

	f.outfits.err = common.ErrForbidden
	rec = f.do(multipartReq(t, "/post/outfit/alice", part{name: "outfit", body: `{"items":["zzz"]}`}), "alice")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/get/outfits/alice", nil), "alice")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetItem(t *testing.T) {
	f := newFixture(t)
	f.items.items = []models.Item{{ID: "i1", Brand: "Acme"}}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/get/oneitem/i1", nil), "alice")
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Acme", got.Brand)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/get/oneitem/nope", nil), "alice")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	f.items.items = []models.Item{{ID: "i1", Brand: "Acme"}, {ID: "i2", Brand: "Other"}}

	rec := f.do(jsonReq(http.MethodPost, "/search/field", fieldSearch{Username: "alice", Field: "brand", Keyword: "acme"}), "alice")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []models.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "i1", got[0].ID)

	rec = f.do(jsonReq(http.MethodPost, "/search/field", fieldSearch{Field: "colour", Keyword: "red"}), "alice")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown_field", errorCode(t, rec))

	rec = f.do(jsonReq(http.MethodPost, "/search/field", fieldSearch{Username: "bob", Field: "brand"}), "alice")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/search/all/alice/other", nil), "alice")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "i2", got[0].ID)
}

func TestSearch_KeywordWithSlash(t *testing.T) {
	f := newFixture(t)
	f.items.items = []models.Item{{ID: "i1", Brand: "T/Shirt Co"}, {ID: "i2", Brand: "Other"}}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/search/all/alice/t%2Fshirt%20co", nil), "alice")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got []models.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "i1", got[0].ID)

	// an encoded owner name is decoded before the ownership check
	rec = f.do(httptest.NewRequest(http.MethodGet, "/get/items/ann%2Blee", nil), "ann+lee")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestUserDetailsAndGender(t *testing.T) {
	f := newFixture(t)

	rec := f.do(multipartReq(t, "/user/details/alice", part{name: "image", filename: "me.png", body: "png"}), "alice")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []byte("png"), f.users.picture)
	var p models.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "https://store.test/pic", p.PictureURL)

	rec = f.do(jsonReq(http.MethodPost, "/user/gender", genderRequest{Username: "alice", Gender: "female"}), "alice")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "female", f.users.gender["alice"])

	rec = f.do(jsonReq(http.MethodPost, "/user/gender", genderRequest{Gender: ""}), "alice")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportItems(t *testing.T) {
	f := newFixture(t)

	rec := f.do(multipartReq(t, "/import/items/alice", part{name: "workbook", filename: "w.xlsx", body: "xlsx"}), "alice")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"imported":3}`, rec.Body.String())
	assert.Equal(t, "xlsx", f.items.imported)

	rec = f.do(multipartReq(t, "/import/items/alice", part{name: "sheet", body: "x"}), "alice")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFilenames(t *testing.T) {
	f := newFixture(t)
	dir := filepath.Join(f.public, "icons")
	require.NoError(t, os.Mkdir(dir, 0o755))
	for _, n := range []string{"b.svg", "a.svg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/filenames/icons", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["a.svg","b.svg"]`, rec.Body.String())

	rec = f.do(httptest.NewRequest(http.MethodGet, "/filenames/missing", nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	nested := filepath.Join(f.public, "img", "user-data")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "a.png"), []byte("x"), 0o644))

	rec = f.do(httptest.NewRequest(http.MethodGet, "/filenames/img%2Fuser-data", nil), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `["a.png"]`, rec.Body.String())

	for _, target := range []string{"/filenames/..%2F..", "/filenames/..%2F..%2Fetc", "/filenames/%2Fetc"} {
		rec = f.do(httptest.NewRequest(http.MethodGet, target, nil), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "invalid_request", errorCode(t, rec), target)
	}
}

func TestTimeoutAndPanic(t *testing.T) {
	users := &fakeUsers{}
	items := &fakeItems{block: true}
	h := NewHandler(users, items, &fakeOutfits{}, Options{RequestTimeout: 20 * time.Millisecond}, nil).Routes()

	req := httptest.NewRequest(http.MethodGet, "/get/items/alice", nil)
	req.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: "tok-alice"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	items.block, items.panicky = false, true
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", errorCode(t, rec))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("wrap: %w", common.ErrDuplicateUser), http.StatusConflict, "duplicate_user"},
		{common.ErrUnknownField, http.StatusBadRequest, "unknown_field"},
		{common.ErrValidation, http.StatusBadRequest, "invalid_request"},
		{common.ErrPersistenceUnavailable, http.StatusServiceUnavailable, "persistence_unavailable"},
		{errors.New("surprise"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		status, code := statusFor(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}

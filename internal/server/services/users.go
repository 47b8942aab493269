package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/apparel/internal/common"
	"github.com/dmitrijs2005/apparel/internal/cryptox"
	"github.com/dmitrijs2005/apparel/internal/server/auth"
	"github.com/dmitrijs2005/apparel/internal/server/models"
	"github.com/google/uuid"
)

// SessionStore is implemented by *sessions.Store.
type SessionStore interface {
	Create(username string) (string, error)
	Validate(username, key string) bool
	Revoke(username string)
	RevokeKey(username, key string) bool
}

// Session is what a successful register or login hands back: the signed
// cookie value and how long the browser should keep it.
type Session struct {
	Username string
	Cookie   string
	MaxAge   time.Duration
}

type UserOptions struct {
	Secret       []byte
	Iterations   int
	CookieMaxAge time.Duration
}

// UserService handles accounts and sessions.
type UserService struct {
	Deps
	sessions SessionStore
	opts     UserOptions
}

func NewUserService(deps Deps, sessions SessionStore, opts UserOptions) *UserService {
	deps.withDefaults()
	if opts.Iterations <= 0 {
		opts.Iterations = cryptox.DefaultIterations
	}
	if opts.CookieMaxAge <= 0 {
		opts.CookieMaxAge = 20 * time.Minute
	}
	deps.Logger = deps.Logger.With("module", "users")
	return &UserService{Deps: deps, sessions: sessions, opts: opts}
}

func validateCredentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if password == "" {
		return "", fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	return username, nil
}

// Register creates the account and opens a session for it.
func (s *UserService) Register(ctx context.Context, username, password string) (*Session, error) {
	username, err := validateCredentials(username, password)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	repo := s.Repos.Users(s.DB)
	if _, err := repo.GetByUsername(ctx, username); err == nil {
		return nil, common.ErrDuplicateUser
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, persistErr(err)
	}

	salt := cryptox.NewSalt()
	user := &models.User{
		ID:       uuid.NewString(),
		Username: username,
		Salt:     salt,
		Hash:     cryptox.DeriveKey([]byte(password), salt, s.opts.Iterations),
	}

	// The session is opened first so a stored account always comes with a
	// working cookie. It is dropped again if the insert fails.
	sess, key, err := s.openSession(username)
	if err != nil {
		return nil, err
	}
	if _, err := repo.Create(ctx, user); err != nil {
		s.sessions.RevokeKey(username, key)
		return nil, persistErr(err)
	}

	s.Logger.Info(ctx, "user registered", "user", username)
	return sess, nil
}

// Login verifies the password and, only then, opens a session.
func (s *UserService) Login(ctx context.Context, username, password string) (*Session, error) {
	username, err := validateCredentials(username, password)
	if err != nil {
		return nil, common.ErrInvalidCredentials
	}

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	user, err := s.Repos.Users(s.DB).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Spend the same work as a real check so timing does not tell
			// unknown users apart from wrong passwords.
			cryptox.VerifyKey([]byte(password), cryptox.NewSalt(), s.opts.Iterations, nil)
			return nil, common.ErrInvalidCredentials
		}
		return nil, persistErr(err)
	}

	if !cryptox.VerifyKey([]byte(password), user.Salt, s.opts.Iterations, user.Hash) {
		s.Logger.Info(ctx, "login rejected", "user", username)
		return nil, common.ErrInvalidCredentials
	}
	sess, _, err := s.openSession(username)
	return sess, err
}

func (s *UserService) Logout(ctx context.Context, username string) {
	s.sessions.Revoke(username)
	s.Logger.Info(ctx, "user logged out", "user", username)
}

// Authenticate resolves a cookie value to the username of a live session.
func (s *UserService) Authenticate(ctx context.Context, cookie string) (string, error) {
	claims, err := auth.ParseToken(cookie, s.opts.Secret)
	if err != nil {
		return "", err
	}
	if !s.sessions.Validate(claims.Username, claims.Key) {
		return "", common.ErrSessionExpired
	}
	return claims.Username, nil
}

func (s *UserService) UpdateGender(ctx context.Context, username, gender string) error {
	gender = strings.TrimSpace(gender)
	if gender == "" {
		return fmt.Errorf("%w: gender is required", common.ErrValidation)
	}

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()
	return persistErr(s.Repos.Users(s.DB).UpdateGender(ctx, username, gender))
}

// UpdateDetails stores an optional new profile picture and returns the
// resulting profile.
func (s *UserService) UpdateDetails(ctx context.Context, username string, pic *Upload) (*models.Profile, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	repo := s.Repos.Users(s.DB)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, persistErr(err)
	}

	key, err := s.storePicture(ctx, pic)
	if err != nil {
		return nil, err
	}
	if key != "" {
		if err := repo.UpdatePicture(ctx, username, key); err != nil {
			s.discardPicture(ctx, key)
			return nil, persistErr(err)
		}
		user.PictureKey = key
	}

	return &models.Profile{
		Username:   user.Username,
		Gender:     user.Gender,
		PictureURL: s.pictureURL(ctx, user.PictureKey),
		ItemIDs:    nonNil(user.ItemIDs),
		OutfitIDs:  nonNil(user.OutfitIDs),
	}, nil
}

// openSession returns the new session and its store key.
func (s *UserService) openSession(username string) (*Session, string, error) {
	key, err := s.sessions.Create(username)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	cookie, err := auth.GenerateToken(username, key, s.opts.Secret, s.opts.CookieMaxAge)
	if err != nil {
		s.sessions.RevokeKey(username, key)
		return nil, "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return &Session{Username: username, Cookie: cookie, MaxAge: s.opts.CookieMaxAge}, key, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/theatre-production/internal/database"
	"github.com/iliyamo/theatre-production/internal/model"
	"github.com/iliyamo/theatre-production/internal/repository"
	"github.com/iliyamo/theatre-production/internal/utils"
)

// ErrInvalidCredentials is returned for an unknown username, a wrong
// password or an unusable refresh token.  The three are not told apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

const minPasswordLen = 8

// IdentityConfig holds the token and hashing parameters of the gate.
type IdentityConfig struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// Session is what a successful login hands back to the client.
type Session struct {
	Principal model.Principal
	Access    utils.AccessToken
	Refresh   utils.RefreshToken
}

// Identity authenticates users and issues their tokens.  It is the only
// place a principal comes from; the engine trusts the id it is given.
type Identity struct {
	users  *repository.UserRepo
	tokens *repository.TokenRepo
	cfg    IdentityConfig
}

// NewIdentity builds the gate over q.
func NewIdentity(q database.Querier, cfg IdentityConfig) *Identity {
	return &Identity{
		users:  repository.NewUserRepo(q),
		tokens: repository.NewTokenRepo(q),
		cfg:    cfg,
	}
}

// Register creates an account.  A taken username fails with ErrDuplicate.
func (s *Identity) Register(ctx context.Context, username, password string) (model.Principal, error) {
	username = repository.NormalizeUsername(username)
	if username == "" || password == "" {
		return model.Principal{}, fmt.Errorf("%w: username/password required", repository.ErrValidation)
	}
	if utf8.RuneCountInString(username) > maxNameLen {
		return model.Principal{}, fmt.Errorf("%w: username must be at most %d characters", repository.ErrValidation, maxNameLen)
	}
	if len(password) < minPasswordLen {
		return model.Principal{}, fmt.Errorf("%w: password must be at least %d characters", repository.ErrValidation, minPasswordLen)
	}
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return model.Principal{}, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.users.Create(ctx, username, hash)
	if errors.Is(err, repository.ErrDuplicate) {
		return model.Principal{}, fmt.Errorf("%w: username already exists", repository.ErrDuplicate)
	}
	if err != nil {
		return model.Principal{}, err
	}
	return model.Principal{ID: id, Username: username}, nil
}

// Authenticate checks a username and password.
func (s *Identity) Authenticate(ctx context.Context, username, password string) (model.Principal, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Principal{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.Principal{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.Principal{}, ErrInvalidCredentials
	}
	return model.Principal{ID: u.ID, Username: u.Username}, nil
}

// Principal loads the principal for an authenticated id.
func (s *Identity) Principal(ctx context.Context, id uint64) (model.Principal, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.Principal{}, err
	}
	return model.Principal{ID: u.ID, Username: u.Username}, nil
}

// Login authenticates and opens a session.
func (s *Identity) Login(ctx context.Context, username, password string) (Session, error) {
	p, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return Session{}, err
	}
	return s.IssueSession(ctx, p)
}

// IssueSession signs an access token and stores a new refresh token.
func (s *Identity) IssueSession(ctx context.Context, p model.Principal) (Session, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, p.ID, p.Username, s.cfg.AccessTTLMin)
	if err != nil {
		return Session{}, fmt.Errorf("issue access: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return Session{}, fmt.Errorf("issue refresh: %w", err)
	}
	if err := s.tokens.StoreRefresh(ctx, p.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Session{}, err
	}
	return Session{Principal: p, Access: access, Refresh: refresh}, nil
}

// Refresh consumes a raw refresh token and issues a new pair.  A token
// can be consumed once, so concurrent refreshes with the same token
// yield a single session.
func (s *Identity) Refresh(ctx context.Context, raw string) (Session, error) {
	userID, err := s.tokens.ConsumeRefresh(ctx, utils.HashRefreshRaw(strings.TrimSpace(raw)))
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	p, err := s.Principal(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	return s.IssueSession(ctx, p)
}

// Logout revokes one refresh token when raw is set, otherwise every
// refresh token of userID.
func (s *Identity) Logout(ctx context.Context, userID uint64, raw string) error {
	if raw = strings.TrimSpace(raw); raw != "" {
		return s.tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw))
	}
	return s.tokens.RevokeAllForUser(ctx, userID)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/repository"
	"github.com/iliyamo/tour-booking/internal/utils"
)

// AuthSettings are the token and hashing parameters of AuthService.
type AuthSettings struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// AuthService registers users, issues access/refresh token pairs and
// manages accounts.
type AuthService struct {
	users    UserRepository
	tokens   TokenRepository
	settings AuthSettings
	log      *zap.Logger
	now      Clock
}

func NewAuthService(users UserRepository, tokens TokenRepository, s AuthSettings, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, tokens: tokens, settings: s, log: log, now: time.Now}
}

// TokenPart is one issued token.
type TokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Session is what register, login and refresh return.
type Session struct {
	User    *model.User `json:"user"`
	Access  TokenPart   `json:"access"`
	Refresh TokenPart   `json:"refresh"`
}

// RegisterInput is a new customer account.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Register creates a customer account and logs it in.  Admins are created
// with the migrate command, never through the API.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(in.Password) < utils.MinPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, utils.MinPasswordLen)
	}
	hash, err := utils.HashPassword(in.Password, s.settings.BcryptCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		RoleID:       model.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, fmt.Errorf("%w: email already registered", ErrInvalidState)
		}
		return nil, err
	}
	s.log.Info("user registered", zap.Uint64("user_id", u.ID))
	return s.issue(ctx, u)
}

// Login checks credentials.  Unknown emails, wrong passwords and disabled
// accounts all fail with the same ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, err
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	return s.issue(ctx, u)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: refresh_token is required", ErrValidation)
	}
	hash := utils.HashRefreshRaw(raw)
	userID, err := s.tokens.ValidateRefresh(ctx, hash, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
		}
		return nil, err
	}
	if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user", userID)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: account disabled", ErrUnauthorized)
	}
	return s.issue(ctx, u)
}

// Logout revokes one refresh token, or every token of p when raw is empty.
func (s *AuthService) Logout(ctx context.Context, p Principal, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.tokens.RevokeAllForUser(ctx, p.UserID)
	}
	return s.tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw))
}

// Profile returns p's own account.
func (s *AuthService) Profile(ctx context.Context, p Principal) (*model.User, error) {
	u, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, notFound(err, "user", p.UserID)
	}
	return u, nil
}

// UpdateProfile changes p's name and phone.
func (s *AuthService) UpdateProfile(ctx context.Context, p Principal, name, phone string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := s.users.UpdateProfile(ctx, p.UserID, name, strings.TrimSpace(phone)); err != nil {
		return nil, err
	}
	return s.Profile(ctx, p)
}

// ListUsers returns every account.  Admin only.
func (s *AuthService) ListUsers(ctx context.Context, p Principal) ([]model.User, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.users.List(ctx)
}

// SetActive enables or disables an account and, when disabling, revokes
// its refresh tokens.  Admins cannot disable themselves.
func (s *AuthService) SetActive(ctx context.Context, p Principal, userID uint64, active bool) error {
	if !p.IsAdmin() {
		return ErrForbidden
	}
	if userID == p.UserID && !active {
		return fmt.Errorf("%w: cannot deactivate your own account", ErrInvalidState)
	}
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		return notFound(err, "user", userID)
	}
	if !active {
		return s.tokens.RevokeAllForUser(ctx, userID)
	}
	return nil
}

func (s *AuthService) issue(ctx context.Context, u *model.User) (*Session, error) {
	access, err := utils.NewAccessToken(s.settings.JWTSecret, u.ID, u.RoleID, s.settings.AccessTTLMin)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.settings.RefreshTTLDays)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return &Session{
		User:    u,
		Access:  TokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: TokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}

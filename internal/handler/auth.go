package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/service"
)

// AuthService is the part of service.AuthService the auth endpoints use.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.Session, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
	Refresh(ctx context.Context, raw string) (*service.Session, error)
	Logout(ctx context.Context, p service.Principal, raw string) error
	Profile(ctx context.Context, p service.Principal) (*model.User, error)
	UpdateProfile(ctx context.Context, p service.Principal, name, phone string) (*model.User, error)
	ListUsers(ctx context.Context, p service.Principal) ([]model.User, error)
	SetActive(ctx context.Context, p service.Principal, userID uint64, active bool) error
}

// AuthHandler serves registration, login, token rotation and profiles.
type AuthHandler struct {
	Auth AuthService
}

func NewAuthHandler(a AuthService) *AuthHandler {
	return &AuthHandler{Auth: a}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type profileReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type activeReq struct {
	IsActive *bool `json:"is_active"`
}

// Register handles POST /v1/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.Auth.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, s)
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, s)
}

// Refresh handles POST /v1/auth/refresh.  The presented refresh token is
// revoked and a new pair issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh_token is required")
	}
	s, err := h.Auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, s)
}

// Logout handles POST /v1/auth/logout.  Without a refresh token in the
// body every session of the caller is ended.
func (h *AuthHandler) Logout(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req refreshReq
	_ = c.Bind(&req)
	if err := h.Auth.Logout(c.Request().Context(), p, req.RefreshToken); err != nil {
		return err
	}
	return okMsg(c, "logged out")
}

// Me handles GET /v1/me.
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	u, err := h.Auth.Profile(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, u)
}

// UpdateMe handles PUT /v1/me.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req profileReq
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := h.Auth.UpdateProfile(c.Request().Context(), p, req.Name, req.Phone)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, u)
}

// ListUsers handles GET /v1/admin/users.
func (h *AuthHandler) ListUsers(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	users, err := h.Auth.ListUsers(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, users)
}

// SetUserActive handles PATCH /v1/admin/users/:id/active.
func (h *AuthHandler) SetUserActive(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req activeReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.IsActive == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "is_active is required")
	}
	if err := h.Auth.SetActive(c.Request().Context(), p, id, *req.IsActive); err != nil {
		return err
	}
	if *req.IsActive {
		return okMsg(c, "user activated")
	}
	return okMsg(c, "user deactivated")
}

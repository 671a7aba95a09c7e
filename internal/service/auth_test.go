package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/utils"
)

func newAuthFixture() (*AuthService, *memUsers, *memTokens) {
	users, tokens := newMemUsers(), newMemTokens()
	svc := NewAuthService(users, tokens, AuthSettings{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     bcrypt.MinCost,
	}, zap.NewNop())
	return svc, users, tokens
}

func TestAuth_RegisterLoginRefreshLogout(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	sess, err := svc.Register(ctx, RegisterInput{Name: "Lan", Email: " Lan@Example.com ", Password: "hunter22!"})
	require.NoError(t, err)
	assert.Equal(t, "lan@example.com", sess.User.Email)
	assert.Equal(t, model.RoleUser, sess.User.RoleID)

	claims, err := utils.ParseAccessToken("test-secret", sess.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.UserID)
	assert.Equal(t, model.RoleUser, claims.Role)

	_, err = svc.Register(ctx, RegisterInput{Name: "Lan", Email: "lan@example.com", Password: "hunter22!"})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.Login(ctx, "lan@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Login(ctx, "nobody@example.com", "hunter22!")
	assert.ErrorIs(t, err, ErrUnauthorized)
	login, err := svc.Login(ctx, "lan@example.com", "hunter22!")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, login.Refresh.Token)
	require.NoError(t, err)
	assert.NotEqual(t, login.Refresh.Token, rotated.Refresh.Token)
	_, err = svc.Refresh(ctx, login.Refresh.Token)
	assert.ErrorIs(t, err, ErrUnauthorized, "rotated token is revoked")

	p := Principal{UserID: sess.User.ID, Role: model.RoleUser}
	require.NoError(t, svc.Logout(ctx, p, ""))
	_, err = svc.Refresh(ctx, rotated.Refresh.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuth_RegisterValidates(t *testing.T) {
	svc, _, _ := newAuthFixture()
	cases := map[string]RegisterInput{
		"no name":        {Email: "a@b.co", Password: "longenough"},
		"bad email":      {Name: "A", Email: "not-an-email", Password: "longenough"},
		"short password": {Name: "A", Email: "a@b.co", Password: "short"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuth_DeactivatedUserCannotLoginOrRefresh(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()
	sess, err := svc.Register(ctx, RegisterInput{Name: "Minh", Email: "minh@example.com", Password: "hunter22!"})
	require.NoError(t, err)

	boss := Principal{UserID: 100, Role: model.RoleAdmin}

	assert.ErrorIs(t, svc.SetActive(ctx, customer, sess.User.ID, false), ErrForbidden)
	assert.ErrorIs(t, svc.SetActive(ctx, boss, boss.UserID, false), ErrInvalidState)
	assert.ErrorIs(t, svc.SetActive(ctx, boss, 999, false), ErrNotFound)
	require.NoError(t, svc.SetActive(ctx, boss, sess.User.ID, false))

	_, err = svc.Login(ctx, "minh@example.com", "hunter22!")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Refresh(ctx, sess.Refresh.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	users, err := svc.ListUsers(ctx, boss)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.False(t, users[0].IsActive)
}

func TestAuth_Profile(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()
	sess, err := svc.Register(ctx, RegisterInput{Name: "Hoa", Email: "hoa@example.com", Password: "hunter22!"})
	require.NoError(t, err)
	p := Principal{UserID: sess.User.ID, Role: model.RoleUser}

	_, err = svc.UpdateProfile(ctx, p, " ", "")
	assert.ErrorIs(t, err, ErrValidation)
	u, err := svc.UpdateProfile(ctx, p, "Hoa Nguyen", " 0901234567 ")
	require.NoError(t, err)
	assert.Equal(t, "Hoa Nguyen", u.Name)
	assert.Equal(t, "0901234567", u.Phone)
}

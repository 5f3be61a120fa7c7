package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/product_catalog/internal/models"
	"github.com/Skotchmaster/product_catalog/internal/tokens"
	"github.com/Skotchmaster/product_catalog/internal/transport"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()

	r := newRepo(t)
	return &AuthService{
		Repo:          r,
		Users:         &UserService{Repo: r},
		AccessSecret:  []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	}
}

func register(t *testing.T, svc *AuthService) *models.User {
	t.Helper()

	u, err := svc.Register(context.Background(), transport.RegisterRequest{
		Email:    "ann@example.com",
		Username: "ann",
		Password: "Secret123",
	})
	require.NoError(t, err)
	return u
}

func TestAuthService_Register(t *testing.T) {
	svc := newAuthService(t)
	register(t, svc)

	_, err := svc.Register(context.Background(), transport.RegisterRequest{Email: "ann@example.com", Username: "other", Password: "Secret123"})
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	_, err = svc.Register(context.Background(), transport.RegisterRequest{Email: "bad", Username: "bad", Password: "x"})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestAuthService_Login(t *testing.T) {
	svc := newAuthService(t)
	u := register(t, svc)
	ctx := context.Background()

	res, err := svc.Login(ctx, "ann@EXAMPLE.com", "Secret123")
	require.NoError(t, err)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, svc.AccessSecret)
	require.NoError(t, err)
	id, err := tokens.UserID(claims.RegisteredClaims)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), res.AccessExp, 5*time.Second)

	_, err = svc.Login(ctx, "ann@example.com", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = svc.Login(ctx, "nobody@example.com", "Secret123")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	svc := newAuthService(t)
	u := register(t, svc)
	require.NoError(t, svc.Repo.DB.Model(&models.User{}).Where("id = ?", u.ID).Update("is_active", false).Error)

	_, err := svc.Login(context.Background(), "ann@example.com", "Secret123")
	assert.True(t, errors.Is(err, ErrInactiveUser))
}

func TestAuthService_Refresh_RotatesOnce(t *testing.T) {
	svc := newAuthService(t)
	register(t, svc)
	ctx := context.Background()

	first, err := svc.Login(ctx, "ann@example.com", "Secret123")
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.True(t, errors.Is(err, ErrInvalidRefreshToken))

	_, err = svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	svc := newAuthService(t)
	register(t, svc)

	res, err := svc.Login(context.Background(), "ann@example.com", "Secret123")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), res.AccessToken)
	assert.True(t, errors.Is(err, ErrInvalidRefreshToken))
}

func TestAuthService_LogOut(t *testing.T) {
	svc := newAuthService(t)
	register(t, svc)
	ctx := context.Background()

	res, err := svc.Login(ctx, "ann@example.com", "Secret123")
	require.NoError(t, err)
	require.NoError(t, svc.LogOut(ctx, res.RefreshToken))

	_, err = svc.Refresh(ctx, res.RefreshToken)
	assert.True(t, errors.Is(err, ErrInvalidRefreshToken))
}

func TestAuthService_Authenticate(t *testing.T) {
	svc := newAuthService(t)
	u := register(t, svc)
	ctx := context.Background()
	require.NoError(t, svc.Users.GrantPermissions(ctx, u.ID, models.PermAddProduct))

	res, err := svc.Login(ctx, "ann@example.com", "Secret123")
	require.NoError(t, err)

	caller, err := svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, caller.ID)
	assert.False(t, caller.Staff())
	assert.True(t, caller.HasPerm(models.PermAddProduct))

	_, err = svc.Authenticate(ctx, "garbage")
	assert.True(t, errors.Is(err, ErrInvalidAccessToken))

	_, err = svc.Authenticate(ctx, res.RefreshToken)
	assert.True(t, errors.Is(err, ErrInvalidAccessToken))
}

package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/product_catalog/internal/db/dbtest"
	"github.com/Skotchmaster/product_catalog/internal/identity"
	"github.com/Skotchmaster/product_catalog/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	return New(dbtest.Open(t))
}

func createUser(t *testing.T, r *GormRepo, username string, superuser bool) *models.User {
	t.Helper()

	u := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "!",
		IsActive:     true,
		IsStaff:      superuser,
		IsSuperuser:  superuser,
		DateJoined:   time.Now().UTC(),
	}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func createProduct(t *testing.T, r *GormRepo, title, content string, public bool, owner *models.User) *models.Product {
	t.Helper()

	p := &models.Product{Title: title, Content: content, Price: 10, Public: public}
	if owner != nil {
		id := owner.ID
		p.UserID = &id
	}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func callerOf(u *models.User) *identity.Caller {
	return identity.FromUser(u)
}

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/product_catalog/internal/db/dbtest"
	"github.com/Skotchmaster/product_catalog/internal/identity"
	"github.com/Skotchmaster/product_catalog/internal/models"
)

func seed(t *testing.T) *gorm.DB {
	t.Helper()

	gdb := dbtest.Open(t)
	for _, c := range []*identity.Caller{owner, other, admin} {
		u := models.User{
			ID:           c.ID,
			Email:        c.Username + "@example.com",
			Username:     c.Username,
			PasswordHash: "!",
			IsSuperuser:  c.IsSuperuser,
			IsStaff:      c.IsStaff,
			IsActive:     true,
		}
		require.NoError(t, gdb.Create(&u).Error)
	}
	products := fixture()
	require.NoError(t, gdb.Create(&products).Error)
	return gdb
}

func queryIDs(t *testing.T, gdb *gorm.DB, scope func(*gorm.DB) *gorm.DB) []uint {
	t.Helper()

	var items []models.Product
	require.NoError(t, gdb.Model(&models.Product{}).Scopes(scope).Order("id ASC").Find(&items).Error)
	return ids(items)
}

func TestScope_AgreesWithResolve(t *testing.T) {
	gdb := seed(t)
	products := fixture()

	queries := []string{"", "red", "RED", "hat", "trim", "wood", "scarf", "100%", "t_s", "d_t", `\`, "purple", "e"}
	callers := map[string]*identity.Caller{
		"anonymous": nil,
		"owner":     owner,
		"other":     other,
		"superuser": admin,
	}

	for name, caller := range callers {
		for _, q := range queries {
			want := ids(Resolve(q, products, caller))
			got := queryIDs(t, gdb, Scope(q, caller))
			assert.Equal(t, want, got, "caller=%s query=%q", name, q)
		}
	}
}

func TestScope_CountMatchesRows(t *testing.T) {
	gdb := seed(t)

	var total int64
	require.NoError(t, gdb.Model(&models.Product{}).Scopes(Scope("red", owner)).Count(&total).Error)
	assert.EqualValues(t, 2, total)
}

func TestScope_ComposesWithOtherConditions(t *testing.T) {
	gdb := seed(t)

	var items []models.Product
	require.NoError(t, gdb.Model(&models.Product{}).
		Scopes(Scope("red", owner)).
		Where("id > ?", 1).
		Find(&items).Error)
	assert.Equal(t, []uint{2}, ids(items))
}

func TestOwnerScope_AgreesWithOwned(t *testing.T) {
	gdb := seed(t)
	products := fixture()

	for _, caller := range []*identity.Caller{nil, owner, other, admin} {
		assert.Equal(t, ids(Owned(products, caller)), queryIDs(t, gdb, OwnerScope(caller)))
	}
}

func TestScope_AgreesWithResolve_NonASCII(t *testing.T) {
	gdb := seed(t)

	extra := []models.Product{
		{ID: 8, Title: "ÉCOLE Bag", Content: "ÉCOLE Bag", Public: true},
		{ID: 9, Title: "Mug", Content: "ÜBER GROSS", Public: false, UserID: uintPtr(ownerID)},
		{ID: 10, Title: "ÇA VA Tee", Content: "", Public: false, UserID: uintPtr(otherID)},
	}
	require.NoError(t, gdb.Create(&extra).Error)
	products := append(fixture(), extra...)

	queries := []string{"école", "ÉCOLE", "École", "über", "ÜBER", "é", "ça va", "ç"}
	for _, caller := range []*identity.Caller{nil, owner, other, admin} {
		for _, q := range queries {
			want := ids(Resolve(q, products, caller))
			got := queryIDs(t, gdb, Scope(q, caller))
			assert.Equal(t, want, got, "query=%q", q)
		}
	}

	assert.Equal(t, []uint{8}, queryIDs(t, gdb, Scope("école", nil)))
	assert.Equal(t, []uint{9}, queryIDs(t, gdb, Scope("über", owner)))
	assert.Equal(t, []uint{10}, queryIDs(t, gdb, Scope("ça", other)))
}

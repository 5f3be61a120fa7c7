package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/product_catalog/internal/identity"
	"github.com/Skotchmaster/product_catalog/internal/models"
	"github.com/Skotchmaster/product_catalog/internal/mykafka"
	"github.com/Skotchmaster/product_catalog/internal/transport"
)

func ptr[T any](v T) *T { return &v }

type catalogEnv struct {
	svc   *CatalogService
	pub   *recordingPublisher
	ix    *recordingIndexer
	alice *identity.Caller
	bob   *identity.Caller
	root  *identity.Caller
}

func newCatalogEnv(t *testing.T) *catalogEnv {
	t.Helper()

	r := newRepo(t)
	env := &catalogEnv{
		pub:   &recordingPublisher{},
		ix:    &recordingIndexer{},
		alice: seedUser(t, r, "alice", true, false),
		bob:   seedUser(t, r, "bob", true, false),
		root:  seedUser(t, r, "root", true, true),
	}
	env.svc = &CatalogService{Repo: r, Publisher: env.pub, Indexer: env.ix}
	return env
}

func TestCatalogService_CreateProduct_Defaults(t *testing.T) {
	env := newCatalogEnv(t)
	ctx := context.Background()

	prod, err := env.svc.CreateProduct(ctx, env.alice, transport.CreateProductRequest{Title: "Lamp"})
	require.NoError(t, err)

	assert.Equal(t, "Lamp", prod.Content)
	assert.True(t, prod.Public)
	assert.Zero(t, prod.Price)
	require.NotNil(t, prod.UserID)
	assert.Equal(t, env.alice.ID, *prod.UserID)

	assert.Equal(t, []string{mykafka.ProductCreated}, env.pub.types())
	assert.Equal(t, mykafka.TopicProductEvents, env.pub.events[0].Topic)
	assert.Equal(t, []uint{prod.ID}, env.ix.indexed)
}

func TestCatalogService_CreateProduct_Explicit(t *testing.T) {
	env := newCatalogEnv(t)

	prod, err := env.svc.CreateProduct(context.Background(), env.alice, transport.CreateProductRequest{
		Title:   "Lamp",
		Content: ptr("Brass desk lamp"),
		Price:   ptr(49.9),
		Public:  ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Brass desk lamp", prod.Content)
	assert.False(t, prod.Public)
	assert.Equal(t, "29.94", prod.SalePrice())
}

func TestCatalogService_CreateProduct_Validation(t *testing.T) {
	env := newCatalogEnv(t)

	_, err := env.svc.CreateProduct(context.Background(), env.alice, transport.CreateProductRequest{Title: "x", Price: ptr(-3.0)})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = env.svc.CreateProduct(context.Background(), env.alice, transport.CreateProductRequest{})
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Empty(t, env.pub.events)
}

func TestCatalogService_SideEffectFailuresDoNotFailWrites(t *testing.T) {
	env := newCatalogEnv(t)
	env.pub.err = errBroker
	env.ix.err = errBroker

	prod, err := env.svc.CreateProduct(context.Background(), env.alice, transport.CreateProductRequest{Title: "Lamp"})
	require.NoError(t, err)
	assert.NotZero(t, prod.ID)
}

func TestCatalogService_UpdateProduct(t *testing.T) {
	env := newCatalogEnv(t)
	ctx := context.Background()

	prod, err := env.svc.CreateProduct(ctx, env.alice, transport.CreateProductRequest{Title: "Lamp", Content: ptr("old"), Price: ptr(10.0)})
	require.NoError(t, err)

	t.Run("put requires title", func(t *testing.T) {
		_, err := env.svc.UpdateProduct(ctx, env.alice, prod.ID, transport.UpdateProductRequest{Price: ptr(1.0)}, true)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("patch keeps omitted fields", func(t *testing.T) {
		got, err := env.svc.UpdateProduct(ctx, env.alice, prod.ID, transport.UpdateProductRequest{Price: ptr(12.5)}, false)
		require.NoError(t, err)
		assert.Equal(t, "Lamp", got.Title)
		assert.Equal(t, "old", got.Content)
		assert.Equal(t, 12.5, got.Price)
	})

	t.Run("emptied content falls back to title", func(t *testing.T) {
		got, err := env.svc.UpdateProduct(ctx, env.alice, prod.ID, transport.UpdateProductRequest{Title: ptr("Floor lamp"), Content: ptr("")}, true)
		require.NoError(t, err)
		assert.Equal(t, "Floor lamp", got.Content)
	})

	t.Run("private flag persists", func(t *testing.T) {
		_, err := env.svc.UpdateProduct(ctx, env.alice, prod.ID, transport.UpdateProductRequest{Public: ptr(false)}, false)
		require.NoError(t, err)

		got, err := env.svc.GetProduct(ctx, env.alice, prod.ID)
		require.NoError(t, err)
		assert.False(t, got.Public)
	})

	t.Run("other owner gets not found", func(t *testing.T) {
		_, err := env.svc.UpdateProduct(ctx, env.bob, prod.ID, transport.UpdateProductRequest{Title: ptr("mine")}, false)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("superuser may update", func(t *testing.T) {
		_, err := env.svc.UpdateProduct(ctx, env.root, prod.ID, transport.UpdateProductRequest{Title: ptr("Lamp")}, false)
		require.NoError(t, err)
	})
}

func TestCatalogService_DeleteProduct(t *testing.T) {
	env := newCatalogEnv(t)
	ctx := context.Background()

	prod, err := env.svc.CreateProduct(ctx, env.alice, transport.CreateProductRequest{Title: "Lamp"})
	require.NoError(t, err)

	_, err = env.svc.DeleteProduct(ctx, env.bob, prod.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	deleted, err := env.svc.DeleteProduct(ctx, env.alice, prod.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", deleted.Title)
	assert.Equal(t, []uint{prod.ID}, env.ix.deleted)
	assert.Equal(t, []string{mykafka.ProductCreated, mykafka.ProductDeleted}, env.pub.types())

	_, err = env.svc.GetProduct(ctx, env.alice, prod.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCatalogService_ListProducts(t *testing.T) {
	env := newCatalogEnv(t)
	ctx := context.Background()

	for _, c := range []*identity.Caller{env.alice, env.bob, env.alice} {
		_, err := env.svc.CreateProduct(ctx, c, transport.CreateProductRequest{Title: c.Username})
		require.NoError(t, err)
	}

	total, items, err := env.svc.ListProducts(ctx, env.alice, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	totals, err := env.svc.OwnerTotals(ctx, items...)
	require.NoError(t, err)
	assert.EqualValues(t, 2, totals[env.alice.ID])

	total, _, err = env.svc.ListProducts(ctx, env.root, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestCatalogService_SearchProducts(t *testing.T) {
	env := newCatalogEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateProduct(ctx, env.bob, transport.CreateProductRequest{Title: "Red Shoe"})
	require.NoError(t, err)
	hat, err := env.svc.CreateProduct(ctx, env.alice, transport.CreateProductRequest{Title: "Blue Hat", Content: ptr("red trim"), Public: ptr(false)})
	require.NoError(t, err)

	total, items, err := env.svc.SearchProducts(ctx, "red", env.alice, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, hat.ID, items[1].ID)

	total, _, err = env.svc.SearchProducts(ctx, "red", nil, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	total, _, err = env.svc.SearchProducts(ctx, "red", env.root, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

type stubSearcher struct {
	calls int
}

func (s *stubSearcher) SearchProducts(context.Context, string, *identity.Caller, int, int) (int64, []models.Product, error) {
	s.calls++
	return 1, []models.Product{{ID: 99}}, nil
}

func TestCatalogService_SearchProducts_Backend(t *testing.T) {
	env := newCatalogEnv(t)
	stub := &stubSearcher{}
	env.svc.Searcher = stub

	total, items, err := env.svc.SearchProducts(context.Background(), "", env.alice, 0, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, items)
	assert.Zero(t, stub.calls)

	total, _, err = env.svc.SearchProducts(context.Background(), "x", env.alice, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, 1, stub.calls)
}

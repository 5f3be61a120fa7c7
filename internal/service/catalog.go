package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/product_catalog/internal/identity"
	"github.com/Skotchmaster/product_catalog/internal/logging"
	"github.com/Skotchmaster/product_catalog/internal/models"
	"github.com/Skotchmaster/product_catalog/internal/mykafka"
	"github.com/Skotchmaster/product_catalog/internal/repo"
	"github.com/Skotchmaster/product_catalog/internal/transport"
)

type ProductSearcher interface {
	SearchProducts(ctx context.Context, query string, caller *identity.Caller, offset, limit int) (int64, []models.Product, error)
}

type ProductIndexer interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
}

// CatalogService owns product CRUD and search. Searcher defaults to the
// database; Indexer and Publisher are optional.
type CatalogService struct {
	Repo      *repo.GormRepo
	Searcher  ProductSearcher
	Indexer   ProductIndexer
	Publisher mykafka.Publisher
}

func (s *CatalogService) ListProducts(ctx context.Context, caller *identity.Caller, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, caller, offset, limit)
}

func (s *CatalogService) GetProduct(ctx context.Context, caller *identity.Caller, id uint) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, caller, id)
	if err != nil {
		return nil, notFound(err)
	}
	return prod, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, caller *identity.Caller, req transport.CreateProductRequest) (*models.Product, error) {
	if err := transport.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	prod := &models.Product{
		Title:  req.Title,
		Public: true,
	}
	if req.Content != nil {
		prod.Content = *req.Content
	}
	if req.Price != nil {
		prod.Price = *req.Price
	}
	if req.Public != nil {
		prod.Public = *req.Public
	}
	if caller.Authenticated() {
		id := caller.ID
		prod.UserID = &id
	}
	defaultContent(prod)

	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, mykafka.ProductCreated, prod)
	return prod, nil
}

// UpdateProduct applies req to the product. With full set the title is required,
// as for PUT; fields left out keep their current value either way.
func (s *CatalogService) UpdateProduct(ctx context.Context, caller *identity.Caller, id uint, req transport.UpdateProductRequest, full bool) (*models.Product, error) {
	if full && req.Title == nil {
		return nil, fmt.Errorf("%w: field 'Title' is required", ErrValidation)
	}
	if err := transport.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	prod, err := s.Repo.GetProduct(ctx, caller, id)
	if err != nil {
		return nil, notFound(err)
	}

	if req.Title != nil {
		prod.Title = *req.Title
	}
	if req.Content != nil {
		prod.Content = *req.Content
	}
	if req.Price != nil {
		prod.Price = *req.Price
	}
	if req.Public != nil {
		prod.Public = *req.Public
	}
	defaultContent(prod)

	if err := s.Repo.SaveProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, mykafka.ProductUpdated, prod)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, caller *identity.Caller, id uint) (*models.Product, error) {
	prod, err := s.Repo.DeleteProduct(ctx, caller, id)
	if err != nil {
		return nil, notFound(err)
	}

	s.afterWrite(ctx, mykafka.ProductDeleted, prod)
	return prod, nil
}

// SearchProducts returns the products matching query that caller may see.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, caller *identity.Caller, offset, limit int) (int64, []models.Product, error) {
	if query == "" {
		return 0, []models.Product{}, nil
	}
	return s.searcher().SearchProducts(ctx, query, caller, offset, limit)
}

// OwnerTotals counts the products of every owner appearing in items.
func (s *CatalogService) OwnerTotals(ctx context.Context, items ...models.Product) (map[uint]int64, error) {
	return s.Repo.CountProductsByOwner(ctx, transport.OwnerIDs(items))
}

func (s *CatalogService) searcher() ProductSearcher {
	if s.Searcher != nil {
		return s.Searcher
	}
	return s.Repo
}

func defaultContent(p *models.Product) {
	if p.Content == "" {
		p.Content = p.Title
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// afterWrite mirrors the change to the index and the event log. Failures are
// logged only.
func (s *CatalogService) afterWrite(ctx context.Context, eventType string, prod *models.Product) {
	l := logging.FromContext(ctx).With("svc", "catalog", "product_id", prod.ID, "event", eventType)

	if s.Indexer != nil {
		var err error
		if eventType == mykafka.ProductDeleted {
			err = s.Indexer.DeleteProduct(ctx, prod.ID)
		} else {
			err = s.Indexer.IndexProduct(ctx, prod)
		}
		if err != nil {
			l.Error("index_product_failed", "error", err)
		}
	}

	if s.Publisher == nil {
		return
	}
	ev, err := mykafka.NewEvent(eventType, mykafka.ProductPayload{
		ID:      prod.ID,
		Title:   prod.Title,
		Price:   prod.Price,
		Public:  prod.Public,
		OwnerID: prod.UserID,
	})
	if err != nil {
		l.Error("build_event_failed", "error", err)
		return
	}
	if err := s.Publisher.PublishEvent(ctx, mykafka.TopicProductEvents, fmt.Sprint(prod.ID), ev); err != nil {
		l.Error("publish_event_failed", "error", err)
	}
}

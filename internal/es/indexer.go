package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/product_catalog/internal/models"
)

// Title and content are wildcard fields so substring queries behave like
// the database LIKE match.
var indexMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":       map[string]any{"type": "long"},
			"title":    map[string]any{"type": "wildcard"},
			"content":  map[string]any{"type": "wildcard"},
			"public":   map[string]any{"type": "boolean"},
			"owner_id": map[string]any{"type": "long"},
			"price":    map[string]any{"type": "scaled_float", "scaling_factor": 100},
		},
	},
}

type Document struct {
	ID      uint    `json:"id"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Public  bool    `json:"public"`
	OwnerID *uint   `json:"owner_id"`
	Price   float64 `json:"price"`
}

func NewDocument(p *models.Product) Document {
	return Document{
		ID:      p.ID,
		Title:   p.Title,
		Content: p.Content,
		Public:  p.Public,
		OwnerID: p.UserID,
		Price:   p.Price,
	}
}

// Indexer mirrors products into an index.
type Indexer struct {
	Client *elasticsearch.Client
	Index  string
}

func (ix *Indexer) EnsureIndex(ctx context.Context) error {
	res, err := ix.Client.Indices.Exists([]string{ix.Index}, ix.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(indexMapping); err != nil {
		return err
	}

	res, err = ix.Client.Indices.Create(ix.Index,
		ix.Client.Indices.Create.WithContext(ctx),
		ix.Client.Indices.Create.WithBody(&buf),
	)
	if err != nil {
		return fmt.Errorf("es: create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res.Status(), res.Body)
	}
	return nil
}

func (ix *Indexer) IndexProduct(ctx context.Context, p *models.Product) error {
	body, err := json.Marshal(NewDocument(p))
	if err != nil {
		return err
	}

	res, err := ix.Client.Index(ix.Index, bytes.NewReader(body),
		ix.Client.Index.WithContext(ctx),
		ix.Client.Index.WithDocumentID(docID(p.ID)),
		ix.Client.Index.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("es: index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index product", res.Status(), res.Body)
	}
	return nil
}

// DeleteProduct removes the document. A missing document is not an error.
func (ix *Indexer) DeleteProduct(ctx context.Context, id uint) error {
	res, err := ix.Client.Delete(ix.Index, docID(id),
		ix.Client.Delete.WithContext(ctx),
		ix.Client.Delete.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("es: delete product %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete product", res.Status(), res.Body)
	}
	return nil
}

func docID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/product_catalog/internal/identity"
	"github.com/Skotchmaster/product_catalog/internal/logging"
	"github.com/Skotchmaster/product_catalog/internal/models"
)

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// WildcardPattern matches query as a literal substring.
func WildcardPattern(query string) string {
	return "*" + wildcardEscaper.Replace(query) + "*"
}

func textMatch(query string) []any {
	pattern := WildcardPattern(query)
	return []any{
		map[string]any{"wildcard": map[string]any{"title": map[string]any{"value": pattern, "case_insensitive": true}}},
		map[string]any{"wildcard": map[string]any{"content": map[string]any{"value": pattern, "case_insensitive": true}}},
	}
}

func branch(filter map[string]any, query string) map[string]any {
	return map[string]any{
		"bool": map[string]any{
			"filter":               []any{filter},
			"should":               textMatch(query),
			"minimum_should_match": 1,
		},
	}
}

// BuildQuery encodes (public AND match) OR (owner_id = caller AND match).
func BuildQuery(query string, caller *identity.Caller, from, size int) map[string]any {
	branches := []any{branch(map[string]any{"term": map[string]any{"public": true}}, query)}
	if caller.Authenticated() {
		branches = append(branches, branch(map[string]any{"term": map[string]any{"owner_id": caller.ID}}, query))
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should":               branches,
				"minimum_should_match": 1,
			},
		},
		"sort":             []any{map[string]any{"id": "asc"}},
		"from":             from,
		"size":             size,
		"_source":          false,
		"track_total_hits": true,
	}
}

type ProductLoader interface {
	GetProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error)
}

// Searcher finds ids in the index and loads the rows from Loader.
type Searcher struct {
	Client *elasticsearch.Client
	Index  string
	Loader ProductLoader
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *Searcher) SearchProducts(ctx context.Context, query string, caller *identity.Caller, offset, limit int) (int64, []models.Product, error) {
	if query == "" {
		return 0, []models.Product{}, nil
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(BuildQuery(query, caller, offset, limit)); err != nil {
		return 0, nil, err
	}

	res, err := s.Client.Search(
		s.Client.Search.WithContext(ctx),
		s.Client.Search.WithIndex(s.Index),
		s.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res.Status(), res.Body)
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("es: decode search: %w", err)
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			return 0, nil, fmt.Errorf("es: bad document id %q: %w", hit.ID, err)
		}
		ids = append(ids, uint(id))
	}

	items, err := s.Loader.GetProductsByIDs(ctx, ids)
	if err != nil {
		return 0, nil, err
	}
	if len(items) != len(ids) {
		logging.FromContext(ctx).With("svc", "es.search").Warn("stale_index",
			"index", s.Index,
			"hits", len(ids),
			"loaded", len(items),
			"total", r.Hits.Total.Value,
		)
	}
	return r.Hits.Total.Value, items, nil
}

// Package search decides which products a caller may see for a query.
//
// Two rules live here and are intentionally separate:
//
//   - Resolve / Scope: text search. A product is returned when its title or
//     content contains the query (case-insensitive) and it is either public or
//     owned by the caller. Superusers get no extra visibility here.
//   - Owned / OwnerScope: listing and detail access. Superusers see every
//     product, other callers only the products they own.
//
// The in-memory functions and the gorm scopes express the same predicates and
// must return the same sets for the same data.
package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Skotchmaster/product_catalog/internal/identity"
	"github.com/Skotchmaster/product_catalog/internal/models"
)

// Match reports whether query occurs in the title or the content of p, ignoring case.
func Match(p *models.Product, query string) bool {
	q := models.FoldText(query)
	return strings.Contains(models.FoldText(p.Title), q) ||
		strings.Contains(models.FoldText(p.Content), q)
}

// Resolve returns the products matching query that are visible to caller,
// unique by ID and ordered by ascending ID. An empty query yields no results.
func Resolve(query string, products []models.Product, caller *identity.Caller) []models.Product {
	out := []models.Product{}
	if query == "" {
		return out
	}

	seen := make(map[uint]struct{}, len(products))
	add := func(p models.Product) {
		if _, ok := seen[p.ID]; ok {
			return
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}

	for i := range products {
		if products[i].Public && Match(&products[i], query) {
			add(products[i])
		}
	}

	if caller.Authenticated() {
		for i := range products {
			if products[i].OwnedBy(caller.ID) && Match(&products[i], query) {
				add(products[i])
			}
		}
	}

	sortByID(out)
	return out
}

// Owned applies the listing rule: superusers get everything, other callers
// their own products, anonymous callers nothing.
func Owned(products []models.Product, caller *identity.Caller) []models.Product {
	out := []models.Product{}
	for i := range products {
		switch {
		case caller.Superuser():
			out = append(out, products[i])
		case caller.Authenticated() && products[i].OwnedBy(caller.ID):
			out = append(out, products[i])
		}
	}
	sortByID(out)
	return out
}

func sortByID(products []models.Product) {
	slices.SortFunc(products, func(a, b models.Product) int {
		return cmp.Compare(a.ID, b.ID)
	})
}

package search

import (
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/product_catalog/internal/identity"
	"github.com/Skotchmaster/product_catalog/internal/models"
)

// The folded columns and the pattern both go through models.FoldText.
const textMatchSQL = `(title_folded LIKE ? ESCAPE '\' OR content_folded LIKE ? ESCAPE '\')`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern turns query into a LIKE pattern matching it as a literal substring.
func LikePattern(query string) string {
	return "%" + likeEscaper.Replace(models.FoldText(query)) + "%"
}

// Scope is the SQL form of Resolve:
//
//	(public AND match) OR (user_id = caller AND match)
//
// The second branch is only added for authenticated callers.
func Scope(query string, caller *identity.Caller) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if query == "" {
			return db.Where("1 = 0")
		}

		pattern := LikePattern(query)
		publicMatches := "(public = ? AND " + textMatchSQL + ")"
		if !caller.Authenticated() {
			return db.Where(publicMatches, true, pattern, pattern)
		}

		ownerMatches := "(user_id = ? AND " + textMatchSQL + ")"
		return db.Where("("+publicMatches+" OR "+ownerMatches+")",
			true, pattern, pattern,
			caller.ID, pattern, pattern,
		)
	}
}

// OwnerScope is the SQL form of Owned.
func OwnerScope(caller *identity.Caller) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case caller.Superuser():
			return db
		case caller.Authenticated():
			return db.Where("user_id = ?", caller.ID)
		default:
			return db.Where("1 = 0")
		}
	}
}

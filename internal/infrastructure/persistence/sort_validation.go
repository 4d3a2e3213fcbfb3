package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortableColumns whitelists the columns a listing may be ordered by. Client
// input never reaches SQL except through this lookup.
type sortableColumns struct {
	allowed  map[string]bool
	fallback string
	// descByDefault applies when no direction, or an unknown one, is given
	descByDefault bool
}

// orderBy resolves a client supplied field and direction to an ORDER BY column
func (s sortableColumns) orderBy(field, dir string) clause.OrderByColumn {
	column := strings.ToLower(strings.TrimSpace(field))
	if !s.allowed[column] {
		column = s.fallback
	}

	desc := s.descByDefault
	switch strings.ToUpper(strings.TrimSpace(dir)) {
	case "ASC":
		desc = false
	case "DESC":
		desc = true
	}
	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}
}

// tieBreaker keeps pagination stable when the sort column has duplicates
var tieBreaker = clause.OrderByColumn{Column: clause.Column{Name: "id"}}

var projectSort = sortableColumns{
	allowed: map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"status":     true,
		"progress":   true,
		"budget":     true,
		"deadline":   true,
		"days_left":  true,
	},
	fallback:      "created_at",
	descByDefault: true,
}

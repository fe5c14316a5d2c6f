package postgres

import (
	"fmt"
	"strings"

	"github.com/jordanlanch/leadboard/pkg/filter"
	"github.com/lib/pq"
)

// Filterable columns; field names are never interpolated unless listed here
var columns = map[string]string{
	"first_name":       "first_name",
	"last_name":        "last_name",
	"email":            "email",
	"phone":            "phone",
	"company":          "company",
	"city":             "city",
	"state":            "state",
	"status":           "status",
	"source":           "source",
	"score":            "score",
	"lead_value":       "lead_value",
	"is_qualified":     "is_qualified",
	"created_at":       "created_at",
	"last_activity_at": "last_activity_at",
}

var sqlOps = map[filter.Op]string{
	filter.OpEq:  "=",
	filter.OpGt:  ">",
	filter.OpLt:  "<",
	filter.OpGte: ">=",
	filter.OpLte: "<=",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// BuildWhere renders pred as a WHERE clause (without the keyword) ANDed
// with the owner term. Placeholders are numbered from $1.
func BuildWhere(ownerID string, pred filter.Predicate) (string, []any) {
	parts := []string{"owner_id = $1"}
	args := []any{ownerID}

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, c := range pred.Conditions {
		col, ok := columns[c.Field]
		if !ok {
			continue
		}
		switch c.Op {
		case filter.OpContains:
			s, ok := c.Value.(string)
			if !ok {
				continue
			}
			pattern := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
			parts = append(parts, fmt.Sprintf(`LOWER(%s) LIKE %s ESCAPE '\'`, col, next(pattern)))
		case filter.OpIn:
			set, ok := c.Value.([]string)
			if !ok {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s = ANY(%s)", col, next(pq.Array(set))))
		default:
			op, ok := sqlOps[c.Op]
			if !ok {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s %s %s", col, op, next(c.Value)))
		}
	}

	return strings.Join(parts, " AND "), args
}

package filter

import (
	"strings"
	"time"

	"github.com/jordanlanch/leadboard/pkg/models"
)

// Match evaluates the predicate against a single lead
func (p Predicate) Match(l models.Lead) bool {
	for _, c := range p.Conditions {
		if !c.Match(l) {
			return false
		}
	}
	return true
}

// Filter returns the leads matching p, preserving order
func (p Predicate) Filter(leads []models.Lead) []models.Lead {
	out := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		if p.Match(l) {
			out = append(out, l)
		}
	}
	return out
}

// Match evaluates one condition against a lead. Conditions on fields the
// lead does not carry never match.
func (c Condition) Match(l models.Lead) bool {
	switch c.Kind {
	case KindString, KindEnum:
		s, ok := stringField(l, c.Field)
		return ok && matchString(s, c)
	case KindNumber:
		n, ok := numberField(l, c.Field)
		want, isNum := c.Value.(float64)
		return ok && isNum && compare(cmpFloat(n, want), c.Op)
	case KindDate:
		t, ok := timeField(l, c.Field)
		want, isTime := c.Value.(time.Time)
		return ok && isTime && compare(t.Compare(want), c.Op)
	case KindBool:
		want, isBool := c.Value.(bool)
		return c.Field == "is_qualified" && isBool && c.Op == OpEq && l.IsQualified == want
	}
	return false
}

func matchString(s string, c Condition) bool {
	switch c.Op {
	case OpEq:
		want, _ := c.Value.(string)
		return s == want
	case OpContains:
		want, _ := c.Value.(string)
		return strings.Contains(strings.ToLower(s), strings.ToLower(want))
	case OpIn:
		set, _ := c.Value.([]string)
		for _, v := range set {
			if s == v {
				return true
			}
		}
	}
	return false
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compare(cmp int, op Op) bool {
	switch op {
	case OpEq:
		return cmp == 0
	case OpGt:
		return cmp > 0
	case OpLt:
		return cmp < 0
	case OpGte:
		return cmp >= 0
	case OpLte:
		return cmp <= 0
	}
	return false
}

func stringField(l models.Lead, field string) (string, bool) {
	switch field {
	case "first_name":
		return l.FirstName, true
	case "last_name":
		return l.LastName, true
	case "email":
		return l.Email, true
	case "phone":
		return l.Phone, true
	case "company":
		return l.Company, true
	case "city":
		return l.City, true
	case "state":
		return l.State, true
	case "status":
		return l.Status, true
	case "source":
		return l.Source, true
	}
	return "", false
}

func numberField(l models.Lead, field string) (float64, bool) {
	switch field {
	case "score":
		return float64(l.Score), true
	case "lead_value":
		return l.LeadValue, true
	}
	return 0, false
}

func timeField(l models.Lead, field string) (time.Time, bool) {
	switch field {
	case "created_at":
		return l.CreatedAt, true
	case "last_activity_at":
		return l.LastActivityAt, true
	}
	return time.Time{}, false
}

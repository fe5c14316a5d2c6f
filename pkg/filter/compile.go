package filter

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind classifies a filterable field
type Kind int

const (
	KindString Kind = iota
	KindEnum
	KindNumber
	KindDate
	KindBool
)

// Op is a comparison emitted by the compiler
type Op string

const (
	OpEq       Op = "eq"
	OpContains Op = "contains"
	OpIn       Op = "in"
	OpGt       Op = "gt"
	OpLt       Op = "lt"
	OpGte      Op = "gte"
	OpLte      Op = "lte"
)

// Filterable lead fields
var fieldKinds = map[string]Kind{
	"first_name":       KindString,
	"last_name":        KindString,
	"email":            KindString,
	"phone":            KindString,
	"company":          KindString,
	"city":             KindString,
	"state":            KindString,
	"status":           KindEnum,
	"source":           KindEnum,
	"score":            KindNumber,
	"lead_value":       KindNumber,
	"created_at":       KindDate,
	"last_activity_at": KindDate,
	"is_qualified":     KindBool,
}

// KindOf reports the kind of a filterable field
func KindOf(field string) (Kind, bool) {
	k, ok := fieldKinds[field]
	return k, ok
}

// Condition is a single comparison against one lead field.
// Value is a string for OpEq/OpContains on text fields, []string for OpIn,
// float64 for numbers, time.Time for dates and bool for is_qualified.
type Condition struct {
	Field string
	Kind  Kind
	Op    Op
	Value any
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Value)
}

// Predicate is the AND of its conditions. The zero Predicate matches everything.
type Predicate struct {
	Conditions []Condition
}

// IsEmpty reports whether the predicate places no constraint
func (p Predicate) IsEmpty() bool {
	return len(p.Conditions) == 0
}

// Date layouts accepted for date operators, most specific first
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

const dateOnlyLayout = "2006-01-02"

// Compiler builds Predicates. Location decides where calendar days start for
// the date "on" operator and for date-only values; nil means time.Local.
type Compiler struct {
	Location *time.Location
}

// NewCompiler returns a compiler evaluating calendar days in loc
func NewCompiler(loc *time.Location) *Compiler {
	return &Compiler{Location: loc}
}

func (c *Compiler) location() *time.Location {
	if c == nil || c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Compile translates spec into a Predicate. Unknown fields and operators, empty
// values and values that cannot be coerced to the field's type are ignored.
func (c *Compiler) Compile(spec Spec) Predicate {
	names := make([]string, 0, len(spec))
	for name := range spec {
		names = append(names, name)
	}
	sort.Strings(names)

	var conds []Condition
	for _, name := range names {
		kind, ok := fieldKinds[name]
		if !ok {
			continue
		}
		ops := spec[name]
		switch kind {
		case KindString:
			conds = append(conds, compileString(name, ops)...)
		case KindEnum:
			conds = append(conds, compileEnum(name, ops)...)
		case KindNumber:
			conds = append(conds, compileNumber(name, ops)...)
		case KindDate:
			conds = append(conds, c.compileDate(name, ops)...)
		case KindBool:
			conds = append(conds, compileBool(name, ops)...)
		}
	}
	return Predicate{Conditions: conds}
}

func compileString(field string, ops map[string]any) []Condition {
	var out []Condition
	if s, ok := asString(ops["equals"]); ok {
		out = append(out, Condition{Field: field, Kind: KindString, Op: OpEq, Value: s})
	}
	if s, ok := asString(ops["contains"]); ok {
		out = append(out, Condition{Field: field, Kind: KindString, Op: OpContains, Value: s})
	}
	return out
}

func compileEnum(field string, ops map[string]any) []Condition {
	var out []Condition
	if s, ok := asString(ops["equals"]); ok {
		out = append(out, Condition{Field: field, Kind: KindEnum, Op: OpEq, Value: s})
	}
	if set := asList(ops["in"]); len(set) > 0 {
		out = append(out, Condition{Field: field, Kind: KindEnum, Op: OpIn, Value: set})
	}
	return out
}

func compileNumber(field string, ops map[string]any) []Condition {
	var out []Condition
	add := func(op Op, v float64) {
		out = append(out, Condition{Field: field, Kind: KindNumber, Op: op, Value: v})
	}
	if n, ok := asNumber(ops["equals"]); ok {
		add(OpEq, n)
	}
	if n, ok := asNumber(ops["gt"]); ok {
		add(OpGt, n)
	}
	if n, ok := asNumber(ops["lt"]); ok {
		add(OpLt, n)
	}
	lo, okLo := asNumber(ops["between_min"])
	hi, okHi := asNumber(ops["between_max"])
	if okLo && okHi {
		add(OpGte, lo)
		add(OpLte, hi)
	}
	return out
}

func (c *Compiler) compileDate(field string, ops map[string]any) []Condition {
	loc := c.location()
	var out []Condition
	add := func(op Op, t time.Time) {
		out = append(out, Condition{Field: field, Kind: KindDate, Op: op, Value: t})
	}

	if t, _, ok := asTime(ops["on"], loc); ok {
		t = t.In(loc)
		start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		add(OpGte, start)
		add(OpLte, endOfDay(start))
	}
	if t, _, ok := asTime(ops["before"], loc); ok {
		add(OpLt, t)
	}
	if t, _, ok := asTime(ops["after"], loc); ok {
		add(OpGt, t)
	}

	start, _, okStart := asTime(ops["between_start"], loc)
	end, dateOnly, okEnd := asTime(ops["between_end"], loc)
	if okStart && okEnd {
		// a bare date as the upper bound includes that whole day
		if dateOnly {
			end = endOfDay(end)
		}
		add(OpGte, start)
		add(OpLte, end)
	}
	return out
}

func compileBool(field string, ops map[string]any) []Condition {
	if b, ok := asBool(ops["equals"]); ok {
		return []Condition{{Field: field, Kind: KindBool, Op: OpEq, Value: b}}
	}
	return nil
}

// endOfDay is the last millisecond of the day starting at midnight
func endOfDay(midnight time.Time) time.Time {
	return midnight.AddDate(0, 0, 1).Add(-time.Millisecond)
}

// value coercion

func asString(v any) (string, bool) {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case json.Number:
		s = x.String()
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		s = strconv.Itoa(x)
	case bool:
		s = strconv.FormatBool(x)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// asList accepts a JSON array or a comma-joined string
func asList(v any) []string {
	var parts []string
	switch x := v.(type) {
	case string:
		parts = strings.Split(x, ",")
	case []string:
		parts = x
	case []any:
		for _, item := range x {
			if s, ok := asString(item); ok {
				parts = append(parts, s)
			}
		}
	default:
		return nil
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func asNumber(v any) (float64, bool) {
	f, ok := rawNumber(v)
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func rawNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// asTime parses a date value in loc. dateOnly is true when the input had no
// time component.
func asTime(v any, loc *time.Location) (t time.Time, dateOnly bool, ok bool) {
	switch x := v.(type) {
	case time.Time:
		return x, false, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false, false
		}
		for _, layout := range dateLayouts {
			parsed, err := time.ParseInLocation(layout, s, loc)
			if err == nil {
				return parsed, layout == dateOnlyLayout, true
			}
		}
	}
	return time.Time{}, false, false
}

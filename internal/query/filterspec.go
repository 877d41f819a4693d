// Package query compiles caller-supplied filter and sort parameters into an immutable
// FilterSpec. A FilterSpec only ever holds whitelisted column identifiers; caller text
// travels exclusively as bound LIKE patterns.
package query

import (
	"strings"
)

type Entity int

const (
	EntityStore Entity = iota
	EntityUser
)

func (e Entity) String() string {
	if e == EntityUser {
		return "user"
	}
	return "store"
}

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Params is the raw, optional input. Blank fields impose no constraint.
type Params struct {
	Name    string `form:"name" json:"name"`
	Email   string `form:"email" json:"email"`
	Address string `form:"address" json:"address"`
	Role    string `form:"role" json:"role"`
	SortBy  string `form:"sortBy" json:"sortBy"`
	Order   string `form:"order" json:"order"`
}

// Predicate is a case-insensitive substring match: LOWER(Column) LIKE LOWER(Pattern) ESCAPE '!'.
// Pattern is lower-cased for ASCII only; anything else is folded by the database's LOWER on both
// sides, so column and pattern always go through the same function.
type Predicate struct {
	Column  string
	Pattern string
}

// EscapeChar is the LIKE escape character used in every Pattern.
const EscapeChar = "!"

const idColumn = "id"

var filterColumns = map[Entity][]string{
	EntityStore: {"name", "email", "address"},
	EntityUser:  {"name", "email", "address", "role"},
}

// sortColumns maps the public sortBy value to its column.
var sortColumns = map[Entity]map[string]string{
	EntityStore: {
		"id":        "id",
		"name":      "name",
		"email":     "email",
		"address":   "address",
		"createdAt": "created_at",
	},
	EntityUser: {
		"id":      "id",
		"name":    "name",
		"email":   "email",
		"address": "address",
		"role":    "role",
	},
}

type FilterSpec struct {
	entity     Entity
	predicates []Predicate
	sortColumn string
	direction  Direction
}

// Compile never fails: unknown sort keys fall back to id, unknown orders to ASC.
func Compile(e Entity, p Params) FilterSpec {
	values := map[string]string{
		"name":    p.Name,
		"email":   p.Email,
		"address": p.Address,
		"role":    p.Role,
	}

	spec := FilterSpec{entity: e, sortColumn: idColumn, direction: Asc}
	for _, col := range filterColumns[e] {
		v := strings.TrimSpace(values[col])
		if v == "" {
			continue
		}
		spec.predicates = append(spec.predicates, Predicate{
			Column:  col,
			Pattern: "%" + escapeLike(asciiLower(v)) + "%",
		})
	}
	if col, ok := sortColumns[e][strings.TrimSpace(p.SortBy)]; ok {
		spec.sortColumn = col
	}
	if strings.EqualFold(strings.TrimSpace(p.Order), string(Desc)) {
		spec.direction = Desc
	}
	return spec
}

// Default is the unfiltered spec ordered by id ascending.
func Default(e Entity) FilterSpec {
	return FilterSpec{entity: e, sortColumn: idColumn, direction: Asc}
}

func (s FilterSpec) Entity() Entity       { return s.entity }
func (s FilterSpec) SortColumn() string   { return s.sortColumn }
func (s FilterSpec) Direction() Direction { return s.direction }

func (s FilterSpec) Predicates() []Predicate {
	out := make([]Predicate, len(s.predicates))
	copy(out, s.predicates)
	return out
}

func (s FilterSpec) sortOrDefault() string {
	if s.sortColumn == "" {
		return idColumn
	}
	return s.sortColumn
}

func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(EscapeChar, EscapeChar+EscapeChar, "%", EscapeChar+"%", "_", EscapeChar+"_")
	return r.Replace(s)
}

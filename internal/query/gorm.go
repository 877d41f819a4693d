package query

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Scope applies the FilterSpec to a gorm query. Columns are qualified with the current table so the
// scope stays valid when the caller joins.
func (s FilterSpec) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, p := range s.predicates {
			db = db.Where(clause.Expr{
				SQL:  "LOWER(?) LIKE LOWER(?) ESCAPE '" + EscapeChar + "'",
				Vars: []any{clause.Column{Table: clause.CurrentTable, Name: p.Column}, p.Pattern},
			})
		}
		col := s.sortOrDefault()
		db = db.Order(clause.OrderByColumn{
			Column: clause.Column{Table: clause.CurrentTable, Name: col},
			Desc:   s.direction == Desc,
		})
		if col != idColumn {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: idColumn}})
		}
		return db
	}
}

package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds a SELECT ... FOR UPDATE row lock on PostgreSQL so concurrent
// lifecycle calls on the same resource serialize. SQLite has a single writer
// and rejects the clause, so it is skipped there.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// Package revenuedb holds all the migrations for the revenue database
package revenuedb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the revenue database
var Migrations = migrate.NewMigrations()

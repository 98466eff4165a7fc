// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, shared errors
//	├── dbtest/          # Temporary databases for tests
//	├── spells/          # Spell CRUD, view counters, language facets
//	├── spellbooks/      # Spellbook CRUD and spell counts
//	├── runes/           # Rune CRUD and view counters
//	├── favorites/       # Per-user spell bookmarks
//	├── users/           # Accounts and profile counts
//	└── audit/           # Audit event log
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./spellbook.db", logger)
//
//	spellsRepo := spells.NewRepository(db.DB)
//	spell, err := spellsRepo.GetByID("spl-...")
//
// Lookups of missing rows return ErrNotFound and unique violations return
// ErrDuplicate, so callers can test with errors.Is without importing gorm.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add the model to Models()
//  5. Add compile-time interface checks where a controller consumes it
package database

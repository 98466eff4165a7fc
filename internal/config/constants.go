package config

// Default paths for on-disk state
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./spellbook.db"

	// DefaultSearchIndexDir is the default directory of the bleve index
	DefaultSearchIndexDir = "./search.bleve"
)

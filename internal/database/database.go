package database

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/spellbook-app/spellbook/internal/entities"
)

// Repository errors shared by all sub-packages. Both alias gorm's errors so
// errors.Is works on anything a repository returns.
var (
	ErrNotFound  = gorm.ErrRecordNotFound
	ErrDuplicate = gorm.ErrDuplicatedKey
)

// Stamp is the id and modification time of a record, enough to list it in a
// sitemap.
type Stamp struct {
	ID        string
	UpdatedAt time.Time
}

type Database struct {
	DB *gorm.DB
}

// Models lists every table managed by AutoMigrate.
func Models() []any {
	return []any{
		&entities.User{},
		&entities.Spellbook{},
		&entities.Spell{},
		&entities.Rune{},
		&entities.Favorite{},
		&entities.AuditEvent{},
	}
}

// Open connects to the SQLite file at dbPath without migrating.
func Open(dbPath string, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logLevel),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func NewDatabase(dbPath string, log *zap.Logger) (*Database, error) {
	db, err := Open(dbPath, logger.Warn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("Database initialized", zap.String("path", dbPath))

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// dsn adds a busy timeout and WAL mode to plain file paths.
func dsn(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") || strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}

// ContainsPattern builds a case-insensitive LIKE pattern matching s anywhere.
// Use with "LIKE ? ESCAPE '\'" against a LOWER() column.
func ContainsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

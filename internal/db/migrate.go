package db

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/diewo77/go-workhours/internal/models"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate runs AutoMigrate for all models.
// It is the default path and the one tests use.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// MigrateSQL applies the embedded versioned SQL files for db's dialect.
func MigrateSQL(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}

	dialect := db.Dialector.Name()
	var driver database.Driver
	switch dialect {
	case "postgres":
		driver, err = migratepg.WithInstance(sqlDB, &migratepg.Config{})
	case "sqlite":
		driver, err = migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	default:
		return fmt.Errorf("no SQL migrations for dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("create %s migrate driver: %w", dialect, err)
	}

	sub, err := fs.Sub(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return err
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dialect, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	// Closing m would close the shared *sql.DB owned by gorm, so only the source is closed.
	defer src.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Run applies the migration mode chosen by MIGRATIONS: auto, sql or off.
func Run(db *gorm.DB, mode string) error {
	switch mode {
	case "", "auto":
		return Migrate(db)
	case "sql":
		return MigrateSQL(db)
	case "off":
		return nil
	default:
		return fmt.Errorf("unknown migration mode %q", mode)
	}
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"club-mailer/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// InitDB opens and pings the Postgres connection.
func InitDB(ctx context.Context, dataSourceName string, log logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("connected to PostgreSQL", nil)
	return db, nil
}

// ApplyMigrations applies database migrations from the specified path
func ApplyMigrations(databaseURL, migrationsPath string, log logger.Logger) error {
	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("no database migrations to apply", nil)
	case err != nil:
		return fmt.Errorf("failed to apply migrations: %w", err)
	default:
		log.Info("database migrations applied", map[string]interface{}{"path": migrationsPath})
	}
	return nil
}

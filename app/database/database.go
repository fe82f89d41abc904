// Package database opens the MySQL connection pool and applies the embedded
// goose migrations.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/vibast-solutions/ms-go-webauth/config"

	"github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Open connects to MySQL and verifies the connection with a ping.
func Open(ctx context.Context, cfg config.MySQLConfig) (*sql.DB, error) {
	dsn, err := normalizeDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

// normalizeDSN forces the driver options the user store relies on: DATETIME
// columns scan into time.Time, and UPDATE reports changed rows, not matched.
func normalizeDSN(dsn string) (string, error) {
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	parsed.ParseTime = true
	parsed.ClientFoundRows = false
	return parsed.FormatDSN(), nil
}

// gooseRun is a seam for testing goose.RunContext.
var gooseRun = func(ctx context.Context, command string, db *sql.DB, dir string, args ...string) error {
	return goose.RunContext(ctx, command, db, dir, args...)
}

// Migrate runs a goose command ("up", "down", "status", ...) against db
// using the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, command string, args ...string) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(logrus.StandardLogger())
	if err := goose.SetDialect("mysql"); err != nil {
		return err
	}

	if err := gooseRun(ctx, command, db, migrationsDir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

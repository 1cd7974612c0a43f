// Package postgres implements the catalog repositories on PostgreSQL for
// installs that outgrow the single-workbook backend.
package postgres

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"formulab/internal/config"
)

// NewDB opens a connection pool against the catalog database. Pool limits
// come from config; a plant install runs one server process, so the defaults
// are modest.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to catalog database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	return db, nil
}

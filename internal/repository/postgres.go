package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// NewPostgresDB connects to an externally curated country_risk table.
func NewPostgresDB(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := newStore(db, dialectPostgres)
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

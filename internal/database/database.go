package database

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens the PostgreSQL pool used for run history and admin data.
// An empty URL disables the database and returns a nil handle.
func Connect(databaseURL string) (*sqlx.DB, error) {
	if databaseURL == "" {
		log.Println("[DB] DATABASE_URL not set; run history and admin API disabled")
		return nil, nil
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	// Run inserts are small and bursty (pause/reset), a modest pool is enough
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

package config

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// MemoryDatabaseURL selects the in-process store instead of Postgres.
const MemoryDatabaseURL = "memory://"

func InitDB(dbURL string) (*sql.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// Migrations is the ordered, idempotent schema.
var Migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		gender VARCHAR(20) NOT NULL,
		age INTEGER NOT NULL CHECK (age >= 18),
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		security_question VARCHAR(255) NOT NULL,
		security_answer_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS trips (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		trip_name VARCHAR(255) NOT NULL DEFAULT 'Untitled Trip',
		trip_code VARCHAR(6) UNIQUE NOT NULL,
		leader_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP DEFAULT NOW(),
		voting_deadline TIMESTAMP,
		is_voting_closed BOOLEAN NOT NULL DEFAULT FALSE,
		is_trip_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		itinerary_data JSONB,
		final_chosen_option INTEGER CHECK (final_chosen_option IN (1, 2))
	)`,

	`CREATE TABLE IF NOT EXISTS trip_participants (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		trip_id UUID NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		home_town VARCHAR(255) NOT NULL,
		budget_range VARCHAR(100) NOT NULL,
		start_date VARCHAR(10) NOT NULL,
		end_date VARCHAR(10) NOT NULL,
		preference_tags TEXT[] NOT NULL DEFAULT '{}',
		joined_at TIMESTAMP DEFAULT NOW(),
		UNIQUE(trip_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS trip_votes (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		trip_id UUID NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		option_selected INTEGER NOT NULL CHECK (option_selected IN (1, 2)),
		updated_at TIMESTAMP DEFAULT NOW(),
		UNIQUE(trip_id, user_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_trips_leader ON trips(leader_id)`,
	`CREATE INDEX IF NOT EXISTS idx_trip_participants_user ON trip_participants(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_trip_participants_trip ON trip_participants(trip_id, joined_at)`,
	`CREATE INDEX IF NOT EXISTS idx_trip_votes_trip ON trip_votes(trip_id)`,
}

func RunMigrations(db *sql.DB) error {
	for i, migration := range Migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}

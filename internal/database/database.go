package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Service wraps the SQLite database holding user preferences and food logs.
// Every operation is a single short statement scoped to its own context;
// there are no long-lived transactions. Concurrent writers to the same
// preference row race under last-write-wins, which callers accept.
type Service struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS nutrition_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    food_item TEXT NOT NULL,
    calories REAL NOT NULL,
    timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS user_preferences (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT UNIQUE NOT NULL,
    dietary_restrictions TEXT,   -- JSON array
    food_allergies TEXT,         -- JSON array
    cuisine_preferences TEXT,    -- JSON array
    health_goals TEXT,           -- JSON object goal -> bool
    weight_goal REAL,
    current_weight REAL,
    activity_level TEXT,
    age INTEGER,
    gender TEXT,
    height_cm REAL,
    daily_calorie_target INTEGER,
    protein_target REAL,
    carb_target REAL,
    fat_target REAL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_logs_user_time ON nutrition_logs(user_id, timestamp);
`

// New opens (creating if needed) the SQLite file at path and ensures the
// schema exists. SQLite serializes writers itself, so a single connection
// is enough for this workload.
func New(path string) (*Service, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Info().Str("path", path).Msg("Database initialized successfully")
	return &Service{db: db, path: path}, nil
}

// Health reports connection status and pool counters for the health endpoint.
func (s *Service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		log.Error().Err(err).Msg("database health check failed")
		return stats
	}

	dbStats := s.db.Stats()
	stats["status"] = "up"
	stats["open_conns"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration_ms"] = strconv.FormatInt(dbStats.WaitDuration.Milliseconds(), 10)

	return stats
}

// Close closes the underlying database.
func (s *Service) Close() error {
	log.Info().Str("path", s.path).Msg("Disconnected from database")
	return s.db.Close()
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// FoodLogEntry is one append-only row in nutrition_logs. Entries are never
// updated or deleted once written.
type FoodLogEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	FoodItem  string    `json:"food_item"`
	Calories  float64   `json:"calories"`
	Timestamp time.Time `json:"timestamp"`
}

// DaySummary aggregates one user's entries for a single day.
type DaySummary struct {
	TotalCalories float64        `json:"total_calories"`
	EntryCount    int            `json:"entry_count"`
	Entries       []FoodLogEntry `json:"entries"`
}

// FoodCount is one row of the top-foods aggregation.
type FoodCount struct {
	FoodItem string `json:"food_item"`
	Count    int    `json:"count"`
}

// LogFood appends one entry and returns its generated id. The timestamp is
// server-assigned by the database.
func (s *Service) LogFood(ctx context.Context, userID, foodItem string, calories float64) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("user id is required")
	}
	if foodItem == "" {
		return 0, fmt.Errorf("food item is required")
	}
	if calories < 0 {
		return 0, fmt.Errorf("calories must be non-negative, got %v", calories)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO nutrition_logs (user_id, food_item, calories) VALUES (?, ?, ?)",
		userID, foodItem, calories)
	if err != nil {
		return 0, fmt.Errorf("failed to log food: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

// DailySummary returns the total calories, entry count and entries
// (newest first) that userID logged on the given day.
func (s *Service) DailySummary(ctx context.Context, userID string, day time.Time) (*DaySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, food_item, calories, timestamp
        FROM nutrition_logs
        WHERE user_id = ? AND date(timestamp) = date(?)
        ORDER BY timestamp DESC, id DESC`,
		userID, day.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily log: %w", err)
	}
	defer rows.Close()

	summary := &DaySummary{Entries: []FoodLogEntry{}}
	for rows.Next() {
		var (
			e  FoodLogEntry
			ts sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.FoodItem, &e.Calories, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		e.Timestamp = parseSQLiteTime(ts.String)
		summary.Entries = append(summary.Entries, e)
		summary.TotalCalories += e.Calories
		summary.EntryCount++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read daily log: %w", err)
	}
	return summary, nil
}

// TopFoods returns the n most frequently logged foods for userID,
// most-logged first.
func (s *Service) TopFoods(ctx context.Context, userID string, n int) ([]FoodCount, error) {
	if n <= 0 {
		n = 5
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT food_item, COUNT(*) AS c
        FROM nutrition_logs
        WHERE user_id = ?
        GROUP BY food_item
        ORDER BY c DESC, food_item ASC
        LIMIT ?`, userID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query top foods: %w", err)
	}
	defer rows.Close()

	var out []FoodCount
	for rows.Next() {
		var fc FoodCount
		if err := rows.Scan(&fc.FoodItem, &fc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan top food: %w", err)
		}
		out = append(out, fc)
	}
	return out, rows.Err()
}

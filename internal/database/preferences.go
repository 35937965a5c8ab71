package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Preferences is the full per-user profile record. Writes are whole-record
// upserts: the last save wins, there is no field-level merge.
type Preferences struct {
	UserID              string          `json:"user_id"`
	DietaryRestrictions []string        `json:"dietary_restrictions"`
	FoodAllergies       []string        `json:"food_allergies"`
	CuisinePreferences  []string        `json:"cuisine_preferences"`
	HealthGoals         map[string]bool `json:"health_goals"`
	WeightGoal          *float64        `json:"weight_goal,omitempty"`
	CurrentWeight       *float64        `json:"current_weight,omitempty"`
	ActivityLevel       string          `json:"activity_level,omitempty"`
	Age                 *int            `json:"age,omitempty"`
	Gender              string          `json:"gender,omitempty"`
	HeightCm            *float64        `json:"height_cm,omitempty"`
	DailyCalorieTarget  *int            `json:"daily_calorie_target,omitempty"`
	ProteinTarget       *float64        `json:"protein_target,omitempty"`
	CarbTarget          *float64        `json:"carb_target,omitempty"`
	FatTarget           *float64        `json:"fat_target,omitempty"`
	CreatedAt           time.Time       `json:"created_at,omitempty"`
	UpdatedAt           time.Time       `json:"updated_at,omitempty"`
}

// SavePreferences upserts the whole record for p.UserID.
func (s *Service) SavePreferences(ctx context.Context, p *Preferences) error {
	if p.UserID == "" {
		return fmt.Errorf("user id is required")
	}

	restrictions, err := json.Marshal(emptySlice(p.DietaryRestrictions))
	if err != nil {
		return fmt.Errorf("failed to encode dietary restrictions: %w", err)
	}
	allergies, err := json.Marshal(emptySlice(p.FoodAllergies))
	if err != nil {
		return fmt.Errorf("failed to encode food allergies: %w", err)
	}
	cuisines, err := json.Marshal(emptySlice(p.CuisinePreferences))
	if err != nil {
		return fmt.Errorf("failed to encode cuisine preferences: %w", err)
	}
	goals := p.HealthGoals
	if goals == nil {
		goals = map[string]bool{}
	}
	goalsJSON, err := json.Marshal(goals)
	if err != nil {
		return fmt.Errorf("failed to encode health goals: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO user_preferences
            (user_id, dietary_restrictions, food_allergies, cuisine_preferences,
             health_goals, weight_goal, current_weight, activity_level, age,
             gender, height_cm, daily_calorie_target, protein_target,
             carb_target, fat_target, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(user_id) DO UPDATE SET
            dietary_restrictions = excluded.dietary_restrictions,
            food_allergies       = excluded.food_allergies,
            cuisine_preferences  = excluded.cuisine_preferences,
            health_goals         = excluded.health_goals,
            weight_goal          = excluded.weight_goal,
            current_weight       = excluded.current_weight,
            activity_level       = excluded.activity_level,
            age                  = excluded.age,
            gender               = excluded.gender,
            height_cm            = excluded.height_cm,
            daily_calorie_target = excluded.daily_calorie_target,
            protein_target       = excluded.protein_target,
            carb_target          = excluded.carb_target,
            fat_target           = excluded.fat_target,
            updated_at           = CURRENT_TIMESTAMP`,
		p.UserID, string(restrictions), string(allergies), string(cuisines),
		string(goalsJSON), p.WeightGoal, p.CurrentWeight, p.ActivityLevel, p.Age,
		p.Gender, p.HeightCm, p.DailyCalorieTarget, p.ProteinTarget,
		p.CarbTarget, p.FatTarget)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// GetPreferences returns the stored record for userID, or (nil, nil) when the
// user has never saved preferences.
func (s *Service) GetPreferences(ctx context.Context, userID string) (*Preferences, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT user_id, dietary_restrictions, food_allergies, cuisine_preferences,
               health_goals, weight_goal, current_weight, activity_level, age,
               gender, height_cm, daily_calorie_target, protein_target,
               carb_target, fat_target, created_at, updated_at
        FROM user_preferences WHERE user_id = ?`, userID)

	var (
		p                                           Preferences
		restrictions, allergies, cuisines, goals    sql.NullString
		activityLevel, gender, createdAt, updatedAt sql.NullString
	)
	err := row.Scan(&p.UserID, &restrictions, &allergies, &cuisines, &goals,
		&p.WeightGoal, &p.CurrentWeight, &activityLevel, &p.Age,
		&gender, &p.HeightCm, &p.DailyCalorieTarget, &p.ProteinTarget,
		&p.CarbTarget, &p.FatTarget, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	p.ActivityLevel = activityLevel.String
	p.Gender = gender.String
	p.DietaryRestrictions = decodeStringList(restrictions)
	p.FoodAllergies = decodeStringList(allergies)
	p.CuisinePreferences = decodeStringList(cuisines)
	p.HealthGoals = decodeGoalMap(goals)
	p.CreatedAt = parseSQLiteTime(createdAt.String)
	p.UpdatedAt = parseSQLiteTime(updatedAt.String)

	return &p, nil
}

func emptySlice(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func decodeStringList(v sql.NullString) []string {
	out := []string{}
	if v.Valid && v.String != "" {
		// Rows written by older builds may hold malformed JSON; treat that
		// as an empty list rather than failing the whole read.
		_ = json.Unmarshal([]byte(v.String), &out)
	}
	return out
}

func decodeGoalMap(v sql.NullString) map[string]bool {
	out := map[string]bool{}
	if v.Valid && v.String != "" {
		_ = json.Unmarshal([]byte(v.String), &out)
	}
	return out
}

// parseSQLiteTime handles the formats SQLite emits for CURRENT_TIMESTAMP.
func parseSQLiteTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

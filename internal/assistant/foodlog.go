package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nutrisense/internal/database"
)

const configureUserIDMessage = "❌ Please set your User ID first to log food. Save your preferences to set your User ID."

const extractionHint = "❌ I couldn't understand the food details. Please try: 'I ate [food name]' or 'Had [food name]'"

// extractedFood is the minimal structured object the model must return for
// a food-logging query.
type extractedFood struct {
	FoodItem string  `json:"food_item"`
	Calories float64 `json:"calories"`
}

// handleFoodLogging runs the natural-language logging sub-flow: AI extracts
// {food_item, calories}, the entry is appended to the log, and the
// confirmation optionally reports progress against the daily calorie target.
// Unparsable model output is reported with a corrective hint, never a crash.
func (a *Assistant) handleFoodLogging(ctx context.Context, userID, query string, prefs *database.Preferences) string {
	if userID == "" {
		return configureUserIDMessage
	}

	content, err := a.gen.Generate(ctx, GenerateRequest{
		System:      extractSystemPrompt,
		User:        fmt.Sprintf(extractUserPrompt, query),
		MaxTokens:   100,
		Temperature: 0.1,
		Timeout:     15 * time.Second,
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("AI food extraction failed")
		return "❌ I couldn't process your food logging request. Please try: 'I ate [food name]' or 'Had [food name]'"
	}

	food, ok := parseExtractedFood(content)
	if !ok {
		a.log.Warn().Str("response", content).Msg("AI extraction response not valid JSON")
		return extractionHint
	}
	if food.Calories < 0 {
		food.Calories = 0
	}

	if _, err := a.store.LogFood(ctx, userID, food.FoodItem, food.Calories); err != nil {
		a.log.Error().Err(err).Msg("failed to store food log entry")
		return fmt.Sprintf("❌ Error logging food: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Logged: %s (%g calories)", food.FoodItem, food.Calories)
	if prefs != nil && prefs.DailyCalorieTarget != nil {
		fmt.Fprintf(&b, "\n📊 Progress: Added %g calories toward your %d calorie target.", food.Calories, *prefs.DailyCalorieTarget)
	}
	if prefs != nil && (len(prefs.DietaryRestrictions) > 0 || len(prefs.HealthGoals) > 0) {
		b.WriteString("\n💡 Tip: Keep up the great work tracking your nutrition!")
	}

	a.log.Info().Str("food", food.FoodItem).Float64("calories", food.Calories).Msg("logged food via chat")
	return b.String()
}

// parseExtractedFood decodes the model's JSON answer. Models occasionally
// wrap the object in a markdown code fence, so that is stripped first.
func parseExtractedFood(content string) (extractedFood, bool) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var food extractedFood
	if err := json.Unmarshal([]byte(trimmed), &food); err != nil {
		return extractedFood{}, false
	}
	if food.FoodItem == "" {
		food.FoodItem = "Unknown food"
	}
	return food, true
}

package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nutrisense/internal/database"
)

// nutritionAdvice answers a general nutrition question with one AI call.
// There is no generative fallback; failures become user-facing strings.
func (a *Assistant) nutritionAdvice(ctx context.Context, query string, prefs *database.Preferences) string {
	if !a.gen.Available() {
		return "❌ Mistral API key not configured. Please set MISTRAL_API_KEY in your environment variables."
	}

	userContext := "User Profile: No specific preferences provided"
	if parts := profileContext(prefs); len(parts) > 0 {
		userContext = "User Profile: " + strings.Join(parts, " | ")
	}

	reply, err := a.gen.Generate(ctx, GenerateRequest{
		System:    nutritionSystemPrompt,
		User:      fmt.Sprintf(nutritionUserPrompt, userContext, query),
		MaxTokens: 1000,
		Timeout:   30 * time.Second,
	})
	if err != nil {
		a.log.Error().Err(err).Msg("AI nutrition advice failed")
		if errors.Is(err, ErrBadResponse) && strings.Contains(err.Error(), "401") {
			return "❌ Authentication Error (401): Invalid Mistral API key. Please check your API key configuration."
		}
		return fmt.Sprintf("❌ API Error: %v", err)
	}

	a.log.Info().Msg("generated personalized AI nutrition advice")
	return reply
}

// workoutPlan generates a personalized plan. This path alone fails loudly:
// there is no fallback, so a missing key or failed call is returned as an
// error for the transport layer to surface.
func (a *Assistant) workoutPlan(ctx context.Context, query string, prefs *database.Preferences) (string, error) {
	if !a.gen.Available() {
		return "", fmt.Errorf("MISTRAL_API_KEY required for personalized workout plans: %w", ErrNoAPIKey)
	}

	var parts []string
	if prefs != nil {
		if prefs.Age != nil {
			parts = append(parts, fmt.Sprintf("Age: %d years", *prefs.Age))
		}
		if prefs.Gender != "" {
			parts = append(parts, fmt.Sprintf("Gender: %s", prefs.Gender))
		}
		if prefs.CurrentWeight != nil && prefs.HeightCm != nil {
			parts = append(parts, fmt.Sprintf("Weight: %gkg, Height: %gcm", *prefs.CurrentWeight, *prefs.HeightCm))
		}
		if prefs.ActivityLevel != "" {
			parts = append(parts, fmt.Sprintf("Activity Level: %s", prefs.ActivityLevel))
		}
		if goals := activeGoals(prefs.HealthGoals, true); len(goals) > 0 {
			parts = append(parts, fmt.Sprintf("Goals: %s", strings.Join(goals, ", ")))
		}
		if len(prefs.DietaryRestrictions) > 0 {
			parts = append(parts, fmt.Sprintf("Diet: %s", strings.Join(prefs.DietaryRestrictions, ", ")))
		}
	}
	userContext := "General fitness guidance needed"
	if len(parts) > 0 {
		userContext = strings.Join(parts, " | ")
	}

	reply, err := a.gen.Generate(ctx, GenerateRequest{
		System:    workoutSystemPrompt,
		User:      fmt.Sprintf(workoutUserPrompt, userContext, query),
		MaxTokens: 1500,
		Timeout:   30 * time.Second,
	})
	if err != nil {
		return "", fmt.Errorf("workout plan generation failed: %w", err)
	}

	a.log.Info().Msg("generated personalized workout plan")
	return reply, nil
}

// profileContext renders the full preference record for the advice prompt.
func profileContext(prefs *database.Preferences) []string {
	if prefs == nil {
		return nil
	}
	var parts []string
	if prefs.Age != nil {
		parts = append(parts, fmt.Sprintf("Age: %d", *prefs.Age))
	}
	if prefs.Gender != "" {
		parts = append(parts, fmt.Sprintf("Gender: %s", prefs.Gender))
	}
	if prefs.CurrentWeight != nil && prefs.HeightCm != nil {
		parts = append(parts, fmt.Sprintf("Current weight: %gkg, Height: %gcm", *prefs.CurrentWeight, *prefs.HeightCm))
	}
	if prefs.WeightGoal != nil {
		parts = append(parts, fmt.Sprintf("Weight goal: %gkg", *prefs.WeightGoal))
	}
	if prefs.ActivityLevel != "" {
		parts = append(parts, fmt.Sprintf("Activity level: %s", prefs.ActivityLevel))
	}
	if prefs.DailyCalorieTarget != nil {
		parts = append(parts, fmt.Sprintf("Daily calorie target: %d calories", *prefs.DailyCalorieTarget))
	}
	if len(prefs.DietaryRestrictions) > 0 {
		parts = append(parts, fmt.Sprintf("Dietary restrictions: %s", strings.Join(prefs.DietaryRestrictions, ", ")))
	}
	if len(prefs.FoodAllergies) > 0 {
		parts = append(parts, fmt.Sprintf("Food allergies: %s", strings.Join(prefs.FoodAllergies, ", ")))
	}
	if goals := activeGoals(prefs.HealthGoals, true); len(goals) > 0 {
		parts = append(parts, fmt.Sprintf("Health goals: %s", strings.Join(goals, ", ")))
	}
	return parts
}

package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"nutrisense/internal/database"
)

// Canonical dietary tags for the fallback composer. Restriction strings that
// match no keyword are silently dropped from the query text.
var dietaryTagByKeyword = []struct {
	keyword string
	tag     string
}{
	{"vegetarian", "vegetarian"},
	{"vegan", "vegan"},
	{"pescatarian", "pescatarian"},
	{"keto", "keto"},
	{"gluten", "gluten-free"},
	{"halal", "halal"},
	{"kosher", "kosher"},
}

// composeRestaurantQueries builds the search queries for a restaurant
// request: an AI attempt first, requiring at least 3 non-empty lines, then
// the deterministic template fallback. Always returns exactly 3 queries.
func composeRestaurantQueries(ctx context.Context, gen Generator, location string, prefs *database.Preferences, cuisine string, logger zerolog.Logger) []string {
	if gen.Available() {
		queries, err := composeWithAI(ctx, gen, location, prefs, cuisine)
		if err == nil {
			logger.Info().Int("count", len(queries)).Msg("generated smart search queries")
			return queries
		}
		logger.Warn().Err(err).Msg("AI query generation failed, falling back to basic queries")
	} else {
		logger.Info().Msg("using fallback query generation (AI not available)")
	}
	return fallbackQueries(location, prefs, cuisine)
}

func composeWithAI(ctx context.Context, gen Generator, location string, prefs *database.Preferences, cuisine string) ([]string, error) {
	contextParts := []string{fmt.Sprintf("Location: %s", location)}
	if cuisine != "" {
		contextParts = append(contextParts, fmt.Sprintf("Cuisine preference: %s", cuisine))
	}
	if prefs != nil {
		if len(prefs.DietaryRestrictions) > 0 {
			contextParts = append(contextParts, fmt.Sprintf("Dietary restrictions: %s", strings.Join(prefs.DietaryRestrictions, ", ")))
		}
		if len(prefs.FoodAllergies) > 0 {
			contextParts = append(contextParts, fmt.Sprintf("Food allergies: %s", strings.Join(prefs.FoodAllergies, ", ")))
		}
		if goals := activeGoals(prefs.HealthGoals, false); len(goals) > 0 {
			contextParts = append(contextParts, fmt.Sprintf("Health goals: %s", strings.Join(goals, ", ")))
		}
	}

	content, err := gen.Generate(ctx, GenerateRequest{
		System:    queryComposerSystemPrompt,
		User:      fmt.Sprintf(queryComposerUserPrompt, strings.Join(contextParts, ". ")),
		MaxTokens: 300,
		Timeout:   20 * time.Second,
	})
	if err != nil {
		return nil, err
	}

	var queries []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			queries = append(queries, line)
		}
	}
	if len(queries) < 3 {
		return nil, fmt.Errorf("AI generated only %d queries: %w", len(queries), ErrUnparsable)
	}
	return queries[:3], nil
}

// fallbackQueries is the deterministic 3-query template used when AI is
// unavailable or fails. Same inputs always produce the same queries.
func fallbackQueries(location string, prefs *database.Preferences, cuisine string) []string {
	var dietaryTerms []string
	var healthTerms []string
	if prefs != nil {
		for _, restriction := range prefs.DietaryRestrictions {
			lower := strings.ToLower(restriction)
			for _, m := range dietaryTagByKeyword {
				if strings.Contains(lower, m.keyword) {
					dietaryTerms = append(dietaryTerms, m.tag)
					break
				}
			}
		}
		if prefs.HealthGoals["weight_loss"] {
			healthTerms = append(healthTerms, "healthy")
		}
		if prefs.HealthGoals["muscle_gain"] {
			healthTerms = append(healthTerms, "protein-rich")
		}
	}

	dietaryStr := strings.Join(dietaryTerms, " ")
	cuisineStr := cuisine
	if cuisineStr == "" {
		cuisineStr = "restaurants"
	}
	query1 := strings.Join(strings.Fields(fmt.Sprintf("best %s %s in %s", dietaryStr, cuisineStr, location)), " ")

	healthStr := "good"
	if len(healthTerms) > 0 {
		healthStr = strings.Join(healthTerms, " ")
	}
	query2 := fmt.Sprintf("%s restaurants %s reviews", healthStr, location)

	query3 := fmt.Sprintf("%s restaurants", location)
	if len(dietaryTerms) > 0 {
		query3 += " " + dietaryTerms[0]
	}
	query3 += " zomato swiggy"

	return []string{query1, query2, query3}
}

// activeGoals lists goal names whose flag is set, underscores replaced with
// spaces, optionally title-cased for prompt display.
func activeGoals(goals map[string]bool, titled bool) []string {
	var out []string
	for _, name := range sortedGoalNames(goals) {
		if !goals[name] {
			continue
		}
		label := strings.ReplaceAll(name, "_", " ")
		if titled {
			label = titleCase(label)
		}
		out = append(out, label)
	}
	return out
}

func sortedGoalNames(goals map[string]bool) []string {
	names := make([]string, 0, len(goals))
	for name := range goals {
		names = append(names, name)
	}
	// Map iteration order is random; prompts and fallback queries must be
	// stable for equal inputs.
	sort.Strings(names)
	return names
}

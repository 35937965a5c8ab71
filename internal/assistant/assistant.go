/*
Package assistant implements the nutrition-and-fitness chat core: intent
classification, search query composition, multi-query search aggregation,
response synthesis, and the food-logging extraction flow. The package is a
pure request→response layer over injected external clients and the store,
free of any transport dependency.
*/
package assistant

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"nutrisense/internal/database"
)

const invalidInputMessage = "Invalid input. Please provide a valid nutrition question."

// Session carries per-request conversational identity. It is passed
// explicitly into every call; the assistant keeps no mutable global state.
type Session struct {
	ID     string
	UserID string
}

// Assistant wires the store and the two external API clients together.
type Assistant struct {
	store  *database.Service
	gen    Generator
	search Searcher
	log    zerolog.Logger
}

// New builds an Assistant from its dependencies.
func New(store *database.Service, gen Generator, search Searcher, logger zerolog.Logger) *Assistant {
	return &Assistant{store: store, gen: gen, search: search, log: logger}
}

// HandleQuery processes one chat message end to end: validate, classify,
// dispatch. Every failure path except the workout one returns a
// user-displayable string with a nil error; the workout path has no
// fallback and propagates its error.
func (a *Assistant) HandleQuery(ctx context.Context, sess Session, query string) (string, error) {
	if !ValidInput(query) {
		return invalidInputMessage, nil
	}

	logger := a.log.With().Str("session_id", sess.ID).Str("user_id", sess.UserID).Logger()

	var prefs *database.Preferences
	if sess.UserID != "" {
		p, err := a.store.GetPreferences(ctx, sess.UserID)
		if err != nil {
			logger.Error().Err(err).Msg("failed to load preferences")
		} else {
			prefs = p
		}
	}

	c := Classify(query)
	logger.Info().Str("intent", c.Intent.String()).Str("location", c.Location).Msg("classified query")

	switch c.Intent {
	case IntentFoodLogging:
		return a.handleFoodLogging(ctx, sess.UserID, query, prefs), nil

	case IntentRestaurantSearch:
		return a.handleRestaurantSearch(ctx, c.Location, prefs, logger), nil

	case IntentWorkout:
		return a.workoutPlan(ctx, query, prefs)

	default:
		return a.nutritionAdvice(ctx, query, prefs), nil
	}
}

// handleRestaurantSearch runs the compose → aggregate → synthesize pipeline.
// When the user gave no cuisine, their first stored cuisine preference is
// used.
func (a *Assistant) handleRestaurantSearch(ctx context.Context, location string, prefs *database.Preferences, logger zerolog.Logger) string {
	cuisine := ""
	if prefs != nil && len(prefs.CuisinePreferences) > 0 {
		cuisine = prefs.CuisinePreferences[0]
		logger.Info().Str("cuisine", cuisine).Msg("using preferred cuisine from profile")
	}

	queries := composeRestaurantQueries(ctx, a.gen, location, prefs, cuisine, logger)
	outcome, err := aggregateSearch(ctx, a.search, queries, logger)
	if err != nil {
		logger.Warn().Err(err).Str("location", location).Msg("restaurant search unavailable")
	} else {
		logger.Info().Int("unique", outcome.TotalFound).Str("location", location).Msg("restaurant search finished")
	}
	return formatRestaurantResults(ctx, a.gen, outcome, err, location, prefs, logger)
}

// DailyProgress renders goal progress for a summary, shared by the food-log
// endpoints.
func DailyProgress(summary *database.DaySummary, prefs *database.Preferences) string {
	if prefs == nil || prefs.DailyCalorieTarget == nil || *prefs.DailyCalorieTarget <= 0 {
		return ""
	}
	target := *prefs.DailyCalorieTarget
	percentage := summary.TotalCalories / float64(target) * 100
	return fmt.Sprintf("🎯 Goal Progress: %.1f%% of %d calorie target", percentage, target)
}

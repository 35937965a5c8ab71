package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"nutrisense/internal/assistant"
	"nutrisense/internal/database"
)

/* ====================================================================
                        Preferences Handlers
==================================================================== */

// savePreferencesHandler upserts the caller's full preference record.
// Last write wins; there is no field-level merge.
func (s *Server) savePreferencesHandler(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("user_id"))
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user id is required"})
	}

	var prefs database.Preferences
	if err := c.Bind(&prefs); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid preferences payload"})
	}
	prefs.UserID = userID

	if err := s.db.SavePreferences(c.Request().Context(), &prefs); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to save preferences")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to save preferences"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "✅ Preferences saved successfully!"})
}

func (s *Server) getPreferencesHandler(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("user_id"))
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user id is required"})
	}

	prefs, err := s.db.GetPreferences(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to read preferences")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to read preferences"})
	}
	if prefs == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no preferences saved for this user"})
	}
	return c.JSON(http.StatusOK, prefs)
}

/* ====================================================================
                        Food Log Handlers
==================================================================== */

// FoodLogRequest is the manual logging payload from the client form.
type FoodLogRequest struct {
	UserID   string  `json:"user_id"`
	FoodItem string  `json:"food_item"`
	Calories float64 `json:"calories"`
}

// FoodLogResponse confirms a logged entry, with goal progress when the user
// has a calorie target.
type FoodLogResponse struct {
	ID       int64  `json:"id"`
	Message  string `json:"message"`
	Progress string `json:"progress,omitempty"`
}

func (s *Server) logFoodHandler(c echo.Context) error {
	var req FoodLogRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid food log payload"})
	}
	if req.UserID == "" || req.FoodItem == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id and food_item are required"})
	}

	ctx := c.Request().Context()
	id, err := s.db.LogFood(ctx, req.UserID, req.FoodItem, req.Calories)
	if err != nil {
		log.Error().Err(err).Str("user_id", req.UserID).Msg("failed to log food")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	resp := FoodLogResponse{
		ID:      id,
		Message: "Logged: " + req.FoodItem,
	}
	if prefs, err := s.db.GetPreferences(ctx, req.UserID); err == nil && prefs != nil {
		if summary, err := s.db.DailySummary(ctx, req.UserID, time.Now()); err == nil {
			resp.Progress = assistant.DailyProgress(summary, prefs)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// DailySummaryResponse is the per-day aggregation plus goal progress.
type DailySummaryResponse struct {
	*database.DaySummary
	TopFoods []database.FoodCount `json:"top_foods,omitempty"`
	Progress string               `json:"progress,omitempty"`
}

// dailySummaryHandler returns today's log for a user. The three store reads
// are independent, so they run concurrently.
func (s *Server) dailySummaryHandler(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("user_id"))
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user id is required"})
	}

	ctx := c.Request().Context()
	var (
		summary  *database.DaySummary
		prefs    *database.Preferences
		topFoods []database.FoodCount
	)

	g, grpCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.db.DailySummary(grpCtx, userID, time.Now())
		return err
	})
	g.Go(func() error {
		var err error
		prefs, err = s.db.GetPreferences(grpCtx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		topFoods, err = s.db.TopFoods(grpCtx, userID, 5)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to build daily summary")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to build daily summary"})
	}

	return c.JSON(http.StatusOK, DailySummaryResponse{
		DaySummary: summary,
		TopFoods:   topFoods,
		Progress:   assistant.DailyProgress(summary, prefs),
	})
}

package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"nutrisense/internal/database"
)

const snippetLimit = 200

// formatRestaurantResults turns a search outcome (or its terminal error)
// into user-facing text. Every shape renders something actionable; the
// output is never silently empty.
func formatRestaurantResults(ctx context.Context, gen Generator, outcome *SearchOutcome, searchErr error, location string, prefs *database.Preferences, logger zerolog.Logger) string {
	if searchErr != nil {
		if errors.Is(searchErr, ErrNoAPIKey) {
			return fmt.Sprintf(`🔑 **Restaurant Search Not Available**

EXA_API_KEY not configured. Please set your Exa API key in environment variables to enable restaurant search.

**To enable real-time restaurant search:**
1. Get an API key from https://exa.ai
2. Add `+"`EXA_API_KEY=your_key_here`"+` to your .env file
3. Restart the application

**Meanwhile, here are dining tips for %s:**
• Check Zomato, Google Maps, or TripAdvisor for reviews
• Look for restaurants with healthy menu options
• Consider the cooking methods - grilled, baked, or steamed are better choices`, location)
		}
		return fmt.Sprintf(`⚠️ **Search Issue:** %s

**General dining tips for %s:**
• Look for restaurants with good reviews on Google Maps or Zomato
• Check for healthy options like grilled proteins and fresh vegetables
• Consider the cooking methods - grilled, baked, or steamed are better choices
• Watch portion sizes and consider sharing dishes`, searchErr, location)
	}

	if len(outcome.Results) == 0 {
		debugMsg := ""
		if outcome.DebugInfo != "" {
			debugMsg = fmt.Sprintf("\n\n🔍 **Debug Info:** %s", outcome.DebugInfo)
		}
		return fmt.Sprintf(`🤔 **No Restaurant Results Found**

I searched extensively but couldn't find specific restaurant recommendations for **%s** right now. This could be due to:

• **Location specificity**: Try a broader area (e.g., 'Mumbai' instead of 'Bandra West')
• **Search timing**: Restaurant databases might be updating
• **API limitations**: Some regions have limited coverage

**Meanwhile, here are proven ways to find great restaurants:**
• 🔍 **Zomato/Swiggy**: Best for Indian locations with reviews and ratings
• 🗺️ **Google Maps**: Search 'restaurants near [location]' with photos and reviews
• ✈️ **TripAdvisor**: Great for tourist areas and popular spots
• 👥 **Ask locals**: Social media groups or friends in the area%s`, location, debugMsg)
	}

	if gen.Available() {
		reply, err := synthesizeWithAI(ctx, gen, outcome, location, prefs)
		if err == nil {
			logger.Info().Msg("generated AI restaurant recommendations")
			return reply
		}
		logger.Warn().Err(err).Msg("AI recommendation synthesis failed, using fallback formatting")
	}

	return fallbackListing(outcome.Results, location)
}

func synthesizeWithAI(ctx context.Context, gen Generator, outcome *SearchOutcome, location string, prefs *database.Preferences) (string, error) {
	var contextParts []string
	if prefs != nil {
		if len(prefs.DietaryRestrictions) > 0 {
			contextParts = append(contextParts, fmt.Sprintf("Dietary restrictions: %s", strings.Join(prefs.DietaryRestrictions, ", ")))
		}
		if len(prefs.FoodAllergies) > 0 {
			contextParts = append(contextParts, fmt.Sprintf("Food allergies: %s", strings.Join(prefs.FoodAllergies, ", ")))
		}
		if goals := activeGoals(prefs.HealthGoals, true); len(goals) > 0 {
			contextParts = append(contextParts, fmt.Sprintf("Health goals: %s", strings.Join(goals, ", ")))
		}
	}
	userContext := "No specific dietary preferences"
	if len(contextParts) > 0 {
		userContext = strings.Join(contextParts, " | ")
	}

	lines := make([]string, 0, len(outcome.Results))
	for i, r := range outcome.Results {
		title := r.Title
		if title == "" {
			title = fmt.Sprintf("Restaurant %d", i+1)
		}
		line := fmt.Sprintf("%d. %s", i+1, title)
		if r.URL != "" {
			line += fmt.Sprintf(" (%s)", r.URL)
		}
		if snippet := cleanSnippet(r.Text); snippet != "" {
			line += " - " + snippet
		}
		lines = append(lines, line)
	}

	return gen.Generate(ctx, GenerateRequest{
		System:    recommendSystemPrompt,
		User:      fmt.Sprintf(recommendUserPrompt, userContext, location, len(outcome.Results), strings.Join(lines, "\n")),
		MaxTokens: 1000,
		Timeout:   25 * time.Second,
	})
}

// fallbackListing is the deterministic numbered listing used when AI
// synthesis is unavailable or fails.
func fallbackListing(results []SearchResult, location string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🍽️ **Found %d restaurant recommendations for %s:**\n\n", len(results), location)
	for i, r := range results {
		if i == 5 {
			break
		}
		title := r.Title
		if title == "" {
			title = "Restaurant"
		}
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, title)
		if r.URL != "" {
			fmt.Fprintf(&b, "🔗 %s\n", r.URL)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// cleanSnippet flattens whitespace and truncates to snippetLimit characters.
func cleanSnippet(text string) string {
	clean := strings.Join(strings.Fields(text), " ")
	runes := []rune(clean)
	if len(runes) > snippetLimit {
		return string(runes[:snippetLimit]) + "..."
	}
	return clean
}

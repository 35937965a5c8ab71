package assistant

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrisense/internal/database"
)

func TestFallbackQueriesDeterminism(t *testing.T) {
	prefs := &database.Preferences{DietaryRestrictions: []string{"Vegan"}}

	want := []string{
		"best vegan restaurants in Pune",
		"good restaurants Pune reviews",
		"Pune restaurants vegan zomato swiggy",
	}
	for i := 0; i < 3; i++ {
		assert.Equal(t, want, fallbackQueries("Pune", prefs, ""))
	}
}

func TestFallbackQueriesDietaryMapping(t *testing.T) {
	tests := []struct {
		name         string
		restrictions []string
		wantFirst    string
	}{
		{"vegetarian", []string{"Vegetarian"}, "best vegetarian restaurants in Pune"},
		{"gluten maps to gluten-free", []string{"Gluten-Free"}, "best gluten-free restaurants in Pune"},
		{"unknown term dropped", []string{"Dairy-Free"}, "best restaurants in Pune"},
		{"halal", []string{"Halal"}, "best halal restaurants in Pune"},
		{"none", nil, "best restaurants in Pune"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := &database.Preferences{DietaryRestrictions: tt.restrictions}
			got := fallbackQueries("Pune", prefs, "")
			assert.Equal(t, tt.wantFirst, got[0])
		})
	}
}

func TestFallbackQueriesHealthGoals(t *testing.T) {
	prefs := &database.Preferences{
		HealthGoals: map[string]bool{"weight_loss": true, "muscle_gain": false},
	}
	got := fallbackQueries("Mumbai", prefs, "")
	assert.Equal(t, "healthy restaurants Mumbai reviews", got[1])
}

func TestFallbackQueriesCuisine(t *testing.T) {
	got := fallbackQueries("Delhi", nil, "Italian")
	assert.Equal(t, "best Italian in Delhi", got[0])
}

func TestComposeUsesAIWhenItReturnsEnoughLines(t *testing.T) {
	gen := &fakeGenerator{
		available: true,
		reply:     "query one\nquery two\nquery three\nquery four",
	}
	got := composeRestaurantQueries(context.Background(), gen, "Pune", nil, "", zerolog.Nop())
	assert.Equal(t, []string{"query one", "query two", "query three"}, got)
	require.Len(t, gen.calls, 1)
	assert.Equal(t, 300, gen.calls[0].MaxTokens)
}

func TestComposeFallsBackOnShortAIOutput(t *testing.T) {
	gen := &fakeGenerator{available: true, reply: "only one query"}
	got := composeRestaurantQueries(context.Background(), gen, "Pune", nil, "", zerolog.Nop())
	assert.Equal(t, fallbackQueries("Pune", nil, ""), got)
}

func TestComposeFallsBackOnAIError(t *testing.T) {
	gen := &fakeGenerator{available: true, err: ErrBadResponse}
	got := composeRestaurantQueries(context.Background(), gen, "Pune", nil, "", zerolog.Nop())
	assert.Equal(t, fallbackQueries("Pune", nil, ""), got)
}

func TestComposeSkipsAIWhenUnavailable(t *testing.T) {
	gen := &fakeGenerator{available: false}
	got := composeRestaurantQueries(context.Background(), gen, "Pune", nil, "", zerolog.Nop())
	assert.Empty(t, gen.calls)
	assert.Equal(t, fallbackQueries("Pune", nil, ""), got)
}

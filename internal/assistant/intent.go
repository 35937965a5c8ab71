package assistant

import (
	"regexp"
	"strings"
	"unicode"
)

// Intent is the classified purpose of a user query.
type Intent int

const (
	IntentGeneralNutrition Intent = iota
	IntentFoodLogging
	IntentRestaurantSearch
	IntentWorkout
)

func (i Intent) String() string {
	switch i {
	case IntentFoodLogging:
		return "food_logging"
	case IntentRestaurantSearch:
		return "restaurant_search"
	case IntentWorkout:
		return "workout"
	default:
		return "general_nutrition"
	}
}

// Classification is the classifier's verdict. Location is only set for
// IntentRestaurantSearch.
type Classification struct {
	Intent   Intent
	Location string
}

// Keyword sets. Membership is a substring test against the lowercased query,
// the same best-effort heuristic the feature has always used.
var (
	foodLoggingKeywords = []string{
		"ate", "eaten", "consumed", "had", "drank",
		"log food", "log meal", "log calories", "track food", "track meal",
		"add food", "add meal", "record food", "record meal",
		"just ate", "just had", "just consumed",
		"breakfast", "lunch", "dinner", "snack", "meal",
	}

	restaurantKeywords = []string{
		"restaurant", "dining", "eat out", "dinner", "lunch", "breakfast",
		"food place", "cafe", "eatery", "bar", "bistro", "dine", "meal",
	}

	foodKeywords = []string{
		"serving", "food", "cuisine", "dish", "fish", "chicken", "vegetarian",
		"vegan", "italian", "chinese", "indian", "pizza", "burger", "sushi", "seafood",
	}

	workoutKeywords = []string{
		"workout", "exercise", "fitness", "training", "gym", "strength", "cardio", "muscle",
	}

	forbiddenWords = []string{"spam", "abuse", "illegal"}

	locationIndicators = []string{"in ", "at ", "near ", "around ", "for "}

	// Known city and neighborhood names for the gazetteer strategy.
	knownPlaces = []string{
		"pune", "mumbai", "delhi", "bangalore", "hyderabad", "chennai", "kolkata", "gurgaon", "noida",
		"bandra", "andheri", "powai", "koregaon park", "viman nagar", "whitefield", "indiranagar",
		"connaught place", "karol bagh", "cyber city", "sector 29", "mg road", "brigade road",
	}

	// Subset of knownPlaces used for the food+place restaurant trigger.
	majorPlaces = []string{
		"pune", "mumbai", "delhi", "bangalore", "hyderabad", "chennai",
		"kolkata", "gurgaon", "noida", "bandra", "andheri", "powai",
	}

	capitalizedRunRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
)

// ValidInput rejects empty queries and queries carrying a denylisted word,
// before any classification or external call runs.
func ValidInput(query string) bool {
	if strings.TrimSpace(query) == "" {
		return false
	}
	lower := strings.ToLower(query)
	for _, word := range forbiddenWords {
		if strings.Contains(lower, word) {
			return false
		}
	}
	return true
}

// Classify maps a free-text query to an intent. Precedence is fixed:
// food logging beats restaurant search beats workout beats general advice.
// The order matters — "had dinner in Pune" is a log entry, not a search.
func Classify(query string) Classification {
	lower := strings.ToLower(query)

	if containsAny(lower, foodLoggingKeywords) {
		return Classification{Intent: IntentFoodLogging}
	}

	if location, ok := detectRestaurantQuery(query, lower); ok {
		return Classification{Intent: IntentRestaurantSearch, Location: location}
	}

	if containsAny(lower, workoutKeywords) {
		return Classification{Intent: IntentWorkout}
	}

	return Classification{Intent: IntentGeneralNutrition}
}

// detectRestaurantQuery reports whether the query reads like a restaurant
// request with a recoverable location. A dining query without any location
// falls through to the later intents.
func detectRestaurantQuery(query, lower string) (string, bool) {
	hasRestaurantKeyword := containsAny(lower, restaurantKeywords)
	hasFoodPlacePattern := containsAny(lower, foodKeywords) && containsAny(lower, majorPlaces)

	if !hasRestaurantKeyword && !hasFoodPlacePattern {
		return "", false
	}

	if location := extractLocation(query, lower); location != "" {
		return location, true
	}
	return "", false
}

// extractLocation tries three strategies in fixed order and returns the
// first non-empty hit: text after a locative preposition, a gazetteer
// match, then the longest run of capitalized words.
func extractLocation(query, lower string) string {
	// Strategy 1: words following a locative indicator, filtered to
	// title-cased or long tokens, stopping at the first short token.
	for _, indicator := range locationIndicators {
		idx := strings.Index(lower, indicator)
		if idx < 0 {
			continue
		}
		remainder := strings.TrimSpace(lower[idx+len(indicator):])
		words := strings.Fields(remainder)
		if len(words) > 4 {
			words = words[:4]
		}
		var locationWords []string
		for _, word := range words {
			clean := strings.Trim(word, ".,!?")
			if clean != "" && (isTitleCased(clean) || len(clean) > 3) {
				locationWords = append(locationWords, clean)
			} else {
				break
			}
		}
		if len(locationWords) > 0 {
			return titleCase(strings.Join(locationWords, " "))
		}
	}

	// Strategy 2: gazetteer substring match.
	for _, place := range knownPlaces {
		if strings.Contains(lower, place) {
			return titleCase(place)
		}
	}

	// Strategy 3: longest capitalized word run in the original query.
	matches := capitalizedRunRe.FindAllString(query, -1)
	longest := ""
	for _, m := range matches {
		if len(m) > len(longest) {
			longest = m
		}
	}
	return longest
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isTitleCased(word string) bool {
	runes := []rune(word)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// titleCase capitalizes the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

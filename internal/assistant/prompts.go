package assistant

/* =================================================================================
                            PROMPT TEMPLATES
    The external model carries all "intelligence"; these templates are the
    contract with it. Keep them versioned here so the call + parse step can
    be tested without touching the wording.
=================================================================================*/

// Query composer prompts (restaurant search).
const (
	queryComposerSystemPrompt = "You are an expert at generating effective search queries for finding restaurants that match specific user needs and preferences."

	queryComposerUserPrompt = `Based on the following user context, generate 3 diverse and effective search queries to find restaurants that match their needs:

%s

Generate 3 different search queries that would find relevant restaurants. Each query should:
1. Be specific and targeted for web search
2. Include the location
3. Incorporate the user's dietary needs naturally
4. Use different search strategies (broad, specific, health-focused)

Format: Return only the 3 queries, one per line, no numbering or bullets.

Example format:
best vegetarian restaurants in Mumbai for weight loss
Mumbai healthy dining gluten-free options reviews
vegetarian restaurants Mumbai nutritious meals`
)

// Nutrition advice prompts.
const (
	nutritionSystemPrompt = "You are an expert nutritionist and registered dietitian providing personalized, evidence-based nutrition advice. You have access to the user's complete profile and can provide comprehensive, tailored recommendations."

	nutritionUserPrompt = `Based on this user profile and question, provide comprehensive nutrition advice:

%s

User Question: %s

Provide detailed, personalized nutrition advice including:
1. Specific recommendations based on their goals and restrictions
2. Practical meal suggestions and food choices
3. Portion guidance and timing if relevant
4. Any special considerations for their dietary restrictions or health goals
5. Scientific rationale when appropriate

Keep the response helpful, actionable, and professional. Use emojis to make it engaging but maintain credibility.`
)

// Workout plan prompts. This path has no fallback: a failed call is an error.
const (
	workoutSystemPrompt = "You are an expert personal trainer and sports nutritionist providing evidence-based, personalized fitness and nutrition advice. You have access to comprehensive user profiles and can create detailed, tailored workout and nutrition plans."

	workoutUserPrompt = `Create a comprehensive, personalized workout and nutrition plan based on this user profile and request:

User Profile: %s
User Request: %s

Provide a detailed plan including:

🏋️ **WORKOUT PLAN:**
- Specific exercises tailored to their fitness level and goals
- Sets, reps, and rest periods
- Weekly training frequency and schedule
- Progression plan for next 4-8 weeks

🍎 **NUTRITION TIMING:**
- Pre-workout meal recommendations (timing and foods)
- Post-workout recovery nutrition
- Daily macro distribution based on their goals
- Hydration strategy

💪 **RECOVERY & PROGRESSION:**
- Rest day activities
- Sleep recommendations
- Signs of overtraining to watch for
- How to progress safely

Make it specific, actionable, and completely tailored to their profile. Include scientific rationale where helpful.`
)

// Restaurant recommendation synthesis prompts.
const (
	recommendSystemPrompt = "You are a knowledgeable food critic and nutrition expert providing personalized restaurant recommendations. You have expertise in dietary restrictions, health goals, and can provide actionable dining advice."

	recommendUserPrompt = `Provide personalized restaurant recommendations based on this information:

User Profile: %s
Location: %s
Number of restaurants found: %d

Restaurant Search Results:
%s

Please provide a conversational, helpful response that includes:

1. **Welcome greeting** mentioning the location and number of restaurants found
2. **Top 3-5 restaurant recommendations** from the list above with:
   - Restaurant name as a clickable link if URL is available
   - Brief description of what makes it special
   - Why it matches the user's dietary needs/preferences
3. **Personalized dining tips** based on their dietary restrictions and health goals
4. **Healthy ordering suggestions** specific to their preferences
5. **Practical advice** like checking menus online, making reservations, etc.

Make the response warm, engaging, and actionable. Use emojis to make it visually appealing but keep it professional. Focus on how each recommendation aligns with their specific dietary needs and health goals.

Format the response in markdown with clear sections and bullet points for easy reading.`
)

// Food extraction prompts. The model must answer with a bare JSON object.
const (
	extractSystemPrompt = "You are a nutrition expert that extracts food information from natural language. Extract the food item name and estimated calories. Return ONLY a JSON object with 'food_item' and 'calories' fields. If calories cannot be estimated, use 0."

	extractUserPrompt = `Extract food information from this text: "%s"

Return ONLY a JSON object like this:
{"food_item": "food name", "calories": estimated_calories}

Examples:
- "I ate an apple" → {"food_item": "apple", "calories": 95}
- "Had grilled chicken breast" → {"food_item": "grilled chicken breast", "calories": 165}
- "Drank a glass of milk" → {"food_item": "milk", "calories": 150}
- "Just had coffee" → {"food_item": "coffee", "calories": 5}

If multiple foods, combine them: "ate apple and banana" → {"food_item": "apple and banana", "calories": 200}`
)

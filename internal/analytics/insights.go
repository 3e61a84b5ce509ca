package analytics

import (
	"fmt"

	"github.com/eunoia-app/eunoia-server/internal/db"
	"github.com/eunoia-app/eunoia-server/internal/models"
)

// BuildInsights turns a window of entries into canned insights, suggestions,
// detected patterns, and recommendations for the dashboard. With no entries
// it returns the onboarding shape.
func BuildInsights(entries []db.Entry, days int) models.InsightsResponse {
	if len(entries) == 0 {
		return models.InsightsResponse{
			Insights:        []string{"Start writing journal entries to get personalized insights!"},
			Suggestions:     []string{"Try writing about your day, feelings, or thoughts."},
			DataAvailable:   false,
			Patterns:        map[string]string{},
			Recommendations: []string{},
		}
	}

	var sentiments, stressLevels []float64
	var wordCounts []int
	var emotions, groups []string
	for _, e := range entries {
		sentiments = append(sentiments, e.SentimentScore)
		stressLevels = append(stressLevels, e.StressLevel)
		wordCounts = append(wordCounts, e.WordCount)
		emotions = append(emotions, orNeutral(e.Emotion))
		groups = append(groups, orNeutral(e.EmotionGroup))
	}

	avgSentiment := mean(sentiments)
	avgStress := mean(stressLevels)
	avgWordCount := meanInt(wordCounts)
	mostCommonEmotion := mostCommon(emotions)
	mostCommonGroup := mostCommon(groups)

	insights := []string{}
	suggestions := []string{}
	patterns := map[string]string{}
	recommendations := []string{}

	// Sentiment (0-10 scale)
	switch {
	case avgSentiment > 7:
		insights = append(insights, "Your recent entries show a positive outlook!")
		patterns["sentiment_trend"] = "positive"
	case avgSentiment < 3:
		insights = append(insights, "Your recent entries suggest you might be going through a challenging time.")
		suggestions = append(suggestions, "Consider talking to a trusted friend or counselor about your feelings.")
		patterns["sentiment_trend"] = "negative"
	default:
		insights = append(insights, "Your mood has been relatively stable recently.")
		patterns["sentiment_trend"] = "neutral"
	}

	// Stress (0-10 scale)
	switch {
	case avgStress > 7:
		insights = append(insights, "Your entries indicate high stress levels lately.")
		suggestions = append(suggestions,
			"Try the 4-7-8 breathing technique: inhale for 4, hold for 7, exhale for 8.",
			"Consider taking short breaks every hour during work or study.",
			"Practice mindfulness or meditation for 5-10 minutes daily.")
		patterns["stress_level"] = "high"
		recommendations = append(recommendations, "Consider stress management techniques or professional support")
	case avgStress > 4:
		insights = append(insights, "You're experiencing moderate stress levels.")
		suggestions = append(suggestions, "Try some light exercise or a short walk to help manage stress.")
		patterns["stress_level"] = "moderate"
	default:
		insights = append(insights, "Your stress levels appear manageable.")
		patterns["stress_level"] = "low"
	}

	// Dominant emotion group
	switch mostCommonGroup {
	case "positive":
		insights = append(insights, fmt.Sprintf("You've been feeling %s frequently - that's wonderful!", mostCommonEmotion))
		patterns["emotion_dominance"] = "positive"
	case "negative":
		insights = append(insights, fmt.Sprintf("You've been experiencing %s often. It's okay to feel this way.", mostCommonEmotion))
		suggestions = append(suggestions, "Consider activities that bring you joy or relaxation.")
		patterns["emotion_dominance"] = "negative"
	default:
		insights = append(insights, "Your emotional state has been relatively balanced.")
		patterns["emotion_dominance"] = "neutral"
	}

	// Writing volume
	switch {
	case avgWordCount > 100:
		insights = append(insights, "You write detailed entries - this shows great self-reflection!")
		patterns["writing_style"] = "detailed"
	case avgWordCount > 50:
		insights = append(insights, "You maintain a good balance in your journaling.")
		patterns["writing_style"] = "moderate"
	default:
		suggestions = append(suggestions, "Try expanding on your thoughts - more detail can help with self-reflection.")
		patterns["writing_style"] = "brief"
	}

	// Consistency over the window
	entryCount := float64(len(entries))
	windowDays := float64(days)
	switch {
	case entryCount >= windowDays*0.8:
		insights = append(insights, fmt.Sprintf("Excellent journaling consistency! You've written %d entries in %d days.", len(entries), days))
		patterns["consistency"] = "excellent"
	case entryCount >= windowDays*0.5:
		insights = append(insights, "Good journaling routine! Keep up the momentum.")
		patterns["consistency"] = "good"
	case entryCount >= windowDays*0.2:
		insights = append(insights, "You're building a journaling habit. Every entry counts!")
		patterns["consistency"] = "building"
		suggestions = append(suggestions, "Try setting a daily reminder to write in your journal.")
	default:
		suggestions = append(suggestions, "Try to write in your journal more regularly, even if it's just a few sentences.")
		patterns["consistency"] = "irregular"
	}

	if patterns["stress_level"] == "high" && patterns["sentiment_trend"] == "negative" {
		recommendations = append(recommendations, "Consider professional mental health support")
	}
	if patterns["consistency"] == "irregular" {
		recommendations = append(recommendations, "Set up a daily journaling routine")
	}
	if patterns["emotion_dominance"] == "negative" {
		recommendations = append(recommendations, "Engage in activities that promote positive emotions")
	}

	return models.InsightsResponse{
		Insights:        insights,
		Suggestions:     suggestions,
		DataAvailable:   true,
		Patterns:        patterns,
		Recommendations: recommendations,
		Statistics: &models.InsightStatistics{
			AvgSentiment:           round3(avgSentiment),
			AvgStress:              round3(avgStress),
			AvgWordCount:           round1(avgWordCount),
			MostCommonEmotion:      mostCommonEmotion,
			MostCommonEmotionGroup: mostCommonGroup,
			EntryCount:             len(entries),
			DaysAnalyzed:           days,
		},
	}
}

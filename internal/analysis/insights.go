package analysis

import "strings"

// insightsFor maps a (sentiment label, primary emotion) pair to at most three
// advisory strings: a sentiment-based pair first, then an emotion-specific
// addendum when the emotion matches a trigger family. Always returns at
// least one string.
func insightsFor(sentimentLabel, emotion string) []string {
	var insights []string

	switch sentimentLabel {
	case SentimentPositive:
		insights = append(insights,
			"It's wonderful to see positive energy in your writing!",
			"Consider what contributed to these good feelings today.")
	case SentimentNegative:
		insights = append(insights,
			"Thank you for sharing your feelings. It's okay to have difficult days.",
			"Consider what small steps might help you feel better.")
	default:
		insights = append(insights,
			"Thank you for taking time to reflect on your day.",
			"Consider what stood out to you most today.")
	}

	switch {
	case strings.Contains(emotion, "joy") || strings.Contains(emotion, "happiness"):
		insights = append(insights, "Your joy is contagious! What brought you this happiness?")
	case strings.Contains(emotion, "sadness") || strings.Contains(emotion, "grief"):
		insights = append(insights, "It's natural to feel sad sometimes. Be gentle with yourself.")
	case strings.Contains(emotion, "anger") || strings.Contains(emotion, "frustration"):
		insights = append(insights, "Anger can be a signal that something needs attention.")
	}

	if len(insights) == 0 {
		return []string{"Thank you for sharing your thoughts. Consider reflecting on what brings you joy."}
	}
	if len(insights) > 3 {
		insights = insights[:3]
	}
	return insights
}

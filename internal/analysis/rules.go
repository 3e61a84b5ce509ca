package analysis

import "strings"

// sentimentOutcome is the intermediate sentiment stage output. Score is on
// the 0-10 scale, Confidence on 0-1.
type sentimentOutcome struct {
	Label      string
	Score      float64
	Confidence float64
}

// emotionOutcome is the intermediate emotion stage output.
type emotionOutcome struct {
	Primary    string
	Confidence float64
	All        []EmotionScore
	Group      string
}

// ruleBasedSentiment scores lower-cased text by counting positive and
// negative keyword hits, nudged by intensifiers. Pure computation, no
// failure path.
func ruleBasedSentiment(text string) sentimentOutcome {
	positiveCount := countContained(text, positiveKeywords)
	negativeCount := countContained(text, negativeKeywords)
	intensifierCount := countContained(text, intensifiers)

	var score float64
	var label string
	switch {
	case positiveCount > negativeCount:
		score = clamp(5.0+float64(positiveCount)*1.0+float64(intensifierCount)*0.5, 0, 10)
		label = SentimentPositive
	case negativeCount > positiveCount:
		score = clamp(5.0-float64(negativeCount)*1.0-float64(intensifierCount)*0.5, 0, 10)
		label = SentimentNegative
	default:
		score = 5.0
		label = SentimentNeutral
	}

	confidence := 0.5 + abs(score-5.0)*0.1
	if confidence > 1.0 {
		confidence = 1.0
	}

	return sentimentOutcome{Label: label, Score: score, Confidence: confidence}
}

// ruleBasedEmotion picks the emotion whose keyword set has the most hits in
// the text. Ties resolve to the earlier table entry; zero hits means neutral.
func ruleBasedEmotion(text string) emotionOutcome {
	best := "neutral"
	bestHits := 0
	for _, entry := range emotionKeywords {
		hits := countContained(text, entry.keywords)
		if hits > bestHits {
			best = entry.name
			bestHits = hits
		}
	}

	if bestHits == 0 {
		return emotionOutcome{
			Primary:    "neutral",
			Confidence: 0.5,
			All:        []EmotionScore{{Label: "neutral", Score: 0.5}},
			Group:      GroupNeutral,
		}
	}

	confidence := 0.3 + float64(bestHits)*0.2
	if confidence > 1.0 {
		confidence = 1.0
	}

	return emotionOutcome{
		Primary:    best,
		Confidence: confidence,
		All:        []EmotionScore{{Label: best, Score: confidence}},
		Group:      EmotionGroup(best),
	}
}

// countContained counts how many distinct keywords appear somewhere in the
// text (substring containment, not occurrences).
func countContained(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			count++
		}
	}
	return count
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

package analysis

import (
	"encoding/json"
	"testing"
)

func TestRuleBasedSentimentPositive(t *testing.T) {
	outcome := ruleBasedSentiment("i am so happy and grateful today!")

	if outcome.Label != SentimentPositive {
		t.Errorf("expected positive label, got %s", outcome.Label)
	}
	// Two positive hits, no intensifiers
	if outcome.Score != 7.0 {
		t.Errorf("expected score 7.0, got %v", outcome.Score)
	}
	if outcome.Confidence != 0.7 {
		t.Errorf("expected confidence 0.7, got %v", outcome.Confidence)
	}
}

func TestRuleBasedSentimentNegative(t *testing.T) {
	outcome := ruleBasedSentiment("feeling sad and lonely tonight")

	if outcome.Label != SentimentNegative {
		t.Errorf("expected negative label, got %s", outcome.Label)
	}
	if outcome.Score != 3.0 {
		t.Errorf("expected score 3.0, got %v", outcome.Score)
	}
}

func TestRuleBasedSentimentNeutral(t *testing.T) {
	outcome := ruleBasedSentiment("i went to the store and bought milk")

	if outcome.Label != SentimentNeutral {
		t.Errorf("expected neutral label, got %s", outcome.Label)
	}
	if outcome.Score != 5.0 {
		t.Errorf("expected score 5.0, got %v", outcome.Score)
	}
	if outcome.Confidence != 0.5 {
		t.Errorf("expected confidence 0.5, got %v", outcome.Confidence)
	}
}

func TestRuleBasedSentimentClampsAtTen(t *testing.T) {
	outcome := ruleBasedSentiment("happy joy excited great wonderful amazing very extremely")

	if outcome.Score != 10.0 {
		t.Errorf("expected clamped score 10.0, got %v", outcome.Score)
	}
	if outcome.Confidence != 1.0 {
		t.Errorf("expected confidence capped at 1.0, got %v", outcome.Confidence)
	}
}

func TestRuleBasedSentimentIntensifiers(t *testing.T) {
	plain := ruleBasedSentiment("today was great")
	boosted := ruleBasedSentiment("today was very great")

	if boosted.Score != plain.Score+0.5 {
		t.Errorf("expected intensifier to add 0.5, got %v vs %v", boosted.Score, plain.Score)
	}
}

func TestRuleBasedSentimentSubstringMatching(t *testing.T) {
	// "scared" fires inside "scarecrow"
	outcome := ruleBasedSentiment("we built a scarecrow")
	if outcome.Label != SentimentNegative {
		t.Errorf("expected substring match to fire, got %s", outcome.Label)
	}
}

func TestRuleBasedEmotionPicksMostHits(t *testing.T) {
	outcome := ruleBasedEmotion("i was scared and afraid, though a bit happy at the end")

	if outcome.Primary != "fear" {
		t.Errorf("expected fear, got %s", outcome.Primary)
	}
	// Two fear hits
	if outcome.Confidence != 0.7 {
		t.Errorf("expected confidence 0.7, got %v", outcome.Confidence)
	}
	if outcome.Group != GroupNegative {
		t.Errorf("expected negative group, got %s", outcome.Group)
	}
}

func TestRuleBasedEmotionTieBreaksToEarlierEntry(t *testing.T) {
	// One sadness hit and one anger hit: sadness comes first in the table
	outcome := ruleBasedEmotion("sad and angry")

	if outcome.Primary != "sadness" {
		t.Errorf("expected sadness on tie, got %s", outcome.Primary)
	}
}

func TestRuleBasedEmotionNoHits(t *testing.T) {
	outcome := ruleBasedEmotion("the meeting covered quarterly budgets")

	if outcome.Primary != "neutral" {
		t.Errorf("expected neutral, got %s", outcome.Primary)
	}
	if outcome.Confidence != 0.5 {
		t.Errorf("expected confidence 0.5, got %v", outcome.Confidence)
	}
	if len(outcome.All) != 1 || outcome.All[0].Label != "neutral" {
		t.Errorf("expected single neutral candidate, got %v", outcome.All)
	}
}

func TestStressLevelAccumulates(t *testing.T) {
	text := "i am stressed and anxious and worried, overwhelmed by pressure and a deadline"
	sentiment := ruleBasedSentiment(text)
	emotion := ruleBasedEmotion(text)

	if got := stressLevel(text, sentiment, emotion); got != 10.0 {
		t.Errorf("expected stress clamped at 10.0, got %v", got)
	}
}

func TestStressLevelPositiveEntry(t *testing.T) {
	text := "i am so happy and grateful today!"
	sentiment := ruleBasedSentiment(text)
	emotion := ruleBasedEmotion(text)

	// 0.1 for positive sentiment + 0.1 for positive emotion group
	if got := stressLevel(text, sentiment, emotion); got != 2.0 {
		t.Errorf("expected stress 2.0, got %v", got)
	}
}

func TestStressLevelNeutralEntry(t *testing.T) {
	text := "the meeting covered quarterly budgets"
	sentiment := ruleBasedSentiment(text)
	emotion := ruleBasedEmotion(text)

	if got := stressLevel(text, sentiment, emotion); got != 0.0 {
		t.Errorf("expected stress 0.0, got %v", got)
	}
}

func TestEmotionGroupMembership(t *testing.T) {
	cases := map[string]string{
		"joy":       GroupPositive,
		"gratitude": GroupPositive,
		"sadness":   GroupNegative,
		"guilt":     GroupNegative,
		"neutral":   GroupNeutral,
		"curiosity": GroupNeutral,
	}
	for emotion, want := range cases {
		if got := EmotionGroup(emotion); got != want {
			t.Errorf("EmotionGroup(%q) = %q, want %q", emotion, got, want)
		}
	}
}

func TestInsightsForAlwaysNonEmpty(t *testing.T) {
	labels := []string{SentimentPositive, SentimentNegative, SentimentNeutral}
	emotions := []string{"joy", "sadness", "anger", "neutral", "surprise"}

	for _, label := range labels {
		for _, emotion := range emotions {
			insights := insightsFor(label, emotion)
			if len(insights) == 0 {
				t.Errorf("insightsFor(%q, %q) returned no insights", label, emotion)
			}
			if len(insights) > 3 {
				t.Errorf("insightsFor(%q, %q) returned %d insights, max is 3", label, emotion, len(insights))
			}
		}
	}
}

func TestEmotionScoreJSONRoundTrip(t *testing.T) {
	original := EmotionScore{Label: "joy", Score: 0.92}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshaling: %v", err)
	}
	if string(data) != `["joy",0.92]` {
		t.Errorf("expected pair array encoding, got %s", data)
	}

	var decoded EmotionScore
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshaling: %v", err)
	}
	if decoded != original {
		t.Errorf("round trip mismatch: %+v vs %+v", decoded, original)
	}
}

func TestMarshalEmotionsEmpty(t *testing.T) {
	data, err := MarshalEmotions(nil)
	if err != nil {
		t.Fatalf("marshaling nil: %v", err)
	}
	if data != "[]" {
		t.Errorf("expected [], got %s", data)
	}

	emotions, err := UnmarshalEmotions("")
	if err != nil {
		t.Fatalf("unmarshaling empty string: %v", err)
	}
	if len(emotions) != 0 {
		t.Errorf("expected no emotions, got %v", emotions)
	}
}

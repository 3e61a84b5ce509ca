package analysis

// Static keyword tables for the rule-based path. Matching is deliberately
// substring containment rather than word-boundary tokenization: historical
// scores depend on it, so "scared" also fires inside "scarecrow".

var positiveKeywords = []string{
	"happy", "joy", "excited", "great", "wonderful", "amazing", "fantastic",
	"love", "loved", "enjoy", "enjoyed", "pleased", "delighted", "thrilled",
	"grateful", "thankful", "blessed", "fortunate", "lucky", "successful",
	"accomplished", "proud", "confident", "optimistic", "hopeful", "cheerful",
}

var negativeKeywords = []string{
	"sad", "depressed", "down", "upset", "disappointed", "frustrated",
	"angry", "mad", "annoyed", "irritated", "hurt", "pain", "suffering",
	"worried", "anxious", "scared", "afraid", "terrified", "hopeless",
	"helpless", "lonely", "isolated", "rejected", "abandoned", "broken",
}

var intensifiers = []string{
	"very", "extremely", "incredibly", "absolutely", "totally", "completely",
}

// stressKeywords feed the stress estimator; one distinct hit adds 0.1 unit.
var stressKeywords = []string{
	"stressed", "anxious", "worried", "overwhelmed", "pressure", "deadline",
}

// emotionKeywords is ordered: ties between emotions with equal keyword hits
// resolve to the earlier entry.
var emotionKeywords = []struct {
	name     string
	keywords []string
}{
	{"joy", []string{"happy", "joy", "excited", "thrilled", "delighted", "cheerful", "ecstatic"}},
	{"sadness", []string{"sad", "depressed", "down", "upset", "melancholy", "gloomy", "sorrowful"}},
	{"anger", []string{"angry", "mad", "furious", "rage", "irritated", "annoyed", "frustrated"}},
	{"fear", []string{"scared", "afraid", "terrified", "worried", "anxious", "nervous", "panic"}},
	{"surprise", []string{"surprised", "shocked", "amazed", "astonished", "stunned", "bewildered"}},
	{"disgust", []string{"disgusted", "revolted", "sickened", "repulsed", "appalled", "horrified"}},
	{"love", []string{"love", "loved", "adore", "cherish", "treasure", "affection", "romance"}},
	{"neutral", []string{"okay", "fine", "normal", "regular", "usual", "standard", "average"}},
}

// GoEmotions group membership. Any emotion absent from both lists is neutral.
var positiveEmotions = map[string]bool{
	"admiration": true, "amusement": true, "approval": true, "caring": true,
	"excitement": true, "gratitude": true, "joy": true, "love": true,
	"optimism": true, "pride": true, "relief": true,
}

var negativeEmotions = map[string]bool{
	"anger": true, "annoyance": true, "disappointment": true, "disapproval": true,
	"disgust": true, "embarrassment": true, "fear": true, "grief": true,
	"nervousness": true, "remorse": true, "sadness": true, "shame": true,
	"guilt": true,
}

// EmotionGroup buckets a fine-grained emotion label into
// positive/negative/neutral.
func EmotionGroup(emotion string) string {
	if positiveEmotions[emotion] {
		return GroupPositive
	}
	if negativeEmotions[emotion] {
		return GroupNegative
	}
	return GroupNeutral
}

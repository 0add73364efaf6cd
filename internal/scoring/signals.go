package scoring

import (
	"sort"
	"strings"
)

// Signals are the contextual cues detected in a prospect's message history.
// They feed both the base score and the prospect's stored metadata.
type Signals struct {
	PainPoints      []string `json:"pain_points,omitempty"`
	Interests       []string `json:"interests,omitempty"`
	LifeEvents      []string `json:"life_events,omitempty"`
	OpportunityType string   `json:"opportunity_type"`
	Sentiment       string   `json:"sentiment"`
}

// Opportunity types, strongest buying intent first.
const (
	OpportunityBusiness = "business_opportunity"
	OpportunityProduct  = "product_inquiry"
	OpportunityPrice    = "price_inquiry"
	OpportunityGeneral  = "general"
)

// Keyword tables are deliberately small contains-matches; this layer is a
// heuristic, not language understanding.
var painKeywords = map[string]string{
	"tired of":      "burnout",
	"burned out":    "burnout",
	"no money":      "financial_stress",
	"broke":         "financial_stress",
	"bills":         "financial_stress",
	"too expensive": "price_sensitivity",
	"can't afford":  "price_sensitivity",
	"stressed":      "stress",
	"hate my job":   "job_dissatisfaction",
	"overworked":    "job_dissatisfaction",
}

var interestKeywords = map[string]string{
	"starter kit":  "starter_kit",
	"pricing":      "pricing",
	"price":        "pricing",
	"how much":     "pricing",
	"side hustle":  "side_income",
	"extra income": "side_income",
	"product":      "product",
	"vitamins":     "wellness",
	"skincare":     "wellness",
	"investment":   "investing",
	"workout":      "fitness",
}

var lifeEventKeywords = map[string]string{
	"new baby":     "new_baby",
	"pregnant":     "new_baby",
	"wedding":      "marriage",
	"just married": "marriage",
	"new job":      "job_change",
	"lost my job":  "job_change",
	"moving":       "relocation",
	"just moved":   "relocation",
	"retired":      "retirement",
	"retirement":   "retirement",
}

var positiveWords = []string{"excited", "love", "interested", "great", "amazing", "yes please", "sign me up"}

var negativeWords = []string{"scam", "not interested", "too expensive", "busy", "stop", "annoying"}

// DetectSignals scans the message history and returns the matched signals.
// Matching is lowercase substring containment; each label is reported once.
func DetectSignals(history []string) Signals {
	text := strings.ToLower(strings.Join(history, " "))

	s := Signals{
		PainPoints:      matchLabels(text, painKeywords),
		Interests:       matchLabels(text, interestKeywords),
		LifeEvents:      matchLabels(text, lifeEventKeywords),
		OpportunityType: detectOpportunity(text),
		Sentiment:       detectSentiment(text),
	}
	return s
}

func matchLabels(text string, table map[string]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for phrase, label := range table {
		if !strings.Contains(text, phrase) {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	// Map iteration order is random; keep output stable for callers.
	sort.Strings(out)
	return out
}

func detectOpportunity(text string) string {
	switch {
	case containsAny(text, "join", "business opportunity", "extra income", "side hustle", "be my own boss"):
		return OpportunityBusiness
	case containsAny(text, "buy", "order", "starter kit", "try the product"):
		return OpportunityProduct
	case containsAny(text, "price", "pricing", "how much", "cost"):
		return OpportunityPrice
	default:
		return OpportunityGeneral
	}
}

func detectSentiment(text string) string {
	pos, neg := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(text, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(text, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return "positive"
	case neg > pos:
		return "negative"
	default:
		return "neutral"
	}
}

func containsAny(text string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

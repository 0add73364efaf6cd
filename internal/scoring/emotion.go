package scoring

import (
	"sort"
	"strings"
)

// Emotional states recognized by the emotional-intent overlay.
const (
	EmotionExcited    = "excited"
	EmotionCurious    = "curious"
	EmotionSkeptical  = "skeptical"
	EmotionHesitant   = "hesitant"
	EmotionFrustrated = "frustrated"
	EmotionNeutral    = "neutral"
)

// Risk flags raised by the overlay.
const (
	RiskScamSuspicion  = "scam_suspicion"
	RiskPriceObjection = "price_objection"
	RiskGhosting       = "ghosting_risk"
)

// EmotionResult is the emotional-intent overlay's output.
type EmotionResult struct {
	State         string   `json:"state"`
	TrustScore    float64  `json:"trust_score"`
	RiskFlags     []string `json:"risk_flags,omitempty"`
	SuggestedTone string   `json:"suggested_tone"`
}

var emotionKeywords = map[string][]string{
	EmotionExcited:    {"excited", "can't wait", "love this", "amazing", "sign me up", "yes please"},
	EmotionCurious:    {"how does", "tell me more", "interested", "curious", "what exactly"},
	EmotionSkeptical:  {"scam", "pyramid", "too good to be true", "is this legit", "sounds fake"},
	EmotionHesitant:   {"not sure", "maybe later", "let me think", "need to ask", "busy right now"},
	EmotionFrustrated: {"stop messaging", "annoying", "leave me alone", "waste of time", "again?"},
}

var trustByState = map[string]float64{
	EmotionExcited:    85,
	EmotionCurious:    70,
	EmotionNeutral:    55,
	EmotionHesitant:   45,
	EmotionSkeptical:  25,
	EmotionFrustrated: 15,
}

var toneByState = map[string]string{
	EmotionExcited:    "match their energy, move to next step",
	EmotionCurious:    "informative, answer directly",
	EmotionNeutral:    "friendly, low key",
	EmotionHesitant:   "gentle, no commitment asks",
	EmotionSkeptical:  "transparent, zero pressure",
	EmotionFrustrated: "apologize and back off",
}

// EmotionOverlay classifies the prospect's emotional state from recent
// messages, derives a trust sub-score, and raises risk flags.
func EmotionOverlay(history []string) EmotionResult {
	text := strings.ToLower(strings.Join(history, " "))

	state := EmotionNeutral
	bestHits := 0
	// Deterministic iteration: states checked in a fixed order.
	for _, s := range []string{EmotionExcited, EmotionCurious, EmotionSkeptical, EmotionHesitant, EmotionFrustrated} {
		hits := 0
		for _, kw := range emotionKeywords[s] {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			state = s
		}
	}

	flags := make(map[string]struct{})
	if state == EmotionSkeptical {
		flags[RiskScamSuspicion] = struct{}{}
	}
	if containsAny(text, "scam", "pyramid", "ponzi", "mlm scheme") {
		flags[RiskScamSuspicion] = struct{}{}
	}
	if containsAny(text, "too expensive", "can't afford", "too much money", "cheaper") {
		flags[RiskPriceObjection] = struct{}{}
	}
	if state == EmotionHesitant || state == EmotionFrustrated || strings.Contains(text, "busy") {
		flags[RiskGhosting] = struct{}{}
	}

	var flagList []string
	for f := range flags {
		flagList = append(flagList, f)
	}
	sort.Strings(flagList)

	return EmotionResult{
		State:         state,
		TrustScore:    trustByState[state],
		RiskFlags:     flagList,
		SuggestedTone: toneByState[state],
	}
}

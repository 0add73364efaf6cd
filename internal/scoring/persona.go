package scoring

import (
	"strings"
)

// GenericPersona is the neutral fallback used when no industry context is
// available or no industry persona matches.
const GenericPersona = "curious_browser"

// PersonaResult is the persona overlay's output.
type PersonaResult struct {
	Persona  string  `json:"persona"`
	FitScore float64 `json:"fit_score"`
}

type personaDef struct {
	id       string
	keywords []string
}

// personasByIndustry is the industry-scoped persona taxonomy. Personas are
// only ever applied under their own industry; see PersonaOverlay.
var personasByIndustry = map[string][]personaDef{
	"mlm": {
		{"aspiring_side_hustler", []string{"side hustle", "extra income", "earn more", "part time", "own boss"}},
		{"stay_at_home_parent", []string{"my kids", "stay at home", "while the baby", "sahm", "full time mom"}},
		{"product_lover", []string{"love the product", "the results", "before and after", "glow up", "obsessed with"}},
		{"burned_skeptic", []string{"scam", "pyramid", "tried this before", "didn't work", "lost money"}},
	},
	"insurance": {
		{"young_family_planner", []string{"new baby", "protect my family", "coverage for", "just married"}},
		{"retiree_protector", []string{"retirement", "retired", "pension", "grandkids"}},
		{"policy_shopper", []string{"premium", "quote", "compare", "policy", "better rate"}},
	},
	"real_estate": {
		{"first_time_buyer", []string{"first home", "renting", "down payment", "pre approved"}},
		{"upgrader", []string{"bigger house", "growing family", "more space", "outgrown"}},
		{"investor", []string{"rental", "investment property", "passive income", "airbnb"}},
	},
	"fitness": {
		{"transformation_seeker", []string{"lose weight", "get in shape", "transformation", "new year"}},
		{"program_hopper", []string{"tried every", "nothing works", "another program", "gave up on"}},
	},
}

// PersonaOverlay classifies the prospect into an industry-scoped persona
// from message content. Without an industry context it must not produce an
// industry-specific result, so it returns the generic persona at a neutral
// fit.
func PersonaOverlay(industry string, history []string) PersonaResult {
	defs, ok := personasByIndustry[industry]
	if industry == "" || !ok {
		return PersonaResult{Persona: GenericPersona, FitScore: 50}
	}

	text := strings.ToLower(strings.Join(history, " "))

	best := PersonaResult{Persona: GenericPersona, FitScore: 50}
	bestHits := 0
	for _, def := range defs {
		hits := 0
		for _, kw := range def.keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			best = PersonaResult{
				Persona:  def.id,
				FitScore: clamp(40+20*float64(hits), 0, 100),
			}
		}
	}
	return best
}

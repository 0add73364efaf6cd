package scoring

// Options toggles the overlay layers for a single scoring call.
type Options struct {
	DisablePersona bool
	DisableCTA     bool
	DisableEmotion bool

	// LastCTA is the most recent call-to-action presented to the
	// prospect, if any.
	LastCTA CTAType

	// Debug attaches per-layer diagnostics to the result.
	Debug bool
}

// Engine is the full ScoutScore stack: base engine plus overlays plus
// composer behind one call.
type Engine struct {
	cfg      *Config
	base     *BaseEngine
	composer *Composer
}

// NewEngine creates an Engine from a validated configuration.
func NewEngine(cfg *Config) *Engine {
	return &Engine{
		cfg:      cfg,
		base:     NewBaseEngine(cfg),
		composer: NewComposer(cfg),
	}
}

// ScoreProspect runs signal detection, the base score, every enabled
// overlay, and the composer for one prospect.
func (e *Engine) ScoreProspect(in ProspectInput, opts Options) (ScoutScore, Signals) {
	sig := in.Signals
	if sig.OpportunityType == "" && sig.Sentiment == "" {
		sig = DetectSignals(in.History)
		in.Signals = sig
	}

	base := e.base.Score(in)

	var ov Overlays
	if !opts.DisablePersona {
		// Persona is industry-scoped: only the matching active
		// industry may produce a specific persona.
		industry := in.ActiveIndustry
		if in.Industry != "" && in.Industry != in.ActiveIndustry {
			industry = ""
		}
		p := PersonaOverlay(industry, in.History)
		ov.Persona = &p
	}
	if !opts.DisableCTA {
		c := CTAOverlay(opts.LastCTA, base.Rating)
		ov.CTA = &c
	}
	if !opts.DisableEmotion {
		em := EmotionOverlay(in.History)
		ov.Emotion = &em
	}

	if opts.Debug {
		return e.composer.ComposeDebug(base, ov), sig
	}
	return e.composer.Compose(base, ov), sig
}

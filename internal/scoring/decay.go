package scoring

import (
	"math"
	"time"
)

// DecayFactor computes the time-decayed contribution multiplier for a past
// interaction. Formula: max(floor, 2^(-ageDays / halfLifeDays)). A zero
// lastTouch is treated as current and decays nothing.
func DecayFactor(lastTouch, now time.Time, cfg DecayConfig) float64 {
	if lastTouch.IsZero() {
		return 1
	}

	ageDays := now.Sub(lastTouch).Hours() / 24
	if ageDays <= 0 {
		return 1
	}

	halfLife := float64(cfg.HalfLifeDays)
	if halfLife <= 0 {
		halfLife = 30
	}

	decayed := math.Pow(2, -ageDays/halfLife)
	if decayed < cfg.Floor {
		return cfg.Floor
	}
	return decayed
}

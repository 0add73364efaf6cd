package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecayFactor(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cfg := DecayConfig{HalfLifeDays: 30, Floor: 0.1}

	tests := []struct {
		name      string
		lastTouch time.Time
		want      float64
	}{
		{"zero time means current", time.Time{}, 1},
		{"future touch does not decay", now.Add(time.Hour), 1},
		{"same instant", now, 1},
		{"one half-life", now.AddDate(0, 0, -30), 0.5},
		{"two half-lives", now.AddDate(0, 0, -60), 0.25},
		{"ancient touch hits floor", now.AddDate(-2, 0, 0), 0.1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := DecayFactor(tt.lastTouch, now, cfg)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestDecayFactorDefaultsHalfLife(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	got := DecayFactor(now.AddDate(0, 0, -30), now, DecayConfig{})
	assert.InDelta(t, 0.5, got, 0.001)
}

package model

import (
	"time"
)

// Bucket is the qualitative lead temperature derived from the final score.
type Bucket string

const (
	BucketHot  Bucket = "hot"
	BucketWarm Bucket = "warm"
	BucketCold Bucket = "cold"
)

// Bucket thresholds on the 0-100 score scale.
const (
	HotThreshold  = 70.0
	WarmThreshold = 40.0
)

// BucketFor classifies a score into a lead temperature.
func BucketFor(score float64) Bucket {
	switch {
	case score >= HotThreshold:
		return BucketHot
	case score >= WarmThreshold:
		return BucketWarm
	default:
		return BucketCold
	}
}

// ProspectMetadata holds the free-form signals captured for a prospect
// during scoring.
type ProspectMetadata struct {
	Bucket          Bucket   `json:"bucket"`
	PainPoints      []string `json:"pain_points,omitempty"`
	Interests       []string `json:"interests,omitempty"`
	LifeEvents      []string `json:"life_events,omitempty"`
	OpportunityType string   `json:"opportunity_type,omitempty"`
	Sentiment       string   `json:"sentiment,omitempty"`
}

// Prospect is one extracted entity with its score. Rows are immutable after
// write except for explicit rescoring through the queue.
type Prospect struct {
	ID        string           `json:"id"`
	ScanID    string           `json:"scan_id"`
	FullName  string           `json:"full_name"`
	Score     float64          `json:"scout_score"`
	Bucket    Bucket           `json:"bucket"`
	Metadata  ProspectMetadata `json:"metadata"`
	Snippet   string           `json:"snippet,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// Interaction is a prior touch with a prospect, fed to the base scorer's
// time-decay term.
type Interaction struct {
	ProspectName string    `json:"prospect_name"`
	Kind         string    `json:"kind"`
	OccurredAt   time.Time `json:"occurred_at"`
}

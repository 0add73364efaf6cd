package model

import (
	"time"
)

// ScanStatus represents the lifecycle state of a scan.
type ScanStatus string

const (
	ScanStatusQueued     ScanStatus = "queued"
	ScanStatusProcessing ScanStatus = "processing"
	ScanStatusCompleted  ScanStatus = "completed"
	ScanStatusFailed     ScanStatus = "failed"
)

// Terminal reports whether no further mutation of the scan is allowed.
func (s ScanStatus) Terminal() bool {
	return s == ScanStatusCompleted || s == ScanStatusFailed
}

// SourceType describes where the raw text of a scan came from.
type SourceType string

const (
	SourceTypeText       SourceType = "text"
	SourceTypeScreenshot SourceType = "screenshot"
	SourceTypeFile       SourceType = "file"
)

// SourceDescriptor records the provenance of a scan's input. Screenshot and
// file payloads arrive already converted to text; the descriptor only keeps
// a reference for audit.
type SourceDescriptor struct {
	Type       SourceType `json:"type"`
	PayloadRef string     `json:"payload_ref,omitempty"`
}

// LeadCounts aggregates prospect buckets for a scan.
type LeadCounts struct {
	Hot   int `json:"hot"`
	Warm  int `json:"warm"`
	Cold  int `json:"cold"`
	Total int `json:"total"`
}

// Add tallies a prospect bucket into the counts.
func (c *LeadCounts) Add(b Bucket) {
	switch b {
	case BucketHot:
		c.Hot++
	case BucketWarm:
		c.Warm++
	case BucketCold:
		c.Cold++
	}
	c.Total++
}

// Scan is a single ingestion run over one blob of raw text. It is created on
// submission and mutated only by the pipeline processor until it reaches a
// terminal status.
type Scan struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Source      SourceDescriptor `json:"source"`
	Status      ScanStatus       `json:"status"`
	Counts      LeadCounts       `json:"counts"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// Stage is one ordered step of the scan pipeline. Each stage carries a fixed
// progress percent so callers get coarse, stable feedback without the
// pipeline knowing total work size up front.
type Stage string

const (
	StageQueued           Stage = "queued"
	StageExtractingText   Stage = "extracting_text"
	StageDetectingNames   Stage = "detecting_names"
	StageScoringProspects Stage = "scoring_prospects"
	StageCompleted        Stage = "completed"
	StageFailed           Stage = "failed"
)

// stagePercents maps each stage to its fixed progress value. Percent 0 on
// the failed stage is a defined failure marker, not a progress regression.
var stagePercents = map[Stage]int{
	StageQueued:           0,
	StageExtractingText:   10,
	StageDetectingNames:   40,
	StageScoringProspects: 80,
	StageCompleted:        100,
	StageFailed:           0,
}

var stageMessages = map[Stage]string{
	StageQueued:           "Scan queued",
	StageExtractingText:   "Extracting text from source",
	StageDetectingNames:   "Detecting prospect names",
	StageScoringProspects: "Scoring prospects",
	StageCompleted:        "Scan complete",
	StageFailed:           "Scan failed",
}

// Percent returns the fixed progress value for the stage.
func (s Stage) Percent() int {
	return stagePercents[s]
}

// DefaultMessage returns the human-readable message for the stage.
func (s Stage) DefaultMessage() string {
	return stageMessages[s]
}

// Terminal reports whether the stage ends the pipeline.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// ScanStatusEvent is one append-only progress record for a scan. The newest
// event is the scan's current status.
type ScanStatusEvent struct {
	ID        string    `json:"id"`
	ScanID    string    `json:"scan_id"`
	Stage     Stage     `json:"stage"`
	Percent   int       `json:"percent"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

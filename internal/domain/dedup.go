package domain

import "time"

// MatchMethod reports which dedup stage produced a match.
type MatchMethod string

const (
	MatchURLHash  MatchMethod = "url_hash"
	MatchSemantic MatchMethod = "semantic"
	MatchNone     MatchMethod = "none"
)

// DedupRecord is one durable history row per previously processed posting.
// Rows are created once, never mutated, and removed only by an explicit
// bulk reset.
type DedupRecord struct {
	ContentHash string    `json:"content_hash"`
	SourceURL   string    `json:"source_url"`
	CompanyName string    `json:"company_name"`
	JobTitle    string    `json:"job_title"`
	CardRef     string    `json:"card_ref,omitempty"` // downstream card linkage
	ProcessedAt time.Time `json:"processed_at"`
}

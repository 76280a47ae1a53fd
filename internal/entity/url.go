package entity

import "time"

// SlugRecord maps a human-facing slug to the URL record it points to.
// It is immutable once created.
type SlugRecord struct {
	ID        string    // ID is the unique identifier of the slug record.
	Slug      string    // Slug is the short path segment, unique across the registry.
	URLID     string    // URLID references the URLRecord the slug resolves to.
	CreatedAt time.Time // CreatedAt is the timestamp when the slug was created.
	UpdatedAt time.Time // UpdatedAt is the timestamp when the slug was last updated.
}

// URLRecord holds the long URL behind a slug together with its visit analytics.
type URLRecord struct {
	ID           string       // ID is the unique identifier of the URL record.
	Slug         string       // Slug is the slug that was created together with the record.
	LongURL      string       // LongURL is the redirect target.
	VisitCount   int64        // VisitCount is the number of recorded visits.
	VisitHistory []VisitEvent // VisitHistory is the append-only list of visits.
	CreatedAt    time.Time    // CreatedAt is the timestamp when the record was created.
	UpdatedAt    time.Time    // UpdatedAt is the timestamp when the record was last updated.
}

// VisitEvent is a single redirect traversal.
type VisitEvent struct {
	ID        string    `json:"id"`
	Location  string    `json:"location"`
	Device    string    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
}

// Metadata is the best-effort description of a web page. Every field is nil
// when the page does not provide it.
type Metadata struct {
	Title       *string
	Image       *string
	Description *string
}

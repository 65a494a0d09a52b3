package domain

import "time"

// CrawlType identifies which record category a source yields.
// Values include CrawlTypeEvents and CrawlTypePlaces.
type CrawlType string

const (
	CrawlTypeEvents CrawlType = "events"
	CrawlTypePlaces CrawlType = "places"
)

// Valid reports whether the crawl type is one of the known categories.
func (t CrawlType) Valid() bool {
	return t == CrawlTypeEvents || t == CrawlTypePlaces
}

// CrawlStatus represents the lifecycle status of a crawl source.
// Legal transitions: idle -> pending -> crawling -> {completed, failed},
// and from either terminal status back to pending on a fresh submission.
type CrawlStatus string

const (
	CrawlStatusIdle      CrawlStatus = "idle"
	CrawlStatusPending   CrawlStatus = "pending"
	CrawlStatusCrawling  CrawlStatus = "crawling"
	CrawlStatusCompleted CrawlStatus = "completed"
	CrawlStatusFailed    CrawlStatus = "failed"
)

// Terminal reports whether no further automatic transition can occur
// without a new explicit submission.
func (s CrawlStatus) Terminal() bool {
	return s == CrawlStatusCompleted || s == CrawlStatusFailed
}

// CanSubmit reports whether a new submission is allowed from this status.
// Sources that are pending or crawling are already in flight and must not
// trigger a second gateway call.
func (s CrawlStatus) CanSubmit() bool {
	switch s {
	case CrawlStatusIdle, CrawlStatusCompleted, CrawlStatusFailed:
		return true
	default:
		return false
	}
}

// SourceEntry represents one crawl target (url + category) and its current
// lifecycle status. There is exactly one row per (url, crawl_type) pair;
// re-submission updates the existing row.
type SourceEntry struct {
	ID            string      `gorm:"type:text;primaryKey" json:"id"`
	URL           string      `gorm:"type:text;not null;index:idx_source_entries_target,unique" json:"url"`
	CrawlType     CrawlType   `gorm:"type:text;not null;index:idx_source_entries_target,unique" json:"crawl_type"`
	CrawlStatus   CrawlStatus `gorm:"type:text;index:idx_source_entries_status;default:idle" json:"crawl_status"`
	ErrorMessage  *string     `json:"error_message,omitempty"`
	LastCrawledAt *time.Time  `json:"last_crawled_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName returns the database table name for SourceEntry.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (SourceEntry) TableName() string {
	return "source_entries"
}

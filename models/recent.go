package models

// RecentResponse is the envelope for the recent-activity listing endpoints.
type RecentResponse struct {
	// Entities holds the live entities touched within the recency window,
	// newest first.
	Entities []SyncEntity `json:"entities"`

	// Length duplicates len(Entities) for convenience on thin clients.
	Length int `json:"length"`
}

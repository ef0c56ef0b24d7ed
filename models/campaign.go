package models

import "time"

// Campaign owns one note forest
type Campaign struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Data        Forest    `json:"data"`
}

// CampaignSummary is a campaign without its notes
type CampaignSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	NoteCount   int       `json:"noteCount"`
}

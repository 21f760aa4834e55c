package dto

import "time"

type CalendarDay struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type CalendarBlock struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Calendar lists per-day bookability of a listing and the expanded
// blackout ranges that intersect the requested window.
type Calendar struct {
	ListingID string          `json:"listing_id"`
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Days      []CalendarDay   `json:"days"`
	Blackouts []CalendarBlock `json:"blackouts"`
}

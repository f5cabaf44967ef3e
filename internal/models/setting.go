package models

import "time"

// Setting represents a system-wide configuration setting
type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Setting keys
const (
	// SettingKeyFAQThreshold is the similarity cutoff in [0,1] above which a
	// resolved question is treated as a duplicate of an existing FAQ entry.
	SettingKeyFAQThreshold = "faq_threshold"
)

// DefaultFAQThreshold is used when faq_threshold has never been written
const DefaultFAQThreshold = 0.75

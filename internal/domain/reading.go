package domain

import (
	"encoding/json"
	"time"
)

// Reading is the stored generation result for one (user, section) pair.
// Upsert-only: each generation overwrites the prior content for that key.
type Reading struct {
	UserID        string
	Section       Section
	Content       json.RawMessage
	PromptVersion string
	ModelUsed     string
	UpdatedAt     time.Time
}

// Profile holds the user data required for numerology and prompt filling.
type Profile struct {
	ID        string
	FullName  string
	Birthdate time.Time
}

// Prompt is an editable generation template. Only one prompt per section is
// active at a time.
type Prompt struct {
	ID       string
	Section  Section
	Template string
	Version  string
	IsActive bool
}

package models

import (
	"time"
)

// Pitch is a single idea submitted by a member for one event
type Pitch struct {
	ID          int64     `db:"id" json:"id"`
	EventID     int64     `db:"event_id" json:"event_id"`
	IdeaID      int64     `db:"idea_id" json:"idea_id"`
	PitcherID   int64     `db:"pitcher_id" json:"pitcher_id"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
}

// PitchDetail combines a pitch with the idea and profile data needed to render it
type PitchDetail struct {
	Pitch
	IdeaTitle        string `json:"idea_title"`
	IdeaDescription  string `json:"idea_description"`
	PitcherName      string `json:"pitcher_name"`
	PitcherAvatarURL string `json:"pitcher_avatar_url,omitempty"`
}

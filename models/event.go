package models

import (
	"time"
)

// EventStatus represents the lifecycle state of a Demoday event
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusPitching  EventStatus = "pitching"
	EventStatusCompleted EventStatus = "completed"
)

var eventStatusOrder = map[EventStatus]int{
	EventStatusUpcoming:  0,
	EventStatusPitching:  1,
	EventStatusCompleted: 2,
}

// CanTransitionTo returns true if moving from s to next never goes backwards
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	from, ok := eventStatusOrder[s]
	if !ok {
		return false
	}
	to, ok := eventStatusOrder[next]
	if !ok {
		return false
	}
	return to > from
}

// EventDetails is the free-text description a host publishes for an event
type EventDetails struct {
	When  string `json:"when"`
	Where string `json:"where"`
	What  string `json:"what"`
	URL   string `json:"url"`
}

// Event is one monthly Demoday instance
type Event struct {
	ID        int64        `db:"id" json:"id"`
	EventDate time.Time    `db:"event_date" json:"event_date"` // first day of the month, UTC
	Status    EventStatus  `db:"status" json:"status"`
	Details   EventDetails `db:"details" json:"details"`
	HostID    *int64       `db:"host_id" json:"host_id,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// IsCompleted returns true once results have been calculated
func (e *Event) IsCompleted() bool {
	return e.Status == EventStatusCompleted
}

// AcceptsMembers returns true while angels can register and pitches can be submitted
func (e *Event) AcceptsMembers() bool {
	return e.Status == EventStatusUpcoming || e.Status == EventStatusPitching
}

// IsHostedBy returns true if the user is the event's own host
func (e *Event) IsHostedBy(userID int64) bool {
	return e.HostID != nil && *e.HostID == userID
}

// IsPastMonth returns true if the event's month ended before now
func (e *Event) IsPastMonth(now time.Time) bool {
	return e.EventDate.Before(MonthStart(now))
}

// MonthStart normalizes a time to the first instant of its month in UTC
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

package domain

import (
	"time"
)

type SessionStatus string

const (
	StatusNotStarted SessionStatus = "NOT_STARTED"
	StatusInProgress SessionStatus = "IN_PROGRESS"
	StatusEnded      SessionStatus = "ENDED"
	StatusCompleted  SessionStatus = "COMPLETED"
)

// ExamSession is the single durable record per candidate. Uniqueness on
// CandidateID is what yields the single-attempt guarantee; the timestamp
// fields are server-assigned and, once set, never cleared.
type ExamSession struct {
	CandidateID       string     `json:"candidate_id"`
	FullName          *string    `json:"full_name,omitempty"`
	Phone             *string    `json:"phone,omitempty"`
	PhotoURL          *string    `json:"photo_url,omitempty"`
	StartTime         *time.Time `json:"start_time,omitempty"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	CompletionSeconds *int64     `json:"completion_seconds,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Status is derived from which fields are set; the record itself only moves
// forward through these states.
func (s *ExamSession) Status() SessionStatus {
	switch {
	case s.CompletionSeconds != nil:
		return StatusCompleted
	case s.EndTime != nil:
		return StatusEnded
	case s.StartTime != nil:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// Stale reports whether the session's window has elapsed without a recorded
// completion, making it eligible for a fresh start.
func (s *ExamSession) Stale(now time.Time, duration time.Duration) bool {
	if s.StartTime == nil || s.CompletionSeconds != nil {
		return false
	}
	return now.Sub(*s.StartTime) > duration
}

package domain

import "time"

// ExamCenter is a registered exam location. An admission token maps 1:1 to a
// center; BypassLocation is the emergency escape hatch for GPS failures and
// every admission through it is audited.
type ExamCenter struct {
	Token          string  `json:"token"`
	DisplayName    string  `json:"display_name"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	RadiusMeters   float64 `json:"radius_meters"`
	BypassLocation bool    `json:"bypass_location"`
}

// AdmissionAudit records one admission decision for a token, kept for
// review of bypass usage.
type AdmissionAudit struct {
	ID          string      `json:"id"`
	Token       string      `json:"token"`
	CandidateID string      `json:"candidate_id"`
	Action      AuditAction `json:"action"`
	DistanceM   *int64      `json:"distance_m,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

type AuditAction string

const (
	AuditGranted AuditAction = "granted"
	AuditDenied  AuditAction = "denied"
	AuditBypass  AuditAction = "bypass"
)

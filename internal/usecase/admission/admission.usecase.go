package admission

import (
	"context"
	"log"
	"time"

	"exam-service/internal/domain"
	"exam-service/internal/geofence"
	"exam-service/internal/registry"
	"exam-service/pkg/id"
)

// AuditStore records admission decisions. Audit failures are logged and
// swallowed: the audit trail is an observability collaborator, never a
// blocker on the admission path.
type AuditStore interface {
	Insert(ctx context.Context, a *domain.AdmissionAudit) error
	ListByToken(ctx context.Context, token string) ([]domain.AdmissionAudit, error)
}

type VerifyResult struct {
	Allowed        bool   `json:"allowed"`
	Bypass         bool   `json:"bypass"`
	DistanceMeters *int64 `json:"distance_meters,omitempty"`
	DisplayName    string `json:"display_name"`
}

// Usecase gates access to the exam surface: token -> center -> geofence.
// Geofence outcomes never touch session state.
type Usecase struct {
	registry *registry.Registry
	audit    AuditStore
	clock    func() time.Time
}

func NewUsecase(reg *registry.Registry, audit AuditStore) *Usecase {
	return &Usecase{
		registry: reg,
		audit:    audit,
		clock:    time.Now,
	}
}

// Resolve returns the exam center for an admission token.
func (u *Usecase) Resolve(token string) (domain.ExamCenter, error) {
	return u.registry.Resolve(token)
}

// Verify decides presence for a candidate at the given coordinates. A bypass
// center short-circuits the geofence entirely, including absent or invalid
// coordinates, and the admission is audited under the "bypass" action.
func (u *Usecase) Verify(ctx context.Context, token, candidateID string, lat, lon float64) (*VerifyResult, error) {
	center, err := u.registry.Resolve(token)
	if err != nil {
		return nil, err
	}

	if center.BypassLocation {
		log.Printf("[WARN] location bypass admission: token=%s candidate=%s", token, candidateID)
		u.record(ctx, token, candidateID, domain.AuditBypass, nil)
		return &VerifyResult{Allowed: true, Bypass: true, DisplayName: center.DisplayName}, nil
	}

	if err := geofence.CheckCoordinates(lat, lon); err != nil {
		return nil, err
	}

	ok, dist := geofence.WithinRadius(lat, lon, center.Latitude, center.Longitude, center.RadiusMeters)

	action := domain.AuditDenied
	if ok {
		action = domain.AuditGranted
	}
	u.record(ctx, token, candidateID, action, &dist)

	return &VerifyResult{Allowed: ok, DistanceMeters: &dist, DisplayName: center.DisplayName}, nil
}

// AuditTrail lists admission decisions for a center token.
func (u *Usecase) AuditTrail(ctx context.Context, token string) ([]domain.AdmissionAudit, error) {
	if _, err := u.registry.Resolve(token); err != nil {
		return nil, err
	}
	return u.audit.ListByToken(ctx, token)
}

func (u *Usecase) record(ctx context.Context, token, candidateID string, action domain.AuditAction, distance *int64) {
	if u.audit == nil {
		return
	}
	entry := &domain.AdmissionAudit{
		ID:          id.New("adm"),
		Token:       token,
		CandidateID: candidateID,
		Action:      action,
		DistanceM:   distance,
		CreatedAt:   u.clock(),
	}
	if err := u.audit.Insert(ctx, entry); err != nil {
		log.Printf("[ERROR] failed to audit admission token=%s candidate=%s action=%s: %v", token, candidateID, action, err)
	}
}

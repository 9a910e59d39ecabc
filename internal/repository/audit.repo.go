package repository

import (
	"context"

	"exam-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepo records admission decisions, primarily so bypass usage stays
// reviewable.
//
// Expected schema:
//
//	CREATE TABLE admission_audit_logs (
//	    id           TEXT PRIMARY KEY,
//	    token        TEXT NOT NULL,
//	    candidate_id TEXT NOT NULL,
//	    action       TEXT NOT NULL,
//	    distance_m   BIGINT,
//	    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type AuditRepo struct {
	db *pgxpool.Pool
}

func NewAuditRepo(db *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Insert(ctx context.Context, a *domain.AdmissionAudit) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO admission_audit_logs (id, token, candidate_id, action, distance_m, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, a.ID, a.Token, a.CandidateID, a.Action, a.DistanceM)
	return err
}

// ListByToken fetches admission decisions for one center token, oldest first.
func (r *AuditRepo) ListByToken(ctx context.Context, token string) ([]domain.AdmissionAudit, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, token, candidate_id, action, distance_m, created_at
		FROM admission_audit_logs
		WHERE token = $1
		ORDER BY created_at ASC
	`, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.AdmissionAudit
	for rows.Next() {
		var a domain.AdmissionAudit
		if err := rows.Scan(&a.ID, &a.Token, &a.CandidateID, &a.Action, &a.DistanceM, &a.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, a)
	}
	return logs, nil
}

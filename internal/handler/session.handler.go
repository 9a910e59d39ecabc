package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"exam-service/internal/domain"
	"exam-service/internal/middleware"
	"exam-service/pkg/response"
	xerrors "exam-service/pkg/xerrors"

	"github.com/go-chi/chi/v5"
)

// SessionOps is the lifecycle surface the handlers depend on.
type SessionOps interface {
	Start(ctx context.Context, candidateID string) (time.Time, error)
	End(ctx context.Context, candidateID string) (time.Time, error)
	Complete(ctx context.Context, candidateID string) (int64, error)
	Get(ctx context.Context, candidateID string) (*domain.ExamSession, error)
	RecordProfile(ctx context.Context, candidateID, fullName, phone, photoURL string) error
}

// SessionCache is the dashboard cache surface; only completed (immutable)
// records are stored under it.
type SessionCache interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, namespace, key string) error
}

const sessionCacheNS = "exam_sessions"

type SessionHandler struct {
	ops   SessionOps
	cache SessionCache
}

func NewSessionHandler(ops SessionOps, c SessionCache) *SessionHandler {
	return &SessionHandler{ops: ops, cache: c}
}

func candidateFromCtx(w http.ResponseWriter, r *http.Request) (string, bool) {
	candidateID, ok := middleware.GetCandidateID(r.Context())
	if !ok || candidateID == "" {
		log.Println("[ERROR] session operation without candidate identity in context")
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return candidateID, true
}

// Start arms (or returns) the server-trusted exam clock. Refreshing the page
// and duplicate tabs land here repeatedly; the response is always the one
// stored start_time.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := candidateFromCtx(w, r)
	if !ok {
		return
	}

	startTime, err := h.ops.Start(r.Context(), candidateID)
	if err != nil {
		log.Printf("[ERROR] start session for %s: %v", candidateID, err)
		writeSessionError(w, err)
		return
	}

	// A fresh start supersedes whatever the dashboard has cached.
	if h.cache != nil {
		if err := h.cache.Delete(r.Context(), sessionCacheNS, candidateID); err != nil {
			log.Printf("[WARN] failed to invalidate cached session for %s: %v", candidateID, err)
		}
	}

	// Denormalized display name for reporting; failure here never fails the start.
	if name, ok := r.Context().Value(middleware.ContextFullName).(string); ok && name != "" {
		if err := h.ops.RecordProfile(r.Context(), candidateID, name, "", ""); err != nil {
			log.Printf("[WARN] failed to record profile for %s: %v", candidateID, err)
		}
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"start_time": startTime.UTC().Format(time.RFC3339),
	})
}

func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := candidateFromCtx(w, r)
	if !ok {
		return
	}

	endTime, err := h.ops.End(r.Context(), candidateID)
	if err != nil {
		log.Printf("[ERROR] end session for %s: %v", candidateID, err)
		writeSessionError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"end_time": endTime.UTC().Format(time.RFC3339),
	})
}

func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := candidateFromCtx(w, r)
	if !ok {
		return
	}

	seconds, err := h.ops.Complete(r.Context(), candidateID)
	if err != nil {
		log.Printf("[ERROR] complete session for %s: %v", candidateID, err)
		writeSessionError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"completion_seconds": seconds,
	})
}

// GetOwn returns the caller's own session record.
func (h *SessionHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := candidateFromCtx(w, r)
	if !ok {
		return
	}
	h.respondWithRecord(w, r, candidateID)
}

// GetByCandidate is the dashboard read. Completed records are immutable, so
// they are served cache-first.
func (h *SessionHandler) GetByCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "candidateID")
	if candidateID == "" {
		response.Error(w, http.StatusBadRequest, "candidate ID required")
		return
	}

	if h.cache != nil {
		if cached, err := h.cache.Get(r.Context(), sessionCacheNS, candidateID); err == nil && cached != "" {
			response.JSON(w, http.StatusOK, json.RawMessage(cached))
			return
		}
	}

	h.respondWithRecord(w, r, candidateID)
}

func (h *SessionHandler) respondWithRecord(w http.ResponseWriter, r *http.Request, candidateID string) {
	rec, err := h.ops.Get(r.Context(), candidateID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "no exam session for candidate")
			return
		}
		log.Printf("[ERROR] get session for %s: %v", candidateID, err)
		writeSessionError(w, err)
		return
	}

	payload := map[string]any{
		"session": rec,
		"status":  rec.Status(),
	}

	if h.cache != nil && rec.Status() == domain.StatusCompleted {
		if b, err := json.Marshal(payload); err == nil {
			if err := h.cache.Set(r.Context(), sessionCacheNS, candidateID, string(b), time.Hour); err != nil {
				log.Printf("[WARN] failed to cache session for %s: %v", candidateID, err)
			}
		}
	}

	response.JSON(w, http.StatusOK, payload)
}

// writeSessionError maps lifecycle errors onto the wire. Anything that is
// not a known sentinel is assumed to be the store being unreachable, which
// the client handles by retrying the whole idempotent call.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, xerrors.ErrCandidateRequired):
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, xerrors.ErrNotFound):
		response.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, xerrors.ErrInvariantViolation):
		response.Error(w, http.StatusInternalServerError, "session state invariant violated")
	default:
		if code := xerrors.ParsePGErrorCode(err); code != "unknown" {
			log.Printf("[ERROR] postgres rejected session write, code %s", code)
		}
		response.Error(w, http.StatusServiceUnavailable, "session store unavailable, retry the request")
	}
}

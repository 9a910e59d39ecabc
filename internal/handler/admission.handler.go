package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"exam-service/internal/domain"
	"exam-service/internal/middleware"
	"exam-service/internal/usecase/admission"
	"exam-service/pkg/response"
	xerrors "exam-service/pkg/xerrors"

	"github.com/go-chi/chi/v5"
)

// AdmissionOps is the gate surface the handlers depend on.
type AdmissionOps interface {
	Resolve(token string) (domain.ExamCenter, error)
	Verify(ctx context.Context, token, candidateID string, lat, lon float64) (*admission.VerifyResult, error)
	AuditTrail(ctx context.Context, token string) ([]domain.AdmissionAudit, error)
}

type AdmissionHandler struct {
	ops AdmissionOps
}

func NewAdmissionHandler(ops AdmissionOps) *AdmissionHandler {
	return &AdmissionHandler{ops: ops}
}

// Resolve returns the exam center registered for an admission token. Public:
// the client needs the geofence before the candidate has logged in.
func (h *AdmissionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		response.Error(w, http.StatusBadRequest, "admission token required")
		return
	}

	center, err := h.ops.Resolve(token)
	if err != nil {
		if errors.Is(err, xerrors.ErrUnknownToken) {
			response.Error(w, http.StatusNotFound, "invalid admission token")
			return
		}
		log.Printf("[ERROR] resolve admission token %s: %v", token, err)
		response.Error(w, http.StatusInternalServerError, "failed to resolve admission token")
		return
	}

	response.JSON(w, http.StatusOK, center)
}

type verifyRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Verify decides presence for the authenticated candidate. Denial carries
// the measured distance so the client can show "you are 350m away" with a
// re-check action.
func (h *AdmissionHandler) Verify(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := candidateFromCtx(w, r)
	if !ok {
		return
	}

	token := chi.URLParam(r, "token")
	if token == "" {
		response.Error(w, http.StatusBadRequest, "admission token required")
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.ops.Verify(r.Context(), token, candidateID, req.Latitude, req.Longitude)
	if err != nil {
		switch {
		case errors.Is(err, xerrors.ErrUnknownToken):
			response.Error(w, http.StatusNotFound, "invalid admission token")
		case errors.Is(err, xerrors.ErrInvalidCoordinates):
			response.Error(w, http.StatusBadRequest, "invalid coordinates")
		default:
			log.Printf("[ERROR] verify admission token %s for %s: %v", token, candidateID, err)
			response.Error(w, http.StatusInternalServerError, "failed to verify location")
		}
		return
	}

	response.JSON(w, http.StatusOK, res)
}

// AuditTrail lists admission decisions for a center, for bypass review.
func (h *AdmissionHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		response.Error(w, http.StatusBadRequest, "admission token required")
		return
	}

	logs, err := h.ops.AuditTrail(r.Context(), token)
	if err != nil {
		if errors.Is(err, xerrors.ErrUnknownToken) {
			response.Error(w, http.StatusNotFound, "invalid admission token")
			return
		}
		log.Printf("[ERROR] audit trail for token %s: %v", token, err)
		response.Error(w, http.StatusInternalServerError, "failed to load audit trail")
		return
	}

	reviewer, _ := middleware.GetCandidateID(r.Context())
	log.Printf("[INFO] admission audit trail for %s read by %s", token, reviewer)

	response.JSON(w, http.StatusOK, map[string]any{"audit": logs})
}

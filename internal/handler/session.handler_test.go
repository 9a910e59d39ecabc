package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"exam-service/internal/domain"
	"exam-service/internal/middleware"
	xerrors "exam-service/pkg/xerrors"

	"github.com/go-chi/chi/v5"
)

var testStart = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type stubSessionOps struct {
	startTime time.Time
	endTime   time.Time
	seconds   int64
	record    *domain.ExamSession
	err       error

	profileCalls int
}

func (s *stubSessionOps) Start(_ context.Context, _ string) (time.Time, error) {
	return s.startTime, s.err
}

func (s *stubSessionOps) End(_ context.Context, _ string) (time.Time, error) {
	return s.endTime, s.err
}

func (s *stubSessionOps) Complete(_ context.Context, _ string) (int64, error) {
	return s.seconds, s.err
}

func (s *stubSessionOps) Get(_ context.Context, _ string) (*domain.ExamSession, error) {
	if s.record == nil && s.err == nil {
		return nil, xerrors.ErrNotFound
	}
	return s.record, s.err
}

func (s *stubSessionOps) RecordProfile(_ context.Context, _, _, _, _ string) error {
	s.profileCalls++
	return nil
}

type fakeCache struct {
	values  map[string]string
	deleted []string
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (f *fakeCache) Get(_ context.Context, ns, key string) (string, error) {
	v, ok := f.values[ns+":"+key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return v, nil
}

func (f *fakeCache) Set(_ context.Context, ns, key string, value interface{}, _ time.Duration) error {
	f.sets++
	f.values[ns+":"+key] = value.(string)
	return nil
}

func (f *fakeCache) Delete(_ context.Context, ns, key string) error {
	f.deleted = append(f.deleted, ns+":"+key)
	delete(f.values, ns+":"+key)
	return nil
}

func authedRequest(method, target string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(r.Context(), middleware.ContextCandidateID, "alice@x.com")
	ctx = context.WithValue(ctx, middleware.ContextFullName, "Alice")
	return r.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body struct {
		Status  string         `json:"status"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body.Data
}

func TestStartHandler_ReturnsStartTime(t *testing.T) {
	ops := &stubSessionOps{startTime: testStart}
	h := NewSessionHandler(ops, nil)

	w := httptest.NewRecorder()
	h.Start(w, authedRequest(http.MethodPost, "/api/v1/exam/session/start"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	data := decodeEnvelope(t, w)
	if data["start_time"] != "2026-03-14T09:00:00Z" {
		t.Errorf("start_time = %v, want 2026-03-14T09:00:00Z", data["start_time"])
	}
	if ops.profileCalls != 1 {
		t.Errorf("profile upserts = %d, want 1", ops.profileCalls)
	}
}

func TestStartHandler_RejectsMissingIdentity(t *testing.T) {
	h := NewSessionHandler(&stubSessionOps{}, nil)

	w := httptest.NewRecorder()
	h.Start(w, httptest.NewRequest(http.MethodPost, "/api/v1/exam/session/start", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestStartHandler_StoreErrorIsRetryable(t *testing.T) {
	ops := &stubSessionOps{err: errors.New("dial tcp: connection refused")}
	h := NewSessionHandler(ops, nil)

	w := httptest.NewRecorder()
	h.Start(w, authedRequest(http.MethodPost, "/api/v1/exam/session/start"))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestStartHandler_InvariantViolationIsServerFault(t *testing.T) {
	ops := &stubSessionOps{err: xerrors.ErrInvariantViolation}
	h := NewSessionHandler(ops, nil)

	w := httptest.NewRecorder()
	h.Start(w, authedRequest(http.MethodPost, "/api/v1/exam/session/start"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestEndHandler_ReturnsEndTime(t *testing.T) {
	ops := &stubSessionOps{endTime: testStart.Add(900 * time.Second)}
	h := NewSessionHandler(ops, nil)

	w := httptest.NewRecorder()
	h.End(w, authedRequest(http.MethodPost, "/api/v1/exam/session/end"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	data := decodeEnvelope(t, w)
	if data["end_time"] != "2026-03-14T09:15:00Z" {
		t.Errorf("end_time = %v, want 2026-03-14T09:15:00Z", data["end_time"])
	}
}

func TestCompleteHandler_ReturnsSeconds(t *testing.T) {
	ops := &stubSessionOps{seconds: 1234}
	h := NewSessionHandler(ops, nil)

	w := httptest.NewRecorder()
	h.Complete(w, authedRequest(http.MethodPost, "/api/v1/exam/session/complete"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	data := decodeEnvelope(t, w)
	if data["completion_seconds"] != float64(1234) {
		t.Errorf("completion_seconds = %v, want 1234", data["completion_seconds"])
	}
}

func TestGetOwn_NotFound(t *testing.T) {
	h := NewSessionHandler(&stubSessionOps{}, nil)

	w := httptest.NewRecorder()
	h.GetOwn(w, authedRequest(http.MethodGet, "/api/v1/exam/session"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetOwn_FullRecord(t *testing.T) {
	name := "Alice"
	seconds := int64(900)
	end := testStart.Add(900 * time.Second)
	ops := &stubSessionOps{record: &domain.ExamSession{
		CandidateID:       "alice@x.com",
		FullName:          &name,
		StartTime:         &testStart,
		EndTime:           &end,
		CompletionSeconds: &seconds,
	}}
	h := NewSessionHandler(ops, nil)

	w := httptest.NewRecorder()
	h.GetOwn(w, authedRequest(http.MethodGet, "/api/v1/exam/session"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	data := decodeEnvelope(t, w)
	if data["status"] != string(domain.StatusCompleted) {
		t.Errorf("status field = %v, want COMPLETED", data["status"])
	}
}

func TestStartHandler_InvalidatesCachedRecord(t *testing.T) {
	c := newFakeCache()
	c.values["exam_sessions:alice@x.com"] = `{"stale":"entry"}`
	h := NewSessionHandler(&stubSessionOps{startTime: testStart}, c)

	w := httptest.NewRecorder()
	h.Start(w, authedRequest(http.MethodPost, "/api/v1/exam/session/start"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(c.deleted) != 1 || c.deleted[0] != "exam_sessions:alice@x.com" {
		t.Errorf("cache deletions = %v, want the candidate's dashboard entry", c.deleted)
	}
}

func TestGetByCandidate_ServedFromCache(t *testing.T) {
	c := newFakeCache()
	c.values["exam_sessions:bob@x.com"] = `{"session":{"candidate_id":"bob@x.com"},"status":"COMPLETED"}`
	ops := &stubSessionOps{err: errors.New("store must not be read on a cache hit")}
	h := NewSessionHandler(ops, c)

	r := chi.NewRouter()
	r.Get("/api/v1/exam/session/{candidateID}", h.GetByCandidate)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/exam/session/bob@x.com", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "COMPLETED") {
		t.Error("cached record should be returned as stored")
	}
}

func TestGetByCandidate_CachesCompletedRecord(t *testing.T) {
	c := newFakeCache()
	seconds := int64(900)
	end := testStart.Add(900 * time.Second)
	ops := &stubSessionOps{record: &domain.ExamSession{
		CandidateID:       "bob@x.com",
		StartTime:         &testStart,
		EndTime:           &end,
		CompletionSeconds: &seconds,
	}}
	h := NewSessionHandler(ops, c)

	r := chi.NewRouter()
	r.Get("/api/v1/exam/session/{candidateID}", h.GetByCandidate)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/exam/session/bob@x.com", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if c.sets != 1 {
		t.Errorf("cache writes = %d, want the completed record cached once", c.sets)
	}
	if _, ok := c.values["exam_sessions:bob@x.com"]; !ok {
		t.Error("completed record should be cached under the candidate key")
	}
}

func TestGetByCandidate_RoutesParam(t *testing.T) {
	seconds := int64(100)
	ops := &stubSessionOps{record: &domain.ExamSession{
		CandidateID:       "bob@x.com",
		StartTime:         &testStart,
		CompletionSeconds: &seconds,
	}}
	h := NewSessionHandler(ops, nil)

	r := chi.NewRouter()
	r.Get("/api/v1/exam/session/{candidateID}", h.GetByCandidate)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/exam/session/bob@x.com", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

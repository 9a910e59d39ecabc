package middleware

import (
	"context"
	"net/http"

	"exam-service/pkg/jwtutil"
)

type contextKey string

const (
	ContextCandidateID contextKey = "candidateID"
	ContextFullName    contextKey = "fullName"
	ContextRole        contextKey = "role"
	ContextToken       contextKey = "token"
)

func GetCandidateID(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextCandidateID).(string)
	return val, ok
}

func GetRole(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextRole).(string)
	return val, ok
}

func setContextValues(r *http.Request, claims *jwtutil.Claims, token string) *http.Request {
	ctx := context.WithValue(r.Context(), ContextCandidateID, claims.CandidateID())
	ctx = context.WithValue(ctx, ContextToken, token)

	if claims.FullName != "" {
		ctx = context.WithValue(ctx, ContextFullName, claims.FullName)
	}
	if claims.Role != "" {
		ctx = context.WithValue(ctx, ContextRole, claims.Role)
	}

	return r.WithContext(ctx)
}

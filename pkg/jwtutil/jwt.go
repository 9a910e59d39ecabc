package jwtutil

import (
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Email    string `json:"email,omitempty"`
	FullName string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// CandidateID is the stable identity used as the exam session key.
// The resolved email is preferred; the token subject is the fallback.
func (c *Claims) CandidateID() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}

type JWTConfig struct {
	PubPath  string
	Issuer   string
	Audience string
}

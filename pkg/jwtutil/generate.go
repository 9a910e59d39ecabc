package jwtutil

import (
	"crypto/rsa"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Generator signs candidate bearer tokens. Production tokens come from the
// identity provider; this is used by ops tooling and tests.
type Generator struct {
	priv     *rsa.PrivateKey
	issuer   string
	audience string
	Ttl      time.Duration
}

func NewGenerator(priv *rsa.PrivateKey, issuer, audience string, ttl time.Duration) *Generator {
	return &Generator{priv: priv, issuer: issuer, audience: audience, Ttl: ttl}
}

func (g *Generator) Generate(email, fullName, role string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(g.Ttl)

	claims := &Claims{
		Email:    email,
		FullName: fullName,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    g.issuer,
			Audience:  jwt.ClaimStrings{g.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(g.priv)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

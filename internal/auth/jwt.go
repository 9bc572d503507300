package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type JWTIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewJWTIssuer(secret, issuer, audience string, ttl time.Duration) (*JWTIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &JWTIssuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}, nil
}

func (j *JWTIssuer) Issue(operatorID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(j.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    j.issuer,
		Subject:   operatorID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-30 * time.Second)), // small skew
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	// no aud claim when no audience is configured; [""] would be rejected
	// by the verifier as a missing claim
	if j.audience != "" {
		claims.Audience = jwt.ClaimStrings{j.audience}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	return signed, exp, err
}

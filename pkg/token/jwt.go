package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification outcomes. Callers translate these into Unauthorized responses.
var (
	ErrExpired          = errors.New("token expired")
	ErrMalformed        = errors.New("token malformed")
	ErrInvalidSignature = errors.New("token signature invalid")
)

// Claims is the resolved content of a verified session token.
type Claims struct {
	AccountID uuid.UUID
	TokenID   string
	ExpiresAt time.Time
}

// Issuer issues and verifies bearer tokens bound to an account id and expiry.
// Token internals stay opaque to the rest of the core.
type Issuer interface {
	Issue(accountID uuid.UUID) (string, time.Time, error)
	Verify(token string) (*Claims, error)
}

type jwtIssuer struct {
	secret []byte
	expiry time.Duration
}

func NewJWTIssuer(secret string, expiry time.Duration) Issuer {
	return &jwtIssuer{secret: []byte(secret), expiry: expiry}
}

func (i *jwtIssuer) Issue(accountID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(i.expiry)

	claims := jwt.RegisteredClaims{
		Subject:   accountID.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (i *jwtIssuer) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, fmt.Errorf("failed to parse token: %w", err)
		}
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrMalformed
	}

	return &Claims{
		AccountID: accountID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

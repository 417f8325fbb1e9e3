package token_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-api/pkg/token"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := token.NewJWTIssuer("test-secret", time.Hour)
	accountID := uuid.New()

	signed, expiresAt, err := issuer.Issue(accountID)
	require.NoError(t, err)
	assert.NotEmpty(t, signed)

	claims, err := issuer.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, accountID, claims.AccountID)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt, time.Second)
}

func TestEveryTokenGetsAFreshID(t *testing.T) {
	issuer := token.NewJWTIssuer("test-secret", time.Hour)
	accountID := uuid.New()

	first, _, err := issuer.Issue(accountID)
	require.NoError(t, err)
	second, _, err := issuer.Issue(accountID)
	require.NoError(t, err)

	firstClaims, err := issuer.Verify(first)
	require.NoError(t, err)
	secondClaims, err := issuer.Verify(second)
	require.NoError(t, err)
	assert.NotEqual(t, firstClaims.TokenID, secondClaims.TokenID)
}

func TestVerifyExpired(t *testing.T) {
	issuer := token.NewJWTIssuer("test-secret", -time.Minute)

	signed, _, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = issuer.Verify(signed)
	assert.ErrorIs(t, err, token.ErrExpired)
}

func TestVerifyMalformed(t *testing.T) {
	issuer := token.NewJWTIssuer("test-secret", time.Hour)

	_, err := issuer.Verify("definitely not a jwt")
	assert.ErrorIs(t, err, token.ErrMalformed)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := token.NewJWTIssuer("test-secret", time.Hour)
	other := token.NewJWTIssuer("other-secret", time.Hour)

	signed, _, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = other.Verify(signed)
	assert.ErrorIs(t, err, token.ErrInvalidSignature)
}

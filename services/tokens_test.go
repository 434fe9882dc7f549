package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/princinho/weatherbackend/common"
	"github.com/princinho/weatherbackend/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Unix(1_700_000_000, 0)

func newTokenService() *TokenService {
	return NewTokenService("test-secret", 30*time.Minute, database.NewMemoryRevocations())
}

func TestIssueAndValidate(t *testing.T) {
	s := newTokenService()

	tok, err := s.Issue("alice", true, issuedAt)
	require.NoError(t, err)

	claims, err := s.Validate(tok, issuedAt.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.Admin)
	assert.Equal(t, "alice", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.ExpiresAt.Time.Equal(issuedAt.Add(30*time.Minute)))
}

func TestValidate_ExpiresAtBoundary(t *testing.T) {
	s := newTokenService()
	tok, err := s.Issue("alice", false, issuedAt)
	require.NoError(t, err)

	_, err = s.Validate(tok, issuedAt.Add(30*time.Minute-time.Second))
	assert.NoError(t, err)

	_, err = s.Validate(tok, issuedAt.Add(30*time.Minute))
	assert.ErrorIs(t, err, common.ErrExpiredToken)

	_, err = s.Validate(tok, issuedAt.Add(time.Hour))
	assert.ErrorIs(t, err, common.ErrExpiredToken)
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestValidate_FractionalIssueTimeKeepsFullWindow(t *testing.T) {
	s := newTokenService()
	at := issuedAt.Add(900 * time.Millisecond)
	tok, err := s.Issue("alice", false, at)
	require.NoError(t, err)

	_, err = s.Validate(tok, at.Add(30*time.Minute-500*time.Millisecond))
	assert.NoError(t, err)

	_, err = s.Validate(tok, issuedAt.Add(30*time.Minute+time.Second))
	assert.ErrorIs(t, err, common.ErrExpiredToken)
}

func TestValidate_TamperedIsMalformedRegardlessOfExpiry(t *testing.T) {
	s := newTokenService()
	tok, err := s.Issue("alice", false, issuedAt)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	// flip the admin claim by re-signing with another key
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: "alice",
		Admin:    true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Minute)),
		},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	altered := parts[0] + "." + parts[1] + "." + string(sig)

	for _, bad := range []string{forged, altered, "not.a.jwt"} {
		for _, at := range []time.Time{issuedAt, issuedAt.Add(24 * time.Hour)} {
			_, err := s.Validate(bad, at)
			assert.ErrorIs(t, err, common.ErrMalformedToken)
		}
	}
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	s := newTokenService()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Minute)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = s.Validate(tok, issuedAt)
	assert.ErrorIs(t, err, common.ErrMalformedToken)
}

func TestValidate_Missing(t *testing.T) {
	_, err := newTokenService().Validate("", issuedAt)
	assert.ErrorIs(t, err, common.ErrMissingToken)
}

func TestRevokeIsOrthogonalToValidity(t *testing.T) {
	ctx := context.Background()
	s := newTokenService()
	tok, err := s.Issue("alice", false, issuedAt)
	require.NoError(t, err)

	revoked, err := s.IsRevoked(ctx, tok)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, tok))
	require.NoError(t, s.Revoke(ctx, tok))

	revoked, err = s.IsRevoked(ctx, tok)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = s.Validate(tok, issuedAt.Add(time.Minute))
	assert.NoError(t, err)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	s := newTokenService()
	tok, err := s.Issue("alice", true, issuedAt)
	require.NoError(t, err)

	later := issuedAt.Add(20 * time.Minute)
	fresh, err := s.Refresh(ctx, tok, later)
	require.NoError(t, err)
	assert.NotEqual(t, tok, fresh)

	claims, err := s.Validate(fresh, later.Add(25*time.Minute))
	require.NoError(t, err)
	assert.True(t, claims.Admin)

	_, err = s.Refresh(ctx, tok, issuedAt.Add(time.Hour))
	assert.ErrorIs(t, err, common.ErrExpiredToken)

	require.NoError(t, s.Revoke(ctx, fresh))
	_, err = s.Refresh(ctx, fresh, later)
	assert.ErrorIs(t, err, common.ErrRevokedToken)
}

type failingRevocations struct{}

func (failingRevocations) Revoke(context.Context, string, time.Time) error {
	return errors.New("connection refused")
}
func (failingRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}
func (failingRevocations) Close(context.Context) error { return nil }

func TestRevocationStoreFailure(t *testing.T) {
	s := NewTokenService("k", time.Minute, failingRevocations{})

	_, err := s.IsRevoked(context.Background(), "t")
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.ErrorIs(t, s.Revoke(context.Background(), "t"), common.ErrStorage)
}

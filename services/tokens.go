// Package services holds the application logic behind the HTTP handlers:
// credentials, session tokens and the station sub-resource protocol.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/princinho/weatherbackend/common"
	"github.com/princinho/weatherbackend/database"
)

// Claims is the payload of a session token.
type Claims struct {
	Username string `json:"user"`
	Admin    bool   `json:"admin"`
	jwt.RegisteredClaims
}

// TokenService issues and checks HS256 session tokens. Revocation lives in
// a separate store and is checked independently of structural validity.
type TokenService struct {
	secret      []byte
	ttl         time.Duration
	revocations database.RevocationStore
	now         func() time.Time
}

func NewTokenService(secret string, ttl time.Duration, revocations database.RevocationStore) *TokenService {
	return &TokenService{
		secret:      []byte(secret),
		ttl:         ttl,
		revocations: revocations,
		now:         time.Now,
	}
}

// Now is the service clock.
func (s *TokenService) Now() time.Time { return s.now() }

func (s *TokenService) Issue(username string, admin bool, now time.Time) (string, error) {
	claims := Claims{
		Username: username,
		Admin:    admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(now.Add(s.ttl))),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", common.Storage("sign token", err)
	}
	return signed, nil
}

// Validate checks the signature first, then expiry at now. A token whose
// signature does not verify is malformed even if it is also expired.
func (s *TokenService) Validate(token string, now time.Time) (*Claims, error) {
	if token == "" {
		return nil, common.ErrMissingToken
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrExpiredToken
		}
		return nil, common.ErrMalformedToken
	}
	if !parsed.Valid || claims.Username == "" {
		return nil, common.ErrMalformedToken
	}
	return claims, nil
}

func (s *TokenService) IsRevoked(ctx context.Context, token string) (bool, error) {
	revoked, err := s.revocations.IsRevoked(ctx, token)
	if err != nil {
		return false, common.Storage("check blacklist", err)
	}
	return revoked, nil
}

// Revoke blacklists token. Revoking twice is not an error.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	if err := s.revocations.Revoke(ctx, token, s.now().UTC()); err != nil {
		return common.Storage("blacklist token", err)
	}
	return nil
}

// Refresh issues a new token for the holder of a valid, unrevoked one.
func (s *TokenService) Refresh(ctx context.Context, token string, now time.Time) (string, error) {
	claims, err := s.Validate(token, now)
	if err != nil {
		return "", err
	}
	revoked, err := s.IsRevoked(ctx, token)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", common.ErrRevokedToken
	}
	return s.Issue(claims.Username, claims.Admin, now)
}

// ceilSecond rounds t up to the whole second. NumericDate truncates, which
// would otherwise end a session before issue time plus ttl.
func ceilSecond(t time.Time) time.Time {
	if tr := t.Truncate(time.Second); !tr.Equal(t) {
		return tr.Add(time.Second)
	}
	return t
}

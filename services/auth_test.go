package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/princinho/weatherbackend/common"
	"github.com/princinho/weatherbackend/database"
	"github.com/princinho/weatherbackend/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(allowAdmin bool) (*AuthService, *TokenService) {
	tokens := newTokenService()
	return NewAuthService(database.NewMemoryUsers(), tokens, allowAdmin, logging.Discard()), tokens
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	ctx := context.Background()
	s, _ := newAuthService(false)

	u, err := s.Register(ctx, "alice", "pw123", false)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "pw123", u.PasswordHash)

	_, err = s.Register(ctx, " alice ", "other", false)
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestRegister_ConcurrentSameUsername(t *testing.T) {
	ctx := context.Background()
	s, _ := newAuthService(false)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Register(ctx, "bob", "pw", false)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, common.ErrConflict)
	}
	assert.Equal(t, 1, ok)
}

func TestRegister_AdminSignup(t *testing.T) {
	ctx := context.Background()

	s, _ := newAuthService(false)
	_, err := s.Register(ctx, "root", "pw", true)
	assert.ErrorIs(t, err, common.ErrForbidden)

	s, _ = newAuthService(true)
	u, err := s.Register(ctx, "root", "pw", true)
	require.NoError(t, err)
	assert.True(t, u.Admin)
}

func TestRegister_MissingFields(t *testing.T) {
	s, _ := newAuthService(false)
	_, err := s.Register(context.Background(), "  ", "pw", false)
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	s, tokens := newAuthService(false)
	_, err := s.Register(ctx, "alice", "pw123", false)
	require.NoError(t, err)

	tok, err := s.Login(ctx, "alice", "pw123")
	require.NoError(t, err)
	claims, err := tokens.Validate(tok, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.False(t, claims.Admin)

	_, errUser := s.Login(ctx, "nobody", "pw123")
	_, errPass := s.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, errUser, common.ErrUnauthenticated)
	assert.ErrorIs(t, errPass, common.ErrUnauthenticated)
	assert.Equal(t, common.Message(errUser), common.Message(errPass))

	_, err = s.Login(ctx, "", "")
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	s, _ := newAuthService(false)
	_, err := s.Register(ctx, "alice", "pw123", false)
	require.NoError(t, err)

	err = s.ChangePassword(ctx, "alice", "wrong", "newpass")
	assert.ErrorIs(t, err, common.ErrUnauthenticated)

	require.NoError(t, s.ChangePassword(ctx, "alice", "pw123", "newpass"))
	_, err = s.Login(ctx, "alice", "pw123")
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
	_, err = s.Login(ctx, "alice", "newpass")
	assert.NoError(t, err)

	err = s.ChangePassword(ctx, "ghost", "a", "b")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

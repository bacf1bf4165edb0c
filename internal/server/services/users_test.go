package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/poskeeper/internal/common"
	"github.com/dmitrijs2005/poskeeper/internal/server/auth"
	"github.com/dmitrijs2005/poskeeper/internal/server/config"
	"github.com/dmitrijs2005/poskeeper/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T) (*UserService, *fakeManager) {
	t.Helper()
	db, _ := newMockDB(t)
	m := newFakeManager()
	cfg := &config.Config{SecretKey: "secret", AccessTokenValidityDuration: time.Minute}
	s := NewUserService(db, m, cfg)
	s.hashCost = bcrypt.MinCost
	return s, m
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	s, m := newUserService(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "id-alice", u.ID)
	assert.NotEqual(t, []byte("pw"), m.users.byName["alice"].PasswordHash)

	token, ttl, err := s.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	claims, err := auth.ParseToken(token, []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, "id-alice", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestUserService_Register_Validation(t *testing.T) {
	s, _ := newUserService(t)

	_, err := s.Register(context.Background(), "", "pw")
	require.ErrorIs(t, err, shared.ErrorValidation)

	_, err = s.Register(context.Background(), "bob", "")
	require.ErrorIs(t, err, shared.ErrorValidation)
}

func TestUserService_Login_Rejected(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()
	_, err := s.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	tests := []struct {
		name, user, pass string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown user", "mallory", "pw"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := s.Login(ctx, tc.user, tc.pass)
			require.ErrorIs(t, err, common.ErrUnauthorized)
			require.ErrorIs(t, err, shared.ErrorInvalidLoginPassword)
		})
	}
}

func TestUserService_Login_RepoError(t *testing.T) {
	s, m := newUserService(t)
	m.users.getErr = errBoom

	_, _, err := s.Login(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, common.ErrInternal)
	require.NotErrorIs(t, err, common.ErrUnauthorized)
}

func TestUserService_EnsureOperator(t *testing.T) {
	s, m := newUserService(t)
	ctx := context.Background()

	created, err := s.EnsureOperator(ctx, "op", "pw")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.EnsureOperator(ctx, "op", "other")
	require.NoError(t, err)
	assert.False(t, created)

	// the first password stays
	require.NoError(t, bcrypt.CompareHashAndPassword(m.users.byName["op"].PasswordHash, []byte("pw")))

	m.users.createErr = errBoom
	_, err = s.EnsureOperator(ctx, "op2", "pw")
	require.ErrorIs(t, err, errBoom)
}

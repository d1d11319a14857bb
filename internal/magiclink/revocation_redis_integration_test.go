//go:build integration

package magiclink

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"attest/pkg/testutil/containers"
)

type RedisRevocationsSuite struct {
	suite.Suite
	rc    *containers.RedisContainer
	store *RedisRevocations
	ctx   context.Context
}

func (s *RedisRevocationsSuite) SetupSuite() {
	s.rc = containers.NewRedisContainer(s.T())
	s.store = NewRedisRevocations(s.rc.Client)
	s.ctx = context.Background()
}

func (s *RedisRevocationsSuite) SetupTest() {
	s.Require().NoError(s.rc.FlushAll(s.ctx))
}

func TestRedisRevocationsSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisRevocationsSuite))
}

func (s *RedisRevocationsSuite) TestRevokeAndCheck() {
	s.Require().NoError(s.store.Revoke(s.ctx, "token-1", time.Minute))

	revoked, err := s.store.IsRevoked(s.ctx, "token-1")
	s.Require().NoError(err)
	s.True(revoked)

	revoked, err = s.store.IsRevoked(s.ctx, "token-2")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *RedisRevocationsSuite) TestExpiredTokenIsNotStored() {
	// A token past its lifetime can never verify again, so there is
	// nothing to revoke.
	s.Require().NoError(s.store.Revoke(s.ctx, "stale", 0))
	s.Require().NoError(s.store.Revoke(s.ctx, "staler", -time.Minute))

	for _, tokenID := range []string{"stale", "staler"} {
		revoked, err := s.store.IsRevoked(s.ctx, tokenID)
		s.Require().NoError(err)
		s.False(revoked)
	}
}

func (s *RedisRevocationsSuite) TestRevocationExpiresWithToken() {
	s.Require().NoError(s.store.Revoke(s.ctx, "short-lived", time.Second))

	revoked, err := s.store.IsRevoked(s.ctx, "short-lived")
	s.Require().NoError(err)
	s.True(revoked)

	s.Require().Eventually(func() bool {
		revoked, err := s.store.IsRevoked(s.ctx, "short-lived")
		return err == nil && !revoked
	}, 5*time.Second, 100*time.Millisecond)
}

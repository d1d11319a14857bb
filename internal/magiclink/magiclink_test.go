package magiclink

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "attest/pkg/domain"
	"attest/pkg/platform/sentinel"
)

func newIssuer(ttl time.Duration) *Issuer {
	return NewIssuer([]byte("test-signing-key"), ttl, "https://attest.example.com", NewInMemoryRevocations())
}

func TestMintAndVerify(t *testing.T) {
	issuer := newIssuer(time.Hour)
	assignmentID := id.NewAssignmentID()

	token, linkURL, err := issuer.Mint(assignmentID, "pat@example.com", time.Now())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(linkURL, "https://attest.example.com/ack/"))
	assert.True(t, strings.HasSuffix(linkURL, token))

	claims, err := issuer.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, assignmentID, claims.AssignmentID)
	assert.Equal(t, "pat@example.com", claims.Email)
	assert.NotEmpty(t, claims.TokenID)
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer := newIssuer(time.Minute)
	token, _, err := issuer.Mint(id.NewAssignmentID(), "pat@example.com", time.Now().Add(-2*time.Minute))
	require.NoError(t, err)

	_, err = issuer.Verify(context.Background(), token)
	require.ErrorIs(t, err, sentinel.ErrExpired)
}

func TestVerifyRejectsTampered(t *testing.T) {
	issuer := newIssuer(time.Hour)
	token, _, err := issuer.Mint(id.NewAssignmentID(), "pat@example.com", time.Now())
	require.NoError(t, err)

	other := NewIssuer([]byte("different-key"), time.Hour, "https://attest.example.com", NewInMemoryRevocations())
	_, err = other.Verify(context.Background(), token)
	require.Error(t, err)
}

func TestRevokeInvalidatesOldToken(t *testing.T) {
	issuer := newIssuer(time.Hour)
	ctx := context.Background()
	assignmentID := id.NewAssignmentID()

	oldToken, _, err := issuer.Mint(assignmentID, "pat@example.com", time.Now())
	require.NoError(t, err)
	newToken, _, err := issuer.Mint(assignmentID, "pat@example.com", time.Now())
	require.NoError(t, err)

	require.NoError(t, issuer.Revoke(ctx, oldToken))

	_, err = issuer.Verify(ctx, oldToken)
	require.ErrorIs(t, err, sentinel.ErrAlreadyUsed)

	// The replacement token still works.
	claims, err := issuer.Verify(ctx, newToken)
	require.NoError(t, err)
	assert.Equal(t, assignmentID, claims.AssignmentID)
}

func TestRevokeGarbageTokenIsNoOp(t *testing.T) {
	issuer := newIssuer(time.Hour)
	require.NoError(t, issuer.Revoke(context.Background(), "not-a-jwt"))
}

func TestMemoryRevocationsExpire(t *testing.T) {
	store := NewInMemoryRevocations()
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "tok", -time.Second))
	revoked, err := store.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked, "entry past its deadline reads as not revoked")
}

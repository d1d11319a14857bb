// Package magiclink issues and verifies the token-bearing URLs that grant a
// recipient access to their assignment without a full login. Tokens are JWTs
// bound to one assignment and one email; resending a link revokes every
// token minted before it.
package magiclink

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "attest/pkg/domain"
	"attest/pkg/platform/sentinel"
)

// Claims is the payload carried by a magic link token.
type Claims struct {
	AssignmentID id.AssignmentID
	Email        string
	TokenID      string
}

// RevocationStore remembers invalidated token IDs until they would have
// expired anyway. The redis implementation backs production; memory backs
// tests and single-node runs.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Issuer mints and verifies magic link tokens.
type Issuer struct {
	signingKey  []byte
	ttl         time.Duration
	frontendURL string
	revocations RevocationStore
}

func NewIssuer(signingKey []byte, ttl time.Duration, frontendURL string, revocations RevocationStore) *Issuer {
	return &Issuer{
		signingKey:  signingKey,
		ttl:         ttl,
		frontendURL: frontendURL,
		revocations: revocations,
	}
}

type linkClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Mint creates a fresh token for the assignment and returns the token plus
// the recipient-facing URL.
func (i *Issuer) Mint(assignmentID id.AssignmentID, email string, now time.Time) (token string, linkURL string, err error) {
	claims := linkClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   assignmentID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return "", "", fmt.Errorf("sign magic link token: %w", err)
	}
	return signed, i.LinkURL(signed), nil
}

// LinkURL returns the recipient-facing URL for an existing token.
func (i *Issuer) LinkURL(token string) string {
	return i.frontendURL + "/ack/" + token
}

// Verify parses and validates a token, rejecting expired and revoked ones.
func (i *Issuer) Verify(ctx context.Context, token string) (*Claims, error) {
	var claims linkClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.signingKey, nil
	})
	if err != nil {
		if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
			return nil, sentinel.ErrExpired
		}
		return nil, fmt.Errorf("parse magic link token: %w", err)
	}
	if !parsed.Valid {
		return nil, sentinel.ErrExpired
	}

	revoked, err := i.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return nil, sentinel.ErrAlreadyUsed
	}

	assignmentID, err := id.ParseAssignmentID(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("token subject: %w", err)
	}
	return &Claims{AssignmentID: assignmentID, Email: claims.Email, TokenID: claims.ID}, nil
}

// Revoke invalidates a previously issued token. The revocation entry lives
// as long as the token could, then falls away on its own.
func (i *Issuer) Revoke(ctx context.Context, token string) error {
	var claims linkClaims
	// Unverified parse is fine here: revoking a token nobody signed is harmless.
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil || claims.ID == "" {
		return nil
	}
	ttl := i.ttl
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	return i.revocations.Revoke(ctx, claims.ID, ttl)
}

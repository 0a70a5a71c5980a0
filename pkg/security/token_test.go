package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time { return f.t }

func newTestTokens(t *testing.T, clock *fakeClock) *TokenService {
	t.Helper()

	s, err := NewTokenService("jwt-secret", 30*time.Minute, WithClock(clock.now))
	require.NoError(t, err)
	return s
}

func TestSessionRoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := newTestTokens(t, clock)

	tok, err := s.IssueSession("ops@example.com", "ops")
	require.NoError(t, err)

	c, err := s.VerifySession(tok)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", c.Subject)
	assert.Equal(t, "ops", c.Role)
	assert.Equal(t, clock.t.Add(30*time.Minute).Unix(), c.ExpiresAt.Unix())
}

func TestVerificationRoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := newTestTokens(t, clock)

	tok, err := s.IssueVerification("client@example.com")
	require.NoError(t, err)

	c, err := s.VerifyVerification(tok)
	require.NoError(t, err)
	assert.Equal(t, "client@example.com", c.Email)
}

func TestTokenExpiryBoundary(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	ttl := 30 * time.Minute
	eps := time.Second

	clock := &fakeClock{t: issued}
	s := newTestTokens(t, clock)

	session, err := s.IssueSession("a@example.com", "client")
	require.NoError(t, err)
	verify, err := s.IssueVerification("a@example.com")
	require.NoError(t, err)

	clock.t = issued.Add(ttl - eps)
	_, err = s.VerifySession(session)
	assert.NoError(t, err)
	_, err = s.VerifyVerification(verify)
	assert.NoError(t, err)

	clock.t = issued.Add(ttl + eps)
	_, err = s.VerifySession(session)
	assert.ErrorIs(t, err, ErrTokenExpired)
	_, err = s.VerifyVerification(verify)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestClaimShapesAreNotInterchangeable(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newTestTokens(t, clock)

	session, err := s.IssueSession("a@example.com", "client")
	require.NoError(t, err)
	verify, err := s.IssueVerification("a@example.com")
	require.NoError(t, err)

	_, err = s.VerifyVerification(session)
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, err = s.VerifySession(verify)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestHandcraftedMixedClaimsRejected(t *testing.T) {
	s := newTestTokens(t, &fakeClock{t: time.Now()})

	// Looks like a session token but also tries to pass as a verification one
	mixed := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     "a@example.com",
		"role":    "client",
		"email":   "a@example.com",
		"purpose": PurposeSession,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	tok, err := mixed.SignedString([]byte("jwt-secret"))
	require.NoError(t, err)

	_, err = s.VerifySession(tok)
	assert.ErrorIs(t, err, ErrTokenMalformed)
	_, err = s.VerifyVerification(tok)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenMissingExpRejected(t *testing.T) {
	s := newTestTokens(t, &fakeClock{t: time.Now()})

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     "a@example.com",
		"role":    "ops",
		"purpose": PurposeSession,
	}).SignedString([]byte("jwt-secret"))
	require.NoError(t, err)

	_, err = s.VerifySession(tok)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenWrongSecret(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newTestTokens(t, clock)

	other, err := NewTokenService("other-secret", time.Minute, WithClock(clock.now))
	require.NoError(t, err)

	tok, err := other.IssueSession("a@example.com", "ops")
	require.NoError(t, err)

	_, err = s.VerifySession(tok)
	assert.ErrorIs(t, err, ErrTokenMalformed)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestTokenWrongAlgorithm(t *testing.T) {
	s := newTestTokens(t, &fakeClock{t: time.Now()})

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub":     "a@example.com",
		"role":    "ops",
		"purpose": PurposeSession,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("jwt-secret"))
	require.NoError(t, err)

	_, err = s.VerifySession(tok)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenGarbage(t *testing.T) {
	s := newTestTokens(t, &fakeClock{t: time.Now()})

	for _, tok := range []string{"", "invalidtoken", "not.a.jwt", strings.Repeat("a", 300)} {
		_, err := s.VerifySession(tok)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", tok)
	}
}

func TestNewTokenServiceValidation(t *testing.T) {
	_, err := NewTokenService("", time.Minute)
	assert.Error(t, err)

	_, err = NewTokenService("x", 0)
	assert.Error(t, err)
}

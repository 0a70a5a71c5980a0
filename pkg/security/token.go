package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("invalid token")
)

const (
	PurposeSession     = "session"
	PurposeEmailVerify = "email_verify"
)

// SessionClaims authorize API calls. The subject is the user's email
type SessionClaims struct {
	Role    string `json:"role"`
	Purpose string `json:"purpose"`
	// Must stay empty, a token carrying it is a verification token
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// VerificationClaims are only good for redeeming an email verification link
type VerificationClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	// Must stay empty, a token carrying it is a session token
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService mints and checks HS256 JWTs. Both claim shapes share the
// signing key, callers always say which one they expect
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now, used by tests to move around token expiry
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(secret string, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("no jwt secret provided")
	}

	if ttl <= 0 {
		return nil, errors.New("token ttl must be bigger than 0")
	}

	s := &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}

	for _, o := range opts {
		o(s)
	}

	return s, nil
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) registered(sub string) jwt.RegisteredClaims {
	now := s.now()

	return jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
}

func (s *TokenService) sign(c jwt.Claims) (string, error) {
	t, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token, %w", err)
	}

	return t, nil
}

func (s *TokenService) IssueSession(email, role string) (string, error) {
	return s.sign(&SessionClaims{
		Role:             role,
		Purpose:          PurposeSession,
		RegisteredClaims: s.registered(email),
	})
}

func (s *TokenService) IssueVerification(email string) (string, error) {
	return s.sign(&VerificationClaims{
		Email:            email,
		Purpose:          PurposeEmailVerify,
		RegisteredClaims: s.registered(""),
	})
}

func (s *TokenService) parse(token string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}

		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}

	return nil
}

// VerifySession accepts only session shaped tokens
func (s *TokenService) VerifySession(token string) (*SessionClaims, error) {
	var c SessionClaims
	if err := s.parse(token, &c); err != nil {
		return nil, err
	}

	if c.Purpose != PurposeSession || c.Subject == "" || c.Role == "" || c.Email != "" {
		return nil, fmt.Errorf("%w: not a session token", ErrTokenMalformed)
	}

	return &c, nil
}

// VerifyVerification accepts only email verification tokens
func (s *TokenService) VerifyVerification(token string) (*VerificationClaims, error) {
	var c VerificationClaims
	if err := s.parse(token, &c); err != nil {
		return nil, err
	}

	if c.Purpose != PurposeEmailVerify || c.Email == "" || c.Subject != "" || c.Role != "" {
		return nil, fmt.Errorf("%w: not a verification token", ErrTokenMalformed)
	}

	return &c, nil
}

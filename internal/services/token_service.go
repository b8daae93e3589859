package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apierrors "github.com/yukikurage/task-service/internal/errors"
	"github.com/yukikurage/task-service/internal/models"
)

var (
	ErrTokenInvalid = apierrors.New(apierrors.KindUnauthenticated, "token is invalid")
	ErrTokenExpired = apierrors.New(apierrors.KindUnauthenticated, "token has expired")
)

// TokenConfig defines how identity tokens are signed and how long they live.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

// Claims captures the validated payload of an identity token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and validates HMAC-signed identity tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a new TokenService.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token signing key is not configured")
	}
	if cfg.TTL < 0 {
		return nil, errors.New("token ttl must not be negative")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TokenService{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		now:    cfg.Now,
	}, nil
}

// Issue signs a token whose subject is the principal's email.
func (s *TokenService) Issue(p models.Principal) (string, error) {
	issuedAt := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   p.Email,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate checks the signature first and expiry second.
// A token is expired once the current time reaches its expiry.
func (s *TokenService) Validate(token string) (Claims, error) {
	var parsed jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if parsed.Subject == "" || parsed.ExpiresAt == nil || parsed.IssuedAt == nil {
		return Claims{}, fmt.Errorf("%w: missing required claims", ErrTokenInvalid)
	}

	expiresAt := parsed.ExpiresAt.Time
	if !expiresAt.After(s.now()) {
		return Claims{}, ErrTokenExpired
	}

	return Claims{
		Subject:   parsed.Subject,
		IssuedAt:  parsed.IssuedAt.Time,
		ExpiresAt: expiresAt,
	}, nil
}

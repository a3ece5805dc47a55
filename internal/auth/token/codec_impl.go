package token

import (
	"time"

	customErrors "github.com/Daryna22/contacts-service/internal/auth/errors"
	"github.com/Daryna22/contacts-service/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type codecImpl struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	confirmTTL time.Duration
}

func NewCodec(cfg *config.Config) *codecImpl {
	return &codecImpl{
		secret:     []byte(cfg.SecretKey),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		confirmTTL: cfg.ConfirmTokenTTL,
	}
}

func (c *codecImpl) IssueAccess(email string) (string, error) {
	return c.issue(email, ScopeAccess, c.accessTTL)
}

func (c *codecImpl) IssueRefresh(email string) (string, error) {
	return c.issue(email, ScopeRefresh, c.refreshTTL)
}

func (c *codecImpl) IssueConfirmation(email string) (string, error) {
	return c.issue(email, ScopeEmailConfirm, c.confirmTTL)
}

func (c *codecImpl) issue(email string, scope Scope, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Scope: scope,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", customErrors.WrapInternal(err, "sign token")
	}

	return signed, nil
}

// Decode verifies signature, algorithm and expiry before any claim is
// read, then checks the scope claim against want.
func (c *codecImpl) Decode(raw string, want Scope) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return c.secret, nil
	})

	if err != nil {
		return Claims{}, customErrors.ErrInvalidToken
	}

	if !parsed.Valid {
		return Claims{}, customErrors.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return Claims{}, customErrors.ErrInvalidToken
	}

	if claims.Scope != want {
		return Claims{}, customErrors.ErrInvalidToken
	}

	return *claims, nil
}

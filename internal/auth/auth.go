// FilePath: internal/auth/auth.go

// Package auth holds the password and token primitives. Account storage and
// lookups live in hubservice.
package auth

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/secador-solar/sensorhub/internal/clock"
	"github.com/secador-solar/sensorhub/internal/errors"
	"github.com/secador-solar/sensorhub/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const TokenType = "bearer"

// Claims carried by access tokens. Subject is the username.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokenIssuer(secret string, ttl time.Duration, c clock.Clock) *TokenIssuer {
	if c == nil {
		c = clock.System{}
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, clock: c}
}

// TTL is the lifetime of issued tokens.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token for user valid for the configured TTL.
func (i *TokenIssuer) Issue(user *models.User) (string, error) {
	now := i.clock.Now()
	claims := &Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", errors.NewInternalError("failed to sign token", err)
	}
	return signed, nil
}

// Verify parses tokenString and returns its claims, or an authentication
// error for anything malformed, badly signed or expired.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.NewAuthError("token expired", err)
		}
		return nil, errors.NewAuthError("could not validate credentials", err)
	}
	if claims.Subject == "" || claims.UserID == "" {
		return nil, errors.NewAuthError("could not validate credentials", fmt.Errorf("token missing subject"))
	}
	return claims, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if stderrors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", errors.NewValidationError("password must be at most 72 bytes", err)
		}
		return "", errors.NewInternalError("failed to hash password", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

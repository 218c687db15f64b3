package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventregistration/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Email string `json:"email"`
}

// JWT issues and verifies HS256 session tokens carrying the signed-in identity.
type JWT struct {
	secret []byte
	now    func() time.Time
}

// NewJWT returns a TokenIssuer and TokenVerifier backed by the given secret.
func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret), now: time.Now}
}

func (j *JWT) Issue(identity domain.Identity, expiry time.Duration) (string, error) {
	if identity.Email == "" {
		return "", fmt.Errorf("%w: identity has no email", domain.ErrInvalidInput)
	}
	now := j.now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Name:  identity.Name,
		Email: identity.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (j *JWT) key(*jwt.Token) (any, error) {
	return j.secret, nil
}

// Verify returns domain.ErrUnauthorized for malformed, expired, or foreign tokens.
func (j *JWT) Verify(tokenString string) (*domain.Identity, error) {
	claims := &jwtClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, j.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: token has no email", domain.ErrUnauthorized)
	}
	identity := domain.NewIdentity(claims.Name, claims.Email)
	return &identity, nil
}

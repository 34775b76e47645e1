package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the role allowed to author quizzes and see answer keys.
const RoleAdmin = "admin"

const issuer = "tacnique-quiz"

var ErrInvalidToken = errors.New("invalid token")

// Service signs and verifies HS256 tokens with a shared secret.
type Service struct{ hmac []byte }

// NewService returns nil for an empty secret, which leaves admin access disabled.
func NewService(secret string) *Service {
	if secret == "" {
		return nil
	}
	return &Service{hmac: []byte(secret)}
}

type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a token for sub with the given role, valid for ttl.
func (a *Service) Issue(sub, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:  sub,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.hmac)
}

// Parse verifies signature, issuer and expiry and returns the claims.
func (a *Service) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return c, nil
}

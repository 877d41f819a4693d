package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"store-rating/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the bearer token payload minted by the identity service.
type Claims struct {
	UID  uint   `json:"uid"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Actor converts the claims into the caller identity the services consume.
func (c *Claims) Actor() domain.ActorContext {
	return domain.ActorContext{ID: c.UID, Role: domain.Role(c.Role)}
}

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Leeway time.Duration
}

// Issue signs a token for uid. The service only verifies tokens; Issue serves tooling and tests.
func (j *JWTer) Issue(uid uint, role domain.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:  uid,
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   fmt.Sprint(uid),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.Secret)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	leeway := j.Leeway
	if leeway == 0 {
		leeway = time.Minute
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg %v", token.Header["alg"])
		}
		return j.Secret, nil
	},
		jwt.WithIssuer(j.Issuer),
		jwt.WithLeeway(leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, ErrInvalidToken
}

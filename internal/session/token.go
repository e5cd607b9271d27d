package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenCodec signs and verifies session bearer tokens (HS256).
type tokenCodec struct {
	secret []byte
}

func newTokenCodec(secret []byte) *tokenCodec {
	return &tokenCodec{secret: secret}
}

type sessionClaims struct {
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

func (c *tokenCodec) issue(sess *Session, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Provider: sess.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *tokenCodec) parse(token string) (*sessionClaims, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("invalid session token")
	}
	return &claims, nil
}

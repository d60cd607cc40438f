package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "rocketshoes-shop"

var ErrInvalidToken = errors.New("invalid session token")

// TokenMaker signs and verifies HS256 tokens naming a cart session.
type TokenMaker struct {
	secret []byte
	now    func() time.Time
}

func NewTokenMaker(secret string) *TokenMaker {
	return &TokenMaker{secret: []byte(secret), now: time.Now}
}

type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (t *TokenMaker) New(sessionID string, ttl time.Duration) (string, error) {
	now := t.now()

	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse returns the session id carried by a valid, unexpired token.
func (t *TokenMaker) Parse(tokenStr string) (string, error) {
	var c Claims

	keyFunc := func(*jwt.Token) (any, error) { return t.secret, nil }

	token, err := jwt.ParseWithClaims(tokenStr, &c, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || token == nil || !token.Valid || c.SessionID == "" {
		return "", ErrInvalidToken
	}
	return c.SessionID, nil
}

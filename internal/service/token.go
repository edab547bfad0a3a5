package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer binds a bearer token to a session id.
type TokenIssuer interface {
	Issue(sessionID string) (string, error)
	SessionID(token string) (string, error)
}

type jwtTokenIssuer struct {
	secret []byte
	expiry time.Duration
}

// NewTokenIssuer signs HS256 tokens valid for expiryHours.
func NewTokenIssuer(secret string, expiryHours int) TokenIssuer {
	if expiryHours <= 0 {
		expiryHours = 24
	}
	return &jwtTokenIssuer{
		secret: []byte(secret),
		expiry: time.Duration(expiryHours) * time.Hour,
	}
}

func (t *jwtTokenIssuer) Issue(sessionID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
	})
	return token.SignedString(t.secret)
}

func (t *jwtTokenIssuer) SessionID(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

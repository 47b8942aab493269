// Package auth signs and parses the session cookie value.
//
// The cookie carries the username and the opaque session key issued by the
// session store. The signature only proves the server created the cookie;
// whether the session is still alive is decided by the session store.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/apparel/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the signed contents of the login cookie.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Key      string `json:"key"`
}

// GenerateToken signs username and session key with HS256, valid for
// validity from now.
func GenerateToken(username, key string, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Username: username,
		Key:      key,
	})

	signed, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("sign cookie: %w", err)
	}
	return signed, nil
}

// ParseToken verifies tokenString and returns its claims. Expired tokens map
// to common.ErrSessionExpired, anything else invalid to common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrSessionExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Username == "" || claims.Key == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

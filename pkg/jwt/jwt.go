// Package jwt signs and verifies the HS256 access tokens accepted by the API.
// The token subject is the user's authId.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrMissingSubject = errors.New("token has no subject")
	ErrInvalidToken   = errors.New("invalid token")
)

// Claims are the claims carried by an access token.
type Claims struct {
	AuthID string `json:"authId"`
	jwt.RegisteredClaims
}

// Options restrict which tokens ValidateToken accepts. Empty fields are not checked.
type Options struct {
	Issuer   string
	Audience string
}

// GenerateToken issues a token for authID that expires after ttl.
func GenerateToken(authID, secret string, ttl time.Duration, opts Options) (string, error) {
	if authID == "" {
		return "", ErrMissingSubject
	}
	now := time.Now()
	claims := Claims{
		AuthID: authID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   authID,
			Issuer:    opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if opts.Audience != "" {
		claims.Audience = jwt.ClaimStrings{opts.Audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses tokenString and checks its signature, expiry and the
// configured issuer and audience.
func ValidateToken(tokenString, secret string, opts Options) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if opts.Issuer != "" && !claims.VerifyIssuer(opts.Issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}
	if opts.Audience != "" && !claims.VerifyAudience(opts.Audience, true) {
		return nil, fmt.Errorf("%w: unexpected audience", ErrInvalidToken)
	}

	if claims.AuthID == "" {
		claims.AuthID = claims.Subject
	}
	if claims.AuthID == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTTokenVerifier implements ports.TokenVerifier for HS256 JWTs issued by
// the identity service. This service only verifies; it never issues tokens.
type JWTTokenVerifier struct {
	secret []byte
	issuer string
}

// NewJWTTokenVerifier creates a new JWT token verifier.
func NewJWTTokenVerifier(secret, issuer string) *JWTTokenVerifier {
	return &JWTTokenVerifier{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Verify parses and validates a JWT, returning the user ID from the subject
// claim.
func (s *JWTTokenVerifier) Verify(tokenString string) (uuid.UUID, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing subject claim")
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user ID in token: %w", err)
	}

	return userID, nil
}

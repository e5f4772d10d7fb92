package utils

import (
	"time" // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// SessionTTL is how long a session token stays valid
const SessionTTL = 30 * 24 * time.Hour

// Session claims
type Claims struct {
	UserID               string `json:"user_id"` // Opaque user identifier
	jwt.RegisteredClaims                         // Standard JWT claims
}

// GenerateJWT creates a session token for a given user ID
func GenerateJWT(userID string, secret string, now time.Time) (string, error) {
	// Set token claims
	claims := Claims{
		UserID: userID, // Custom claim for user ID
		// Standard claims
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,                                  // Subject mirrors the user ID
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)), // Token expiry
			IssuedAt:  jwt.NewNumericDate(now),                 // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// ParseJWT parses and validates a session token string
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	// Check for parsing errors
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != "" {
		return claims, nil // Return claims if valid
	}
	// Return error if token is invalid
	return nil, jwt.ErrSignatureInvalid
}

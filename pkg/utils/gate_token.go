package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const gateTokenExpiry = 10 * time.Minute

// GateClaims is the short-lived token issued after a successful restricted
// password verification. It is bound to one (user, document) pair, lives only
// in the client session, and is never persisted server-side.
type GateClaims struct {
	UserID     uuid.UUID `json:"userID"`
	DocumentID uuid.UUID `json:"documentID"`
	TokenType  string    `json:"tokenType"`
	jwt.RegisteredClaims
}

func GenerateGateToken(userID, documentID uuid.UUID) (string, time.Time, error) {
	expiresAt := time.Now().Add(gateTokenExpiry)
	claims := GateClaims{
		UserID:     userID,
		DocumentID: documentID,
		TokenType:  "restricted_gate",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func ValidateGateToken(tokenString string) (*GateClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &GateClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*GateClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid gate token")
	}

	if claims.TokenType != "restricted_gate" {
		return nil, fmt.Errorf("invalid token type")
	}

	return claims, nil
}

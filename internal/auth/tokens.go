package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/madhava-poojari/jobs-admin-console/internal/config"
)

const issuer = "jobs-admin-console"

type Claims struct {
	OperatorID string `json:"oid"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

func GenerateAccessToken(cfg *config.Config, operatorID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		OperatorID: operatorID,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   operatorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}

func ParseAndValidateToken(cfg *config.Config, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !tok.Valid || claims.OperatorID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

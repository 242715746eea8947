package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const RoleAdmin = "admin"

func NewTokenAuth(key []byte) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", key, nil)
}

// GenerateToken signs a token for subject carrying role, valid for ttl.
func GenerateToken(auth *jwtauth.JWTAuth, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"jti":  uuid.NewString(),
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}
	_, tokenString, err := auth.Encode(claims)
	return tokenString, err
}

func GetSubjectFromClaims(claims jwt.MapClaims) (string, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("sub claim is missing or not a string")
	}
	return sub, nil
}

func GetRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}

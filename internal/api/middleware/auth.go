package middleware

import (
	"context"
	"log"
	"net/http"

	"graphboard/internal/common"
	"graphboard/internal/common/security"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	SubjectCtxKey contextKey = "subject"
	RoleCtxKey    contextKey = "role"
)

// Authenticator rejects requests whose bearer token, verified upstream by
// jwtauth.Verifier, is missing or invalid.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			if err != nil {
				log.Printf("WARN: rejected bearer token: %v", err)
			}
			common.RespondWithError(w, common.ErrUnauthorized, false)
			return
		}

		subject, err := security.GetSubjectFromClaims(claims)
		if err != nil {
			log.Printf("WARN: invalid token claims: %v", err)
			common.RespondWithError(w, common.ErrUnauthorized, false)
			return
		}
		role, err := security.GetRoleFromClaims(claims)
		if err != nil {
			log.Printf("WARN: invalid token claims: %v", err)
			common.RespondWithError(w, common.ErrUnauthorized, false)
			return
		}

		ctx := context.WithValue(r.Context(), SubjectCtxKey, subject)
		ctx = context.WithValue(ctx, RoleCtxKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := GetRoleFromContext(r.Context())
		if !ok || role != security.RoleAdmin {
			common.RespondWithError(w, common.ErrForbidden, false)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectCtxKey).(string)
	return subject, ok
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleCtxKey).(string)
	return role, ok
}

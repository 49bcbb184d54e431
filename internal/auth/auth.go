// Package auth verifies the Bearer JWT carried on every protected request.
package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ignite/sparkpost-monitor/internal/config"
	"github.com/ignite/sparkpost-monitor/internal/pkg/httputil"
)

// Verifier checks Bearer tokens against a single shared HS256 secret. There
// is no session store and no token issuance endpoint — tokens are minted out
// of band by whoever operates the secret.
type Verifier struct {
	secret []byte
}

// NewVerifier builds a Verifier from the configured JWT secret.
func NewVerifier(cfg config.AuthConfig) *Verifier {
	return &Verifier{secret: []byte(cfg.JWTSecret)}
}

// Valid reports whether raw is a well-formed, signature-valid, unexpired JWT
// for this secret. It does not check claims beyond what jwt.Parse validates
// by default (exp, nbf, iat if present) — this service has no per-user
// authorization model, only a single shared bearer credential.
func (v *Verifier) Valid(raw string) bool {
	if raw == "" {
		return false
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return v.secret, nil
	})
	return err == nil && token.Valid
}

// Middleware rejects requests without a valid "Bearer <jwt>" Authorization
// header with 401. Wrap only the routes that require it — the open-pixel and
// callback endpoints are intentionally left outside this middleware.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || !v.Valid(token) {
			httputil.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/petroldesk/pumplog/internal/common"
)

// Middleware authenticates requests before any pipeline work begins. It
// accepts the auth cookie set by the account layer or a bearer token, and
// places the owner identity in the request context.
func Middleware(tokens *TokenService, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r, cookieName)
			if raw == "" {
				unauthorized(w, "unauthorized")
				return
			}

			ownerID, err := tokens.ValidateToken(raw)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			ctx := common.WithOwnerID(r.Context(), ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// unauthorized writes the same {success,message} envelope the API's other
// error paths use, so clients see one error shape regardless of which layer
// rejected the request.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

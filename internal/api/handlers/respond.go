package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wonny/copa/internal/contracts"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalMiddleware builds the authenticated principal from the
// identity headers set by the upstream gateway. Authentication itself
// happens outside this service; these headers are trusted input from
// the gateway only.
func PrincipalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := contracts.Principal{
			ID:          r.Header.Get("X-User-ID"),
			Roles:       splitHeader(r.Header.Get("X-User-Roles")),
			Permissions: splitHeader(r.Header.Get("X-User-Permissions")),
		}
		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFrom extracts the principal placed by PrincipalMiddleware.
func PrincipalFrom(ctx context.Context) contracts.Principal {
	if p, ok := ctx.Value(principalKey).(contracts.Principal); ok {
		return p
	}
	return contracts.Principal{}
}

func splitHeader(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps engine errors onto HTTP statuses: concurrency
// conflicts become 409, other validation failures 422, everything
// else 500.
func writeError(w http.ResponseWriter, err error) {
	if verr, ok := contracts.AsValidation(err); ok {
		status := http.StatusUnprocessableEntity
		if verr.Rule == contracts.RuleConcurrentUpdate {
			status = http.StatusConflict
		}
		writeJSON(w, status, map[string]string{
			"error": verr.Message,
			"rule":  verr.Rule,
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

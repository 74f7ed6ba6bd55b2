package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
)

type ContextKey string

const OrganizationIDKey ContextKey = "organizationID"

// SessionOrganizationKey is where the organization id lives in the session.
const SessionOrganizationKey = "organizationID"

// LoadOrganization copies the session's organization id, if any, into the
// request context. Requests without one are let through.
func LoadOrganization(sessionManager *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			orgID := sessionManager.GetString(r.Context(), SessionOrganizationKey)
			if orgID == "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOrganizationID(r.Context(), orgID)))
		})
	}
}

func WithOrganizationID(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, OrganizationIDKey, orgID)
}

func GetOrganizationIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(OrganizationIDKey)
	if val == nil {
		return "", false
	}
	id, ok := val.(string)
	return id, ok
}

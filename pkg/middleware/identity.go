package middleware

import (
	"context"
	"net/http"
	"strings"

	"smartstay/pkg/logger"
	"smartstay/pkg/model"
)

// Identity headers asserted by the upstream identity provider. The core
// trusts them; credential verification happens before requests reach us.
const (
	HeaderActorID    = "X-Actor-Id"
	HeaderActorEmail = "X-Actor-Email"
	HeaderActorRole  = "X-Actor-Role"
)

const ActorKey contextKey = "actor"

// ActorIdentity extracts the authenticated actor into the request context.
// Requests without a complete identity are rejected before any mutation.
// Paths under an exempt prefix pass through without an actor; machine
// callers such as payment webhooks authenticate by signature instead.
func ActorIdentity(log *logger.Logger, exemptPrefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range exemptPrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			actor := model.Actor{
				ID:    r.Header.Get(HeaderActorID),
				Email: r.Header.Get(HeaderActorEmail),
				Role:  model.Role(r.Header.Get(HeaderActorRole)),
			}

			if actor.ID == "" || actor.Email == "" || !validRole(actor.Role) {
				log.Warn("Request missing actor identity",
					"request_id", requestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"role", actor.Role,
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
				return
			}

			ctx := context.WithValue(r.Context(), ActorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the actor placed by ActorIdentity.
func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(model.Actor)
	return actor, ok
}

func validRole(role model.Role) bool {
	switch role {
	case model.RoleGuest, model.RoleHost, model.RoleAdmin:
		return true
	}
	return false
}

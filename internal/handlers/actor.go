package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ValentinRndn/profconnect/internal/apperr"
	"github.com/ValentinRndn/profconnect/internal/auth"
	"github.com/ValentinRndn/profconnect/internal/httpx"
	"github.com/ValentinRndn/profconnect/internal/party"
	"github.com/ValentinRndn/profconnect/internal/policy"
)

type actorCtxKey struct{}

// ActorCtx resolves the session user into a {userID, role} Actor once per
// request. It must run after auth.Middleware and auth.RequireAuth.
func ActorCtx(resolver *policy.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			role, err := resolver.RoleForUser(r.Context(), uid)
			if err != nil {
				httpx.WriteError(w, err)
				return
			}
			actor := party.Actor{UserID: uid, Role: party.Role(role)}
			if !actor.Role.Valid() {
				httpx.JSONError(w, http.StatusForbidden, "role_inconnu", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorCtxKey{}, actor)))
		})
	}
}

// ActorFromContext extracts the resolved actor.
func ActorFromContext(ctx context.Context) (party.Actor, bool) {
	a, ok := ctx.Value(actorCtxKey{}).(party.Actor)
	return a, ok
}

// mustActor is for handlers mounted behind ActorCtx.
func mustActor(w http.ResponseWriter, r *http.Request) (party.Actor, bool) {
	a, ok := ActorFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	}
	return a, ok
}

// urlID parses a numeric chi URL parameter.
func urlID(r *http.Request, name string) (uint, error) {
	return urlQueryID(chi.URLParam(r, name))
}

func urlQueryID(raw string) (uint, error) {
	id64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id64 == 0 {
		return 0, apperr.InvalidArgument("identifiant_invalide")
	}
	return uint(id64), nil
}

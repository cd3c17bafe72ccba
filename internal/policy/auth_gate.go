// Package policy binds the gate to the database and to HTTP: profile lookup,
// worklog ownership and the permission middleware.
package policy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/diewo77/go-workhours/auth"
	"github.com/diewo77/go-workhours/gate"
	"github.com/diewo77/go-workhours/httpx"
	"github.com/diewo77/go-workhours/internal/logger"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Resource type names used in permission codes.
const (
	ResourceInvoice   = "invoice"
	ResourceWorkLog   = "worklog"
	ResourceProject   = "project"
	ResourceChecklist = "checklist"
	ResourceMaster    = "master"
	ResourceUser      = "user"
)

// AuthGate is the single authorization entry point of the HTTP layer.
type AuthGate struct {
	Gate  *gate.Gate[uint]
	Cache *gate.CachedResolver[uint]
	log   zerolog.Logger
}

// NewAuthGate builds a gate over resolver with a TTL cache in front, and
// registers the worklog ownership rule: update and delete are for the owner
// unless the caller holds "worklog:*".
func NewAuthGate(resolver gate.ProfileResolver[uint], cacheTTL time.Duration, log zerolog.Logger) *AuthGate {
	cached := gate.NewCachedResolver[uint](resolver, cacheTTL)
	ag := &AuthGate{
		Gate:  gate.New[uint](cached),
		Cache: cached,
		log:   log,
	}
	worklogAdmin := gate.NewPermission(ResourceWorkLog, gate.Wildcard)
	ag.Gate.Register(ResourceWorkLog, NewBypassPolicy(
		NewOwnershipPolicy(gate.ActionUpdate, gate.ActionDelete),
		func(ctx context.Context, uid uint) bool { return ag.Gate.Holds(ctx, uid, worklogAdmin) },
	))
	return ag
}

// NewDBAuthGate is NewAuthGate over the users/profiles tables.
func NewDBAuthGate(db *gorm.DB, cacheTTL time.Duration, log zerolog.Logger) *AuthGate {
	return NewAuthGate(NewDBProfileResolver(db), cacheTTL, log)
}

// Authorize checks the caller in ctx. A nil resource checks the profile only.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error {
	uid, _ := auth.UserIDFromContext(ctx)
	return ag.Gate.Authorize(ctx, uid, action, resourceType, resource)
}

// Check authorizes and, on failure, writes the 401/403/500 response.
// Handlers call it after loading a concrete resource.
func (ag *AuthGate) Check(w http.ResponseWriter, r *http.Request, action gate.Action, resourceType string, resource any) bool {
	err := ag.Authorize(r.Context(), action, resourceType, resource)
	if err == nil {
		return true
	}
	ag.deny(w, r, err, gate.NewPermission(resourceType, action))
	return false
}

// RequirePermission is middleware checking the profile permission only.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ag.Check(w, r, action, resourceType, nil) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (ag *AuthGate) deny(w http.ResponseWriter, r *http.Request, err error, perm gate.Permission) {
	switch {
	case errors.Is(err, gate.ErrUnauthenticated):
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, gate.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", map[string]string{"permission": string(perm)})
	default:
		ag.log.Error().Err(err).
			Str(logger.FieldPath, r.URL.Path).
			Str("permission", string(perm)).
			Msg("authorization lookup failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// InvalidateUser drops a cached profile after its assignment changed.
func (ag *AuthGate) InvalidateUser(userID uint) {
	ag.Cache.Invalidate(userID)
}

// Package gate decides whether a subject may perform an action on a resource
// type. A request passes when the subject's profile holds a matching
// "resource:action" permission and, for a concrete resource, the policy
// registered for that resource type (if any) agrees.
//
// The subject type is generic; the server uses the authenticated user id (uint).
package gate

import (
	"context"
	"fmt"
)

type Gate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
}

func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{resolver: resolver, policies: make(map[string]Policy[U])}
}

// Register installs the resource-level policy for resourceType, replacing any previous one.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize returns ErrUnauthenticated for the zero subject, ErrForbidden when
// the profile or policy denies, and a wrapped resolver error otherwise.
// Pass a nil resource for list/create style checks.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return ErrUnauthenticated
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil {
		return fmt.Errorf("resolve profile: %w", err)
	}
	if profile == nil || !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrForbidden
	}
	if resource == nil {
		return nil
	}
	if p, ok := g.policies[resourceType]; ok && !p.Can(ctx, user, action, resource) {
		return ErrForbidden
	}
	return nil
}

func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}

// Holds reports whether the subject's profile carries perm exactly or via a
// wildcard, ignoring resource policies. Policies use it for bypass rules such
// as "worklog:* may edit anyone's entries".
func (g *Gate[U]) Holds(ctx context.Context, user U, perm Permission) bool {
	var zero U
	if user == zero {
		return false
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil || profile == nil {
		return false
	}
	return profile.HasPermission(perm)
}

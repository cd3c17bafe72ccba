package gate

import "context"

// Profile is a named set of permissions assigned to a user.
type Profile interface {
	Name() string
	Permissions() []Permission
	HasPermission(requested Permission) bool
}

// ProfileResolver maps a subject to its profile. A nil profile with a nil
// error means the subject exists but has no profile assigned.
type ProfileResolver[U any] interface {
	Resolve(ctx context.Context, user U) (Profile, error)
}

// PermissionSet is the plain in-memory Profile.
type PermissionSet struct {
	name  string
	perms []Permission
}

func NewPermissionSet(name string, perms ...Permission) *PermissionSet {
	return &PermissionSet{name: name, perms: perms}
}

// FromCodes builds a set from "resource:action" strings as stored in the database.
func FromCodes(name string, codes []string) *PermissionSet {
	perms := make([]Permission, len(codes))
	for i, c := range codes {
		perms[i] = Permission(c)
	}
	return NewPermissionSet(name, perms...)
}

func (p *PermissionSet) Name() string { return p.name }

func (p *PermissionSet) Permissions() []Permission {
	return append([]Permission(nil), p.perms...)
}

func (p *PermissionSet) HasPermission(requested Permission) bool {
	for _, perm := range p.perms {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}

// StaticResolver serves fixed profiles. Used by tests and the CLI.
type StaticResolver[U comparable] map[U]Profile

func (r StaticResolver[U]) Resolve(_ context.Context, user U) (Profile, error) {
	return r[user], nil
}

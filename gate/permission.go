package gate

import "strings"

// Permission is a "resource:action" code such as "invoice:close".
// Either half may be the "*" wildcard.
type Permission string

const (
	Wildcard                        = "*"
	PermissionSuperAdmin Permission = "*:*"
)

func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + ":" + string(action))
}

// Parse splits p. Both halves are empty when p has no colon.
func (p Permission) Parse() (resourceType string, action Action) {
	res, act, ok := strings.Cut(string(p), ":")
	if !ok {
		return "", ""
	}
	return res, Action(act)
}

// Matches reports whether holding p grants requested.
// "*:*" grants everything and "invoice:*" grants every invoice action.
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionSuperAdmin || p == requested {
		return true
	}
	res, act := p.Parse()
	if res == "" {
		return false
	}
	reqRes, _ := requested.Parse()
	return res == reqRes && string(act) == Wildcard
}

// IsWildcard reports whether p grants every action on its resource.
func (p Permission) IsWildcard() bool {
	_, act := p.Parse()
	return string(act) == Wildcard
}

package model

import (
	"github.com/google/uuid"
)

// Principal is the request-scoped authenticated identity: an immutable
// value built once per request from the user store, never from token
// claims alone. Authorization is plain set membership over Roles.
type Principal struct {
	UserID  uuid.UUID
	Subject string
	Roles   map[string]struct{}
}

// NewPrincipal builds a Principal from a loaded user and its current roles.
func NewPrincipal(u *User) *Principal {
	roles := make(map[string]struct{}, len(u.Roles))
	for _, r := range u.Roles {
		roles[r.Name] = struct{}{}
	}
	return &Principal{UserID: u.ID, Subject: u.Username, Roles: roles}
}

// HasRole reports whether the principal holds the named role.
func (p *Principal) HasRole(name string) bool {
	_, ok := p.Roles[name]
	return ok
}

// HasAnyRole reports whether the principal holds at least one of the names.
func (p *Principal) HasAnyRole(names ...string) bool {
	for _, n := range names {
		if p.HasRole(n) {
			return true
		}
	}
	return false
}

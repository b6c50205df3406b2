package auth

import "strings"

// Role is the single effective role used for every authorization decision in
// a request.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDoctor    Role = "doctor"
	RolePatient   Role = "patient"
	RoleAnonymous Role = "anonymous"
)

// rolePrecedence orders the recognized roles from most to least privileged.
// A token carrying several of them derives the highest one.
var rolePrecedence = []Role{RoleAdmin, RoleDoctor, RolePatient}

// DeriveRole reduces a role-string set to exactly one effective role.
// Comparison is case-insensitive, unrecognized strings are ignored and an
// empty set derives anonymous. The function is pure and total.
func DeriveRole(roles []string) Role {
	present := make(map[Role]bool, len(roles))
	for _, r := range roles {
		present[Role(strings.ToLower(r))] = true
	}

	for _, r := range rolePrecedence {
		if present[r] {
			return r
		}
	}
	return RoleAnonymous
}

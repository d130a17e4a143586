package contracts

// Principal is the authenticated actor behind a privileged operation.
// It is passed explicitly into officialize and scheduler-trigger calls;
// the engine never reads identity from ambient context.
type Principal struct {
	ID          string   `json:"id"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// System identifies runs triggered by the scheduler itself.
var System = Principal{ID: "system", Roles: []string{"system"}}

// HasRole reports whether the principal carries the given role.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPermission reports whether the principal carries the given permission.
func (p Principal) HasPermission(perm string) bool {
	for _, c := range p.Permissions {
		if c == perm {
			return true
		}
	}
	return false
}

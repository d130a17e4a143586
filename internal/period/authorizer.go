package period

import "github.com/wonny/copa/internal/contracts"

// OfficializePermission is the permission the access-control
// collaborator grants to users who may close periods.
const OfficializePermission = "periods:officialize"

// DirectorRole is the elevated role that implies OfficializePermission.
const DirectorRole = "director"

// RoleAuthorizer is the default Authorizer: directors, or anyone the
// upstream gateway granted the officialize permission.
type RoleAuthorizer struct{}

// CanOfficialize reports whether the principal may close periods.
func (RoleAuthorizer) CanOfficialize(p contracts.Principal) bool {
	return p.HasRole(DirectorRole) || p.HasPermission(OfficializePermission)
}

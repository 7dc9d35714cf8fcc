package access

// Role is one tag in the closed role set.
type Role string

const (
	// RoleSuperAdmin is the root of the grant hierarchy, seeded once at
	// construction.
	RoleSuperAdmin Role = "SUPER_ADMIN"
	// RoleElectionManager may create elections and drive their lifecycle.
	RoleElectionManager Role = "ELECTION_MANAGER"
	// RoleElectionAuthority validates candidates and enrolls voters.
	RoleElectionAuthority Role = "ELECTION_AUTHORITY"
	// RoleVoter is the base qualification required before an account can be
	// enrolled into any election.
	RoleVoter Role = "VOTER"
)

// grantAuthority is the explicit table of which roles may grant which. Kept
// as data rather than inheritance so the hierarchy stays auditable.
var grantAuthority = map[Role][]Role{
	RoleSuperAdmin:        {RoleSuperAdmin},
	RoleElectionManager:   {RoleSuperAdmin},
	RoleElectionAuthority: {RoleSuperAdmin, RoleElectionManager},
	RoleVoter:             {RoleSuperAdmin, RoleElectionManager, RoleElectionAuthority},
}

// Known reports whether role belongs to the closed role set.
func Known(role Role) bool {
	_, ok := grantAuthority[role]
	return ok
}

package domain

import "slices"

// Role is the back-office role carried in the access token
type Role string

const (
	RoleSuperAdmin   Role = "SUPER_ADMIN"
	RoleAdmin        Role = "ADMIN"
	RoleReceptionist Role = "RECEPTIONIST"
)

// Principal is the authenticated caller
type Principal struct {
	Subject   string
	Role      Role
	BranchIDs []int64
}

// CanAccessBranch reports whether the principal may read or write the branch
func (p *Principal) CanAccessBranch(branchID int64) bool {
	if p == nil {
		return false
	}
	if p.Role == RoleSuperAdmin {
		return true
	}
	return slices.Contains(p.BranchIDs, branchID)
}

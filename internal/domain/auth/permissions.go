package auth

import "slices"

const (
	RoleAdmin  = "admin"
	RoleHR     = "hr"
	RoleViewer = "viewer"
)

const (
	PermPayrollRead  = "payroll.read"
	PermPayrollWrite = "payroll.write"
	PermSystemAdmin  = "admin.system"
)

var DefaultPermissions = []string{
	PermPayrollRead,
	PermPayrollWrite,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermPayrollRead,
		PermPayrollWrite,
		PermSystemAdmin,
	},
	RoleHR: {
		PermPayrollRead,
		PermPayrollWrite,
	},
	RoleViewer: {
		PermPayrollRead,
	},
}

func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

func HasPermission(role, permission string) bool {
	return slices.Contains(RolePermissions[role], permission)
}

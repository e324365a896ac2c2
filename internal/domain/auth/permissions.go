package auth

import "okr/internal/domain/employee"

// Permission names a capability a caller may hold. Route guards check
// permissions, never roles, so adding a role is a table edit.
type Permission string

const (
	PermObjectiveRead  Permission = "objective:read"
	PermObjectiveWrite Permission = "objective:write"
	PermObjectiveGrade Permission = "objective:grade"

	PermCompletionRead  Permission = "completion:read"
	PermCompletionWrite Permission = "completion:write"
	PermCompletionGrade Permission = "completion:grade"

	PermEmployeeRead  Permission = "employee:read"
	PermEmployeeAdmin Permission = "employee:admin"

	PermReportRead  Permission = "report:read"
	PermLogRead     Permission = "log:read"
	PermProfileRead Permission = "profile:read"
)

var employeePerms = []Permission{
	PermObjectiveRead, PermObjectiveWrite,
	PermCompletionRead, PermCompletionWrite,
	PermEmployeeRead, PermProfileRead,
}

var supervisorPerms = append(append([]Permission{}, employeePerms...),
	PermObjectiveGrade, PermCompletionGrade,
)

var adminPerms = append(append([]Permission{}, supervisorPerms...),
	PermEmployeeAdmin, PermReportRead, PermLogRead,
)

// RolePermissions is the single authority on what each role can do.
var RolePermissions = map[employee.Role][]Permission{
	employee.RoleEmployee:   employeePerms,
	employee.RoleSupervisor: supervisorPerms,
	employee.RoleAdmin:      adminPerms,
}

// HasPermission reports whether role grants perm.
func HasPermission(role employee.Role, perm Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

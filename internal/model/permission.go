package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionAssessmentsRead allows listing and viewing submissions.
	PermissionAssessmentsRead Permission = "assessments:read"

	// PermissionAssessmentsDelete allows permanently deleting a submission.
	PermissionAssessmentsDelete Permission = "assessments:delete"

	// PermissionReportsGenerate allows rendering PDF reports for stored submissions.
	PermissionReportsGenerate Permission = "reports:generate"

	// PermissionNotificationsTest allows sending a test mail.
	PermissionNotificationsTest Permission = "notifications:test"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionAssessmentsRead,
	PermissionAssessmentsDelete,
	PermissionReportsGenerate,
	PermissionNotificationsTest,
}

var rolePermissions = map[string][]Permission{
	RoleAdmin:  AllPermissions,
	RoleViewer: {PermissionAssessmentsRead, PermissionReportsGenerate},
}

// PermissionsForRole returns the permission codes granted to a role.
// Unknown roles get none.
func PermissionsForRole(role string) []string {
	perms := rolePermissions[role]
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

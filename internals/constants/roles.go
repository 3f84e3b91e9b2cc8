package constants

import "fmt"

// Role names (kolom users.user_role)
const (
	RolePlatformAdmin = "platform_admin"
	RoleSchoolAdmin   = "school_admin"
	RoleTeacher       = "teacher"
	RoleParent        = "parent"
)

// Template pesan error role
const (
	ErrOnlyPlatformAdminsCanAccess = "❌ Hanya platform admin yang boleh mengakses fitur %s."
	ErrOnlySchoolAdminsCanAccess   = "❌ Hanya school admin yang boleh mengakses fitur %s."
)

func RoleErrorPlatformAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyPlatformAdminsCanAccess, feature)
}

func RoleErrorSchoolAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlySchoolAdminsCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RolePlatformAdmin,
		RoleSchoolAdmin,
		RoleTeacher,
		RoleParent,
	}

	StaffRoles = []string{
		RolePlatformAdmin,
		RoleSchoolAdmin,
		RoleTeacher,
	}

	AdminRoles = []string{
		RolePlatformAdmin,
		RoleSchoolAdmin,
	}
)

// IsValidRole memeriksa role terdaftar di enum users.user_role
func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

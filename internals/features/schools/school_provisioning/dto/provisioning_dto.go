package dto

import (
	"github.com/google/uuid"

	schoolDTO "schoolku_backend/internals/features/schools/schools/dto"
	userDTO "schoolku_backend/internals/features/users/user/dto"
)

// =========================
// Admin assignment (union)
// =========================

const (
	AssignmentTypeNew      = "new"
	AssignmentTypeExisting = "existing"
)

type NewAdminData struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
}

// AdminAssignment adalah discriminated union: tepat satu cabang terisi
// sesuai Type. Validasi terjadi SEBELUM write eksternal manapun.
type AdminAssignment struct {
	Type           string        `json:"type"`
	NewUserData    *NewAdminData `json:"new_user_data,omitempty"`
	ExistingUserID *uuid.UUID    `json:"existing_user_id,omitempty"`
}

// =========================
// Request / Result
// =========================

type CreateSchoolWithAdminRequest struct {
	School          schoolDTO.SchoolCreateRequest `json:"school"`
	AdminAssignment AdminAssignment               `json:"admin_assignment"`
}

type ProvisioningResult struct {
	School schoolDTO.SchoolResponse `json:"school"`
	Admin  userDTO.UserResponse     `json:"admin"`
}

package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/users/user/model"
)

// =========================
// Response
// =========================

type UserResponse struct {
	UserID         uuid.UUID  `json:"user_id"`
	UserEmail      string     `json:"user_email"`
	UserFullName   string     `json:"user_full_name"`
	UserPhone      string     `json:"user_phone,omitempty"`
	UserRole       string     `json:"user_role"`
	UserSchoolID   *uuid.UUID `json:"user_school_id,omitempty"`
	UserIsApproved bool       `json:"user_is_approved"`
	UserCreatedAt  time.Time  `json:"user_created_at"`
	UserUpdatedAt  time.Time  `json:"user_updated_at"`
}

func FromModelUser(m *model.UserModel) UserResponse {
	return UserResponse{
		UserID:         m.UserID,
		UserEmail:      m.UserEmail,
		UserFullName:   m.UserFullName,
		UserPhone:      m.UserPhone,
		UserRole:       m.UserRole,
		UserSchoolID:   m.UserSchoolID,
		UserIsApproved: m.UserIsApproved,
		UserCreatedAt:  m.UserCreatedAt,
		UserUpdatedAt:  m.UserUpdatedAt,
	}
}

func FromModelUsers(ms []model.UserModel) []UserResponse {
	out := make([]UserResponse, 0, len(ms))
	for i := range ms {
		out = append(out, FromModelUser(&ms[i]))
	}
	return out
}

// =========================
// Request (partial update)
// =========================

// pakai pointer biar partial; role & school_id sengaja TIDAK di sini —
// perubahan itu hanya lewat alur provisioning
type UserUpdateRequest struct {
	UserFullName *string `json:"user_full_name,omitempty"`
	UserPhone    *string `json:"user_phone,omitempty"`
	UserApproved *bool   `json:"user_is_approved,omitempty"`
}

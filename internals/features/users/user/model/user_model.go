package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/constants"
)

// UserModel merepresentasikan tabel users di database.
// PK TIDAK pakai default gen_random_uuid(): user_id harus sama dengan id identity
// di provider auth — itu join key antara dua sistem eksternal.
type UserModel struct {
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`

	UserEmail    string `gorm:"column:user_email;size:255;unique;not null" json:"user_email" validate:"required,email"`
	UserFullName string `gorm:"column:user_full_name;size:100;not null" json:"user_full_name" validate:"required,min=3,max=100"`
	UserPhone    string `gorm:"column:user_phone;size:30" json:"user_phone"`

	UserRole     string     `gorm:"column:user_role;type:varchar(20);not null;default:'parent'" json:"user_role" validate:"required"`
	UserSchoolID *uuid.UUID `gorm:"column:user_school_id;type:uuid;index" json:"user_school_id,omitempty"`

	UserIsApproved bool `gorm:"column:user_is_approved;not null;default:false" json:"user_is_approved"`

	UserCreatedAt time.Time      `gorm:"column:user_created_at;autoCreateTime" json:"user_created_at"`
	UserUpdatedAt time.Time      `gorm:"column:user_updated_at;autoUpdateTime" json:"user_updated_at"`
	UserDeletedAt gorm.DeletedAt `gorm:"column:user_deleted_at;index" json:"user_deleted_at,omitempty"`
}

func (UserModel) TableName() string {
	return "users"
}

// SetDefaultValues memastikan nilai default sebelum validasi
func (u *UserModel) SetDefaultValues() {
	if u.UserRole == "" {
		u.UserRole = constants.RoleParent
	}
}

// IsEligibleAdminCandidate: user boleh dipromosikan jadi school_admin
// hanya jika belum admin dan belum terikat sekolah manapun.
func (u *UserModel) IsEligibleAdminCandidate() bool {
	return u.UserRole != constants.RoleSchoolAdmin && u.UserSchoolID == nil
}

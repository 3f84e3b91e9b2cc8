package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SchoolModel merepresentasikan tabel schools (tenant).
type SchoolModel struct {
	SchoolID uuid.UUID `gorm:"column:school_id;type:uuid;default:gen_random_uuid();primaryKey" json:"school_id"`

	SchoolName     string `gorm:"column:school_name;size:150;not null" json:"school_name" validate:"required,min=3,max=150"`
	SchoolAddress  string `gorm:"column:school_address;size:255" json:"school_address"`
	SchoolCity     string `gorm:"column:school_city;size:100" json:"school_city"`
	SchoolProvince string `gorm:"column:school_province;size:100" json:"school_province"`
	SchoolCountry  string `gorm:"column:school_country;size:100;not null;default:'Indonesia'" json:"school_country"`
	SchoolPhone    string `gorm:"column:school_phone;size:30" json:"school_phone"`
	SchoolEmail    string `gorm:"column:school_email;size:255" json:"school_email" validate:"omitempty,email"`

	SchoolMaxStudents *int `gorm:"column:school_max_students" json:"school_max_students,omitempty" validate:"omitempty,gt=0"`

	SchoolIsActive bool `gorm:"column:school_is_active;not null;default:true;index" json:"school_is_active"`

	// Diisi belakangan oleh orchestrator (admin belum tentu ada saat create).
	// Invariant setelah provisioning: menunjuk user dengan user_role='school_admin'
	// dan user_school_id = school_id ini.
	SchoolAdminUserID *uuid.UUID `gorm:"column:school_admin_user_id;type:uuid;index" json:"school_admin_user_id,omitempty"`

	SchoolCreatedAt time.Time      `gorm:"column:school_created_at;autoCreateTime" json:"school_created_at"`
	SchoolUpdatedAt time.Time      `gorm:"column:school_updated_at;autoUpdateTime" json:"school_updated_at"`
	SchoolDeletedAt gorm.DeletedAt `gorm:"column:school_deleted_at;index" json:"school_deleted_at,omitempty"`
}

func (SchoolModel) TableName() string {
	return "schools"
}

// SetDefaultValues memastikan nilai default sebelum insert
func (s *SchoolModel) SetDefaultValues() {
	if s.SchoolCountry == "" {
		s.SchoolCountry = "Indonesia"
	}
}

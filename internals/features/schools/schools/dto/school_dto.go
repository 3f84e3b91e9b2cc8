package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/schools/schools/model"
)

// =========================
// Request (Create)
// =========================

type SchoolCreateRequest struct {
	SchoolName        string `json:"school_name"`
	SchoolAddress     string `json:"school_address,omitempty"`
	SchoolCity        string `json:"school_city,omitempty"`
	SchoolProvince    string `json:"school_province,omitempty"`
	SchoolCountry     string `json:"school_country,omitempty"`
	SchoolPhone       string `json:"school_phone,omitempty"`
	SchoolEmail       string `json:"school_email,omitempty"`
	SchoolMaxStudents *int   `json:"school_max_students,omitempty"`
}

// DTO -> Model (untuk CREATE, admin_user_id selalu nil di tahap ini)
func (r *SchoolCreateRequest) ToModelCreate() *model.SchoolModel {
	if r == nil {
		return nil
	}
	m := &model.SchoolModel{
		SchoolName:        strings.TrimSpace(r.SchoolName),
		SchoolAddress:     strings.TrimSpace(r.SchoolAddress),
		SchoolCity:        strings.TrimSpace(r.SchoolCity),
		SchoolProvince:    strings.TrimSpace(r.SchoolProvince),
		SchoolCountry:     strings.TrimSpace(r.SchoolCountry),
		SchoolPhone:       strings.TrimSpace(r.SchoolPhone),
		SchoolEmail:       strings.TrimSpace(strings.ToLower(r.SchoolEmail)),
		SchoolMaxStudents: r.SchoolMaxStudents,
		SchoolIsActive:    true,
	}
	m.SetDefaultValues()
	return m
}

// =========================
// Request (Partial Update)
// =========================

// pakai pointer biar optional; admin_user_id sengaja tidak bisa di-update
// lewat sini (hanya alur provisioning/link yang boleh menyentuhnya)
type SchoolUpdateRequest struct {
	SchoolName        *string `json:"school_name,omitempty"`
	SchoolAddress     *string `json:"school_address,omitempty"`
	SchoolCity        *string `json:"school_city,omitempty"`
	SchoolProvince    *string `json:"school_province,omitempty"`
	SchoolCountry     *string `json:"school_country,omitempty"`
	SchoolPhone       *string `json:"school_phone,omitempty"`
	SchoolEmail       *string `json:"school_email,omitempty"`
	SchoolMaxStudents *int    `json:"school_max_students,omitempty"`
	SchoolIsActive    *bool   `json:"school_is_active,omitempty"`
}

// =========================
// Response
// =========================

type SchoolResponse struct {
	SchoolID          uuid.UUID  `json:"school_id"`
	SchoolName        string     `json:"school_name"`
	SchoolAddress     string     `json:"school_address,omitempty"`
	SchoolCity        string     `json:"school_city,omitempty"`
	SchoolProvince    string     `json:"school_province,omitempty"`
	SchoolCountry     string     `json:"school_country"`
	SchoolPhone       string     `json:"school_phone,omitempty"`
	SchoolEmail       string     `json:"school_email,omitempty"`
	SchoolMaxStudents *int       `json:"school_max_students,omitempty"`
	SchoolIsActive    bool       `json:"school_is_active"`
	SchoolAdminUserID *uuid.UUID `json:"school_admin_user_id,omitempty"`
	SchoolCreatedAt   time.Time  `json:"school_created_at"`
	SchoolUpdatedAt   time.Time  `json:"school_updated_at"`
}

func FromModelSchool(m *model.SchoolModel) SchoolResponse {
	return SchoolResponse{
		SchoolID:          m.SchoolID,
		SchoolName:        m.SchoolName,
		SchoolAddress:     m.SchoolAddress,
		SchoolCity:        m.SchoolCity,
		SchoolProvince:    m.SchoolProvince,
		SchoolCountry:     m.SchoolCountry,
		SchoolPhone:       m.SchoolPhone,
		SchoolEmail:       m.SchoolEmail,
		SchoolMaxStudents: m.SchoolMaxStudents,
		SchoolIsActive:    m.SchoolIsActive,
		SchoolAdminUserID: m.SchoolAdminUserID,
		SchoolCreatedAt:   m.SchoolCreatedAt,
		SchoolUpdatedAt:   m.SchoolUpdatedAt,
	}
}

func FromModelSchools(ms []model.SchoolModel) []SchoolResponse {
	out := make([]SchoolResponse, 0, len(ms))
	for i := range ms {
		out = append(out, FromModelSchool(&ms[i]))
	}
	return out
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/constants"
	auditModel "schoolku_backend/internals/features/schools/school_provisioning/model"
	schoolModel "schoolku_backend/internals/features/schools/schools/model"
	userModel "schoolku_backend/internals/features/users/user/model"
)

// TenantStore membungkus semua akses store relasional yang dibutuhkan
// orchestrator. Interface supaya service bisa dites dengan fake.
type TenantStore interface {
	CreateSchool(ctx context.Context, school *schoolModel.SchoolModel) error
	// DeleteSchool idempotent; hanya dipakai untuk kompensasi.
	DeleteSchool(ctx context.Context, schoolID uuid.UUID) error
	FindSchoolByID(ctx context.Context, schoolID uuid.UUID) (*schoolModel.SchoolModel, error)

	CreateProfile(ctx context.Context, user *userModel.UserModel) error
	FindEligibleAdminCandidate(ctx context.Context, userID uuid.UUID) (*userModel.UserModel, error)
	// PromoteToSchoolAdmin: update bersyarat — false berarti kandidat sudah
	// tidak eligible lagi (kalah race), tanpa error.
	PromoteToSchoolAdmin(ctx context.Context, userID, schoolID uuid.UUID) (bool, error)

	LinkAdminToSchool(ctx context.Context, schoolID, userID uuid.UUID) error
	// FindPendingLink mencari admin untuk state link_pending:
	// user_school_id = schoolID padahal schools.school_admin_user_id masih NULL.
	FindPendingLink(ctx context.Context, schoolID uuid.UUID) (*userModel.UserModel, error)

	RecordAudit(ctx context.Context, audit *auditModel.SchoolProvisioningAuditModel) error
	// FindUnresolvedOrphans: audit orphaned_identity yang belum dibereskan,
	// work queue untuk sweep rekonsiliasi.
	FindUnresolvedOrphans(ctx context.Context, limit int) ([]auditModel.SchoolProvisioningAuditModel, error)
	MarkOrphanResolved(ctx context.Context, auditID uuid.UUID) error
}

/* ====================== GORM IMPLEMENTATION ====================== */

type gormTenantStore struct {
	db *gorm.DB
}

func NewTenantStore(db *gorm.DB) TenantStore {
	return &gormTenantStore{db: db}
}

func (s *gormTenantStore) CreateSchool(ctx context.Context, school *schoolModel.SchoolModel) error {
	return s.db.WithContext(ctx).Create(school).Error
}

// DeleteSchool: hard delete — record baru lahir di provisioning yang gagal,
// belum pernah terlihat siapa-siapa, jadi tidak perlu jejak soft delete.
// Unscoped supaya idempotent terhadap percobaan kompensasi ulang.
func (s *gormTenantStore) DeleteSchool(ctx context.Context, schoolID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Unscoped().
		Delete(&schoolModel.SchoolModel{}, "school_id = ?", schoolID).Error
}

func (s *gormTenantStore) FindSchoolByID(ctx context.Context, schoolID uuid.UUID) (*schoolModel.SchoolModel, error) {
	var school schoolModel.SchoolModel
	if err := s.db.WithContext(ctx).
		First(&school, "school_id = ?", schoolID).Error; err != nil {
		return nil, err
	}
	return &school, nil
}

func (s *gormTenantStore) CreateProfile(ctx context.Context, user *userModel.UserModel) error {
	return s.db.WithContext(ctx).Create(user).Error
}

// FindEligibleAdminCandidate: nil tanpa error kalau user ada tapi tidak
// eligible — biar orchestrator yang memutuskan klasifikasinya.
func (s *gormTenantStore) FindEligibleAdminCandidate(ctx context.Context, userID uuid.UUID) (*userModel.UserModel, error) {
	var user userModel.UserModel
	err := s.db.WithContext(ctx).
		First(&user, "user_id = ?", userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if !user.IsEligibleAdminCandidate() {
		return nil, nil
	}
	return &user, nil
}

// PromoteToSchoolAdmin: WHERE mengulang syarat eligibility supaya dua
// provisioning yang rebutan kandidat sama ter-serialize di store —
// yang kalah dapat RowsAffected 0, bukan double-assign.
// Asumsi: Postgres primary tunggal, update-then-read langsung konsisten.
func (s *gormTenantStore) PromoteToSchoolAdmin(ctx context.Context, userID, schoolID uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&userModel.UserModel{}).
		Where("user_id = ? AND user_school_id IS NULL AND user_role <> ?",
			userID, constants.RoleSchoolAdmin).
		Updates(map[string]any{
			"user_role":        constants.RoleSchoolAdmin,
			"user_school_id":   schoolID,
			"user_is_approved": true,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *gormTenantStore) LinkAdminToSchool(ctx context.Context, schoolID, userID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&schoolModel.SchoolModel{}).
		Where("school_id = ?", schoolID).
		Update("school_admin_user_id", userID).Error
}

func (s *gormTenantStore) FindPendingLink(ctx context.Context, schoolID uuid.UUID) (*userModel.UserModel, error) {
	var user userModel.UserModel
	err := s.db.WithContext(ctx).
		Where("user_school_id = ? AND user_role = ?", schoolID, constants.RoleSchoolAdmin).
		First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormTenantStore) RecordAudit(ctx context.Context, audit *auditModel.SchoolProvisioningAuditModel) error {
	return s.db.WithContext(ctx).Create(audit).Error
}

func (s *gormTenantStore) FindUnresolvedOrphans(ctx context.Context, limit int) ([]auditModel.SchoolProvisioningAuditModel, error) {
	var orphans []auditModel.SchoolProvisioningAuditModel
	err := s.db.WithContext(ctx).
		Where("audit_final_state = ? AND audit_resolved_at IS NULL AND audit_orphan_identity_id IS NOT NULL",
			auditModel.AuditStateOrphanedIdentity).
		Limit(limit).
		Find(&orphans).Error
	if err != nil {
		return nil, err
	}
	return orphans, nil
}

func (s *gormTenantStore) MarkOrphanResolved(ctx context.Context, auditID uuid.UUID) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).
		Model(&auditModel.SchoolProvisioningAuditModel{}).
		Where("audit_id = ?", auditID).
		Update("audit_resolved_at", now).Error
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Final state yang mungkin untuk satu percobaan provisioning yang sudah
// lolos validasi (penolakan validasi tidak pernah menyentuh store, jadi
// tidak punya baris audit). Sengaja eksplisit (bukan diinferensi dari
// role/school_id) supaya state machine kelihatan di data, terutama
// link_pending dan orphaned_identity.
const (
	AuditStateRolledBack       = "rolled_back"       // gagal di tengah, kompensasi penuh sukses
	AuditStateOrphanedIdentity = "orphaned_identity" // kompensasi identity gagal, butuh sweep
	AuditStateLinkPending      = "link_pending"      // dua entitas valid, tinggal cross-link
	AuditStateLinked           = "linked"            // sukses penuh
)

// SchoolProvisioningAuditModel mencatat setiap percobaan provisioning:
// jejak step, state akhir, dan identity yatim (kalau ada) untuk sweep
// rekonsiliasi.
type SchoolProvisioningAuditModel struct {
	AuditID uuid.UUID `gorm:"column:audit_id;type:uuid;default:gen_random_uuid();primaryKey" json:"audit_id"`

	AuditSchoolID    *uuid.UUID `gorm:"column:audit_school_id;type:uuid;index" json:"audit_school_id,omitempty"`
	AuditAdminUserID *uuid.UUID `gorm:"column:audit_admin_user_id;type:uuid" json:"audit_admin_user_id,omitempty"`

	AuditFinalState string  `gorm:"column:audit_final_state;type:varchar(30);not null;index" json:"audit_final_state"`
	AuditErrorKind  *string `gorm:"column:audit_error_kind;type:varchar(40)" json:"audit_error_kind,omitempty"`

	AuditOrphanIdentityID *uuid.UUID `gorm:"column:audit_orphan_identity_id;type:uuid" json:"audit_orphan_identity_id,omitempty"`

	// Jejak step per percobaan, JSONB: [{"step":"school_created","ok":true,...}]
	AuditStepTrace datatypes.JSON `gorm:"column:audit_step_trace;type:jsonb" json:"audit_step_trace,omitempty"`

	// Diisi sweep rekonsiliasi setelah identity yatim berhasil dihapus
	AuditResolvedAt *time.Time `gorm:"column:audit_resolved_at" json:"audit_resolved_at,omitempty"`

	AuditCreatedAt time.Time `gorm:"column:audit_created_at;autoCreateTime" json:"audit_created_at"`
}

func (SchoolProvisioningAuditModel) TableName() string {
	return "school_provisioning_audit"
}

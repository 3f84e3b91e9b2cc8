package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bytedance/sonic"

	"schoolku_backend/internals/constants"
	"schoolku_backend/internals/features/schools/school_provisioning/dto"
	auditModel "schoolku_backend/internals/features/schools/school_provisioning/model"
	"schoolku_backend/internals/features/schools/school_provisioning/repository"
	schoolDTO "schoolku_backend/internals/features/schools/schools/dto"
	schoolModel "schoolku_backend/internals/features/schools/schools/model"
	"schoolku_backend/internals/features/users/auth/gateway"
	userDTO "schoolku_backend/internals/features/users/user/dto"
	userModel "schoolku_backend/internals/features/users/user/model"
)

// Validator instance (cuma dipakai untuk cek bentuk email)
var validate = validator.New()

/* ==========================
   State machine

   Alur provisioning dimodelkan eksplisit:

     school_created ──(resolve admin)──► admin_resolved ──(link)──► linked

   Kompensasi per edge:
     - gagal resolve admin      → DeleteSchool
     - gagal create profile     → DeleteIdentity (best-effort) + DeleteSchool
     - gagal link (step akhir)  → TIDAK di-rollback: dua entitas sudah valid
       sendiri-sendiri, asosiasinya saja yang belum — state recoverable,
       bukan korup. Retry cukup mengulang link.
========================== */

const (
	stepSchoolCreated   = "school_created"
	stepIdentityCreated = "identity_created"
	stepAdminResolved   = "admin_resolved"
	stepLinked          = "linked"
)

type stepEvent struct {
	Step  string    `json:"step"`
	OK    bool      `json:"ok"`
	At    time.Time `json:"at"`
	Error string    `json:"error,omitempty"`
}

type ProvisioningService struct {
	store    repository.TenantStore
	identity gateway.IdentityGateway
}

func NewProvisioningService(store repository.TenantStore, identity gateway.IdentityGateway) *ProvisioningService {
	return &ProvisioningService{store: store, identity: identity}
}

/* ==========================
   CREATE SCHOOL + ADMIN
========================== */

// CreateSchoolWithAdmin membuat sekolah plus admin pertamanya sebagai satu
// operasi logis. Store dan provider identity tidak punya transaksi bersama,
// jadi konsistensi dijaga lewat protokol kompensasi, bukan lock.
func (s *ProvisioningService) CreateSchoolWithAdmin(ctx context.Context, req dto.CreateSchoolWithAdminRequest) (*dto.ProvisioningResult, error) {
	// ===== Gerbang validasi: nol call eksternal sebelum lolos =====
	// Termasuk audit — penolakan validasi tidak menyentuh store sama sekali.
	if ve := validateRequest(req); ve != nil {
		return nil, ve
	}

	trace := make([]stepEvent, 0, 4)

	// ===== Step 1: buat sekolah (active=true, admin_id=null) =====
	school := req.School.ToModelCreate()
	if err := s.store.CreateSchool(ctx, school); err != nil {
		// belum ada yang perlu dikompensasi
		return nil, &TenantCreateError{Err: err}
	}
	trace = append(trace, stepEvent{Step: stepSchoolCreated, OK: true, At: time.Now().UTC()})

	// ===== Step 2: resolve admin sesuai cabang assignment =====
	var admin *userModel.UserModel
	var err error
	switch req.AdminAssignment.Type {
	case dto.AssignmentTypeExisting:
		admin, trace, err = s.resolveExistingAdmin(ctx, school, *req.AdminAssignment.ExistingUserID, trace)
	case dto.AssignmentTypeNew:
		admin, trace, err = s.resolveNewAdmin(ctx, school, *req.AdminAssignment.NewUserData, trace)
	}
	if err != nil {
		return nil, err
	}
	trace = append(trace, stepEvent{Step: stepAdminResolved, OK: true, At: time.Now().UTC()})

	// ===== Step 3: cross-link (sengaja terakhir, sengaja tidak di-rollback) =====
	if err := s.store.LinkAdminToSchool(ctx, school.SchoolID, admin.UserID); err != nil {
		trace = append(trace, stepEvent{Step: stepLinked, OK: false, At: time.Now().UTC(), Error: err.Error()})
		s.recordAudit(ctx, &school.SchoolID, &admin.UserID, auditModel.AuditStateLinkPending, "LinkPendingError", nil, trace)
		return nil, &LinkPendingError{SchoolID: school.SchoolID, AdminUserID: admin.UserID, Err: err}
	}
	trace = append(trace, stepEvent{Step: stepLinked, OK: true, At: time.Now().UTC()})
	school.SchoolAdminUserID = &admin.UserID

	s.recordAudit(ctx, &school.SchoolID, &admin.UserID, auditModel.AuditStateLinked, "", nil, trace)

	return &dto.ProvisioningResult{
		School: schoolDTO.FromModelSchool(school),
		Admin:  userDTO.FromModelUser(admin),
	}, nil
}

// resolveExistingAdmin: cabang "existing" — promosi user lama.
func (s *ProvisioningService) resolveExistingAdmin(
	ctx context.Context,
	school *schoolModel.SchoolModel,
	candidateID uuid.UUID,
	trace []stepEvent,
) (*userModel.UserModel, []stepEvent, error) {
	candidate, err := s.store.FindEligibleAdminCandidate(ctx, candidateID)
	if err != nil {
		compensated := s.compensateSchool(ctx, school.SchoolID)
		s.recordAudit(ctx, &school.SchoolID, nil, auditModel.AuditStateRolledBack, "AdminLinkError", nil, trace)
		return nil, trace, &AdminLinkError{Err: err, Compensated: compensated}
	}
	if candidate == nil {
		// precondition yang ketahuan terlambat: kandidat hilang / sudah admin /
		// sudah terikat sekolah lain
		compensated := s.compensateSchool(ctx, school.SchoolID)
		s.recordAudit(ctx, &school.SchoolID, nil, auditModel.AuditStateRolledBack, "IneligibleAdminError", nil, trace)
		return nil, trace, &IneligibleAdminError{UserID: candidateID, Compensated: compensated}
	}

	promoted, err := s.store.PromoteToSchoolAdmin(ctx, candidate.UserID, school.SchoolID)
	if err != nil {
		compensated := s.compensateSchool(ctx, school.SchoolID)
		s.recordAudit(ctx, &school.SchoolID, nil, auditModel.AuditStateRolledBack, "AdminLinkError", nil, trace)
		return nil, trace, &AdminLinkError{Err: err, Compensated: compensated}
	}
	if !promoted {
		// kalah race: provisioning lain keburu mengambil kandidat ini
		compensated := s.compensateSchool(ctx, school.SchoolID)
		s.recordAudit(ctx, &school.SchoolID, nil, auditModel.AuditStateRolledBack, "IneligibleAdminError", nil, trace)
		return nil, trace, &IneligibleAdminError{UserID: candidateID, Compensated: compensated}
	}

	candidate.UserRole = constants.RoleSchoolAdmin
	candidate.UserSchoolID = &school.SchoolID
	candidate.UserIsApproved = true
	return candidate, trace, nil
}

// resolveNewAdmin: cabang "new" — identity baru + profile baru.
func (s *ProvisioningService) resolveNewAdmin(
	ctx context.Context,
	school *schoolModel.SchoolModel,
	data dto.NewAdminData,
	trace []stepEvent,
) (*userModel.UserModel, []stepEvent, error) {
	credential, err := GenerateTemporaryCredential()
	if err != nil {
		compensated := s.compensateSchool(ctx, school.SchoolID)
		s.recordAudit(ctx, &school.SchoolID, nil, auditModel.AuditStateRolledBack, "IdentityCreateError", nil, trace)
		return nil, trace, &IdentityCreateError{Err: err, Compensated: compensated}
	}

	// Sign-up mengganti session aktif ke identity baru — snapshot session
	// operator dan restore di semua jalur keluar.
	var identityID uuid.UUID
	err = WithPreservedSession(ctx, s.identity, func() error {
		var cerr error
		identityID, cerr = s.identity.CreateIdentity(ctx, strings.ToLower(strings.TrimSpace(data.Email)), credential)
		return cerr
	})
	if err != nil {
		trace = append(trace, stepEvent{Step: stepIdentityCreated, OK: false, At: time.Now().UTC(), Error: err.Error()})
		compensated := s.compensateSchool(ctx, school.SchoolID)
		s.recordAudit(ctx, &school.SchoolID, nil, auditModel.AuditStateRolledBack, "IdentityCreateError", nil, trace)
		return nil, trace, &IdentityCreateError{Err: err, Compensated: compensated}
	}
	trace = append(trace, stepEvent{Step: stepIdentityCreated, OK: true, At: time.Now().UTC()})

	// Profile di-key pakai id identity — join key dua sistem eksternal
	profile := &userModel.UserModel{
		UserID:         identityID,
		UserEmail:      strings.ToLower(strings.TrimSpace(data.Email)),
		UserFullName:   strings.TrimSpace(data.FullName),
		UserPhone:      strings.TrimSpace(data.Phone),
		UserRole:       constants.RoleSchoolAdmin,
		UserSchoolID:   &school.SchoolID,
		UserIsApproved: true,
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		// kompensasi dua arah: identity (best-effort) + sekolah
		delErr := s.identity.DeleteIdentity(ctx, identityID)
		compensated := s.compensateSchool(ctx, school.SchoolID)

		if delErr != nil {
			// satu-satunya kasus rollback penuh tidak terjamin: identity
			// yatim harus DILAPORKAN, bukan di-retry diam-diam
			s.recordAudit(ctx, &school.SchoolID, nil, auditModel.AuditStateOrphanedIdentity,
				"PartialProvisioningError", &identityID, trace)
			return nil, trace, &PartialProvisioningError{
				OrphanIdentityID: identityID,
				SchoolRemoved:    compensated,
				Err:              err,
			}
		}

		s.recordAudit(ctx, &school.SchoolID, nil, auditModel.AuditStateRolledBack, "IdentityCreateError", nil, trace)
		return nil, trace, &IdentityCreateError{Err: err, Compensated: compensated}
	}

	return profile, trace, nil
}

/* ==========================
   RETRY LINK (step 3 saja)
========================== */

// RetryAdminLink mengulang HANYA step cross-link untuk sekolah di state
// link_pending (school_admin_user_id masih NULL padahal admin-nya sudah
// menunjuk sekolah ini). Idempotent: kalau sudah ter-link, langsung sukses
// tanpa membuat duplikat apapun.
func (s *ProvisioningService) RetryAdminLink(ctx context.Context, schoolID uuid.UUID) (*dto.ProvisioningResult, error) {
	school, err := s.store.FindSchoolByID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Fields: map[string]string{"school_id": "Sekolah tidak ditemukan"}}
		}
		// store lagi bermasalah, bukan salah input — tetap retryable
		return nil, &LinkPendingError{SchoolID: schoolID, Err: err}
	}

	// deteksi state: admin pending = user dengan user_school_id = schoolID
	admin, err := s.store.FindPendingLink(ctx, schoolID)
	if err != nil {
		return nil, &LinkPendingError{SchoolID: schoolID, Err: err}
	}
	if admin == nil {
		return nil, &ValidationError{Fields: map[string]string{"school_id": "Tidak ada admin yang menunggu link untuk sekolah ini"}}
	}

	if school.SchoolAdminUserID != nil && *school.SchoolAdminUserID == admin.UserID {
		// sudah ter-link oleh percobaan sebelumnya
		return &dto.ProvisioningResult{
			School: schoolDTO.FromModelSchool(school),
			Admin:  userDTO.FromModelUser(admin),
		}, nil
	}

	if err := s.store.LinkAdminToSchool(ctx, schoolID, admin.UserID); err != nil {
		return nil, &LinkPendingError{SchoolID: schoolID, AdminUserID: admin.UserID, Err: err}
	}
	school.SchoolAdminUserID = &admin.UserID

	s.recordAudit(ctx, &schoolID, &admin.UserID, auditModel.AuditStateLinked, "", nil,
		[]stepEvent{{Step: stepLinked, OK: true, At: time.Now().UTC()}})

	return &dto.ProvisioningResult{
		School: schoolDTO.FromModelSchool(school),
		Admin:  userDTO.FromModelUser(admin),
	}, nil
}

/* ==========================
   Kompensasi & audit
========================== */

// compensateSchool menghapus balik sekolah dari step 1; DeleteSchool
// idempotent jadi aman dipanggil ulang.
func (s *ProvisioningService) compensateSchool(ctx context.Context, schoolID uuid.UUID) bool {
	if err := s.store.DeleteSchool(ctx, schoolID); err != nil {
		log.Printf("[ERROR] kompensasi hapus sekolah %s gagal: %v", schoolID, err)
		return false
	}
	return true
}

// recordAudit best-effort: kegagalan audit tidak boleh menggagalkan
// (atau menyamarkan) hasil provisioning itu sendiri.
func (s *ProvisioningService) recordAudit(
	ctx context.Context,
	schoolID, adminID *uuid.UUID,
	finalState, errorKind string,
	orphanID *uuid.UUID,
	trace []stepEvent,
) {
	audit := &auditModel.SchoolProvisioningAuditModel{
		AuditSchoolID:         schoolID,
		AuditAdminUserID:      adminID,
		AuditFinalState:       finalState,
		AuditOrphanIdentityID: orphanID,
	}
	if errorKind != "" {
		audit.AuditErrorKind = &errorKind
	}
	if len(trace) > 0 {
		if raw, err := sonic.Marshal(trace); err == nil {
			audit.AuditStepTrace = datatypes.JSON(raw)
		}
	}
	if err := s.store.RecordAudit(ctx, audit); err != nil {
		log.Printf("[WARN] gagal mencatat audit provisioning: %v", err)
	}
}

/* ==========================
   Validasi input
========================== */

func validateRequest(req dto.CreateSchoolWithAdminRequest) *ValidationError {
	fields := map[string]string{}

	if strings.TrimSpace(req.School.SchoolName) == "" {
		fields["school.school_name"] = "Nama sekolah wajib diisi."
	}
	if e := strings.TrimSpace(req.School.SchoolEmail); e != "" {
		if err := validate.Var(e, "email"); err != nil {
			fields["school.school_email"] = "Format email tidak valid."
		}
	}
	if req.School.SchoolMaxStudents != nil && *req.School.SchoolMaxStudents <= 0 {
		fields["school.school_max_students"] = "Kapasitas siswa harus lebih dari 0."
	}

	switch req.AdminAssignment.Type {
	case dto.AssignmentTypeExisting:
		if req.AdminAssignment.ExistingUserID == nil || *req.AdminAssignment.ExistingUserID == uuid.Nil {
			fields["admin_assignment.existing_user_id"] = "ID user wajib diisi untuk assignment existing."
		}
	case dto.AssignmentTypeNew:
		data := req.AdminAssignment.NewUserData
		if data == nil {
			fields["admin_assignment.new_user_data"] = "Data admin baru wajib diisi."
			break
		}
		if strings.TrimSpace(data.Email) == "" {
			fields["admin_assignment.new_user_data.email"] = "Email admin wajib diisi."
		} else if err := validate.Var(strings.TrimSpace(data.Email), "email"); err != nil {
			fields["admin_assignment.new_user_data.email"] = "Format email tidak valid."
		}
		if strings.TrimSpace(data.FullName) == "" {
			fields["admin_assignment.new_user_data.full_name"] = "Nama lengkap admin wajib diisi."
		}
	default:
		fields["admin_assignment.type"] = "Tipe assignment harus 'new' atau 'existing'."
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// IsRetryablyPending: helper untuk caller yang mau menawarkan tombol retry
func IsRetryablyPending(err error) bool {
	var lp *LinkPendingError
	return errors.As(err, &lp)
}

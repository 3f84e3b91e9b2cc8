package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"schoolku_backend/internals/constants"
	"schoolku_backend/internals/features/schools/school_provisioning/dto"
	auditModel "schoolku_backend/internals/features/schools/school_provisioning/model"
	schoolDTO "schoolku_backend/internals/features/schools/schools/dto"
	schoolModel "schoolku_backend/internals/features/schools/schools/model"
	"schoolku_backend/internals/features/users/auth/gateway"
	userModel "schoolku_backend/internals/features/users/user/model"
)

/* ====================== FAKES ====================== */

type fakeStore struct {
	createSchoolCalls  int
	deletedSchoolIDs   []uuid.UUID
	createdProfiles    []*userModel.UserModel
	promoteCalls       int
	linkedPairs        [][2]uuid.UUID
	audits             []*auditModel.SchoolProvisioningAuditModel
	schools            map[uuid.UUID]*schoolModel.SchoolModel
	candidate          *userModel.UserModel
	pendingAdmin       *userModel.UserModel
	unresolvedOrphans  []auditModel.SchoolProvisioningAuditModel
	resolvedAuditIDs   []uuid.UUID
	createSchoolErr    error
	candidateErr       error
	promoteErr         error
	promoteOK          bool
	createProfileErr   error
	linkErr            error
	findPendingLinkErr error
	findSchoolErr      error
	findOrphansErr     error
	markResolvedErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		promoteOK: true,
		schools:   map[uuid.UUID]*schoolModel.SchoolModel{},
	}
}

func (f *fakeStore) CreateSchool(_ context.Context, school *schoolModel.SchoolModel) error {
	f.createSchoolCalls++
	if f.createSchoolErr != nil {
		return f.createSchoolErr
	}
	if school.SchoolID == uuid.Nil {
		school.SchoolID = uuid.New()
	}
	f.schools[school.SchoolID] = school
	return nil
}

func (f *fakeStore) DeleteSchool(_ context.Context, schoolID uuid.UUID) error {
	f.deletedSchoolIDs = append(f.deletedSchoolIDs, schoolID)
	delete(f.schools, schoolID)
	return nil
}

func (f *fakeStore) FindSchoolByID(_ context.Context, schoolID uuid.UUID) (*schoolModel.SchoolModel, error) {
	if f.findSchoolErr != nil {
		return nil, f.findSchoolErr
	}
	s, ok := f.schools[schoolID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (f *fakeStore) CreateProfile(_ context.Context, user *userModel.UserModel) error {
	if f.createProfileErr != nil {
		return f.createProfileErr
	}
	f.createdProfiles = append(f.createdProfiles, user)
	return nil
}

func (f *fakeStore) FindEligibleAdminCandidate(_ context.Context, _ uuid.UUID) (*userModel.UserModel, error) {
	if f.candidateErr != nil {
		return nil, f.candidateErr
	}
	return f.candidate, nil
}

func (f *fakeStore) PromoteToSchoolAdmin(_ context.Context, _, _ uuid.UUID) (bool, error) {
	f.promoteCalls++
	if f.promoteErr != nil {
		return false, f.promoteErr
	}
	return f.promoteOK, nil
}

func (f *fakeStore) LinkAdminToSchool(_ context.Context, schoolID, userID uuid.UUID) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	f.linkedPairs = append(f.linkedPairs, [2]uuid.UUID{schoolID, userID})
	if s, ok := f.schools[schoolID]; ok {
		uid := userID
		s.SchoolAdminUserID = &uid
	}
	return nil
}

func (f *fakeStore) FindPendingLink(_ context.Context, _ uuid.UUID) (*userModel.UserModel, error) {
	if f.findPendingLinkErr != nil {
		return nil, f.findPendingLinkErr
	}
	return f.pendingAdmin, nil
}

func (f *fakeStore) RecordAudit(_ context.Context, audit *auditModel.SchoolProvisioningAuditModel) error {
	f.audits = append(f.audits, audit)
	return nil
}

func (f *fakeStore) FindUnresolvedOrphans(_ context.Context, limit int) ([]auditModel.SchoolProvisioningAuditModel, error) {
	if f.findOrphansErr != nil {
		return nil, f.findOrphansErr
	}
	if len(f.unresolvedOrphans) > limit {
		return f.unresolvedOrphans[:limit], nil
	}
	return f.unresolvedOrphans, nil
}

func (f *fakeStore) MarkOrphanResolved(_ context.Context, auditID uuid.UUID) error {
	if f.markResolvedErr != nil {
		return f.markResolvedErr
	}
	f.resolvedAuditIDs = append(f.resolvedAuditIDs, auditID)
	return nil
}

func (f *fakeStore) lastAuditState(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.audits)
	return f.audits[len(f.audits)-1].AuditFinalState
}

type fakeGateway struct {
	session        *gateway.Session
	createdIDs     []uuid.UUID
	deletedIDs     []uuid.UUID
	restoredWith   []*gateway.Session
	createErr      error
	deleteErr      error
	restoreErr     error
	sessionOnError bool // session tetap berubah walau CreateIdentity error
}

func (f *fakeGateway) CreateIdentity(_ context.Context, _, _ string) (uuid.UUID, error) {
	if f.createErr != nil {
		if f.sessionOnError {
			f.session = &gateway.Session{AccessToken: "stray"}
		}
		return uuid.Nil, f.createErr
	}
	id := uuid.New()
	f.createdIDs = append(f.createdIDs, id)
	// sign-up self-service mengganti session aktif ke identity baru
	f.session = &gateway.Session{AccessToken: "new-admin-token"}
	return id, nil
}

func (f *fakeGateway) DeleteIdentity(_ context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeGateway) CurrentSession() *gateway.Session { return f.session }

func (f *fakeGateway) RestoreSession(_ context.Context, s *gateway.Session) error {
	f.restoredWith = append(f.restoredWith, s)
	if f.restoreErr != nil {
		return f.restoreErr
	}
	f.session = s
	return nil
}

/* ====================== HELPERS ====================== */

func validNewAdminRequest() dto.CreateSchoolWithAdminRequest {
	return dto.CreateSchoolWithAdminRequest{
		School: schoolDTO.SchoolCreateRequest{
			SchoolName:  "SD Harapan Bangsa",
			SchoolCity:  "Bandung",
			SchoolEmail: "info@harapanbangsa.sch.id",
		},
		AdminAssignment: dto.AdminAssignment{
			Type: dto.AssignmentTypeNew,
			NewUserData: &dto.NewAdminData{
				Email:    "kepala@harapanbangsa.sch.id",
				FullName: "Budi Santoso",
			},
		},
	}
}

func validExistingAdminRequest(userID uuid.UUID) dto.CreateSchoolWithAdminRequest {
	req := validNewAdminRequest()
	req.AdminAssignment = dto.AdminAssignment{
		Type:           dto.AssignmentTypeExisting,
		ExistingUserID: &userID,
	}
	return req
}

func eligibleCandidate(id uuid.UUID) *userModel.UserModel {
	return &userModel.UserModel{
		UserID:       id,
		UserEmail:    "guru@example.com",
		UserFullName: "Siti Aminah",
		UserRole:     constants.RoleTeacher,
	}
}

/* ====================== VALIDATION GATE ====================== */

func TestCreateSchoolWithAdmin_ValidationGate_NoExternalCalls(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{}
	svc := NewProvisioningService(store, gw)

	req := dto.CreateSchoolWithAdminRequest{
		School: schoolDTO.SchoolCreateRequest{SchoolEmail: "bukan-email"},
		AdminAssignment: dto.AdminAssignment{
			Type:        dto.AssignmentTypeNew,
			NewUserData: &dto.NewAdminData{Email: "juga-bukan-email"},
		},
	}

	result, err := svc.CreateSchoolWithAdmin(context.Background(), req)
	require.Nil(t, result)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "school.school_name")
	assert.Contains(t, ve.Fields, "school.school_email")
	assert.Contains(t, ve.Fields, "admin_assignment.new_user_data.email")
	assert.Contains(t, ve.Fields, "admin_assignment.new_user_data.full_name")

	// gerbang validasi: NOL call eksternal, termasuk audit
	assert.Zero(t, store.createSchoolCalls)
	assert.Empty(t, gw.createdIDs)
	assert.Empty(t, store.audits)
}

func TestCreateSchoolWithAdmin_ValidationGate_BranchFields(t *testing.T) {
	store := newFakeStore()
	svc := NewProvisioningService(store, &fakeGateway{})

	cases := []struct {
		name       string
		assignment dto.AdminAssignment
		wantField  string
	}{
		{
			name:       "tipe tidak dikenal",
			assignment: dto.AdminAssignment{Type: "promote"},
			wantField:  "admin_assignment.type",
		},
		{
			name:       "existing tanpa user id",
			assignment: dto.AdminAssignment{Type: dto.AssignmentTypeExisting},
			wantField:  "admin_assignment.existing_user_id",
		},
		{
			name:       "new tanpa data",
			assignment: dto.AdminAssignment{Type: dto.AssignmentTypeNew},
			wantField:  "admin_assignment.new_user_data",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validNewAdminRequest()
			req.AdminAssignment = tc.assignment

			_, err := svc.CreateSchoolWithAdmin(context.Background(), req)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tc.wantField)
		})
	}
}

/* ====================== HAPPY PATHS ====================== */

func TestCreateSchoolWithAdmin_NewAdmin_Success(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{session: &gateway.Session{AccessToken: "operator-token"}}
	svc := NewProvisioningService(store, gw)

	result, err := svc.CreateSchoolWithAdmin(context.Background(), validNewAdminRequest())
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Len(t, gw.createdIDs, 1)
	identityID := gw.createdIDs[0]

	// profil di-key pakai id dari identity provider
	require.Len(t, store.createdProfiles, 1)
	profile := store.createdProfiles[0]
	assert.Equal(t, identityID, profile.UserID)
	assert.Equal(t, constants.RoleSchoolAdmin, profile.UserRole)
	assert.Equal(t, "kepala@harapanbangsa.sch.id", profile.UserEmail)
	assert.True(t, profile.UserIsApproved)

	require.Len(t, store.linkedPairs, 1)
	assert.Equal(t, result.School.SchoolID, store.linkedPairs[0][0])
	assert.Equal(t, identityID, store.linkedPairs[0][1])

	require.NotNil(t, result.School.SchoolAdminUserID)
	assert.Equal(t, identityID, *result.School.SchoolAdminUserID)
	assert.Equal(t, identityID, result.Admin.UserID)

	// session operator pulih setelah sign-up identity baru
	require.NotNil(t, gw.session)
	assert.Equal(t, "operator-token", gw.session.AccessToken)

	assert.Empty(t, store.deletedSchoolIDs)
	assert.Equal(t, auditModel.AuditStateLinked, store.lastAuditState(t))
}

func TestCreateSchoolWithAdmin_ExistingAdmin_Success(t *testing.T) {
	store := newFakeStore()
	candidateID := uuid.New()
	store.candidate = eligibleCandidate(candidateID)
	gw := &fakeGateway{}
	svc := NewProvisioningService(store, gw)

	result, err := svc.CreateSchoolWithAdmin(context.Background(), validExistingAdminRequest(candidateID))
	require.NoError(t, err)

	assert.Equal(t, 1, store.promoteCalls)
	assert.Equal(t, candidateID, result.Admin.UserID)
	assert.Equal(t, constants.RoleSchoolAdmin, result.Admin.UserRole)
	require.NotNil(t, result.Admin.UserSchoolID)
	assert.Equal(t, result.School.SchoolID, *result.Admin.UserSchoolID)

	// cabang existing tidak boleh menyentuh provider identity
	assert.Empty(t, gw.createdIDs)
	assert.Empty(t, gw.deletedIDs)
}

/* ====================== KOMPENSASI ====================== */

func TestCreateSchoolWithAdmin_SchoolCreateFails_NothingToCompensate(t *testing.T) {
	store := newFakeStore()
	store.createSchoolErr = errors.New("db down")
	svc := NewProvisioningService(store, &fakeGateway{})

	_, err := svc.CreateSchoolWithAdmin(context.Background(), validNewAdminRequest())

	var tce *TenantCreateError
	require.ErrorAs(t, err, &tce)
	assert.Empty(t, store.deletedSchoolIDs)
}

func TestCreateSchoolWithAdmin_IneligibleCandidate_RollsBackSchool(t *testing.T) {
	store := newFakeStore()
	store.candidate = nil // kandidat hilang / sudah admin / sudah terikat
	svc := NewProvisioningService(store, &fakeGateway{})

	candidateID := uuid.New()
	_, err := svc.CreateSchoolWithAdmin(context.Background(), validExistingAdminRequest(candidateID))

	var ie *IneligibleAdminError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, candidateID, ie.UserID)
	assert.True(t, ie.Compensated)
	require.Len(t, store.deletedSchoolIDs, 1)
	assert.Empty(t, store.schools)
	assert.Equal(t, auditModel.AuditStateRolledBack, store.lastAuditState(t))
}

func TestCreateSchoolWithAdmin_PromoteLosesRace_RollsBackSchool(t *testing.T) {
	store := newFakeStore()
	candidateID := uuid.New()
	store.candidate = eligibleCandidate(candidateID)
	store.promoteOK = false // RowsAffected 0: provisioning lain keburu ambil
	svc := NewProvisioningService(store, &fakeGateway{})

	_, err := svc.CreateSchoolWithAdmin(context.Background(), validExistingAdminRequest(candidateID))

	var ie *IneligibleAdminError
	require.ErrorAs(t, err, &ie)
	require.Len(t, store.deletedSchoolIDs, 1)
}

func TestCreateSchoolWithAdmin_IdentityFails_RollsBackSchool(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{createErr: gateway.ErrServiceUnavailable}
	svc := NewProvisioningService(store, gw)

	_, err := svc.CreateSchoolWithAdmin(context.Background(), validNewAdminRequest())

	var ice *IdentityCreateError
	require.ErrorAs(t, err, &ice)
	assert.True(t, ice.Compensated)
	assert.ErrorIs(t, err, gateway.ErrServiceUnavailable)
	require.Len(t, store.deletedSchoolIDs, 1)
	assert.Empty(t, store.createdProfiles)
}

func TestCreateSchoolWithAdmin_ProfileFails_DeletesIdentityAndSchool(t *testing.T) {
	store := newFakeStore()
	store.createProfileErr = errors.New("unique violation")
	gw := &fakeGateway{}
	svc := NewProvisioningService(store, gw)

	_, err := svc.CreateSchoolWithAdmin(context.Background(), validNewAdminRequest())

	var ice *IdentityCreateError
	require.ErrorAs(t, err, &ice)
	assert.True(t, ice.Compensated)

	// kompensasi dua arah: identity yang baru dibuat ikut dihapus
	require.Len(t, gw.createdIDs, 1)
	require.Len(t, gw.deletedIDs, 1)
	assert.Equal(t, gw.createdIDs[0], gw.deletedIDs[0])
	require.Len(t, store.deletedSchoolIDs, 1)
}

func TestCreateSchoolWithAdmin_ProfileFailsAndDeleteFails_ReportsOrphan(t *testing.T) {
	store := newFakeStore()
	store.createProfileErr = errors.New("unique violation")
	gw := &fakeGateway{deleteErr: gateway.ErrServiceUnavailable}
	svc := NewProvisioningService(store, gw)

	_, err := svc.CreateSchoolWithAdmin(context.Background(), validNewAdminRequest())

	var pe *PartialProvisioningError
	require.ErrorAs(t, err, &pe)
	require.Len(t, gw.createdIDs, 1)
	assert.Equal(t, gw.createdIDs[0], pe.OrphanIdentityID)
	assert.True(t, pe.SchoolRemoved)

	// identity yatim DILAPORKAN ke audit, bukan ditelan
	assert.Equal(t, auditModel.AuditStateOrphanedIdentity, store.lastAuditState(t))
	last := store.audits[len(store.audits)-1]
	require.NotNil(t, last.AuditOrphanIdentityID)
	assert.Equal(t, pe.OrphanIdentityID, *last.AuditOrphanIdentityID)
}

/* ====================== LINK PENDING (tanpa rollback) ====================== */

func TestCreateSchoolWithAdmin_LinkFails_NoRollback(t *testing.T) {
	store := newFakeStore()
	store.linkErr = errors.New("deadlock")
	gw := &fakeGateway{}
	svc := NewProvisioningService(store, gw)

	_, err := svc.CreateSchoolWithAdmin(context.Background(), validNewAdminRequest())

	var lp *LinkPendingError
	require.ErrorAs(t, err, &lp)
	assert.True(t, IsRetryablyPending(err))

	// dua entitas valid sendiri-sendiri: TIDAK ada yang dihapus
	assert.Empty(t, store.deletedSchoolIDs)
	assert.Empty(t, gw.deletedIDs)
	require.Len(t, store.createdProfiles, 1)
	assert.NotEqual(t, uuid.Nil, lp.SchoolID)
	assert.Equal(t, store.createdProfiles[0].UserID, lp.AdminUserID)
	assert.Equal(t, auditModel.AuditStateLinkPending, store.lastAuditState(t))
}

func TestRetryAdminLink_CompletesPendingLink(t *testing.T) {
	store := newFakeStore()
	schoolID := uuid.New()
	adminID := uuid.New()
	store.schools[schoolID] = &schoolModel.SchoolModel{SchoolID: schoolID, SchoolName: "SMA 1"}
	store.pendingAdmin = &userModel.UserModel{
		UserID:       adminID,
		UserRole:     constants.RoleSchoolAdmin,
		UserSchoolID: &schoolID,
	}
	svc := NewProvisioningService(store, &fakeGateway{})

	result, err := svc.RetryAdminLink(context.Background(), schoolID)
	require.NoError(t, err)

	require.Len(t, store.linkedPairs, 1)
	assert.Equal(t, [2]uuid.UUID{schoolID, adminID}, store.linkedPairs[0])
	require.NotNil(t, result.School.SchoolAdminUserID)
	assert.Equal(t, adminID, *result.School.SchoolAdminUserID)
}

func TestRetryAdminLink_AlreadyLinked_Idempotent(t *testing.T) {
	store := newFakeStore()
	schoolID := uuid.New()
	adminID := uuid.New()
	store.schools[schoolID] = &schoolModel.SchoolModel{
		SchoolID:          schoolID,
		SchoolName:        "SMA 1",
		SchoolAdminUserID: &adminID,
	}
	store.pendingAdmin = &userModel.UserModel{
		UserID:       adminID,
		UserRole:     constants.RoleSchoolAdmin,
		UserSchoolID: &schoolID,
	}
	svc := NewProvisioningService(store, &fakeGateway{})

	result, err := svc.RetryAdminLink(context.Background(), schoolID)
	require.NoError(t, err)

	// tidak ada write ulang, retry kedua langsung sukses tanpa efek samping
	assert.Empty(t, store.linkedPairs)
	assert.Equal(t, adminID, *result.School.SchoolAdminUserID)
}

func TestRetryAdminLink_NoPendingAdmin(t *testing.T) {
	store := newFakeStore()
	schoolID := uuid.New()
	store.schools[schoolID] = &schoolModel.SchoolModel{SchoolID: schoolID}
	store.pendingAdmin = nil
	svc := NewProvisioningService(store, &fakeGateway{})

	_, err := svc.RetryAdminLink(context.Background(), schoolID)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "school_id")
}

func TestRetryAdminLink_SchoolNotFound(t *testing.T) {
	store := newFakeStore()
	svc := NewProvisioningService(store, &fakeGateway{})

	_, err := svc.RetryAdminLink(context.Background(), uuid.New())

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestRetryAdminLink_StoreOutageIsRetryable(t *testing.T) {
	store := newFakeStore()
	store.findSchoolErr = errors.New("connection refused")
	svc := NewProvisioningService(store, &fakeGateway{})

	schoolID := uuid.New()
	_, err := svc.RetryAdminLink(context.Background(), schoolID)

	// gangguan store bukan salah input — harus tetap diklasifikasi retryable
	var ve *ValidationError
	assert.False(t, errors.As(err, &ve))
	var lp *LinkPendingError
	require.ErrorAs(t, err, &lp)
	assert.Equal(t, schoolID, lp.SchoolID)
}

/* ====================== SESSION GUARD di alur asli ====================== */

func TestCreateSchoolWithAdmin_RestoresOperatorSessionOnIdentityError(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{
		session:        &gateway.Session{AccessToken: "operator-token"},
		createErr:      errors.New("signup rejected"),
		sessionOnError: true,
	}
	svc := NewProvisioningService(store, gw)

	_, err := svc.CreateSchoolWithAdmin(context.Background(), validNewAdminRequest())
	require.Error(t, err)

	// error dari sign-up tidak boleh meninggalkan session nyasar
	require.Len(t, gw.restoredWith, 1)
	require.NotNil(t, gw.session)
	assert.Equal(t, "operator-token", gw.session.AccessToken)
}

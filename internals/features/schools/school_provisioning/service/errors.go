package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

/* ==========================
   Taksonomi error provisioning

   Setiap jenis membawa hasil kompensasinya sendiri supaya caller
   (controller/UI) tahu persis apa yang sudah di-rollback dan apa yang
   tersisa, tanpa harus mengintip state DB.
========================== */

// ValidationError: input salah, terdeteksi sebelum efek eksternal apapun.
// Fields berisi pesan per field untuk routing ke form UI.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validasi gagal — " + strings.Join(parts, "; ")
}

// TenantCreateError: write eksternal pertama gagal; tidak ada yang perlu
// dikompensasi; aman di-retry dari awal.
type TenantCreateError struct {
	Err error
}

func (e *TenantCreateError) Error() string {
	return fmt.Sprintf("gagal membuat sekolah: %v", e.Err)
}
func (e *TenantCreateError) Unwrap() error { return e.Err }

// IneligibleAdminError: kandidat tidak (lagi) memenuhi syarat promosi —
// precondition yang ketahuan terlambat. Sekolah sudah di-rollback.
type IneligibleAdminError struct {
	UserID      uuid.UUID
	Compensated bool // sekolah berhasil dihapus balik
}

func (e *IneligibleAdminError) Error() string {
	return fmt.Sprintf("user %s tidak memenuhi syarat jadi admin sekolah", e.UserID)
}

// IdentityCreateError: pembuatan identity (atau profilnya) gagal dan
// rollback penuh BERHASIL. Aman di-retry dari awal.
type IdentityCreateError struct {
	Err         error
	Compensated bool
}

func (e *IdentityCreateError) Error() string {
	return fmt.Sprintf("gagal membuat identity admin: %v", e.Err)
}
func (e *IdentityCreateError) Unwrap() error { return e.Err }

// AdminLinkError: update promosi kandidat existing gagal; sekolah sudah
// di-rollback. Aman di-retry dari awal.
type AdminLinkError struct {
	Err         error
	Compensated bool
}

func (e *AdminLinkError) Error() string {
	return fmt.Sprintf("gagal mempromosikan admin: %v", e.Err)
}
func (e *AdminLinkError) Unwrap() error { return e.Err }

// PartialProvisioningError: kompensasi SENDIRI gagal sebagian — identity
// yatim selamat dari percobaan delete. TIDAK aman di-retry buta; butuh
// intervensi operator atau sweep rekonsiliasi.
type PartialProvisioningError struct {
	OrphanIdentityID uuid.UUID
	SchoolRemoved    bool
	Err              error
}

func (e *PartialProvisioningError) Error() string {
	return fmt.Sprintf("provisioning gagal dan identity %s tidak bisa dihapus (butuh cleanup manual): %v",
		e.OrphanIdentityID, e.Err)
}
func (e *PartialProvisioningError) Unwrap() error { return e.Err }

// LinkPendingError: sekolah dan admin dua-duanya sudah ada dan valid
// sendiri-sendiri, tinggal cross-link yang belum. Sengaja TIDAK
// di-rollback — retry cukup mengulang step link saja (idempotent).
type LinkPendingError struct {
	SchoolID    uuid.UUID
	AdminUserID uuid.UUID
	Err         error
}

func (e *LinkPendingError) Error() string {
	return fmt.Sprintf("sekolah %s dan admin %s sudah dibuat tapi belum ter-link: %v",
		e.SchoolID, e.AdminUserID, e.Err)
}
func (e *LinkPendingError) Unwrap() error { return e.Err }

package gateway

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Session adalah nilai eksplisit, bukan global state. Provider auth
// bisa mengganti session aktif sebagai side effect sign-up; karena itu
// session harus bisa di-snapshot dan di-restore oleh pemanggil.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Error klasifikasi dari provider identity
var (
	ErrDuplicateEmail     = errors.New("identity: email sudah terdaftar")
	ErrWeakCredential     = errors.New("identity: credential terlalu lemah")
	ErrServiceUnavailable = errors.New("identity: provider tidak bisa dihubungi")
)

// IdentityGateway membungkus provider auth eksternal.
// Kontrak minimum yang dipakai orchestrator provisioning.
type IdentityGateway interface {
	// CreateIdentity membuat identity baru via self-service sign-up.
	// CATATAN: provider mengganti session aktif client ke identity baru —
	// bungkus dengan WithPreservedSession kalau pemanggil bukan user baru itu.
	CreateIdentity(ctx context.Context, email, credential string) (uuid.UUID, error)

	// DeleteIdentity idempotent: hapus dua kali bukan error (404 = sukses).
	// Dipakai hanya untuk kompensasi.
	DeleteIdentity(ctx context.Context, id uuid.UUID) error

	// CurrentSession mengembalikan snapshot session aktif, nil kalau belum ada.
	CurrentSession() *Session

	// RestoreSession mengembalikan session client ke snapshot.
	RestoreSession(ctx context.Context, s *Session) error
}

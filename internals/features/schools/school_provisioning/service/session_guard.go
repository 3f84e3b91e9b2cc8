package service

import (
	"context"
	"log"

	"schoolku_backend/internals/features/users/auth/gateway"
)

// WithPreservedSession menjaga session operator di sekitar fn.
//
// Sign-up self-service di provider auth mengganti session aktif client ke
// identity yang baru dibuat. Di alur provisioning pemanggilnya operator,
// bukan admin baru — jadi session di-snapshot dulu dan SELALU di-restore
// di setiap jalur keluar. Error dari fn tetap di-propagate setelah restore.
//
// Kalau tidak ada session aktif (snapshot nil), guard jadi passthrough:
// provisioning memang sah dipanggil dari konteks tanpa session.
func WithPreservedSession(ctx context.Context, gw gateway.IdentityGateway, fn func() error) error {
	snapshot := gw.CurrentSession()
	if snapshot == nil {
		return fn()
	}

	defer func() {
		if err := gw.RestoreSession(ctx, snapshot); err != nil {
			// hasil fn yang menang; kegagalan restore cukup dicatat
			log.Printf("[WARN] gagal restore session operator: %v", err)
		}
	}()

	return fn()
}

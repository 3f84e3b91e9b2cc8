package service

import (
	"context"
	"log"

	"schoolku_backend/internals/features/schools/school_provisioning/repository"
	"schoolku_backend/internals/features/users/auth/gateway"
)

const orphanSweepBatchSize = 20

// ReconcileOrphanIdentities menjalankan SATU putaran sweep identity yatim:
// ambil audit orphaned_identity yang belum resolved, coba ulang DeleteIdentity
// (idempotent di sisi provider), lalu tandai audit resolved. Identity yang
// masih gagal dihapus dibiarkan untuk putaran berikutnya.
// Return: jumlah yang berhasil dibereskan dan jumlah kandidat putaran ini.
func ReconcileOrphanIdentities(ctx context.Context, store repository.TenantStore, gw gateway.IdentityGateway) (int, int, error) {
	orphans, err := store.FindUnresolvedOrphans(ctx, orphanSweepBatchSize)
	if err != nil {
		return 0, 0, err
	}

	resolved := 0
	for i := range orphans {
		o := &orphans[i]
		if o.AuditOrphanIdentityID == nil {
			continue
		}
		if err := gw.DeleteIdentity(ctx, *o.AuditOrphanIdentityID); err != nil {
			log.Printf("[CLEANUP ERROR] Identity %s masih gagal dihapus: %v",
				o.AuditOrphanIdentityID, err)
			continue
		}
		if err := store.MarkOrphanResolved(ctx, o.AuditID); err != nil {
			log.Printf("[CLEANUP ERROR] Gagal tandai audit %s resolved: %v", o.AuditID, err)
			continue
		}
		resolved++
	}

	return resolved, len(orphans), nil
}

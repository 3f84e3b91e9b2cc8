package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"

	"schoolku_backend/internals/features/schools/school_provisioning/repository"
	"schoolku_backend/internals/features/schools/school_provisioning/service"
	"schoolku_backend/internals/features/users/auth/gateway"
)

// StartOrphanReconcileScheduler menyapu audit provisioning yang berakhir
// di state orphaned_identity dan mencoba ulang DeleteIdentity. Ini jalur
// pemulihan untuk PartialProvisioningError tanpa campur tangan operator.
// Logika sweep-nya ada di service.ReconcileOrphanIdentities; di sini tinggal
// loop + interval.
func StartOrphanReconcileScheduler(db *gorm.DB, gw gateway.IdentityGateway) {
	store := repository.NewTenantStore(db)

	go func() {
		intervalHours := 6
		if val := os.Getenv("ORPHAN_RECONCILE_INTERVAL_HOURS"); val != "" {
			if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
				intervalHours = parsed
			}
		}

		for {
			log.Println("[CLEANUP] Menjalankan sweep identity yatim...")

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			resolved, total, err := service.ReconcileOrphanIdentities(ctx, store, gw)
			cancel()

			switch {
			case err != nil:
				log.Printf("[CLEANUP ERROR] Gagal ambil audit yatim: %v", err)
			case total == 0:
				log.Println("[CLEANUP] Tidak ada identity yatim")
			default:
				log.Printf("[CLEANUP] %d/%d identity yatim berhasil dibereskan", resolved, total)
			}

			time.Sleep(time.Duration(intervalHours) * time.Hour)
		}
	}()
}

// services/scheduler.go
package services

import (
	"log"
	"time"

	"creator-platform/models"

	"github.com/go-co-op/gocron/v2"
)

// StartAuthPurgeScheduler periodically drops expired denylist rows and
// verification codes. Revocation rows only matter while a token they could
// match is still live, so anything past its expiry is dead weight.
func (s *AuthService) StartAuthPurgeScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			now := time.Now()

			res := s.DB.Where("expires_at <= ?", now).Delete(&models.RevokedToken{})
			if res.Error != nil {
				log.Printf("[Scheduler] revoked token purge failed: %v", res.Error)
			} else if res.RowsAffected > 0 {
				log.Printf("✅ Purged %d expired revoked tokens", res.RowsAffected)
			}

			res = s.DB.Where("expires_at <= ? OR consumed_at IS NOT NULL", now).Delete(&models.AuthCode{})
			if res.Error != nil {
				log.Printf("[Scheduler] auth code purge failed: %v", res.Error)
			} else if res.RowsAffected > 0 {
				log.Printf("✅ Purged %d stale auth codes", res.RowsAffected)
			}
		}),
	)
}

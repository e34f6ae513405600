package workers

import (
	"context"
	"log"
	"time"

	"creator-platform/models"
	"creator-platform/services"

	"gorm.io/gorm"
)

const webhookMaxAttempts = 10

// PollFailedWebhooks re-drives webhook events that were stored but never
// processed, e.g. because the gateway verify call timed out on first
// delivery. Events past the attempt cap are left for manual inspection.
func PollFailedWebhooks(ctx context.Context, db *gorm.DB, payments *services.PaymentService, pollInterval time.Duration) {
	log.Println("Starting webhook retry polling...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Webhook retry polling stopped.")
			return
		case <-ticker.C:
			var events []models.WebhookEvent
			err := db.Where("processed_at IS NULL AND signature_valid = ? AND attempts < ?", true, webhookMaxAttempts).
				Order("created_at ASC").
				Limit(50).
				Find(&events).Error
			if err != nil {
				log.Printf("❌ Error loading pending webhook events: %v", err)
				continue
			}
			if len(events) == 0 {
				continue
			}

			log.Printf("📥 Retrying %d pending webhook event(s)", len(events))
			for i := range events {
				event := &events[i]
				db.Model(event).UpdateColumn("attempts", gorm.Expr("attempts + 1"))

				if err := payments.ProcessStoredEvent(event); err != nil {
					log.Printf("❌ Retry failed for %s/%s: %v", event.Provider, event.ProviderEventID, err)
					db.Model(event).Update("processing_error", err.Error())
					continue
				}

				now := time.Now()
				db.Model(event).Updates(map[string]interface{}{
					"processed_at":     &now,
					"processing_error": "",
				})
				log.Printf("✅ Recovered webhook event %s/%s", event.Provider, event.ProviderEventID)
			}
		}
	}
}

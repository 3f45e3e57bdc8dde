package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/example/donpedro/internal/models"
)

// StartOTPSessionSweeper launches a background goroutine that removes
// expired OTP sessions. Expiry is always enforced lazily at check time; the
// sweeper only keeps the table from accumulating dead rows.
func StartOTPSessionSweeper(db *gorm.DB, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			result := db.Where("expires_at < ?", time.Now().UTC()).Delete(&models.OTPSession{})
			if result.Error != nil {
				log.Printf("[sweeper] failed to purge expired OTP sessions: %v", result.Error)
				continue
			}
			if result.RowsAffected > 0 {
				log.Printf("[sweeper] purged %d expired OTP sessions", result.RowsAffected)
			}
		}
	}()
}

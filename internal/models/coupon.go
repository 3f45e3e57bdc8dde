package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Coupon status lifecycle. A coupon is created UNUSED and can move to USED
// exactly once; EXPIRED is set administratively for stale campaigns.
const (
	CouponStatusUnused  = "UNUSED"
	CouponStatusUsed    = "USED"
	CouponStatusExpired = "EXPIRED"
)

// Coupon is the durable record of one registration. The ID doubles as the
// redemption token encoded into the QR code on the client, so it is random
// and never reassigned. HolderPhone carries the unique constraint that makes
// registration idempotent per phone.
type Coupon struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"coupon_id"`
	HolderName    string     `json:"name"`
	HolderPhone   string     `gorm:"uniqueIndex" json:"phone"`
	HolderAddress string     `json:"address"`
	CouponCode    string     `json:"coupon_code"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UsedAt        *time.Time `json:"used_at"`
}

// BeforeCreate assigns the coupon ID for new records.
func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

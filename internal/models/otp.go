package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OTPSession is the pending verification code for one phone number. The
// unique index on Phone means a resend replaces the previous code: only the
// latest code is ever valid. Rows are deleted on approval or expiry; a
// background sweeper clears leftovers.
type OTPSession struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Phone     string    `gorm:"uniqueIndex" json:"phone"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns IDs for new sessions.
func (s *OTPSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

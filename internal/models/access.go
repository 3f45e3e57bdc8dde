package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Access roles. STAFF can validate coupons; ADMIN can additionally read and
// export the registrant list.
const (
	RoleStaff = "STAFF"
	RoleAdmin = "ADMIN"
)

// AccessPrincipal is a staff or admin account used by the scanner and the
// admin panel. End users never get one of these.
type AccessPrincipal struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex" json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// BeforeCreate assigns IDs for new principals.
func (p *AccessPrincipal) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

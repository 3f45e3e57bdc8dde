package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/donpedro/internal/models"
	"github.com/example/donpedro/internal/services"
)

// StaffHandler implements the scanner-side coupon validation endpoint.
type StaffHandler struct {
	db       *gorm.DB
	telegram *services.TelegramService
}

// NewStaffHandler constructs a StaffHandler.
func NewStaffHandler(db *gorm.DB, telegram *services.TelegramService) *StaffHandler {
	return &StaffHandler{db: db, telegram: telegram}
}

type validateRequest struct {
	CouponID string `json:"couponId"`
}

// Validate redeems a coupon scanned by staff. The UNUSED -> USED transition
// is a single conditional update, so when two scans of the same coupon race,
// exactly one succeeds and the other observes "already used".
func (h *StaffHandler) Validate(c *fiber.Ctx) error {
	var req validateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.CouponID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "coupon id is required")
	}

	couponID, err := uuid.Parse(req.CouponID)
	if err != nil {
		// Garbage QR payloads land here; report them like unknown coupons.
		return fiber.NewError(fiber.StatusNotFound, "invalid QR code, coupon not found")
	}

	var coupon models.Coupon
	if err := h.db.Where("id = ?", couponID).First(&coupon).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "invalid QR code, coupon not found")
		}
		return err
	}

	switch coupon.Status {
	case models.CouponStatusUsed:
		return fiber.NewError(fiber.StatusConflict,
			fmt.Sprintf("coupon already used by %s, validation denied", coupon.HolderName))
	case models.CouponStatusExpired:
		return fiber.NewError(fiber.StatusConflict, "coupon expired, validation denied")
	}

	now := time.Now().UTC()
	result := h.db.Model(&models.Coupon{}).
		Where("id = ? AND status = ?", couponID, models.CouponStatusUnused).
		Updates(map[string]interface{}{"status": models.CouponStatusUsed, "used_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// A concurrent scan won the conditional update.
		return fiber.NewError(fiber.StatusConflict,
			fmt.Sprintf("coupon already used by %s, validation denied", coupon.HolderName))
	}

	go func(name, id string) {
		_ = h.telegram.NotifyRedemption(name, id)
	}(coupon.HolderName, coupon.ID.String())

	return c.JSON(fiber.Map{
		"message":    fmt.Sprintf("COUPON VALID! Use registered for %s.", coupon.HolderName),
		"status":     "VALIDATED",
		"holderName": coupon.HolderName,
	})
}

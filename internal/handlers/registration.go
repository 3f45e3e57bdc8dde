package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/donpedro/internal/config"
	"github.com/example/donpedro/internal/models"
	"github.com/example/donpedro/internal/services"
	"github.com/example/donpedro/internal/utils"
)

// SMSSender dispatches a verification code to a phone number.
type SMSSender interface {
	SendVerificationCode(phone, code string) error
}

// RegistrationHandler implements the public two-step registration flow:
// send-otp stores a pending verification code, check-otp consumes it and
// issues (or returns) the caller's coupon.
type RegistrationHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	sms      SMSSender
	telegram *services.TelegramService
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(db *gorm.DB, cfg *config.Config, sms SMSSender, telegram *services.TelegramService) *RegistrationHandler {
	return &RegistrationHandler{db: db, cfg: cfg, sms: sms, telegram: telegram}
}

type sendOTPRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// SendOTP validates the registration form, stores a pending verification
// code for the normalized phone number and dispatches it by SMS. A resend
// replaces the previous code for the same phone.
func (h *RegistrationHandler) SendOTP(c *fiber.Ctx) error {
	var req sendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Phone == "" || req.Address == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name, phone and address are required")
	}

	phoneKey, err := utils.NormalizePhone(req.Phone)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid phone number format, a US number is required")
	}

	code, err := generateOTPCode()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate verification code")
	}

	session := models.OTPSession{
		Phone:     phoneKey,
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(h.cfg.OTPExpiry),
	}

	// One pending code per phone: a conflicting send overwrites the old row,
	// invalidating the previous code.
	err = h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "created_at"}),
	}).Create(&session).Error
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create verification session")
	}

	if err := h.sms.SendVerificationCode(phoneKey, code); err != nil {
		if h.cfg.OTPDebugReveal {
			log.Printf("[otp] SMS dispatch failed, revealing code in response (debug mode): %v", err)
			return c.JSON(fiber.Map{
				"message": fmt.Sprintf("DEBUG: SMS dispatch unavailable. Your code is %s.", code),
				"phone":   phoneKey,
				"status":  "pending",
				"otpCode": code,
			})
		}
		log.Printf("[otp] SMS dispatch failed for %s: %v", phoneKey, err)
		return fiber.NewError(fiber.StatusBadGateway, "failed to send verification code")
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Verification code sent to %s.", phoneKey),
		"phone":   phoneKey,
		"status":  "pending",
	})
}

type checkOTPRequest struct {
	Phone   string `json:"phone"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// CheckOTP verifies the submitted code and finishes registration. An
// approved code is consumed immediately; a wrong code leaves the session in
// place so the user can retry within the expiry window.
func (h *RegistrationHandler) CheckOTP(c *fiber.Ctx) error {
	var req checkOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Phone == "" || req.Code == "" || req.Name == "" || req.Address == "" {
		return fiber.NewError(fiber.StatusBadRequest, "incomplete verification data")
	}

	phoneKey, err := utils.NormalizePhone(req.Phone)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid phone number format, a US number is required")
	}

	var session models.OTPSession
	if err := h.db.Where("phone = ?", phoneKey).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusUnauthorized, "verification session not found or expired")
		}
		return err
	}

	if session.ExpiresAt.Before(time.Now().UTC()) {
		h.db.Where("phone = ?", phoneKey).Delete(&models.OTPSession{})
		return fiber.NewError(fiber.StatusUnauthorized, "verification code expired, please start over")
	}

	if req.Code != session.Code {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid verification code")
	}

	// Approved: the code is single-use, consume the session before touching
	// the ledger.
	if err := h.db.Where("phone = ?", phoneKey).Delete(&models.OTPSession{}).Error; err != nil {
		return err
	}

	var existing models.Coupon
	err = h.db.Where("holder_phone = ?", phoneKey).First(&existing).Error
	if err == nil {
		// Verified re-access: the phone already holds a coupon, return it
		// instead of creating a duplicate.
		return c.JSON(fiber.Map{
			"message":        fmt.Sprintf("Access verified. Coupon available for %s.", existing.HolderName),
			"couponId":       existing.ID,
			"couponCode":     existing.CouponCode,
			"isExistingUser": true,
		})
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	coupon, err := h.issueCoupon(phoneKey, req.Name, req.Address)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to register coupon")
	}

	if coupon.HolderName != req.Name || coupon.HolderPhone != phoneKey {
		// Lost the insert race to a concurrent approval for the same phone;
		// the stored row wins.
		return c.JSON(fiber.Map{
			"message":        fmt.Sprintf("Access verified. Coupon available for %s.", coupon.HolderName),
			"couponId":       coupon.ID,
			"couponCode":     coupon.CouponCode,
			"isExistingUser": true,
		})
	}

	go func(name, phone string) {
		_ = h.telegram.NotifyNewRegistration(name, phone)
	}(coupon.HolderName, coupon.HolderPhone)

	return c.JSON(fiber.Map{
		"message":    "Verification complete. Registration finished!",
		"couponId":   coupon.ID,
		"couponCode": coupon.CouponCode,
	})
}

// issueCoupon inserts a coupon for the phone key, treating a unique-key
// violation as "already registered" and returning the stored row. Other
// insert failures are retried once before giving up.
func (h *RegistrationHandler) issueCoupon(phoneKey, name, address string) (*models.Coupon, error) {
	coupon := models.Coupon{
		HolderName:    name,
		HolderPhone:   phoneKey,
		HolderAddress: address,
		CouponCode:    h.cfg.CouponCode,
		Status:        models.CouponStatusUnused,
	}

	err := h.db.Create(&coupon).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		err = h.db.Create(&coupon).Error
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		var existing models.Coupon
		if err := h.db.Where("holder_phone = ?", phoneKey).First(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if err != nil {
		return nil, err
	}

	return &coupon, nil
}

// generateOTPCode returns a uniformly random 6-digit code in
// [100000, 999999].
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

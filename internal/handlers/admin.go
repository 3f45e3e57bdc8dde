package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/donpedro/internal/models"
	"github.com/example/donpedro/internal/utils"
)

// AdminHandler manages admin-only reporting endpoints.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// ListLeads returns registered coupons, newest first, with pagination.
func (h *AdminHandler) ListLeads(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Coupon{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var coupons []models.Coupon
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&coupons).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    coupons,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// ExportLeads streams the full registrant list as a semicolon-delimited CSV
// snapshot.
func (h *AdminHandler) ExportLeads(c *fiber.Ctx) error {
	var coupons []models.Coupon
	if err := h.db.Order("created_at desc").Find(&coupons).Error; err != nil {
		return err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Comma = ';'

	header := []string{"coupon_id", "name", "phone", "address", "status", "created_at", "used_at"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, coupon := range coupons {
		usedAt := ""
		if coupon.UsedAt != nil {
			usedAt = coupon.UsedAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			coupon.ID.String(),
			coupon.HolderName,
			coupon.HolderPhone,
			coupon.HolderAddress,
			coupon.Status,
			coupon.CreatedAt.UTC().Format(time.RFC3339),
			usedAt,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	filename := fmt.Sprintf("leads_donpedro_%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(buf.Bytes())
}

// Stats returns aggregate coupon counts for the admin dashboard.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	var total int64
	if err := h.db.Model(&models.Coupon{}).Count(&total).Error; err != nil {
		return err
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.Coupon{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	byStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		byStatus[sc.Status] = sc.Count
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_coupons":     total,
			"coupons_by_status": byStatus,
		},
	})
}

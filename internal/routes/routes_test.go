package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/donpedro/internal/config"
	"github.com/example/donpedro/internal/database"
	"github.com/example/donpedro/internal/models"
	"github.com/example/donpedro/internal/utils"
)

// End-to-end walk through the registered routes: register with a revealed
// OTP (no Twilio credentials in tests), redeem as staff, report as admin.
func TestRegisteredRoutesEndToEnd(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:      "test-secret",
		TokenExpires:   time.Hour,
		CouponCode:     "D0nP3dro20",
		OTPExpiry:      5 * time.Minute,
		OTPDebugReveal: true,
	}

	for _, seed := range []struct{ username, password, role string }{
		{"clerk", "clerk-pass", models.RoleStaff},
		{"boss", "boss-pass", models.RoleAdmin},
	} {
		hash, err := utils.HashPassword(seed.password)
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		if err := database.SeedPrincipal(db, seed.username, hash, seed.role); err != nil {
			t.Fatalf("seed %s: %v", seed.username, err)
		}
	}

	app := fiber.New()
	Register(app, db, cfg)

	do := func(method, path, token, body string) (int, map[string]interface{}) {
		t.Helper()
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("%s %s: %v", method, path, err)
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		var out map[string]interface{}
		_ = json.Unmarshal(data, &out)
		return resp.StatusCode, out
	}

	// Registration: no Twilio credentials configured, debug reveal returns
	// the code in-band.
	status, body := do(http.MethodPost, "/api/send-otp", "",
		`{"name":"Maria","phone":"555-111-2222","address":"12 Oak St"}`)
	if status != http.StatusOK {
		t.Fatalf("send-otp: expected 200, got %d", status)
	}
	code, _ := body["otpCode"].(string)
	if code == "" {
		t.Fatal("expected revealed otpCode in test mode")
	}

	status, body = do(http.MethodPost, "/api/check-otp", "", fmt.Sprintf(
		`{"name":"Maria","phone":"5551112222","address":"12 Oak St","code":"%s"}`, code))
	if status != http.StatusOK {
		t.Fatalf("check-otp: expected 200, got %d", status)
	}
	couponID, _ := body["couponId"].(string)
	if couponID == "" {
		t.Fatal("expected couponId")
	}

	// Staff login and redemption.
	status, body = do(http.MethodPost, "/auth/login", "",
		`{"username":"clerk","password":"clerk-pass"}`)
	if status != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", status)
	}
	staffToken, _ := body["token"].(string)

	status, body = do(http.MethodPost, "/staff/validate", staffToken,
		fmt.Sprintf(`{"couponId":"%s"}`, couponID))
	if status != http.StatusOK {
		t.Fatalf("validate: expected 200, got %d", status)
	}
	if body["status"] != "VALIDATED" {
		t.Fatalf("expected VALIDATED, got %v", body["status"])
	}

	status, _ = do(http.MethodPost, "/staff/validate", staffToken,
		fmt.Sprintf(`{"couponId":"%s"}`, couponID))
	if status != http.StatusConflict {
		t.Fatalf("second validate: expected 409, got %d", status)
	}

	// Staff cannot read the admin surface; admin can.
	status, _ = do(http.MethodGet, "/admin/leads", staffToken, "")
	if status != http.StatusForbidden {
		t.Fatalf("staff on /admin/leads: expected 403, got %d", status)
	}

	status, body = do(http.MethodPost, "/auth/login", "",
		`{"username":"boss","password":"boss-pass"}`)
	if status != http.StatusOK {
		t.Fatalf("admin login: expected 200, got %d", status)
	}
	adminToken, _ := body["token"].(string)

	status, _ = do(http.MethodGet, "/admin/leads", adminToken, "")
	if status != http.StatusOK {
		t.Fatalf("admin leads: expected 200, got %d", status)
	}
	status, _ = do(http.MethodGet, "/admin/leads/export", adminToken, "")
	if status != http.StatusOK {
		t.Fatalf("admin export: expected 200, got %d", status)
	}
	status, _ = do(http.MethodGet, "/admin/stats", adminToken, "")
	if status != http.StatusOK {
		t.Fatalf("admin stats: expected 200, got %d", status)
	}
}

package services

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var twilioHTTPClient = &http.Client{Timeout: 15 * time.Second}

// ErrSMSNotConfigured is returned when Twilio credentials are absent.
var ErrSMSNotConfigured = errors.New("twilio credentials are not configured")

// TwilioService sends verification codes via the Twilio Messages API.
type TwilioService struct {
	accountSID string
	authToken  string
	fromNumber string
}

// NewTwilioService creates a new TwilioService.
func NewTwilioService(accountSID, authToken, fromNumber string) *TwilioService {
	return &TwilioService{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
	}
}

// SendVerificationCode dispatches an OTP code to the given E.164 number.
func (s *TwilioService) SendVerificationCode(phone, code string) error {
	if s.accountSID == "" || s.authToken == "" || s.fromNumber == "" {
		return ErrSMSNotConfigured
	}

	form := url.Values{}
	form.Set("To", phone)
	form.Set("From", s.fromNumber)
	form.Set("Body", fmt.Sprintf("Your DONPEDRO verification code is %s. Valid for 5 minutes.", code))

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", s.accountSID)
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("twilio request build: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := twilioHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("twilio send sms: status %d, body: %s", resp.StatusCode, string(body))
	}

	return nil
}

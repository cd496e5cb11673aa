package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// SMSService sends messages through the bulk-SMS HTTP gateway. Delivery is
// best-effort: callers treat a returned error as a logged hint, never as a
// failure of the enclosing operation.
type SMSService struct {
	Username    string
	Password    string
	SenderID    string
	APIPath     string
	CountryCode string
	Client      *http.Client
}

// SMSResponse represents the response from the SMS gateway
type SMSResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"message_id"`
		Cost      string `json:"cost"`
	} `json:"data"`
}

// NewSMSService creates a new SMS service instance configured from the
// environment.
func NewSMSService() *SMSService {
	countryCode := os.Getenv("SMS_COUNTRY_CODE")
	if countryCode == "" {
		countryCode = "91"
	}

	return &SMSService{
		Username:    os.Getenv("SMS_USERNAME"),
		Password:    os.Getenv("SMS_PASSWORD"),
		SenderID:    os.Getenv("SMS_SENDER_ID"),
		APIPath:     os.Getenv("SMS_API_URL"),
		CountryCode: countryCode,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendOTP sends a verification code to a local 10-digit phone number. The
// gateway expects the destination with a country-code prefix and no plus
// sign.
func (s *SMSService) SendOTP(phone, otp string) error {
	if s.APIPath == "" {
		return fmt.Errorf("SMS gateway is not configured")
	}

	message := fmt.Sprintf("Your verification code is: %s. This code will expire in 10 minutes.", otp)

	params := url.Values{}
	params.Set("username", s.Username)
	params.Set("password", s.Password)
	params.Set("senderid", s.SenderID)
	params.Set("destination", s.CountryCode+phone)
	params.Set("message", message)
	params.Set("template", "otp")
	params.Set("variables", otp)

	fullURL := fmt.Sprintf("%s?%s", s.APIPath, params.Encode())

	req, err := http.NewRequest("POST", fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS API returned status %d: %s", resp.StatusCode, string(body))
	}

	var smsResp SMSResponse
	if err := json.Unmarshal(body, &smsResp); err != nil {
		// Some gateway routes answer with a plain-text acknowledgement.
		responseStr := strings.ToLower(strings.TrimSpace(string(body)))
		if strings.Contains(responseStr, "success") || strings.Contains(responseStr, "sent") {
			return nil
		}
		return fmt.Errorf("failed to parse SMS response: %w", err)
	}

	if smsResp.Status == "success" || smsResp.Status == "sent" {
		return nil
	}

	return fmt.Errorf("SMS sending failed: %s", smsResp.Message)
}

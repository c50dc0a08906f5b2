package utils

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const africasTalkingURL = "https://api.africastalking.com/version1/messaging"

// ATSender delivers SMS through the Africa's Talking messaging API.
type ATSender struct {
	Username string
	APIKey   string
	Endpoint string
	Client   *http.Client
}

func NewATSender(username, apiKey string) *ATSender {
	return &ATSender{
		Username: username,
		APIKey:   apiKey,
		Endpoint: africasTalkingURL,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *ATSender) Configured() bool {
	return s.Username != "" && s.APIKey != ""
}

func (s *ATSender) Send(ctx context.Context, message string, recipients []string) error {
	if s.Username == "" {
		return fmt.Errorf("africa's talking username not set")
	}
	if s.APIKey == "" {
		return fmt.Errorf("africa's talking API key not set")
	}

	// Prepare the form data
	data := url.Values{}
	data.Set("username", s.Username)
	data.Set("to", strings.Join(recipients, ","))
	data.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apiKey", s.APIKey)
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send SMS: status code %d", resp.StatusCode)
	}

	log.Printf("Successfully sent SMS to %d recipient(s)", len(recipients))
	return nil
}

// BookingConfirmationSMS is the short text sent to a customer after booking.
func BookingConfirmationSMS(company, customerName, bookingNumber, itemTitle string) string {
	return fmt.Sprintf("Hi %s, %s received your booking %s for %s. We will contact you shortly to confirm.",
		customerName, company, bookingNumber, itemTitle)
}

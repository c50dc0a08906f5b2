package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"sort"
	"strings"
	"time"
)

// SMTPMailer sends HTML mail through an authenticated SMTP relay.
type SMTPMailer struct {
	Host        string
	Port        string
	From        string
	Password    string
	CompanyName string
}

func (m *SMTPMailer) Configured() bool {
	return m.From != "" && m.Password != "" && m.Host != "" && m.Port != ""
}

func (m *SMTPMailer) Send(to []string, subject, body string) error {
	if !m.Configured() {
		return fmt.Errorf("email configuration not set")
	}

	// Headers
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", m.CompanyName, m.From)
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"
	headers["Date"] = time.Now().Format(time.RFC1123Z)
	headers["X-Mailer"] = "Tourbook-Mailer"

	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Build message
	var message strings.Builder
	for _, key := range keys {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", key, headers[key]))
	}
	message.WriteString("\r\n" + body)

	auth := smtp.PlainAuth("", m.From, m.Password, m.Host)

	err := smtp.SendMail(m.Host+":"+m.Port, auth, m.From, to, []byte(message.String()))
	if err != nil {
		log.Printf("Failed to send email: %v", err)
		return err
	}

	log.Printf("Successfully sent email to recipients: %v", to)
	return nil
}

// Common header for all emails
const emailHeader = `{{define "header"}}<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #1e88e5; margin: 0;">{{.Company}}</h2>
		</div>
		<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
{{end}}`

// Common footer for all emails
const emailFooter = `{{define "footer"}}
		</div>
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>&copy; {{.Year}} {{.Company}}. All rights reserved.</p>
		</div>
	</div>
</body>
</html>{{end}}`

const bookingDetailsBlock = `{{define "details"}}
			<table style="width: 100%; border-collapse: collapse;">
				<tr><td><strong>Booking number</strong></td><td>{{.BookingNumber}}</td></tr>
				<tr><td><strong>{{if eq .Type "service"}}Service{{else}}Tour{{end}}</strong></td><td>{{.ItemTitle}}</td></tr>
				<tr><td><strong>Start date</strong></td><td>{{.StartDate}}</td></tr>
				<tr><td><strong>Travelers</strong></td><td>{{.TotalTravelers}}</td></tr>
				<tr><td><strong>Total</strong></td><td>{{.TotalAmount}} {{.Currency}}</td></tr>
			</table>
{{end}}`

var emailTemplates = template.Must(template.New("email").Parse(emailHeader + emailFooter + bookingDetailsBlock + `
{{define "admin_booking_alert"}}{{template "header" .}}
			<h1 style="color: #2c3e50; text-align: center;">New Booking Received</h1>
			<p><strong>{{.CustomerName}}</strong> ({{.CustomerEmail}}, {{.CustomerPhone}}) submitted a booking.</p>
			{{template "details" .}}
			{{if .SpecialRequests}}<p><strong>Special requests:</strong> {{.SpecialRequests}}</p>{{end}}
			<div style="text-align: center; margin: 30px 0;">
				<a href="{{.DashboardURL}}" style="background-color: #1e88e5; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Open Dashboard</a>
			</div>
{{template "footer" .}}{{end}}

{{define "customer_booking_confirmation"}}{{template "header" .}}
			<h1 style="color: #2c3e50; text-align: center;">Thank You For Your Booking</h1>
			<p>Dear {{.CustomerName}},</p>
			<p>We have received your booking request. Our team will contact you shortly to confirm the details.</p>
			{{template "details" .}}
			<p>Best regards,<br>The {{.Company}} Team</p>
{{template "footer" .}}{{end}}

{{define "booking_status_update"}}{{template "header" .}}
			<h1 style="color: #2c3e50; text-align: center;">Booking Status Updated</h1>
			<p>Dear {{.CustomerName}},</p>
			<p>The status of your booking <strong>{{.BookingNumber}}</strong> changed from <strong>{{.PreviousStatus}}</strong> to <strong>{{.Status}}</strong>.</p>
			{{template "details" .}}
			<p>Best regards,<br>The {{.Company}} Team</p>
{{template "footer" .}}{{end}}

{{define "password_reset"}}{{template "header" .}}
			<h1 style="color: #2c3e50; text-align: center;">Password Reset Request</h1>
			<p>Hello {{.Name}},</p>
			<p>We received a request to reset your password. The link below expires in {{.ExpiresIn}}.</p>
			<div style="text-align: center; margin: 30px 0;">
				<a href="{{.ResetURL}}" style="background-color: #1e88e5; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Reset Password</a>
			</div>
			<p>If you didn't request this password reset, please ignore this email.</p>
{{template "footer" .}}{{end}}

{{define "test_email"}}{{template "header" .}}
			<h1 style="color: #2c3e50; text-align: center;">Test Email</h1>
			<p>Your email settings are working. Sent at {{.SentAt}}.</p>
{{template "footer" .}}{{end}}
`))

// BookingEmailData feeds the booking templates.
type BookingEmailData struct {
	Company         string
	Year            int
	DashboardURL    string
	BookingNumber   string
	Type            string
	ItemTitle       string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	StartDate       string
	TotalTravelers  int
	TotalAmount     string
	Currency        string
	SpecialRequests string
	PreviousStatus  string
	Status          string
}

type PasswordResetEmailData struct {
	Company   string
	Year      int
	Name      string
	ResetURL  string
	ExpiresIn string
}

type TestEmailData struct {
	Company string
	Year    int
	SentAt  string
}

// RenderEmail executes one of the named email templates.
func RenderEmail(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

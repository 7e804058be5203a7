package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/smarifurrahman/linguistic-horizons-server/models"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	Endpoint    string
	client      *http.Client
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

// NewEmailService returns nil when any setting is missing; a nil
// *BrevoService skips every send.
func NewEmailService(apiKey, senderEmail, senderName string) *BrevoService {
	if apiKey == "" || senderEmail == "" || senderName == "" {
		log.Println("⚠️ Email service not configured. Missing API Key, Sender Email, or Sender Name.")
		return nil
	}

	log.Printf("✅ Email service initialized, sending as %s <%s>", senderName, senderEmail)
	return &BrevoService{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
		Endpoint:    brevoEndpoint,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *BrevoService) Send(toEmail, toName, subject, htmlContent string) error {
	if s == nil {
		log.Println("Email client not initialized, skipping email send.")
		return nil
	}
	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}

	recipientName := toName
	if recipientName == "" {
		recipientName = toEmail[:strings.Index(toEmail, "@")]
	}

	body, err := json.Marshal(brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": toEmail, "name": recipientName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("brevo responded %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func (s *BrevoService) sendAsync(toEmail, toName, subject, htmlContent string) {
	go func() {
		if err := s.Send(toEmail, toName, subject, htmlContent); err != nil {
			log.Printf("🔥 Failed to send email to %s: %v", toEmail, err)
			return
		}
		log.Printf("✅ Email sent successfully to %s", toEmail)
	}()
}

// ClassReviewed tells the instructor an admin approved or denied the class.
func (s *BrevoService) ClassReviewed(c models.Class) {
	name := html.EscapeString(c.Name)
	switch c.Status {
	case models.ClassApproved:
		s.sendAsync(c.InstructorEmail, c.InstructorName,
			"Your class has been approved!",
			fmt.Sprintf("<h1>Congratulations!</h1><p>Your class <b>%s</b> is now open for enrollment.</p>", name))
	case models.ClassDenied:
		feedback := ""
		if c.Feedback != "" {
			feedback = fmt.Sprintf("<p>Feedback from the review: %s</p>", html.EscapeString(c.Feedback))
		}
		s.sendAsync(c.InstructorEmail, c.InstructorName,
			"Update on your class submission",
			fmt.Sprintf("<h1>Class Update</h1><p>Your class <b>%s</b> was not approved.</p>%s", name, feedback))
	}
}

func (s *BrevoService) StudentEnrolled(email string, c models.Class) {
	s.sendAsync(email, "",
		"Enrollment confirmed",
		fmt.Sprintf("<h1>Welcome aboard!</h1><p>You are enrolled in <b>%s</b> with %s.</p>",
			html.EscapeString(c.Name), html.EscapeString(c.InstructorName)))
}

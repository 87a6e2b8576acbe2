package service

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService sends transactional mail. Implementations must be safe
// for concurrent use.
type EmailService interface {
	Send(toEmail, toName, subject, plainText, htmlContent string) error
}

type sendGridService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewSendGridService(apiKey, fromEmail, fromName string) EmailService {
	return &sendGridService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridService) Send(toEmail, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

// noopEmailService is used when no SendGrid key is configured, e.g. in
// local development.
type noopEmailService struct{}

func NewNoopEmailService() EmailService { return noopEmailService{} }

func (noopEmailService) Send(toEmail, toName, subject, plainText, htmlContent string) error {
	return nil
}

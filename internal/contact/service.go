// Package contact handles enquiries from the public contact form.
package contact

import (
	"context"
	"fmt"
	"strings"

	"edpsych-connect/internal/common/aws"
	"edpsych-connect/internal/common/errors"
	"edpsych-connect/internal/common/logger"
	"edpsych-connect/internal/common/validation"
	"edpsych-connect/internal/common/zoho"
)

const leadSource = "Website Contact Form"

// Message is a contact form submission.
type Message struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// Receipt reports what happened to a message.
type Receipt struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	EmailID   string `json:"emailId,omitempty"`
	ContactID string `json:"contactId,omitempty"`
}

type Mailer interface {
	Send(ctx context.Context, email aws.Email) (string, error)
}

type CRM interface {
	UpsertContact(ctx context.Context, contact *zoho.Contact) (string, bool, error)
}

// Service forwards messages to the office inbox and records the sender in
// the CRM. Both collaborators are optional; the CRM is best-effort.
type Service struct {
	mailer Mailer
	inbox  string
	crm    CRM
	log    logger.Logger
}

type Option func(*Service)

// WithMailer sends each message to inbox.
func WithMailer(m Mailer, inbox string) Option {
	return func(s *Service) { s.mailer, s.inbox = m, inbox }
}

func WithCRM(c CRM) Option { return func(s *Service) { s.crm = c } }

func NewService(log logger.Logger, opts ...Option) *Service {
	s := &Service{log: log.WithFields(map[string]interface{}{"component": "contact"})}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Submit(ctx context.Context, msg Message) (*Receipt, error) {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	if msg.Name == "" || strings.TrimSpace(msg.Message) == "" {
		return nil, errors.NewValidationError("Name and message are required", "")
	}
	if !validation.ValidateEmail(msg.Email) {
		return nil, errors.NewValidationError("A valid email address is required", fmt.Sprintf("email: %q", msg.Email))
	}

	receipt := &Receipt{Success: true, Message: "Thank you for your message. We will be in touch shortly."}

	if s.mailer != nil {
		id, err := s.mailer.Send(ctx, aws.Email{
			To:      []string{s.inbox},
			ReplyTo: msg.Email,
			Subject: subjectLine(msg),
			Body:    emailBody(msg),
		})
		if err != nil {
			return nil, errors.NewNotificationSendFailedError("email", err)
		}
		receipt.EmailID = id
	}

	if s.crm != nil {
		first, last := splitName(msg.Name)
		id, created, err := s.crm.UpsertContact(ctx, &zoho.Contact{
			Email:       msg.Email,
			FirstName:   first,
			LastName:    last,
			Phone:       msg.Phone,
			Source:      leadSource,
			Description: msg.Message,
		})
		if err != nil {
			s.log.Warn("crm contact sync failed", map[string]interface{}{"error": err})
		} else {
			receipt.ContactID = id
			s.log.Debug("crm contact synced", map[string]interface{}{"contactId": id, "created": created})
		}
	}

	s.log.Info("contact message received", map[string]interface{}{
		"emailId":   receipt.EmailID,
		"contactId": receipt.ContactID,
	})
	return receipt, nil
}

func subjectLine(msg Message) string {
	if msg.Subject != "" {
		return "Contact form: " + msg.Subject
	}
	return "Contact form message from " + msg.Name
}

func emailBody(msg Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\n", msg.Name, msg.Email)
	if msg.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", msg.Phone)
	}
	fmt.Fprintf(&b, "\n%s\n", msg.Message)
	return b.String()
}

// splitName puts everything after the first word into the last name, which
// Zoho requires.
func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", parts[0]
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/voxpopuly/voxpopuly-api/internal/config"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

// checkEmailPreconditions reports whether an email should be sent. A false
// result with nil error means notifications are disabled.
func (s *EmailService) checkEmailPreconditions(to, operation string) (bool, error) {
	if !s.config.EnableEmailNotifications {
		logger.Debug("Email notifications disabled", "operation", operation)
		return false, nil
	}
	if s.config.ResendAPIKey == "" {
		return false, fmt.Errorf("cannot send %s: RESEND_API_KEY is not set", operation)
	}
	if strings.TrimSpace(to) == "" {
		return false, errors.New("email address is empty")
	}
	return true, nil
}

// SendDelegateAccountCreated welcomes a new delegate. The password is never
// included.
func (s *EmailService) SendDelegateAccountCreated(ctx context.Context, profile *models.Profile, email string, votingPoint string) error {
	data := struct {
		Name        string
		VotingPoint string
		AppURL      string
	}{
		Name:        profile.FullName,
		VotingPoint: votingPoint,
		AppURL:      s.config.AppURL,
	}
	return s.send(ctx, email, "Tu cuenta de delegado en VoxPopuly", "delegate_account.html", data)
}

// SendVoterRegistered tells a voter where and when to vote. The PIN is never
// included.
func (s *EmailService) SendVoterRegistered(ctx context.Context, name, email string, point *models.VotingPoint) error {
	data := struct {
		Name        string
		Election    string
		VotingPoint string
		Location    string
		StartDate   string
		EndDate     string
		AppURL      string
	}{
		Name:        name,
		Election:    point.Election.Title,
		VotingPoint: point.Name,
		Location:    point.Location,
		StartDate:   point.Election.StartDate.Format("02/01/2006 15:04"),
		EndDate:     point.Election.EndDate.Format("02/01/2006 15:04"),
		AppURL:      s.config.AppURL,
	}
	return s.send(ctx, email, "Registro de votante - "+point.Election.Title, "voter_registered.html", data)
}

func (s *EmailService) send(ctx context.Context, to, subject, templateName string, data interface{}) error {
	ok, err := s.checkEmailPreconditions(to, templateName)
	if !ok {
		return err
	}

	body, err := s.renderTemplate(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	if _, err := s.resendClient.Emails.SendWithContext(ctx, params); err != nil {
		logger.Error("Failed to send email", "to", to, "subject", subject, "error", err)
		return err
	}

	logger.Info("Email sent", "to", to, "subject", subject)
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

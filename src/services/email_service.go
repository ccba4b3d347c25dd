package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/rs/zerolog"

	"github.com/nestling-app/nestling-server/src/logging"
	"github.com/nestling-app/nestling-server/src/templates"
)

// Mailer sends transactional admin emails. The orchestrator depends on
// this interface so tests and unconfigured deployments can swap the
// Mailgun implementation out.
type Mailer interface {
	SendInvitationEmail(ctx context.Context, toEmail, roleName, acceptLink string, expiresInDays int) error
	SendPasswordResetEmail(ctx context.Context, toEmail, resetLink string, expiryMinutes int) error
}

// EmailService sends transactional emails via Mailgun
type EmailService struct {
	mg        *mailgun.MailgunImpl
	fromEmail string
	fromName  string
	domain    string
}

// NewEmailService creates a new email service with Mailgun configuration
func NewEmailService(domain, apiKey, fromEmail, fromName string) *EmailService {
	mg := mailgun.NewMailgun(domain, apiKey)
	mg.SetAPIBase(mailgun.APIBaseEU) // Use EU endpoint for GDPR compliance

	return &EmailService{
		mg:        mg,
		fromEmail: fromEmail,
		fromName:  fromName,
		domain:    domain,
	}
}

// SendInvitationEmail sends an admin invitation email with the accept link
func (s *EmailService) SendInvitationEmail(ctx context.Context, toEmail, roleName, acceptLink string, expiresInDays int) error {
	config, err := templates.LoadEmailConfig()
	if err != nil {
		return fmt.Errorf("failed to load email config: %w", err)
	}

	data := templates.InvitationData{
		RoleName:      roleName,
		AcceptLink:    acceptLink,
		ExpiresInDays: expiresInDays,
		BrandName:     config.Branding.Name,
		Tagline:       config.Branding.Tagline,
		Website:       config.Branding.Website,
		Greeting:      "Hi,",
		Intro:         config.Invitation.Intro,
		ButtonText:    config.Invitation.ButtonText,
		ExpiryWarning: config.Invitation.ExpiryWarning,
		IgnoreText:    config.Invitation.IgnoreText,
		PrimaryColor:  config.Design.PrimaryColor,
		TextColor:     config.Design.TextColor,
		MutedColor:    config.Design.MutedColor,
		LightBg:       config.Design.LightBg,
		BorderColor:   config.Design.BorderColor,
	}

	htmlBody, err := templates.RenderInvitationHTML(data)
	if err != nil {
		return fmt.Errorf("failed to render invitation email: %w", err)
	}
	textBody, err := templates.RenderInvitationText(data)
	if err != nil {
		return fmt.Errorf("failed to render invitation email: %w", err)
	}

	return s.send(ctx, toEmail, config.Subjects.Invitation, textBody, htmlBody)
}

// SendPasswordResetEmail sends a password reset email with the reset link
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, resetLink string, expiryMinutes int) error {
	config, err := templates.LoadEmailConfig()
	if err != nil {
		return fmt.Errorf("failed to load email config: %w", err)
	}

	data := templates.PasswordResetData{
		ResetLink:     resetLink,
		ExpiryMinutes: expiryMinutes,
		BrandName:     config.Branding.Name,
		Tagline:       config.Branding.Tagline,
		Website:       config.Branding.Website,
		Greeting:      "Hi,",
		Intro:         config.PasswordReset.Intro,
		ButtonText:    config.PasswordReset.ButtonText,
		ExpiryWarning: config.PasswordReset.ExpiryWarning,
		IgnoreText:    config.PasswordReset.IgnoreText,
		PrimaryColor:  config.Design.PrimaryColor,
		TextColor:     config.Design.TextColor,
		MutedColor:    config.Design.MutedColor,
		LightBg:       config.Design.LightBg,
		BorderColor:   config.Design.BorderColor,
	}

	htmlBody, err := templates.RenderPasswordResetHTML(data)
	if err != nil {
		return fmt.Errorf("failed to render password reset email: %w", err)
	}
	textBody, err := templates.RenderPasswordResetText(data)
	if err != nil {
		return fmt.Errorf("failed to render password reset email: %w", err)
	}

	return s.send(ctx, toEmail, config.Subjects.PasswordReset, textBody, htmlBody)
}

func (s *EmailService) send(ctx context.Context, toEmail, subject, textBody, htmlBody string) error {
	message := s.mg.NewMessage(
		fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail),
		subject,
		textBody,
		toEmail,
	)
	message.SetHtml(htmlBody)

	// Set timeout for sending
	ctxWithTimeout, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	_, _, err := s.mg.Send(ctxWithTimeout, message)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	return nil
}

// LogMailer logs outgoing emails instead of sending them. Used when no
// Mailgun credentials are configured, so local and test deployments can
// still exercise invitation and reset flows.
type LogMailer struct {
	log zerolog.Logger
}

// NewLogMailer creates a mailer that only logs
func NewLogMailer() *LogMailer {
	return &LogMailer{log: logging.NewLogger("mailer")}
}

func (m *LogMailer) SendInvitationEmail(_ context.Context, toEmail, roleName, acceptLink string, expiresInDays int) error {
	m.log.Info().
		Str("to", toEmail).
		Str("role", roleName).
		Str("accept_link", acceptLink).
		Int("expires_in_days", expiresInDays).
		Msg("Invitation email (sending disabled)")
	return nil
}

func (m *LogMailer) SendPasswordResetEmail(_ context.Context, toEmail, resetLink string, expiryMinutes int) error {
	m.log.Info().
		Str("to", toEmail).
		Str("reset_link", resetLink).
		Int("expiry_minutes", expiryMinutes).
		Msg("Password reset email (sending disabled)")
	return nil
}

package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	textTemplate "text/template"

	"gopkg.in/yaml.v3"
)

//go:embed emails/*
var emailTemplates embed.FS

// EmailConfig holds branding and copy for transactional admin emails,
// loaded from the embedded config.yaml
type EmailConfig struct {
	Branding struct {
		Name       string `yaml:"name"`
		Tagline    string `yaml:"tagline"`
		Website    string `yaml:"website"`
		ConsoleURL string `yaml:"console_url"`
	} `yaml:"branding"`

	Design struct {
		PrimaryColor string `yaml:"primary_color"`
		TextColor    string `yaml:"text_color"`
		MutedColor   string `yaml:"muted_color"`
		LightBg      string `yaml:"light_bg"`
		BorderColor  string `yaml:"border_color"`
	} `yaml:"design"`

	Subjects struct {
		Invitation    string `yaml:"invitation"`
		PasswordReset string `yaml:"password_reset"`
	} `yaml:"subjects"`

	Invitation struct {
		Intro         string `yaml:"intro"`
		ButtonText    string `yaml:"button_text"`
		ExpiryWarning string `yaml:"expiry_warning"`
		IgnoreText    string `yaml:"ignore_text"`
	} `yaml:"invitation"`

	PasswordReset struct {
		Intro         string `yaml:"intro"`
		ButtonText    string `yaml:"button_text"`
		ExpiryWarning string `yaml:"expiry_warning"`
		IgnoreText    string `yaml:"ignore_text"`
	} `yaml:"password_reset"`
}

// LoadEmailConfig loads email configuration from the embedded config.yaml
func LoadEmailConfig() (*EmailConfig, error) {
	data, err := emailTemplates.ReadFile("emails/config.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read email config: %w", err)
	}

	var config EmailConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse email config: %w", err)
	}

	return &config, nil
}

// InvitationData holds data for the admin invitation email template
type InvitationData struct {
	RoleName      string
	AcceptLink    string
	ExpiresInDays int

	BrandName     string
	Tagline       string
	Website       string
	Greeting      string
	Intro         string
	ButtonText    string
	ExpiryWarning string
	IgnoreText    string

	PrimaryColor string
	TextColor    string
	MutedColor   string
	LightBg      string
	BorderColor  string
}

// PasswordResetData holds data for the admin password reset email template
type PasswordResetData struct {
	ResetLink     string
	ExpiryMinutes int

	BrandName     string
	Tagline       string
	Website       string
	Greeting      string
	Intro         string
	ButtonText    string
	ExpiryWarning string
	IgnoreText    string

	PrimaryColor string
	TextColor    string
	MutedColor   string
	LightBg      string
	BorderColor  string
}

// RenderInvitationHTML renders the invitation HTML template
func RenderInvitationHTML(data InvitationData) (string, error) {
	return renderHTML("emails/invitation.html", data)
}

// RenderInvitationText renders the invitation plain text template
func RenderInvitationText(data InvitationData) (string, error) {
	return renderText("emails/invitation.txt", data)
}

// RenderPasswordResetHTML renders the password reset HTML template
func RenderPasswordResetHTML(data PasswordResetData) (string, error) {
	return renderHTML("emails/password_reset.html", data)
}

// RenderPasswordResetText renders the password reset plain text template
func RenderPasswordResetText(data PasswordResetData) (string, error) {
	return renderText("emails/password_reset.txt", data)
}

func renderHTML(name string, data interface{}) (string, error) {
	raw, err := emailTemplates.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	tmpl, err := template.New(name).Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderText(name string, data interface{}) (string, error) {
	raw, err := emailTemplates.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	tmpl, err := textTemplate.New(name).Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s: %w", name, err)
	}
	return buf.String(), nil
}

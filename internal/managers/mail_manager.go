package managers

import (
	"context"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"

	"github.com/MiguelSerea/taskmanagement/internal/config"
)

// MailMgr is an interface that outlines the contract for email management.
// It includes methods for sending welcome and password reset emails.
type MailMgr interface {
	SendWelcomeMail(email, name string) error
	SendPasswordResetMail(email, name, resetLink string) error
}

// MailManager is a concrete implementation of the MailMgr interface.
// It uses the Mailgun service for sending emails and the Hermes package for formatting emails.
type MailManager struct {
	Hermes      *hermes.Hermes
	Mailgun     *mailgun.MailgunImpl
	From        string
	Environment string
}

// SendWelcomeMail sends a welcome email to a newly registered user.
// The email content is formatted using the Hermes package and sent using the Mailgun service.
func (mm *MailManager) SendWelcomeMail(email, name string) error {
	if mm.Environment != "production" {
		log.Info("Skipping welcome mail in development mode")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: name,
			Intros: []string{
				"Welcome to TaskManagement! We're very excited to have you on board.",
				"Your account has been created and you can start organizing your tasks right away.",
			},
			Outros: []string{
				"If you have any questions, just reply to this email.",
			},
		},
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	return mm.send(email, "Welcome to TaskManagement", emailBody)
}

// SendPasswordResetMail sends the password reset link to the user.
// The link embeds a single-use token that expires after one hour.
func (mm *MailManager) SendPasswordResetMail(email, name, resetLink string) error {
	if mm.Environment != "production" {
		log.Info("Skipping password reset mail in development mode")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: name,
			Intros: []string{
				"You requested a password reset for your TaskManagement account.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "Click the button below to reset your password. The link expires in one hour.",
					Button: hermes.Button{
						Text: "Reset your password",
						Link: resetLink,
					},
				},
			},
			Outros: []string{
				"If you did not request a password reset, you can safely ignore this email.",
			},
		},
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	return mm.send(email, "Password Reset Request", emailBody)
}

func (mm *MailManager) send(email, subject, htmlBody string) error {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(2*time.Second))
	defer cancel()

	message := mm.Mailgun.NewMessage(mm.From, subject, "", email)
	message.SetHtml(htmlBody)
	_, _, err := mm.Mailgun.Send(ctx, message)
	if err != nil {
		log.Warning("Error sending mail: " + err.Error())
		return err
	}
	log.Debug("Mail sent to ", email)

	return nil
}

// NewMailManager initializes a new MailManager instance with configured Mailgun and Hermes settings.
// Outside production the manager logs instead of sending, so local runs and
// tests never reach Mailgun.
func NewMailManager(cfg *config.Config) MailMgr {
	log.Info("Initializing mail manager")

	if cfg.Environment != "production" {
		log.Println("Running in development mode, email will not be sent to users")
	}

	mailgunInstance := mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey)

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:      "TaskManagement",
				Link:      cfg.FrontendURL,
				Copyright: "© TaskManagement",
			},
		},
		Mailgun:     mailgunInstance,
		From:        cfg.MailFrom,
		Environment: cfg.Environment,
	}
	log.Info("Initialized mail manager")
	return mm
}

package services

import (
	"errors"
	"tableside_server/lib"
	"tableside_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/resend/resend-go/v3"
)

var errEmailNotConfigured = errors.New("email api key is not configured")

type EmailService struct {
	logger *gecho.Logger
	cfg    *structs.Config
	client *resend.Client // nil without an API key
}

func NewEmailService(logger *gecho.Logger, cfg *structs.Config) *EmailService {
	es := &EmailService{
		logger: logger,
		cfg:    cfg,
	}
	if cfg.Email.ApiKey != "" {
		es.client = resend.NewClient(cfg.Email.ApiKey)
	}
	return es
}

// SendEmail delivers an HTML email. Any failure, including a missing API key,
// is a *lib.PresentationError.
func (es *EmailService) SendEmail(to []string, subject string, body string) error {
	if es.client == nil {
		return &lib.PresentationError{Sink: "email", Err: errEmailNotConfigured}
	}

	params := &resend.SendEmailRequest{
		From:    es.cfg.Email.From,
		To:      to,
		Html:    body,
		Subject: subject,
	}

	sent, err := es.client.Emails.Send(params)
	if err != nil {
		es.logger.Error("Failed to send email", gecho.Field("error", err), gecho.Field("to", to))
		return &lib.PresentationError{Sink: "email", Err: err}
	}

	es.logger.Info("Email sent", gecho.Field("id", sent.Id), gecho.Field("subject", subject))
	return nil
}

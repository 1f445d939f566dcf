// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/autoimport-backend/internal/config"
)

// SendMailFunc matches smtp.SendMail.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type NotificationService struct {
	config   config.EmailConfig
	frontend config.FrontendConfig
	sendMail SendMailFunc
}

// OfferEmail is the data rendered into the offer message.
type OfferEmail struct {
	ClientName string
	Brand      string
	Model      string
	Year       string
	OfferLink  string
	SiteURL    string
	FromName   string
}

var offerTemplate = template.Must(template.New("offer").Parse(`<!DOCTYPE html>
<html>
<body>
	<h2>Bună ziua{{if .ClientName}}, {{.ClientName}}{{end}}!</h2>
	<p>Am pregătit oferta pentru solicitarea dumneavoastră: <strong>{{.Brand}} {{.Model}}{{if .Year}} ({{.Year}}){{end}}</strong>.</p>
	<p><a href="{{.OfferLink}}">Vezi oferta</a></p>
	<p>Puteți urmări solicitările în contul dumneavoastră: <a href="{{.SiteURL}}">{{.SiteURL}}</a></p>
	<p>Cu stimă,<br>{{.FromName}}</p>
</body>
</html>`))

func NewNotificationService(cfg config.EmailConfig, frontend config.FrontendConfig) *NotificationService {
	return &NotificationService{
		config:   cfg,
		frontend: frontend,
		sendMail: smtp.SendMail,
	}
}

// WithSendMail replaces the SMTP transport.
func (s *NotificationService) WithSendMail(fn SendMailFunc) *NotificationService {
	s.sendMail = fn
	return s
}

func (s *NotificationService) SendOfferEmail(ctx context.Context, to string, data OfferEmail) error {
	data.SiteURL = s.frontend.BaseURL
	data.FromName = s.config.FromName

	var body bytes.Buffer
	if err := offerTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Oferta pentru %s %s", data.Brand, data.Model)
	return s.sendEmail(ctx, to, subject, body.String())
}

func (s *NotificationService) sendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.config.SMTPHost == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("SMTP not configured; email not sent")
		return nil
	}

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%s", s.config.SMTPHost, s.config.SMTPPort)
	if err := s.sendMail(addr, auth, s.config.FromEmail, []string{to}, s.compose(to, subject, body)); err != nil {
		logrus.WithError(err).WithField("to", to).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("Email sent")
	return nil
}

func (s *NotificationService) compose(to, subject, body string) []byte {
	from := s.config.FromEmail
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.config.FromName), s.config.FromEmail)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(body)
	return []byte(msg.String())
}

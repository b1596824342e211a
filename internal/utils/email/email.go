package email

import (
	"bytes"
	"errors"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/installment-ledger/internal/config"
	"github.com/Dan9191/installment-ledger/internal/receipt"
)

// ErrDisabled is returned when no SMTP server is configured
var ErrDisabled = errors.New("email delivery is not configured")

// sendFunc delivers a prepared message
type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   sendFunc
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// Enabled reports whether an SMTP server is configured
func (s *Sender) Enabled() bool {
	return s.cfg.SMTPHost != ""
}

// SendReceipt emails a receipt as text with the XML version attached
func (s *Sender) SendReceipt(to string, r *receipt.Receipt) error {
	if !s.Enabled() {
		return ErrDisabled
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Recibo da parcela %d - %s", r.Installment.Number, r.Info.Property)

	body := fmt.Sprintf("Prezado(a) %s,\n\n", r.Info.PayerName)
	body += "Segue o recibo referente à parcela abaixo.\n\n"
	body += r.Text()
	body += "\nAtenciosamente,\n" + r.Info.RecipientName
	e.Text = []byte(body)

	xmlDoc, err := r.XML()
	if err != nil {
		return err
	}
	filename := fmt.Sprintf("recibo-%s-%03d.xml", r.Info.Buyer, r.Installment.Number)
	if _, err := e.Attach(bytes.NewReader(xmlDoc), filename, "application/xml"); err != nil {
		return fmt.Errorf("failed to attach receipt: %w", err)
	}

	// Send email
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send receipt to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

package utils

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"kalvi/config"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Attachment is a file carried inside a dispatch email.
type Attachment struct {
	Filename string
	MimeType string
	Data     []byte
}

// Mailer dispatches transactional email. SendGrid is the primary provider;
// plain SMTP (Gmail) is the fallback when no SendGrid key is configured or
// the SendGrid call fails.
type Mailer interface {
	Send(to, subject, htmlBody string, attachment *Attachment) error
}

// EmailService is the production Mailer.
type EmailService struct{}

// NewEmailService returns the config-driven mailer.
func NewEmailService() *EmailService {
	return &EmailService{}
}

// Send dispatches one email. No retries: a failed dispatch is terminal for
// the request and the user re-triggers manually.
func (s *EmailService) Send(to, subject, htmlBody string, attachment *Attachment) error {
	cfg := config.AppConfig

	if cfg.SendGridKey != "" {
		err := sendViaSendGrid(to, subject, htmlBody, attachment)
		if err == nil {
			return nil
		}
		log.Printf("[MAIL] SendGrid dispatch failed: %v", err)
		if cfg.SMTPUser == "" {
			return err
		}
		log.Printf("[MAIL] falling back to SMTP for %s", to)
	}

	if cfg.SMTPUser != "" {
		return sendViaSMTP(to, subject, htmlBody, attachment)
	}

	return fmt.Errorf("no email provider configured")
}

func sendViaSendGrid(to, subject, htmlBody string, attachment *Attachment) error {
	cfg := config.AppConfig

	from := sgmail.NewEmail("Kalvi", cfg.EmailSender)
	recipient := sgmail.NewEmail("", to)
	message := sgmail.NewSingleEmail(from, subject, recipient, stripTags(htmlBody), htmlBody)

	if attachment != nil {
		att := sgmail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(attachment.Data))
		att.SetType(attachment.MimeType)
		att.SetFilename(attachment.Filename)
		att.SetDisposition("attachment")
		message.AddAttachment(att)
	}

	client := sendgrid.NewSendClient(cfg.SendGridKey)
	resp, err := client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected dispatch: %d %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func sendViaSMTP(to, subject, htmlBody string, attachment *Attachment) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	cfg := config.AppConfig
	from := cfg.EmailSender
	if from == "" {
		from = cfg.SMTPUser
	}

	boundary := "kalvi-mail-boundary"

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: Kalvi <%s>\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if attachment == nil {
		msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		msg.WriteString(htmlBody)
	} else {
		msg.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary))

		msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		msg.WriteString(htmlBody)
		msg.WriteString("\r\n")

		msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		msg.WriteString(fmt.Sprintf("Content-Type: %s\r\n", attachment.MimeType))
		msg.WriteString("Content-Transfer-Encoding: base64\r\n")
		msg.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n\r\n", attachment.Filename))

		encoded := base64.StdEncoding.EncodeToString(attachment.Data)
		for len(encoded) > 76 {
			msg.WriteString(encoded[:76] + "\r\n")
			encoded = encoded[76:]
		}
		msg.WriteString(encoded + "\r\n")
		msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	}

	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, smtpHost)
	return smtp.SendMail(smtpHost+":"+smtpPort, auth, from, []string{to}, []byte(msg.String()))
}

// stripTags produces the plain-text sibling body SendGrid requires.
func stripTags(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// EmailTemplate wraps body content in the standard Kalvi layout.
func EmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1B5E20; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B1B1B; line-height: 1.6; }
			.content h2 { color: #1B5E20; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F5E9; padding: 15px; border-radius: 4px; border-left: 4px solid #1B5E20; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>KALVI &#2965;&#2994;&#3021;&#2997;&#3007;</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 Kalvi. All rights reserved.<br>
				For help call %s.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent, config.AppConfig.SupportPhone)
}

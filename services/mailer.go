package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"Gin_postgres_redis_borrow_admin/config"

	"go.uber.org/zap"
)

// Mailer delivers the generated password of a provisioned account.
type Mailer interface {
	SendPassword(ctx context.Context, to, username, password string) error
}

type SMTPConf struct {
	Host     string // SMTP_HOST, e.g. smtp.gmail.com
	Port     string // SMTP_PORT, e.g. 587
	Username string // SMTP_USERNAME
	Password string // SMTP_PASSWORD
	From     string // SMTP_FROM, falls back to Username
	AppName  string // APP_NAME
}

func LoadSMTPConf() SMTPConf {
	return SMTPConf{
		Host:     config.Get("SMTP_HOST", ""),
		Port:     config.Get("SMTP_PORT", "587"),
		Username: config.Get("SMTP_USERNAME", ""),
		Password: config.Get("SMTP_PASSWORD", ""),
		From:     config.Get("SMTP_FROM", ""),
		AppName:  config.Get("APP_NAME", "Equipment Borrowing"),
	}
}

type SMTPMailer struct{ Conf SMTPConf }

func NewSMTPMailer(conf SMTPConf) *SMTPMailer { return &SMTPMailer{Conf: conf} }

func (m *SMTPMailer) SendPassword(ctx context.Context, to, username, password string) error {
	conf := m.Conf
	// no SMTP configured: dev mode, log instead of sending
	if conf.Host == "" || (conf.Username == "" && conf.From == "") {
		zap.L().Info("[DEV] account provisioned",
			zap.String("to", to), zap.String("username", username), zap.String("password", password))
		return nil
	}
	if to == "" {
		return fmt.Errorf("no email address for %s", username)
	}

	fromAddr := conf.From
	if fromAddr == "" {
		fromAddr = conf.Username
	}
	subject := fmt.Sprintf("%s account", conf.AppName)
	htmlBody := fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <p>Hello,</p>
  <p>An account was created for you on <b>%s</b>.</p>
  <p>Username: <b>%s</b><br/>Password: <b>%s</b></p>
  <p>Please change the password after your first sign in.</p>
</div>
`, conf.AppName, username, password)

	msg := buildMIMEWithFromName(conf.AppName, fromAddr, to, subject, htmlBody)
	auth := smtp.PlainAuth("", conf.Username, conf.Password, conf.Host)
	return smtp.SendMail(conf.Host+":"+conf.Port, auth, fromAddr, []string{to}, []byte(msg))
}

func buildMIMEWithFromName(fromName, fromAddr, to, subject, html string) string {
	headers := []string{
		fmt.Sprintf("From: %s <%s>", fromName, fromAddr),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	return strings.Join(headers, "\r\n") + "\r\n\r\n" + html
}

type outgoingMail struct{ to, username, password string }

// flush sends after commit; a failed mail never undoes the record.
func flush(ctx context.Context, m Mailer, mails []outgoingMail) {
	if m == nil {
		return
	}
	for _, ml := range mails {
		if err := m.SendPassword(ctx, ml.to, ml.username, ml.password); err != nil {
			zap.L().Warn("password email failed", zap.String("username", ml.username), zap.Error(err))
		}
	}
}

package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"club-mailer/apperrors"
	"club-mailer/logger"

	mail "gopkg.in/gomail.v2"
)

var stripTagsRegex = regexp.MustCompile("<[^>]*>")

// SMTPTransport sends through an SMTP relay with gomail.
type SMTPTransport struct {
	host string
	send func(m ...*mail.Message) error
}

// NewSMTPTransport builds a dialer from smtp://[user:pass@]host[:port].
// Credentials in the URL take precedence over creds. smtps uses implicit TLS.
func NewSMTPTransport(u *url.URL, creds SMTPCredentials, log logger.Logger) (*SMTPTransport, error) {
	host := u.Hostname()
	if host == "" {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("smtp endpoint %q has no host", u.String()))
	}

	ssl := u.Scheme == "smtps"
	port := 587
	if ssl {
		port = 465
	}
	if p := u.Port(); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			return nil, apperrors.NewConfigurationError(fmt.Sprintf("invalid port in smtp endpoint: %v", err))
		}
		port = parsed
	}

	user, pass := creds.User, creds.Pass
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}

	d := mail.NewDialer(host, port, user, pass)
	d.SSL = ssl
	d.TLSConfig = &tls.Config{
		ServerName:         host,
		InsecureSkipVerify: creds.SkipTLSVerify,
	}
	if creds.SkipTLSVerify && log != nil {
		log.Warn("TLS certificate verification is disabled for SMTP", map[string]interface{}{"host": host})
	}

	return &SMTPTransport{host: host, send: d.DialAndSend}, nil
}

func (t *SMTPTransport) Name() string { return "smtp" }

// Send gives up waiting when ctx ends; gomail itself has no cancellation.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	m := buildMessage(msg)

	done := make(chan error, 1)
	go func() { done <- t.send(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("could not send email via %s: %w", t.host, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s abandoned: %w", msg.To, ctx.Err())
	}
}

func buildMessage(msg Message) *mail.Message {
	m := mail.NewMessage()
	m.SetAddressHeader("From", msg.FromEmail, msg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", stripTagsRegex.ReplaceAllString(msg.Body, ""))
	m.AddAlternative("text/html", msg.Body)
	return m
}

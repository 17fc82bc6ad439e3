package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"club-mailer/apperrors"
	"club-mailer/database"
	"club-mailer/logger"
)

// Message is one rendered email ready for a transport.
type Message struct {
	FromName  string
	FromEmail string
	To        string
	Subject   string
	Body      string
}

// Transport delivers a single message.
type Transport interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// TransportFactory builds a Transport for the current sender settings.
type TransportFactory interface {
	New(cfg *database.ClubConfig) (Transport, error)
}

// TransportFactoryFunc adapts a function to TransportFactory.
type TransportFactoryFunc func(cfg *database.ClubConfig) (Transport, error)

func (f TransportFactoryFunc) New(cfg *database.ClubConfig) (Transport, error) {
	return f(cfg)
}

// SMTPCredentials authenticate smtp:// endpoints.
type SMTPCredentials struct {
	User          string
	Pass          string
	SkipTLSVerify bool
}

// EndpointTransportFactory picks a transport from the endpoint URL scheme:
// smtp/smtps, http/https (JSON webhook relay) or ses://<region>.
type EndpointTransportFactory struct {
	SMTP       SMTPCredentials
	HTTPClient *http.Client
	Logger     logger.Logger
}

// NewEndpointTransportFactory returns a factory with a bounded HTTP client.
func NewEndpointTransportFactory(creds SMTPCredentials, timeout time.Duration, log logger.Logger) *EndpointTransportFactory {
	return &EndpointTransportFactory{
		SMTP:       creds,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     log,
	}
}

func (f *EndpointTransportFactory) New(cfg *database.ClubConfig) (Transport, error) {
	if missing := cfg.Missing(); len(missing) > 0 {
		return nil, apperrors.NewConfigurationError("missing " + strings.Join(missing, ", "))
	}

	u, err := url.Parse(strings.TrimSpace(cfg.TransportEndpoint))
	if err != nil || u.Scheme == "" {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("transport endpoint %q is not a URL", cfg.TransportEndpoint))
	}

	switch strings.ToLower(u.Scheme) {
	case "smtp", "smtps":
		t, err := NewSMTPTransport(u, f.SMTP, f.Logger)
		if err != nil {
			return nil, err
		}
		return t, nil
	case "http", "https":
		return NewWebhookTransport(u.String(), f.HTTPClient), nil
	case "ses":
		if u.Host == "" {
			return nil, apperrors.NewConfigurationError("ses endpoint needs a region, e.g. ses://eu-west-1")
		}
		return NewSESTransport(u.Host), nil
	default:
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("unsupported transport scheme %q", u.Scheme))
	}
}

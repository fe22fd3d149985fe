package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wneessen/go-mail"
)

// DefaultSendTimeout bounds one SMTP exchange when no timeout is configured.
const DefaultSendTimeout = 30 * time.Second

var validate = validator.New(validator.WithRequiredStructEnabled())

// SMTPConfig holds SMTP connection parameters. It is read once at
// construction; the sender never consults the environment itself.
type SMTPConfig struct {
	Host     string        `validate:"required,hostname_rfc1123|ip"`
	Port     int           `validate:"required,min=1,max=65535"`
	Username string        `validate:"required"`
	Password string        `validate:"required"`
	From     string        `validate:"omitempty,email"` // optional - defaults to Username
	Timeout  time.Duration // optional - defaults to DefaultSendTimeout

	tlsConfig *tls.Config // replaces go-mail's default TLS settings when set
}

// SMTPSender implements Sender using go-mail.
// Every Send opens a fresh connection, upgrades it with STARTTLS (implicit
// TLS on port 465), authenticates, delivers one message and quits.
type SMTPSender struct {
	config SMTPConfig
	logger *slog.Logger
}

// NewSMTPSender validates config and creates an SMTP sender.
func NewSMTPSender(config SMTPConfig, logger *slog.Logger) (*SMTPSender, error) {
	if err := validate.Struct(config); err != nil {
		return nil, configError("email.smtp", err)
	}
	if config.From == "" {
		config.From = config.Username
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultSendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SMTPSender{config: config, logger: logger}, nil
}

// From returns the address used when an Email leaves From empty.
func (s *SMTPSender) From() string {
	return s.config.From
}

// Send delivers email over a new SMTP connection.
func (s *SMTPSender) Send(ctx context.Context, email *Email) error {
	s.logger.Debug("smtp: preparing email",
		"to", email.To,
		"subject", email.Subject,
		"host", s.config.Host,
		"port", s.config.Port,
	)

	msg, err := s.buildMessage(email)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.config.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// buildMessage renders email as a single-part UTF-8 HTML message.
func (s *SMTPSender) buildMessage(email *Email) (*mail.Msg, error) {
	msg := mail.NewMsg(
		mail.WithCharset(mail.CharsetUTF8),
		mail.WithEncoding(mail.EncodingQP),
	)

	from := email.From
	if from == "" {
		from = s.config.From
	}
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}

	if err := msg.To(email.To...); err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}

	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextHTML, email.HTMLBody)

	for key, value := range email.Headers {
		msg.SetGenHeader(mail.Header(key), value)
	}

	return msg, nil
}

// clientOptions returns go-mail client options for the configured server.
func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTimeout(s.config.Timeout),
		mail.WithUsername(s.config.Username),
		mail.WithPassword(s.config.Password),
		mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
	}
	if s.config.tlsConfig != nil {
		opts = append(opts, mail.WithTLSConfig(s.config.tlsConfig))
	}

	if s.config.Port == 465 {
		// Implicit TLS (SMTPS)
		opts = append(opts, mail.WithSSL())
	} else {
		// Refuse to authenticate over a connection that could not be upgraded
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	return opts
}

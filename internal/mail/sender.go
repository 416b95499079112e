// Package mail delivers summary notifications over SMTP. Delivery failures
// are classified into a small set of sentinel errors so the web layer can
// show the user an actionable message instead of a raw SMTP transcript.
package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/textproto"
	"strings"
	"syscall"

	gomail "github.com/wneessen/go-mail"

	"csvdesk/internal/config"
)

// Delivery failure classes.
var (
	// ErrUnconfigured means SMTP host or credentials are missing. Checked
	// before dialing; nothing was attempted.
	ErrUnconfigured = errors.New("mail transport not configured")
	// ErrAuthFailed means the server rejected the configured credentials.
	ErrAuthFailed = errors.New("smtp authentication failed")
	// ErrDisconnected means the connection dropped mid-session.
	ErrDisconnected = errors.New("smtp server disconnected")
)

// Sender submits messages through the configured SMTP relay.
type Sender struct {
	cfg    config.MailConfig
	logger *slog.Logger
}

// NewSender creates a Sender. The configuration is not validated here;
// Send reports ErrUnconfigured when settings are incomplete.
func NewSender(cfg config.MailConfig, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{cfg: cfg, logger: logger}
}

// Configured reports whether Send can attempt delivery at all.
func (s *Sender) Configured() bool {
	return s.cfg.Configured()
}

// Send delivers a plain-text message to a single recipient. The returned
// error wraps one of the sentinel classes above where the cause is
// recognizable, so callers can branch with errors.Is.
func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	if !s.cfg.Configured() {
		return ErrUnconfigured
	}

	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.Sender()); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.Username),
		gomail.WithPassword(s.cfg.Password),
	}
	if s.cfg.UseSSL {
		opts = append(opts, gomail.WithSSL())
	} else if s.cfg.UseTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		classified := Classify(err)
		s.logger.Error("mail delivery failed",
			slog.String("recipient", to),
			slog.String("error", err.Error()))
		return classified
	}

	s.logger.Info("mail delivered",
		slog.String("recipient", to),
		slog.String("subject", subject))
	return nil
}

// Classify maps a raw delivery error onto one of the sentinel classes,
// wrapping the original so its detail is preserved. Unrecognized errors
// pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var proto *textproto.Error
	if errors.As(err, &proto) {
		switch proto.Code {
		case 530, 534, 535:
			return fmt.Errorf("%w: %v", ErrAuthFailed, err)
		}
	}

	if errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("%w: %v", ErrDisconnected, err)
	}

	// go-mail and net/smtp do not always surface typed errors, so fall
	// back to matching the response text.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "authentication failed"),
		strings.Contains(msg, "invalid credentials"),
		strings.Contains(msg, "username and password not accepted"):
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	case strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "unexpected eof"):
		return fmt.Errorf("%w: %v", ErrDisconnected, err)
	}

	return err
}

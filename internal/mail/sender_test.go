package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/textproto"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvdesk/internal/config"
)

func TestSender_Unconfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MailConfig
	}{
		{"all empty", config.MailConfig{}},
		{"missing host", config.MailConfig{Username: "u", Password: "p"}},
		{"missing username", config.MailConfig{Host: "smtp.example.com", Password: "p"}},
		{"missing password", config.MailConfig{Host: "smtp.example.com", Username: "u"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSender(tt.cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
			assert.False(t, s.Configured())
			err := s.Send(context.Background(), "to@example.com", "subject", "body")
			require.ErrorIs(t, err, ErrUnconfigured)
		})
	}
}

func TestSender_InvalidRecipient(t *testing.T) {
	cfg := config.MailConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "u",
		Password: "p",
		From:     "desk@example.com",
	}
	s := NewSender(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := s.Send(context.Background(), "not an address", "subject", "body")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnconfigured)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil passes through", nil, nil},
		{"535 bad credentials", &textproto.Error{Code: 535, Msg: "5.7.8 Bad credentials"}, ErrAuthFailed},
		{"534 auth mechanism", &textproto.Error{Code: 534, Msg: "5.7.9 Application-specific password required"}, ErrAuthFailed},
		{"530 auth required", &textproto.Error{Code: 530, Msg: "5.7.0 Authentication required"}, ErrAuthFailed},
		{"wrapped textproto", fmt.Errorf("send failed: %w", &textproto.Error{Code: 535, Msg: "no"}), ErrAuthFailed},
		{"eof", io.EOF, ErrDisconnected},
		{"connection reset", syscall.ECONNRESET, ErrDisconnected},
		{"broken pipe", syscall.EPIPE, ErrDisconnected},
		{"auth text fallback", errors.New("smtp: authentication failed"), ErrAuthFailed},
		{"disconnect text fallback", errors.New("read tcp: connection reset by peer"), ErrDisconnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestClassify_UnknownPassesThrough(t *testing.T) {
	orig := errors.New("452 4.2.2 mailbox full")
	got := Classify(orig)
	assert.Equal(t, orig, got)
	assert.NotErrorIs(t, got, ErrAuthFailed)
	assert.NotErrorIs(t, got, ErrDisconnected)
}

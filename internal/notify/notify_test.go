package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"trellolite/internal/model"
)

func TestNewWelcome(t *testing.T) {
	msg := NewWelcome(&model.User{ID: "42", Username: "ann", Email: "ann@example.com"})

	require.Equal(t, Welcome{
		UserID:   "42",
		Email:    "ann@example.com",
		Username: "ann",
		Subject:  "Welcome to Trello Lite",
		Body:     "Hi ann, welcome to our platform!",
	}, msg)
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	require.NoError(t, n.Welcome(context.Background(), &model.User{ID: "1", Username: "ann", Email: "ann@example.com"}))
	require.Equal(t, 1, logs.FilterMessage("welcome notification").Len())
}

func TestComposeMail(t *testing.T) {
	raw := string(composeMail("no-reply@example.com", NewWelcome(&model.User{Username: "ann", Email: "ann@example.com"})))

	head, body, ok := strings.Cut(raw, "\r\n\r\n")
	require.True(t, ok)
	require.Contains(t, head, "From: no-reply@example.com")
	require.Contains(t, head, "To: ann@example.com")
	require.Contains(t, head, "Subject: Welcome to Trello Lite")
	require.Equal(t, "Hi ann, welcome to our platform!\r\n", body)
}

func TestNewSMTPMailer_InvalidAddr(t *testing.T) {
	_, err := NewSMTPMailer("no-port", "", "", "a@b.c")
	require.Error(t, err)
}

type ackRecord struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ackRecord) Ack(uint64, bool) error { a.acked = true; return nil }
func (a *ackRecord) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}
func (a *ackRecord) Reject(_ uint64, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

type mailerFunc func(context.Context, Welcome) error

func (f mailerFunc) Send(ctx context.Context, msg Welcome) error { return f(ctx, msg) }

func TestPublisher_IsConnected(t *testing.T) {
	require.False(t, (&Publisher{}).IsConnected())
}

func TestConsumer_Handle(t *testing.T) {
	okBody := []byte(`{"userId":"1","email":"ann@example.com","username":"ann","subject":"s","body":"b"}`)
	failing := mailerFunc(func(context.Context, Welcome) error { return errors.New("relay down") })

	tests := []struct {
		name        string
		body        []byte
		redelivered bool
		mailer      Mailer
		want        ackRecord
	}{
		{
			name:   "delivered",
			body:   okBody,
			mailer: mailerFunc(func(_ context.Context, msg Welcome) error { require.Equal(t, "ann@example.com", msg.Email); return nil }),
			want:   ackRecord{acked: true},
		},
		{
			name:   "malformed payload is dropped",
			body:   []byte(`{not json`),
			mailer: failing,
			want:   ackRecord{nacked: true, requeue: false},
		},
		{
			name:   "missing recipient is dropped",
			body:   []byte(`{"userId":"1"}`),
			mailer: failing,
			want:   ackRecord{nacked: true, requeue: false},
		},
		{
			name:   "first failure is requeued",
			body:   okBody,
			mailer: failing,
			want:   ackRecord{nacked: true, requeue: true},
		},
		{
			name:        "second failure is dropped",
			body:        okBody,
			redelivered: true,
			mailer:      failing,
			want:        ackRecord{nacked: true, requeue: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &ackRecord{}
			c := &Consumer{mailer: tt.mailer, logger: zap.NewNop()}

			c.handle(context.Background(), amqp.Delivery{
				Acknowledger: rec,
				Body:         tt.body,
				Redelivered:  tt.redelivered,
			})
			require.Equal(t, tt.want, *rec)
		})
	}
}

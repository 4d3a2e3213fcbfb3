package email

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"testing"

	"github.com/ngo-pm/backend/internal/domain/notification"
	"github.com/ngo-pm/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testMessage() notification.Message {
	return notification.Message{
		To:      mail.Address{Name: "Amina", Address: "amina@example.org"},
		From:    mail.Address{Name: "NGO Project Tracker", Address: "no-reply@ngo-pm.local"},
		Subject: `[NGO Project Tracker] Project "Wells" is 3 days overdue`,
		HTML:    "<p>overdue</p>",
		Text:    "overdue",
	}
}

func TestSendGridGateway_Send(t *testing.T) {
	t.Run("posts the message", func(t *testing.T) {
		var (
			auth string
			body map[string]any
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v3/mail/send", r.URL.Path)
			auth = r.Header.Get("Authorization")
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &body)
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		gw := NewSendGridGateway("SG.test-key", WithSendGridHost(srv.URL))
		require.NoError(t, gw.Send(context.Background(), testMessage()))

		assert.Equal(t, "Bearer SG.test-key", auth)
		assert.Equal(t, `[NGO Project Tracker] Project "Wells" is 3 days overdue`, body["subject"])
		from := body["from"].(map[string]any)
		assert.Equal(t, "no-reply@ngo-pm.local", from["email"])
		content := body["content"].([]any)
		require.Len(t, content, 2)
		assert.Equal(t, "text/plain", content[0].(map[string]any)["type"])
	})

	t.Run("status 400 and above is a failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
		}))
		defer srv.Close()

		err := NewSendGridGateway("bad", WithSendGridHost(srv.URL)).Send(context.Background(), testMessage())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})

	t.Run("bad request is a failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errors":[{"field":"from.email"}]}`))
		}))
		defer srv.Close()

		err := NewSendGridGateway("SG.test-key", WithSendGridHost(srv.URL)).Send(context.Background(), testMessage())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 400")
		assert.Contains(t, err.Error(), "from.email")
	})

	t.Run("cancelled context aborts the request", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := NewSendGridGateway("SG.test-key", WithSendGridHost(srv.URL)).Send(ctx, testMessage())
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("invalid message is not sent", func(t *testing.T) {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		msg := testMessage()
		msg.To.Address = ""
		err := NewSendGridGateway("k", WithSendGridHost(srv.URL)).Send(context.Background(), msg)
		assert.ErrorIs(t, err, notification.ErrMissingRecipient)
		assert.False(t, called)
	})
}

func TestConsoleGateway_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gw := NewConsoleGateway(zap.New(core))

	require.NoError(t, gw.Send(context.Background(), testMessage()))

	require.Len(t, gw.Sent(), 1)
	assert.Equal(t, "amina@example.org", gw.Sent()[0].To.Address)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, `"Amina" <amina@example.org>`, logs.All()[0].ContextMap()["to"])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, gw.Send(ctx, testMessage()), context.Canceled)
}

func TestNewGateway(t *testing.T) {
	gw, err := NewGateway(config.NotificationConfig{Provider: config.EmailProviderConsole}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &ConsoleGateway{}, gw)

	gw, err = NewGateway(config.NotificationConfig{Provider: config.EmailProviderSendGrid, SendGridAPIKey: "SG.x"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &SendGridGateway{}, gw)

	_, err = NewGateway(config.NotificationConfig{Provider: config.EmailProviderSendGrid}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewGateway(config.NotificationConfig{Provider: "pigeon"}, zap.NewNop())
	assert.Error(t, err)
}

package notification

import (
	"net/mail"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDelivery() *Delivery {
	msg := Message{
		To:      mail.Address{Name: "Amina", Address: "amina@example.org"},
		From:    mail.Address{Name: "Tracker", Address: "noreply@example.org"},
		Subject: "Project overdue",
		HTML:    "<p>overdue</p>",
		Text:    "overdue",
	}
	return NewDelivery(uuid.New(), uuid.New(), KindProjectOverdue, msg, 3)
}

func TestNewDelivery(t *testing.T) {
	d := newTestDelivery()

	assert.Equal(t, DeliveryPending, d.Status)
	assert.Equal(t, 3, d.MaxRetries)
	assert.Equal(t, "amina@example.org", d.RecipientEmail)

	msg := d.Message()
	assert.Equal(t, "Amina", msg.To.Name)
	assert.Equal(t, "noreply@example.org", msg.From.Address)
	assert.Equal(t, "overdue", msg.Text)
}

func TestNewDelivery_DefaultRetries(t *testing.T) {
	d := NewDelivery(uuid.New(), uuid.New(), KindProjectOverdue, Message{}, 0)
	assert.Equal(t, DefaultMaxRetries, d.MaxRetries)
}

func TestDelivery_MarkFailed(t *testing.T) {
	t.Run("schedules retry with backoff", func(t *testing.T) {
		d := newTestDelivery()
		require.NoError(t, d.MarkProcessing())

		d.MarkFailed("gateway down")

		assert.Equal(t, DeliveryFailed, d.Status)
		assert.Equal(t, 1, d.RetryCount)
		assert.Equal(t, "gateway down", d.LastError)
		require.NotNil(t, d.NextRetryAt)
		assert.WithinDuration(t, d.UpdatedAt.Add(time.Second), *d.NextRetryAt, time.Millisecond)
		assert.True(t, d.CanRetry())
	})

	t.Run("dead letters after max retries", func(t *testing.T) {
		d := newTestDelivery()
		for i := 0; i < 3; i++ {
			d.MarkFailed("boom")
		}

		assert.True(t, d.IsDead())
		assert.Nil(t, d.NextRetryAt)
		assert.False(t, d.CanRetry())
	})
}

func TestDelivery_MarkSent(t *testing.T) {
	d := newTestDelivery()
	d.MarkFailed("transient")

	d.MarkSent()

	assert.Equal(t, DeliverySent, d.Status)
	assert.NotNil(t, d.SentAt)
	assert.Nil(t, d.NextRetryAt)
	assert.Empty(t, d.LastError)
}

func TestDelivery_MarkProcessing(t *testing.T) {
	d := newTestDelivery()
	d.MarkSent()

	assert.ErrorIs(t, d.MarkProcessing(), ErrNotClaimable)
}

func TestDelivery_ResetForRetry(t *testing.T) {
	t.Run("resets dead delivery", func(t *testing.T) {
		d := newTestDelivery()
		d.Status = DeliveryDead
		d.RetryCount = 3
		d.LastError = "some error"

		require.NoError(t, d.ResetForRetry())
		assert.Equal(t, DeliveryPending, d.Status)
		assert.Equal(t, 0, d.RetryCount)
		assert.Empty(t, d.LastError)
	})

	t.Run("fails for live delivery", func(t *testing.T) {
		for _, status := range []DeliveryStatus{DeliveryPending, DeliveryProcessing, DeliverySent, DeliveryFailed} {
			d := &Delivery{Status: status}
			assert.ErrorIs(t, d.ResetForRetry(), ErrNotDead)
		}
	})
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{5, 16 * time.Second},
		{12, 2048 * time.Second},
		{13, time.Hour},
		{40, time.Hour},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Backoff(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestMessage_Validate(t *testing.T) {
	valid := Message{To: mail.Address{Address: "a@b.org"}, Subject: "s", Text: "t"}
	assert.NoError(t, valid.Validate())

	noRecipient := valid
	noRecipient.To.Address = "  "
	assert.ErrorIs(t, noRecipient.Validate(), ErrMissingRecipient)

	noSubject := valid
	noSubject.Subject = ""
	assert.ErrorIs(t, noSubject.Validate(), ErrMissingSubject)

	noBody := valid
	noBody.Text = ""
	assert.ErrorIs(t, noBody.Validate(), ErrEmptyBody)
}

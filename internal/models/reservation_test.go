package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sohaibislam45/BookFlix-sub002/internal/models"
)

func TestReservationExpiresAt(t *testing.T) {
	queueExpiry := time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)
	pickupExpiry := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)

	pending := models.Reservation{Status: models.ReservationPending, QueueExpiryDate: queueExpiry}
	assert.Equal(t, queueExpiry, pending.ExpiresAt())

	// once ready, the shorter pickup window governs
	ready := models.Reservation{
		Status:           models.ReservationReady,
		QueueExpiryDate:  queueExpiry,
		PickupExpiryDate: &pickupExpiry,
	}
	assert.Equal(t, pickupExpiry, ready.ExpiresAt())
}

func TestReservationIsExpired(t *testing.T) {
	deadline := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	after := deadline.Add(time.Hour)
	before := deadline.Add(-time.Hour)

	tests := []struct {
		name   string
		status models.ReservationStatus
		now    time.Time
		want   bool
	}{
		{"pending past deadline", models.ReservationPending, after, true},
		{"pending before deadline", models.ReservationPending, before, false},
		{"ready past deadline", models.ReservationReady, after, true},
		{"completed never expires", models.ReservationCompleted, after, false},
		{"cancelled never expires", models.ReservationCancelled, after, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := models.Reservation{Status: tt.status, QueueExpiryDate: deadline}
			assert.Equal(t, tt.want, r.IsExpired(tt.now))
		})
	}
}

func TestReservationIsResolved(t *testing.T) {
	assert.False(t, (&models.Reservation{Status: models.ReservationPending}).IsResolved())
	assert.False(t, (&models.Reservation{Status: models.ReservationReady}).IsResolved())
	assert.True(t, (&models.Reservation{Status: models.ReservationCompleted}).IsResolved())
	assert.True(t, (&models.Reservation{Status: models.ReservationCancelled}).IsResolved())
	assert.True(t, (&models.Reservation{Status: models.ReservationExpired}).IsResolved())
}

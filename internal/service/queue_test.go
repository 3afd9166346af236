package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sohaibislam45/BookFlix-sub002/internal/models"
	"github.com/sohaibislam45/BookFlix-sub002/internal/service"
)

func TestOrderQueueByReservedDate(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	third := models.Reservation{ID: primitive.NewObjectID(), ReservedDate: base.AddDate(0, 0, 2)}
	first := models.Reservation{ID: primitive.NewObjectID(), ReservedDate: base}
	second := models.Reservation{ID: primitive.NewObjectID(), ReservedDate: base.AddDate(0, 0, 1)}

	queue := []models.Reservation{third, first, second}
	service.OrderQueue(queue)

	assert.Equal(t, first.ID, queue[0].ID)
	assert.Equal(t, second.ID, queue[1].ID)
	assert.Equal(t, third.ID, queue[2].ID)
}

func TestOrderQueueTieBreak(t *testing.T) {
	when := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// identical reserved dates fall back to creation order; ObjectIDs
	// generated in sequence sort the same way
	earlier := models.Reservation{ID: primitive.NewObjectID(), ReservedDate: when}
	later := models.Reservation{ID: primitive.NewObjectID(), ReservedDate: when}

	queue := []models.Reservation{later, earlier}
	service.OrderQueue(queue)

	assert.Equal(t, earlier.ID, queue[0].ID)
	assert.Equal(t, later.ID, queue[1].ID)
}

func TestOrderQueuePositionsContiguous(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	var queue []models.Reservation
	for i := 4; i >= 0; i-- {
		queue = append(queue, models.Reservation{
			ID:           primitive.NewObjectID(),
			ReservedDate: base.AddDate(0, 0, i),
		})
	}

	service.OrderQueue(queue)

	for i := 1; i < len(queue); i++ {
		assert.True(t, queue[i-1].ReservedDate.Before(queue[i].ReservedDate),
			"queue must be strictly ordered by reserved date")
	}
}

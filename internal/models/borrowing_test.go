package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sohaibislam45/BookFlix-sub002/internal/models"
)

func TestBorrowingIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	returned := now.Add(-time.Hour)

	tests := []struct {
		name         string
		dueDate      time.Time
		returnedDate *time.Time
		want         bool
	}{
		{"due in the future", now.AddDate(0, 0, 3), nil, false},
		{"due exactly now", now, nil, false},
		{"past due, still out", now.AddDate(0, 0, -1), nil, true},
		{"past due but returned", now.AddDate(0, 0, -1), &returned, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := models.Borrowing{DueDate: tt.dueDate, ReturnedDate: tt.returnedDate}
			assert.Equal(t, tt.want, b.IsOverdue(now))
		})
	}
}

func TestBorrowingDaysOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dueDate time.Time
		want    int
	}{
		{"three full days late", now.AddDate(0, 0, -3), 3},
		{"half a day late rounds up", now.Add(-12 * time.Hour), 1},
		{"not yet due", now.AddDate(0, 0, 2), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := models.Borrowing{DueDate: tt.dueDate}
			assert.Equal(t, tt.want, b.DaysOverdue(now))
		})
	}
}

func TestBorrowingDaysRemaining(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	b := models.Borrowing{DueDate: now.AddDate(0, 0, 7)}
	assert.Equal(t, 7, b.DaysRemaining(now))

	overdue := models.Borrowing{DueDate: now.AddDate(0, 0, -2)}
	assert.Equal(t, 0, overdue.DaysRemaining(now))
}

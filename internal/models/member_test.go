package models_test

import (
	"testing"

	"github.com/sohaibislam45/BookFlix-sub002/internal/models"
)

func TestIsValidSubscriptionType(t *testing.T) {
	tests := []struct {
		name    string
		subType string
		isValid bool
	}{
		{"Valid Free", string(models.SubscriptionFree), true},
		{"Valid Monthly", string(models.SubscriptionMonthly), true},
		{"Valid Yearly", string(models.SubscriptionYearly), true},
		{"Invalid Type", "GOLD", false},
		{"Empty Type", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := models.IsValidSubscriptionType(tt.subType); got != tt.isValid {
				t.Errorf("IsValidSubscriptionType() = %v, want %v", got, tt.isValid)
			}
		})
	}
}

func TestIsValidCopyStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		isValid bool
	}{
		{"Available", string(models.StatusAvailable), true},
		{"Borrowed", string(models.StatusBorrowed), true},
		{"Maintenance", string(models.StatusMaintenance), true},
		{"Invalid", "SHELVED", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := models.IsValidCopyStatus(tt.status); got != tt.isValid {
				t.Errorf("IsValidCopyStatus() = %v, want %v", got, tt.isValid)
			}
		})
	}
}

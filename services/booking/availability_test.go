package booking

import (
	"math"
	"testing"

	"beautycita/models"
)

func TestFlexibilityScoreNearSlots(t *testing.T) {
	slots := []models.AvailabilitySlot{
		{Date: "2024-03-05", Time: "09:00"},
		{Date: "2024-03-05", Time: "09:20"},
		{Date: "2024-03-05", Time: "10:30"},
		{Date: "2024-03-06", Time: "09:15"},
	}
	got := FlexibilityScore(slots, "2024-03-05", "09:15")
	if math.Round(got) != 67 {
		t.Fatalf("FlexibilityScore = %f, want 67 after rounding", got)
	}
}

func TestFlexibilityScoreCases(t *testing.T) {
	tests := []struct {
		name  string
		slots []models.AvailabilitySlot
		date  string
		time  string
		want  float64
	}{
		{"no slots", nil, "2024-03-05", "09:00", 0},
		{"other date only", []models.AvailabilitySlot{{Date: "2024-03-04", Time: "09:00"}}, "2024-03-05", "09:00", 0},
		{"exact boundary", []models.AvailabilitySlot{{Date: "2024-03-05", Time: "09:30"}}, "2024-03-05", "09:00", 100},
		{"just outside", []models.AvailabilitySlot{{Date: "2024-03-05", Time: "09:31"}}, "2024-03-05", "09:00", 0},
		{"earlier slot", []models.AvailabilitySlot{{Date: "2024-03-05", Time: "08:45"}, {Date: "2024-03-05", Time: "14:00"}}, "2024-03-05", "09:00", 50},
		{"bad requested time", []models.AvailabilitySlot{{Date: "2024-03-05", Time: "09:00"}}, "2024-03-05", "9am", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FlexibilityScore(tt.slots, tt.date, tt.time); got != tt.want {
				t.Errorf("FlexibilityScore() = %f, want %f", got, tt.want)
			}
		})
	}
}

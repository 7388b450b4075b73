package booking

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"beautycita/models"
)

// NearSlotMinutes is how far a slot may sit from the requested time and still count as near.
const NearSlotMinutes = 30

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(hhmm string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(hhmm), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", hhmm)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", hhmm)
	}
	return h*60 + m, nil
}

// FlexibilityScore measures how many of a stylist's slots on date sit within
// NearSlotMinutes of the requested time, as a percentage of that day's slots.
// A stylist with nothing on the date scores 0 but stays rankable.
func FlexibilityScore(slots []models.AvailabilitySlot, date, requested string) float64 {
	want, err := parseClock(requested)
	if err != nil {
		return 0
	}

	onDate, near := 0, 0
	for _, s := range slots {
		if s.Date != date {
			continue
		}
		onDate++
		got, err := parseClock(s.Time)
		if err != nil {
			continue
		}
		if diff := got - want; diff <= NearSlotMinutes && diff >= -NearSlotMinutes {
			near++
		}
	}
	if onDate == 0 {
		return 0
	}
	return math.Min(100, float64(near)/float64(onDate)*100)
}

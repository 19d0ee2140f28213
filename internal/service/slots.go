package service

import (
	"fmt"

	"stolik/internal/config"
)

// TimeSlots builds the bookable slot grid between open and close ("HH:MM",
// inclusive) with the given step in minutes.
func TimeSlots(open, close string, stepMinutes int) []string {
	start, err := config.ParseClock(open)
	if err != nil {
		return nil
	}
	end, err := config.ParseClock(close)
	if err != nil {
		return nil
	}
	if stepMinutes <= 0 {
		return nil
	}

	var slots []string
	for m := start; m <= end; m += stepMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

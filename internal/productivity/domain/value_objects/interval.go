package value_objects

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInterval = errors.New("reminder interval must be a positive number of minutes")
)

// ReminderInterval is a reminder cadence in minutes.
type ReminderInterval int

// NewReminderInterval validates a cadence in minutes.
func NewReminderInterval(minutes int) (ReminderInterval, error) {
	if minutes <= 0 {
		return 0, ErrInvalidInterval
	}
	return ReminderInterval(minutes), nil
}

// Minutes returns the cadence in minutes.
func (i ReminderInterval) Minutes() int {
	return int(i)
}

// Duration returns the cadence as a time.Duration.
func (i ReminderInterval) Duration() time.Duration {
	return time.Duration(i) * time.Minute
}

func (i ReminderInterval) String() string {
	return fmt.Sprintf("%dm", int(i))
}

// Shortest returns the smallest interval, or false when there is none.
func Shortest(intervals []ReminderInterval) (ReminderInterval, bool) {
	if len(intervals) == 0 {
		return 0, false
	}
	shortest := intervals[0]
	for _, iv := range intervals[1:] {
		if iv < shortest {
			shortest = iv
		}
	}
	return shortest, true
}

package rentals

import "time"

// Overlaps reports whether two half-open date ranges intersect. A rental
// ending exactly when another starts does not conflict.
func Overlaps(newStart, newEnd, existingStart, existingEnd time.Time) bool {
	return newStart.Before(existingEnd) && newEnd.After(existingStart)
}

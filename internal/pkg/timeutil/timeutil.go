// Package timeutil fixes the civil timezone used by lifecycle rules.
// Inventory operations happen in Brasilia time (UTC-3, no DST).
package timeutil

import "time"

var brasilia = time.FixedZone("BRT", -3*60*60)

// Now returns the current time in the Brasilia timezone.
func Now() time.Time {
	return time.Now().In(brasilia)
}

// In converts t to the Brasilia timezone.
func In(t time.Time) time.Time {
	return t.In(brasilia)
}

// Location returns the fixed Brasilia location.
func Location() *time.Location {
	return brasilia
}

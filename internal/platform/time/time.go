// Package time contains time related helpers for upstream epoch fields
package time

import "time"

// FromUnix converts fractional epoch seconds, as Reddit and the dumps emit them, to UTC
func FromUnix(sec float64) time.Time {
	whole := int64(sec)
	return time.Unix(whole, int64((sec-float64(whole))*1e9)).UTC()
}

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

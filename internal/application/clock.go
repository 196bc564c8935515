package application

import "time"

// Clock is the time source of the services.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC, truncated to the precision the store keeps.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c).UTC() }

// FilePath: internal/clock/clock.go

// Package clock supplies the wall clock used to stamp registrations and
// readings in the deployment's local zone.
package clock

import "time"

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// System reads time.Now.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns T. Useful in tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// Stamp converts now into zone and truncates to microseconds so the value
// survives a round-trip through either store unchanged.
func Stamp(now time.Time, zone *time.Location) time.Time {
	if zone == nil {
		zone = time.UTC
	}
	return now.In(zone).Truncate(time.Microsecond)
}

// Stamper pairs a Clock with a zone.
type Stamper struct {
	clock Clock
	zone  *time.Location
}

func NewStamper(c Clock, zone *time.Location) *Stamper {
	if c == nil {
		c = System{}
	}
	return &Stamper{clock: c, zone: zone}
}

// Now returns the current instant in the configured zone.
func (s *Stamper) Now() time.Time {
	return Stamp(s.clock.Now(), s.zone)
}

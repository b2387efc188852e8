package clock

import (
	"hotel/shared/timezone"
	"time"
)

// Clock supplies the current time in the application timezone.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return timezone.Now()
}

func New() Clock {
	return systemClock{}
}

// Fixed always reports the same instant.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time {
	return f.At
}

package motion

import "time"

// Clock provides time for frame-duration measurement. The default
// implementation uses system time. Tests can inject a fake clock via
// [Engine.SetClock] to control timing deterministically.
type Clock interface {
	Now() time.Time
}

// realClock uses system time.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

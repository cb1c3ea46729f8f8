package packages

import (
	"fmt"
	"time"
)

// ExpiredLabel is what FormatRemaining returns once a window has closed.
const ExpiredLabel = "Expired"

// Remaining is end minus now. It is negative once the window has passed.
func Remaining(end, now time.Time) time.Duration {
	return end.Sub(now)
}

// IsExpired reports whether no time is left in the window.
func IsExpired(end, now time.Time) bool {
	return Remaining(end, now) <= 0
}

// FormatRemaining renders the time left for display. Under an hour it counts
// minutes, otherwise days, both rounded up.
func FormatRemaining(end, now time.Time) string {
	left := Remaining(end, now)
	if left <= 0 {
		return ExpiredLabel
	}
	if left < time.Hour {
		return plural(ceilDiv(left, time.Minute), "minute")
	}
	return plural(ceilDiv(left, 24*time.Hour), "day")
}

func ceilDiv(d, unit time.Duration) int64 {
	n := int64(d / unit)
	if d%unit != 0 {
		n++
	}
	return n
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

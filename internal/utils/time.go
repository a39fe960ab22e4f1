package utils

import "time"

// NowUTC returns current time in UTC, truncated to whole seconds so it
// compares equal after a round trip through a DATETIME column.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

package utils

import "time"

// DaysSinceJoined is the whole number of days since signup, shown on
// profiles and the dashboard.
func DaysSinceJoined(createdAt time.Time) int {
	return int(time.Since(createdAt).Hours() / 24)
}

package utils

import "time"

const DateLayout = "2006-01-02"

// Today returns the current calendar day as yyyy-MM-dd in local time.
func Today() string {
	return time.Now().Format(DateLayout)
}

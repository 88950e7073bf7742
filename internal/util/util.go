// Package util holds small formatting helpers shared by the delivery and logging paths.
package util

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders a validity window for humans, e.g. "10 minutes" or "1 hour 30 minutes".
// Durations are rounded to the second; anything below one second reads as "less than a second".
func FormatDuration(duration time.Duration) string {
	duration = duration.Round(time.Second)
	if duration < time.Second {
		return "less than a second"
	}

	h := int(duration.Hours())
	m := int(duration.Minutes()) % 60
	s := int(duration.Seconds()) % 60

	parts := make([]string, 0, 2)
	if h > 0 {
		parts = append(parts, plural(h, "hour"))
	}
	if m > 0 {
		parts = append(parts, plural(m, "minute"))
	}
	if h == 0 && s > 0 {
		parts = append(parts, plural(s, "second"))
	}

	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}

	return fmt.Sprintf("%d %ss", n, unit)
}

// MaskEmail keeps the first character of the local part and the domain: "a***@example.com".
func MaskEmail(email string) string {
	local, domain, found := strings.Cut(email, "@")
	if !found || local == "" {
		return "***"
	}

	return local[:1] + "***@" + domain
}

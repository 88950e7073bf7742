// Package lifecycle holds shared start/stop settings for long-lived components.
package lifecycle

import "time"

// DefaultTimeout bounds start hooks (database ping) and graceful shutdowns.
const DefaultTimeout = 15 * time.Second

package sqlite

import (
	"strings"
	"time"
)

const (
	maxBusyRetries = 5
	busyBackoff    = 10 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy runs fn, retrying with a linear backoff while SQLite reports
// the database as locked.
func retryOnBusy(fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxBusyRetries; attempt++ {
		err = fn()
		if !isSQLiteBusy(err) {
			return err
		}
		if attempt < maxBusyRetries {
			time.Sleep(time.Duration(attempt) * busyBackoff)
		}
	}
	return err
}

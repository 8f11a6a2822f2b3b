package commands

import (
	"time"

	"cardvault/contexts/account-management/account-service/ports"
)

func currentTime(clock ports.Clock) time.Time {
	if clock != nil {
		return clock.Now().UTC()
	}
	return time.Now().UTC()
}

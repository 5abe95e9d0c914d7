/*
Package clock abstracts the ledger's time source. Production code injects
Wall(); tests inject a Manual clock so temporal rules (permitted drift,
transaction window, approval expiry) can be exercised deterministically.
*/
package clock

import "time"

// Clock supplies the ledger time. The ledger reads it once per call and
// uses that value for every item in the batch.
type Clock interface {
	Now() time.Time
}

// Wall returns a Clock backed by the system clock.
func Wall() Clock { return wallClock{} }

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

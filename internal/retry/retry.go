// Package retry holds the stateful exponential backoff shared by the upstream
// clients and the publishing pipeline.
package retry

import (
	"time"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
)

// Backoff doubles a delay from Initial up to Max.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration

	current time.Duration
}

// Next returns the delay to wait now and advances the sequence.
func (b *Backoff) Next() time.Duration {
	if b.current == 0 {
		b.current = b.Initial
	}
	d := b.current
	b.current = sharedretry.NextBackoff(b.current, b.Max)
	return d
}

// Reset restarts the sequence at Initial.
func (b *Backoff) Reset() {
	b.current = 0
}

package domain

import (
	"context"
	"time"
)

// Catalog looks up near-Earth objects.
type Catalog interface {
	// Feed lists objects with a close approach between start and end
	// (inclusive dates). Zero values select today and a week later.
	Feed(ctx context.Context, start, end time.Time) ([]CatalogRecord, error)

	// Lookup fetches one object by id. Unknown ids yield ErrNotFound.
	Lookup(ctx context.Context, id string) (CatalogRecord, error)
}

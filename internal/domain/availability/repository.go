package availability

import "context"

// Repository loads and stores the known date set. The set is always replaced
// wholesale.
type Repository interface {
	// Load returns the persisted set. found is false when no prior state
	// exists, in which case the set is empty and err is nil.
	Load(ctx context.Context) (set KnownDateSet, found bool, err error)
	Save(ctx context.Context, set KnownDateSet) error
}

// Source fetches the raw available dates from the remote scheduling system.
type Source interface {
	AvailableDates(ctx context.Context) ([]string, error)
}

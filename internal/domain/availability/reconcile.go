package availability

import "time"

// Result is the outcome of one reconciliation.
type Result struct {
	// Today is the calendar date of the run's captured "now".
	Today Date
	// Observed holds the fetched dates that are not in the past.
	Observed []Date
	// NewlyFound holds observed dates that were not known before the run.
	NewlyFound []Date
	// Pruned holds known dates dropped because they are in the past.
	Pruned []Date
	// Updated is the known set to persist: unexpired known dates plus NewlyFound.
	Updated KnownDateSet
}

func (r Result) HasNew() bool {
	return len(r.NewlyFound) > 0
}

// ShouldPersist reports whether Updated differs from the set the run started
// with. A run that only pruned expired dates still rewrites the state so that
// stale dates do not linger in storage.
func (r Result) ShouldPersist() bool {
	return len(r.NewlyFound) > 0 || len(r.Pruned) > 0
}

// Reconcile compares the observed raw dates against the known set. A date is
// in the past when it falls strictly before the calendar date of now in loc;
// today's date is still actionable. known is not modified.
func Reconcile(known KnownDateSet, observedRaw []string, now time.Time, loc *time.Location) (Result, error) {
	observed, err := NormalizeObserved(observedRaw)
	if err != nil {
		return Result{}, err
	}

	today := DateOf(now, loc)
	res := Result{
		Today:   today,
		Updated: make(KnownDateSet, len(known)),
	}

	for _, d := range observed {
		if d.Before(today) {
			continue
		}
		res.Observed = append(res.Observed, d)
		if !known.Contains(d) {
			res.NewlyFound = append(res.NewlyFound, d)
		}
	}

	for _, d := range known.Sorted() {
		if d.Before(today) {
			res.Pruned = append(res.Pruned, d)
			continue
		}
		res.Updated.Add(d)
	}
	for _, d := range res.NewlyFound {
		res.Updated.Add(d)
	}

	return res, nil
}

package availability

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jan1 = time.Date(2023, time.January, 1, 9, 30, 0, 0, time.UTC)

func TestReconcile_Scenarios(t *testing.T) {
	mar3 := NewDate(2023, time.March, 3)
	dec1 := NewDate(2022, time.December, 1)

	tests := []struct {
		name        string
		known       KnownDateSet
		observed    []string
		wantNew     []Date
		wantUpdated []Date
		wantPruned  []Date
		wantPersist bool
	}{
		{
			name:        "first run reports everything",
			known:       NewKnownDateSet(),
			observed:    []string{"3/3/2023"},
			wantNew:     []Date{mar3},
			wantUpdated: []Date{mar3},
			wantPersist: true,
		},
		{
			name:        "already known",
			known:       NewKnownDateSet(mar3),
			observed:    []string{"3/3/2023"},
			wantUpdated: []Date{mar3},
		},
		{
			name:        "past known date is pruned",
			known:       NewKnownDateSet(dec1),
			observed:    []string{"3/3/2023"},
			wantNew:     []Date{mar3},
			wantUpdated: []Date{mar3},
			wantPruned:  []Date{dec1},
			wantPersist: true,
		},
		{
			name:        "nil known set",
			known:       nil,
			observed:    []string{"Fri Mar 03 2023"},
			wantNew:     []Date{mar3},
			wantUpdated: []Date{mar3},
			wantPersist: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Reconcile(tt.known, tt.observed, jan1, time.UTC)
			require.NoError(t, err)

			assert.Equal(t, tt.wantNew, res.NewlyFound)
			assert.Equal(t, tt.wantUpdated, res.Updated.Sorted())
			assert.Equal(t, tt.wantPruned, res.Pruned)
			assert.Equal(t, len(tt.wantNew) > 0, res.HasNew())
			assert.Equal(t, tt.wantPersist, res.ShouldPersist())
		})
	}
}

func TestReconcile_MalformedObservedFails(t *testing.T) {
	known := NewKnownDateSet(NewDate(2023, time.March, 3))

	res, err := Reconcile(known, []string{"3/4/2023", "soon"}, jan1, time.UTC)
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "soon", perr.Value)
	assert.Nil(t, res.Updated)
	assert.False(t, res.ShouldPersist())
	assert.Equal(t, 1, known.Len(), "known set must not be touched")
}

func TestReconcile_PastObservedNeverNew(t *testing.T) {
	res, err := Reconcile(NewKnownDateSet(), []string{"12/31/2022", "1/1/2023", "1/2/2023"}, jan1, time.UTC)
	require.NoError(t, err)

	// today counts as actionable
	assert.Equal(t, []Date{NewDate(2023, time.January, 1), NewDate(2023, time.January, 2)}, res.NewlyFound)
	assert.Equal(t, res.NewlyFound, res.Observed)
}

func TestReconcile_NoDuplicateReporting(t *testing.T) {
	known := NewKnownDateSet(NewDate(2023, time.February, 1), NewDate(2023, time.March, 3))
	observed := []string{"2/1/2023", "Fri Mar 03 2023", "2023-03-04", "3/4/2023", "3/5/2023"}

	res, err := Reconcile(known, observed, jan1, time.UTC)
	require.NoError(t, err)

	for _, d := range res.NewlyFound {
		assert.False(t, known.Contains(d), "%s was already known", d)
	}
	assert.Equal(t, []Date{NewDate(2023, time.March, 4), NewDate(2023, time.March, 5)}, res.NewlyFound)
}

func TestReconcile_PrunesPastEvenWhenObservedAgain(t *testing.T) {
	dec1 := NewDate(2022, time.December, 1)
	known := NewKnownDateSet(dec1, NewDate(2023, time.February, 1))

	res, err := Reconcile(known, []string{"12/1/2022", "2/1/2023"}, jan1, time.UTC)
	require.NoError(t, err)

	assert.False(t, res.Updated.Contains(dec1))
	assert.Equal(t, []Date{dec1}, res.Pruned)
	assert.Empty(t, res.NewlyFound)
	assert.True(t, res.ShouldPersist(), "prune-only runs rewrite the state")
}

func TestReconcile_EmptyFetch(t *testing.T) {
	t.Run("nothing to prune", func(t *testing.T) {
		res, err := Reconcile(NewKnownDateSet(NewDate(2023, time.March, 3)), nil, jan1, time.UTC)
		require.NoError(t, err)
		assert.Empty(t, res.NewlyFound)
		assert.False(t, res.ShouldPersist())
	})

	t.Run("prunes expired", func(t *testing.T) {
		res, err := Reconcile(NewKnownDateSet(NewDate(2022, time.December, 1)), []string{}, jan1, time.UTC)
		require.NoError(t, err)
		assert.Empty(t, res.NewlyFound)
		assert.Equal(t, 0, res.Updated.Len())
		assert.True(t, res.ShouldPersist())
	})
}

func TestReconcile_RerunFindsNothing(t *testing.T) {
	observed := []string{"3/3/2023", "3/10/2023", "Sat Mar 11 2023"}

	first, err := Reconcile(NewKnownDateSet(NewDate(2022, time.December, 1)), observed, jan1, time.UTC)
	require.NoError(t, err)
	require.Len(t, first.NewlyFound, 3)

	second, err := Reconcile(first.Updated, observed, jan1, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, second.NewlyFound)
	assert.False(t, second.ShouldPersist())
	assert.Equal(t, first.Updated, second.Updated)
}

func TestReconcile_TodayFollowsLocation(t *testing.T) {
	// 02:00 UTC on Jan 2 is still Jan 1 in New York.
	now := time.Date(2023, time.January, 2, 2, 0, 0, 0, time.UTC)
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	res, err := Reconcile(NewKnownDateSet(), []string{"1/1/2023"}, now, ny)
	require.NoError(t, err)
	assert.Equal(t, NewDate(2023, time.January, 1), res.Today)
	assert.Len(t, res.NewlyFound, 1)

	res, err = Reconcile(NewKnownDateSet(), []string{"1/1/2023"}, now, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, res.NewlyFound)
}

func TestParseKnown(t *testing.T) {
	set, err := ParseKnown([]string{"Wed Jan 25 2023", "1/25/2023", "", "2023-02-01"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-01-25", "2023-02-01"}, set.Strings())

	_, err = ParseKnown([]string{"2023-02-01", "later"})
	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
}

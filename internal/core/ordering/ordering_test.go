package ordering_test

import (
	"testing"
	"time"

	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/ordering"
	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestCompare(t *testing.T) {
	testCases := []struct {
		name string
		a, b ordering.Position
		want int
	}{
		{"earlier date", ordering.At(day(1), 9), ordering.At(day(2), 1), -1},
		{"later date", ordering.At(day(3), 1), ordering.At(day(2), 9), 1},
		{"same date lower sequence", ordering.At(day(2), 1), ordering.At(day(2), 2), -1},
		{"same date higher sequence", ordering.At(day(2), 5), ordering.At(day(2), 2), 1},
		{"identical", ordering.At(day(2), 2), ordering.At(day(2), 2), 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ordering.Compare(tc.a, tc.b))
			assert.Equal(t, tc.want < 0, ordering.Before(tc.a, tc.b))
			assert.Equal(t, tc.want > 0, ordering.After(tc.a, tc.b))
		})
	}
}

func TestAtNormalizesTimeOfDay(t *testing.T) {
	noon := time.Date(2024, time.March, 2, 12, 34, 56, 789, time.FixedZone("X", 3600))
	p := ordering.At(noon, 1)
	assert.Equal(t, day(2), p.OccurredOn)
	assert.Equal(t, time.UTC, p.OccurredOn.Location())
}

func TestEndOfDaySortsAfterSameDateEntries(t *testing.T) {
	eod := ordering.EndOfDay(day(2))
	assert.True(t, ordering.After(eod, ordering.At(day(2), 1<<40)))
	assert.True(t, ordering.Before(eod, ordering.At(day(3), 0)))
}

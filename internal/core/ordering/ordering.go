// Package ordering defines the total order over ledger entries: occurred_on
// ascending, then insertion sequence ascending. Every query and every delta
// computation must use this one definition of "before"/"after".
package ordering

import (
	"math"
	"time"
)

// MaxSequence sorts after every sequence the database can assign. A position
// built with it sits after all existing entries on the same date.
const MaxSequence int64 = math.MaxInt64

// Position is where an entry sits in an account's chronological order.
type Position struct {
	OccurredOn time.Time // calendar date, normalized to UTC midnight
	Sequence   int64
}

// At builds a position from a date and sequence, normalizing the date.
func At(occurredOn time.Time, sequence int64) Position {
	return Position{OccurredOn: Date(occurredOn), Sequence: sequence}
}

// EndOfDay is the position after every entry dated occurredOn.
func EndOfDay(occurredOn time.Time) Position {
	return Position{OccurredOn: Date(occurredOn), Sequence: MaxSequence}
}

// Date strips any time-of-day component, keeping the calendar date in UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Compare returns -1, 0, or 1 as a sorts before, equal to, or after b.
func Compare(a, b Position) int {
	switch {
	case a.OccurredOn.Before(b.OccurredOn):
		return -1
	case a.OccurredOn.After(b.OccurredOn):
		return 1
	case a.Sequence < b.Sequence:
		return -1
	case a.Sequence > b.Sequence:
		return 1
	default:
		return 0
	}
}

// Before reports whether a sorts strictly before b.
func Before(a, b Position) bool {
	return Compare(a, b) < 0
}

// After reports whether a sorts strictly after b.
func After(a, b Position) bool {
	return Compare(a, b) > 0
}

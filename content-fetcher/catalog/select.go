package catalog

import (
	"errors"
	"fmt"
	"hash/fnv"
	"time"
)

// ErrEmptyPool is returned when no quote passes the quality threshold.
var ErrEmptyPool = errors.New("no quotes above threshold")

// Eligible returns the quotes with quality at or above threshold.
func Eligible(quotes []Quote, threshold int) []Quote {
	out := make([]Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Quality >= threshold {
			out = append(out, q)
		}
	}
	return out
}

// DailyQuote picks the same quote for every call on the same calendar day.
func DailyQuote(quotes []Quote, day time.Time, threshold int) (Quote, error) {
	return pick(quotes, day.Format(time.DateOnly), threshold)
}

// WeeklyQuote picks the same quote for every day of an ISO week.
func WeeklyQuote(quotes []Quote, day time.Time, threshold int) (Quote, error) {
	year, week := day.ISOWeek()
	return pick(quotes, fmt.Sprintf("%d-W%02d", year, week), threshold)
}

func pick(quotes []Quote, seed string, threshold int) (Quote, error) {
	pool := Eligible(quotes, threshold)
	if len(pool) == 0 {
		return Quote{}, ErrEmptyPool
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return pool[h.Sum32()%uint32(len(pool))], nil //nolint:gosec // len is positive
}

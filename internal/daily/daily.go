// Package daily picks the quote of the day from the pool of quotes the
// player has not seen yet.
package daily

import (
	"errors"
	"slices"
	"time"

	"github.com/samber/lo"

	"quotle/internal/types"
)

const millisPerDay = 24 * 60 * 60 * 1000

// ErrEmptyPool means there is nothing to select from. It is a configuration
// problem and, unlike exhaustion, is never recovered by recycling.
var ErrEmptyPool = errors.New("daily: quote pool is empty")

// DayIndex counts whole UTC days since the Unix epoch.
func DayIndex(t time.Time) int64 {
	ms := t.UnixMilli()
	day := ms / millisPerDay
	if ms%millisPerDay < 0 {
		day--
	}
	return day
}

// UsedSet is the ordered set of quote ids already shown to the player.
type UsedSet []string

func (u UsedSet) Has(id string) bool {
	return slices.Contains(u, id)
}

// With returns a copy of u that also contains id.
func (u UsedSet) With(id string) UsedSet {
	if u.Has(id) {
		return slices.Clone(u)
	}
	return append(slices.Clone(u), id)
}

// Select returns the quote for today and the used set including it. When
// every quote of the pool has been used the set starts over from empty.
// Ids in used that are not in pool are ignored. Neither argument is modified.
func Select(today time.Time, pool []types.Quote, used UsedSet) (types.Quote, UsedSet, error) {
	if len(pool) == 0 {
		return types.Quote{}, used, ErrEmptyPool
	}

	seen := lo.Associate(used, func(id string) (string, struct{}) {
		return id, struct{}{}
	})
	available := lo.Filter(pool, func(q types.Quote, _ int) bool {
		_, ok := seen[q.ID]
		return !ok
	})
	if len(available) == 0 {
		used = nil
		available = pool
	}

	n := int64(len(available))
	index := DayIndex(today) % n
	if index < 0 {
		index += n
	}
	chosen := available[index]
	return chosen, used.With(chosen.ID), nil
}

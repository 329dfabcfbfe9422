package daily

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"quotle/internal/store"
	"quotle/internal/types"
)

// UsedKey is the store key holding the player's used quote ids.
const UsedKey = "usedQuoteIds"

// Selector runs Select against a used set kept in a store.
type Selector struct {
	store  store.Store
	logger *log.Logger
}

func NewSelector(s store.Store, logger *log.Logger) *Selector {
	return &Selector{store: s, logger: logger}
}

// Pick selects today's quote and persists the updated used set.
func (s *Selector) Pick(ctx context.Context, today time.Time, pool []types.Quote) (types.Quote, error) {
	used, err := s.Used(ctx)
	if err != nil {
		return types.Quote{}, err
	}

	quote, updated, err := Select(today, pool, used)
	if err != nil {
		return types.Quote{}, err
	}
	if len(updated) <= len(used) {
		s.logger.Info("all quotes used, starting over", "pool", len(pool), "used", len(used))
	}

	data, err := json.Marshal(updated)
	if err != nil {
		return types.Quote{}, fmt.Errorf("encode used set: %w", err)
	}
	if err := s.store.Save(ctx, UsedKey, string(data)); err != nil {
		return types.Quote{}, fmt.Errorf("save used set: %w", err)
	}

	s.logger.Debug("picked daily quote", "quote", quote.ID, "day", DayIndex(today), "used", len(updated))
	return quote, nil
}

// Used loads the persisted used set. A missing key is an empty set; an
// unreadable value is logged and treated the same way.
func (s *Selector) Used(ctx context.Context) (UsedSet, error) {
	raw, ok, err := s.store.Load(ctx, UsedKey)
	if err != nil {
		return nil, fmt.Errorf("load used set: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var used UsedSet
	if err := json.Unmarshal([]byte(raw), &used); err != nil {
		s.logger.Warn("discarding corrupted used set", "error", err)
		return nil, nil
	}
	return used, nil
}

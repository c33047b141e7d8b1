package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"ulemsee/internal/models"
)

const DefaultHistoryMaxItems = 100

var ErrNotFound = errors.New("history item not found")

// HistoryRepo is the in-memory history log. It lives only as long as the
// process; once more than maxItems entries are stored the oldest is evicted.
type HistoryRepo struct {
	mu       sync.Mutex
	items    []*models.HistoryEntry // oldest first
	maxItems int
}

func NewHistoryRepo(maxItems int) *HistoryRepo {
	if maxItems <= 0 {
		maxItems = DefaultHistoryMaxItems
	}
	return &HistoryRepo{
		items:    make([]*models.HistoryEntry, 0, maxItems),
		maxItems: maxItems,
	}
}

// Create appends an entry and returns how many entries were evicted to make room.
func (r *HistoryRepo) Create(ctx context.Context, entry *models.HistoryEntry) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, entry)

	evicted := 0
	for len(r.items) > r.maxItems {
		r.items[0] = nil
		r.items = r.items[1:]
		evicted++
	}
	return evicted, nil
}

// List returns entries newest first. A limit <= 0 returns everything.
func (r *HistoryRepo) List(ctx context.Context, limit int) ([]*models.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	out := make([]*models.HistoryEntry, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		e := *r.items[i]
		out = append(out, &e)
	}
	r.mu.Unlock()

	// Insertion order already matches recency; the stable sort only matters
	// when callers supply their own timestamps.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *HistoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.items {
		if e.ID == id {
			last := len(r.items) - 1
			copy(r.items[i:], r.items[i+1:])
			r.items[last] = nil
			r.items = r.items[:last]
			return nil
		}
	}
	return ErrNotFound
}

// Clear removes every entry and reports how many were removed.
func (r *HistoryRepo) Clear(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.items)
	r.items = make([]*models.HistoryEntry, 0, r.maxItems)
	return n, nil
}

func (r *HistoryRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

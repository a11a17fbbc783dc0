package matching

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

var errBroken = errors.New("broken store")

// memStore is an in-memory ItemStore and MatchStore.
type memStore struct {
	mu      sync.Mutex
	items   map[int64]*model.Item
	matches []*model.Match

	failGet     bool
	failUpsert  map[int64]bool // by found item id
	blockUpsert bool           // until the context is done
	upsertCalls int
}

func newMemStore(items ...*model.Item) *memStore {
	s := &memStore{items: map[int64]*model.Item{}, failUpsert: map[int64]bool{}}
	for _, it := range items {
		s.items[it.ID] = it
	}
	return s
}

func (s *memStore) GetItem(_ context.Context, id int64) (*model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return nil, errBroken
	}
	it, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (s *memStore) ListActiveItems(_ context.Context, status string) ([]model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Item
	for _, it := range s.items {
		if it.Status == status && it.ItemStatus == model.ItemStatusActive {
			out = append(out, *it)
		}
	}
	slices.SortFunc(out, func(a, b model.Item) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s *memStore) FindMatch(_ context.Context, lostID, foundID int64) (*model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.LostItemID == lostID && m.FoundItemID == foundID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) UpsertMatch(ctx context.Context, lostID, foundID int64, score float64) (*model.Match, bool, error) {
	if s.blockUpsert {
		<-ctx.Done()
		return nil, false, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertCalls++
	if s.failUpsert[foundID] {
		return nil, false, errBroken
	}
	for _, m := range s.matches {
		if m.LostItemID == lostID && m.FoundItemID == foundID {
			m.MatchScore = score
			m.UpdatedAt = time.Now()
			cp := *m
			return &cp, false, nil
		}
	}
	m := &model.Match{
		ID:          int64(len(s.matches) + 1),
		LostItemID:  lostID,
		FoundItemID: foundID,
		MatchScore:  score,
		Status:      model.MatchStatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	s.matches = append(s.matches, m)
	cp := *m
	return &cp, true, nil
}

func (s *memStore) GetMatch(_ context.Context, id int64) (*model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || int(id) > len(s.matches) {
		return nil, nil
	}
	cp := *s.matches[id-1]
	return &cp, nil
}

func (s *memStore) UpdateMatchStatus(_ context.Context, id int64, status, notes string) (*model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || int(id) > len(s.matches) {
		return nil, nil
	}
	m := s.matches[id-1]
	m.Status = status
	m.Notes = notes
	cp := *m
	return &cp, nil
}

func (s *memStore) ListMatchesForUser(_ context.Context, userID int64) ([]model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Match
	for _, m := range s.matches {
		if s.items[m.LostItemID].UserID == userID || s.items[m.FoundItemID].UserID == userID {
			out = append(out, *m)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Match) int {
		switch {
		case a.MatchScore > b.MatchScore:
			return -1
		case a.MatchScore < b.MatchScore:
			return 1
		}
		return int(a.ID - b.ID)
	})
	return out, nil
}

func (s *memStore) matchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

// recordingNotifier collects notifications.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []model.Notification
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, notif model.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	n.sent = append(n.sent, notif)
	return n.err
}

func (n *recordingNotifier) all() []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.sent)
}

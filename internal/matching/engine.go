package matching

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/lostfound/internal/model"
)

// Engine defaults.
const (
	DefaultWorkers       = 4
	DefaultStoreTimeout  = 5 * time.Second
	DefaultNotifyTimeout = 10 * time.Second
)

// lockStripes is the number of mutexes upserts are spread across.
const lockStripes = 64

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	Workers       int
	StoreTimeout  time.Duration
	NotifyTimeout time.Duration
	Logger        *slog.Logger
}

// Engine creates matches between lost and found items and drives their
// pending, confirmed and rejected lifecycle.
type Engine struct {
	items    ItemStore
	matches  MatchStore
	notifier Notifier

	workers       int
	storeTimeout  time.Duration
	notifyTimeout time.Duration
	log           *slog.Logger

	locks [lockStripes]sync.Mutex

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

// NewEngine returns an Engine. notifier may be nil.
func NewEngine(items ItemStore, matches MatchStore, notifier Notifier, opts Options) *Engine {
	e := &Engine{
		items:         items,
		matches:       matches,
		notifier:      notifier,
		workers:       opts.Workers,
		storeTimeout:  opts.StoreTimeout,
		notifyTimeout: opts.NotifyTimeout,
		log:           opts.Logger,
	}
	if e.workers <= 0 {
		e.workers = DefaultWorkers
	}
	if e.storeTimeout <= 0 {
		e.storeTimeout = DefaultStoreTimeout
	}
	if e.notifyTimeout <= 0 {
		e.notifyTimeout = DefaultNotifyTimeout
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

// EvaluateNewItem scores the item against every active item of the opposite
// direction and upserts a match for each pair at or above Threshold. status
// is the direction the caller expects the item to have.
//
// An item that is not active, or whose direction differs from status, yields
// an empty result. Failures on individual candidates are logged and skipped.
// The returned matches follow the candidate order.
func (e *Engine) EvaluateNewItem(ctx context.Context, itemID int64, status string) ([]model.Match, error) {
	if itemID <= 0 || !model.ValidStatus(status) {
		return nil, fmt.Errorf("evaluating item %d as %q: %w", itemID, status, ErrInvalidInput)
	}

	item, err := e.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}
	if item.Status != status || item.ItemStatus != model.ItemStatusActive {
		e.log.Debug("skipping evaluation",
			"item_id", item.ID, "status", item.Status, "item_status", item.ItemStatus, "expected", status)
		return nil, nil
	}

	candidates, err := e.listActive(ctx, model.OppositeStatus(status))
	if err != nil {
		return nil, err
	}

	results := make([]*model.Match, len(candidates))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range candidates {
		if ctx.Err() != nil {
			break
		}
		candidate := &candidates[i]
		g.Go(func() error {
			m, err := e.evaluatePair(ctx, item, candidate)
			if err != nil {
				e.log.Warn("skipping candidate",
					"item_id", item.ID, "candidate_id", candidate.ID, "error", err)
				return nil
			}
			results[i] = m
			return nil
		})
	}
	// Candidate failures are logged above, never returned.
	g.Wait()

	switch err := ctx.Err(); {
	case errors.Is(err, context.DeadlineExceeded):
		return nil, storeErr(fmt.Sprintf("evaluating item %d", itemID), err)
	case err != nil:
		return nil, fmt.Errorf("evaluating item %d: %w", itemID, err)
	}

	var out []model.Match
	for _, m := range results {
		if m != nil {
			out = append(out, *m)
		}
	}

	e.log.Info("evaluated item",
		"item_id", item.ID, "status", item.Status, "candidates", len(candidates), "matches", len(out))
	return out, nil
}

// evaluatePair scores item against candidate and upserts the match when it is
// accepted. It returns nil when the pair scores below Threshold.
func (e *Engine) evaluatePair(ctx context.Context, item, candidate *model.Item) (*model.Match, error) {
	lost, found := item, candidate
	if item.Status == model.StatusFound {
		lost, found = candidate, item
	}

	res := Aggregate(lost, found)
	e.log.Debug("scored pair",
		"lost_item_id", lost.ID,
		"found_item_id", found.ID,
		"score", res.Score,
		"category", res.Breakdown.CategoryScore,
		"title", res.Breakdown.TitleScore,
		"description", res.Breakdown.DescriptionScore,
		"location", res.Breakdown.LocationScore,
		"keywords", res.Breakdown.KeywordScore,
	)
	if !res.Accepted() {
		return nil, nil
	}

	mu := e.lockFor(lost.ID, found.ID)
	mu.Lock()
	defer mu.Unlock()

	sctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()

	m, created, err := e.matches.UpsertMatch(sctx, lost.ID, found.ID, res.Score)
	if err != nil {
		return nil, storeErr("upserting match", err)
	}
	if created {
		e.log.Info("match created",
			"match_id", m.ID, "lost_item_id", lost.ID, "found_item_id", found.ID, "score", m.MatchScore)
		e.notifyParticipants(ctx, m, lost, found)
	}
	return m, nil
}

// Compare scores a lost item against a found item without persisting
// anything. The existing match for the pair is returned when there is one.
func (e *Engine) Compare(ctx context.Context, lostItemID, foundItemID int64) (Result, *model.Match, error) {
	if lostItemID <= 0 || foundItemID <= 0 {
		return Result{}, nil, fmt.Errorf("comparing %d and %d: %w", lostItemID, foundItemID, ErrInvalidInput)
	}

	lost, err := e.requireItem(ctx, lostItemID)
	if err != nil {
		return Result{}, nil, err
	}
	found, err := e.requireItem(ctx, foundItemID)
	if err != nil {
		return Result{}, nil, err
	}
	if lost.Status != model.StatusLost || found.Status != model.StatusFound {
		return Result{}, nil, fmt.Errorf("item %d must be lost and item %d found: %w",
			lostItemID, foundItemID, ErrInvalidInput)
	}

	sctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()
	existing, err := e.matches.FindMatch(sctx, lost.ID, found.ID)
	if err != nil {
		return Result{}, nil, storeErr("finding match", err)
	}

	return Aggregate(lost, found), existing, nil
}

// Confirm marks the match as confirmed. The caller must own one of its items.
// Confirming a match that is already decided overwrites the decision.
func (e *Engine) Confirm(ctx context.Context, matchID, callerID int64, notes string) (*model.Match, error) {
	return e.decide(ctx, matchID, callerID, model.MatchStatusConfirmed, notes)
}

// Reject marks the match as rejected. The caller must own one of its items.
func (e *Engine) Reject(ctx context.Context, matchID, callerID int64, notes string) (*model.Match, error) {
	return e.decide(ctx, matchID, callerID, model.MatchStatusRejected, notes)
}

func (e *Engine) decide(ctx context.Context, matchID, callerID int64, status, notes string) (*model.Match, error) {
	if _, err := e.Get(ctx, matchID, callerID); err != nil {
		return nil, err
	}

	sctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()

	m, err := e.matches.UpdateMatchStatus(sctx, matchID, status, notes)
	if err != nil {
		return nil, storeErr("updating match status", err)
	}
	if m == nil {
		return nil, fmt.Errorf("match %d: %w", matchID, ErrNotFound)
	}

	e.log.Info("match decided", "match_id", m.ID, "status", m.Status, "user_id", callerID)
	return m, nil
}

// Get returns the match if callerID owns its lost or its found item.
func (e *Engine) Get(ctx context.Context, matchID, callerID int64) (*model.Match, error) {
	if matchID <= 0 || callerID <= 0 {
		return nil, fmt.Errorf("match %d for user %d: %w", matchID, callerID, ErrInvalidInput)
	}

	sctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	m, err := e.matches.GetMatch(sctx, matchID)
	cancel()
	if err != nil {
		return nil, storeErr("getting match", err)
	}
	if m == nil {
		return nil, fmt.Errorf("match %d: %w", matchID, ErrNotFound)
	}

	lost, err := e.requireItem(ctx, m.LostItemID)
	if err != nil {
		return nil, err
	}
	found, err := e.requireItem(ctx, m.FoundItemID)
	if err != nil {
		return nil, err
	}
	if callerID != lost.UserID && callerID != found.UserID {
		return nil, fmt.Errorf("match %d for user %d: %w", matchID, callerID, ErrForbidden)
	}
	return m, nil
}

// ListForUser returns the matches involving userID's items, best first.
func (e *Engine) ListForUser(ctx context.Context, userID int64) ([]model.Match, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("listing matches for user %d: %w", userID, ErrInvalidInput)
	}

	sctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()

	matches, err := e.matches.ListMatchesForUser(sctx, userID)
	if err != nil {
		return nil, storeErr("listing matches", err)
	}
	return matches, nil
}

// Wait blocks until all notifications dispatched so far have finished.
// Evaluations must not run concurrently with Wait; use Close at shutdown.
func (e *Engine) Wait() {
	e.pending.Wait()
}

// Close stops the engine from sending further notifications and waits for
// those already dispatched. Matches are still created after Close.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.pending.Wait()
}

func (e *Engine) notifyParticipants(ctx context.Context, m *model.Match, lost, found *model.Item) {
	if e.notifier == nil {
		return
	}

	link := fmt.Sprintf("/matches/%d", m.ID)
	e.dispatch(ctx, model.Notification{
		UserID:  lost.UserID,
		Type:    model.NotificationTypeMatch,
		Title:   "Potential Match Found!",
		Message: fmt.Sprintf("A potential match for your lost item %q was found!", lost.Title),
		Link:    link,
	})
	e.dispatch(ctx, model.Notification{
		UserID:  found.UserID,
		Type:    model.NotificationTypeMatch,
		Title:   "Your Found Item May Help!",
		Message: fmt.Sprintf("Your found item %q may match a lost item someone is looking for!", found.Title),
		Link:    link,
	})
}

// dispatch sends n in the background. The send outlives ctx's cancellation
// but is bounded by the notify timeout.
func (e *Engine) dispatch(ctx context.Context, n model.Notification) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.log.Warn("engine closed, dropping notification", "user_id", n.UserID, "link", n.Link)
		return
	}
	e.pending.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.pending.Done()

		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.notifyTimeout)
		defer cancel()

		if err := e.notifier.Notify(nctx, n); err != nil {
			e.log.Error("sending notification", "user_id", n.UserID, "link", n.Link, "error", err)
		}
	}()
}

func (e *Engine) getItem(ctx context.Context, id int64) (*model.Item, error) {
	sctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()

	item, err := e.items.GetItem(sctx, id)
	if err != nil {
		return nil, storeErr("getting item", err)
	}
	return item, nil
}

func (e *Engine) requireItem(ctx context.Context, id int64) (*model.Item, error) {
	item, err := e.getItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return item, nil
}

func (e *Engine) listActive(ctx context.Context, status string) ([]model.Item, error) {
	sctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()

	items, err := e.items.ListActiveItems(sctx, status)
	if err != nil {
		return nil, storeErr("listing candidates", err)
	}
	return items, nil
}

func (e *Engine) lockFor(lostItemID, foundItemID int64) *sync.Mutex {
	var key [16]byte
	binary.LittleEndian.PutUint64(key[:8], uint64(lostItemID))
	binary.LittleEndian.PutUint64(key[8:], uint64(foundItemID))

	h := fnv.New32a()
	h.Write(key[:])
	return &e.locks[h.Sum32()%lockStripes]
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

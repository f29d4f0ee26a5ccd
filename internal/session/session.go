// Package session drives one study app: it owns the item store, the
// scheduling policy, the review cycle and the selected rows.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/at-ishikawa/flashdeck/internal/catalog"
	"github.com/at-ishikawa/flashdeck/internal/deck"
	"github.com/at-ishikawa/flashdeck/internal/media"
	"github.com/at-ishikawa/flashdeck/internal/progress"
	"github.com/at-ishikawa/flashdeck/internal/srs"
)

var (
	// ErrUnknownItem means the displayed item is not in the store. It is a
	// programming error, not a recoverable state.
	ErrUnknownItem     = errors.New("current item is not in the store")
	ErrUnknownRow      = errors.New("unknown row")
	ErrNothingToUnlock = errors.New("every row is already enabled")
)

// DeferFunc runs f after d and returns a function canceling it. f must not
// be called synchronously.
type DeferFunc func(d time.Duration, f func()) (cancel func())

// AfterFunc is the DeferFunc backed by time.AfterFunc.
func AfterFunc(d time.Duration, f func()) func() {
	timer := time.AfterFunc(d, f)
	return func() {
		timer.Stop()
	}
}

type Options struct {
	Source     catalog.Source
	Mode       string
	Repository progress.Repository
	Policy     srs.Policy
	// ResetCycleOnCatalogChange drops item states, counters and the cycle
	// when the mode changes.
	ResetCycleOnCatalogChange bool

	Preloader media.Preloader
	// RevealDelay of zero reveals the answer immediately.
	RevealDelay time.Duration
	Defer       DeferFunc
	// OnReveal is called without the session lock after a delayed reveal.
	OnReveal func(View)
	Now      func() time.Time
}

type Session struct {
	mu sync.Mutex

	source     catalog.Source
	catalog    catalog.Catalog
	store      *deck.Store
	policy     srs.Policy
	repository progress.Repository
	preloader  media.Preloader

	resetOnCatalogChange bool

	revealDelay time.Duration
	deferFunc   DeferFunc
	onReveal    func(View)
	now         func() time.Time

	cycle     int
	stats     progress.Stats
	selection []string
	// records of items outside the current catalog, kept until a catalog
	// containing them is loaded again
	dormant map[string]deck.Record

	current      *srs.Item
	revealed     bool
	cancelReveal func()
	generation   uint64
	previous     *Outcome
}

// New restores the saved progress of the source's app and selects the
// first item.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.Source == nil || opts.Repository == nil || opts.Policy == nil {
		return nil, errors.New("session: source, repository and policy are required")
	}

	s := &Session{
		source:               opts.Source,
		policy:               opts.Policy,
		repository:           opts.Repository,
		preloader:            opts.Preloader,
		resetOnCatalogChange: opts.ResetCycleOnCatalogChange,
		revealDelay:          opts.RevealDelay,
		deferFunc:            opts.Defer,
		onReveal:             opts.OnReveal,
		now:                  opts.Now,
		dormant:              make(map[string]deck.Record),
	}
	if s.preloader == nil {
		s.preloader = media.NopPreloader{}
	}
	if s.deferFunc == nil {
		s.deferFunc = AfterFunc
	}
	if s.now == nil {
		s.now = time.Now
	}

	snapshot, err := opts.Repository.Load(ctx, opts.Source.App())
	if err != nil {
		slog.Default().Warn("failed to load progress, starting fresh",
			slog.String("app", opts.Source.App()),
			slog.Any("error", err),
		)
		snapshot = progress.Snapshot{}
	}
	snapshot, dropped := progress.Sanitize(snapshot)
	if len(dropped) > 0 {
		slog.Default().Warn("dropped invalid item records",
			slog.String("app", opts.Source.App()),
			slog.Any("ids", dropped),
		)
	}

	mode := opts.Mode
	if mode == "" {
		mode = snapshot.Mode
	}
	if mode == "" || !slices.Contains(opts.Source.Modes(), mode) {
		mode = opts.Source.DefaultMode()
	}
	cat, err := opts.Source.Build(mode)
	if err != nil {
		return nil, fmt.Errorf("source.Build(%s) > %w", mode, err)
	}
	s.catalog = cat
	s.store = deck.NewStore(cat.Entries())

	if !snapshot.Empty() && (snapshot.Mode == cat.Mode || !s.resetOnCatalogChange) {
		s.cycle = snapshot.Cycle
		s.stats = snapshot.Stats
		s.restoreRecords(snapshot.Items)
		s.selection = s.restoreSelection(snapshot.Selection)
	} else {
		s.selection = slices.Clone(cat.DefaultRows)
	}

	s.rebuild()
	return s, nil
}

func (s *Session) restoreRecords(records map[string]deck.Record) {
	known := make(map[string]deck.Record, len(records))
	for id, record := range records {
		if s.store.Contains(id) {
			known[id] = record
			delete(s.dormant, id)
			continue
		}
		s.dormant[id] = record
	}
	if replaced := s.store.Restore(known); len(replaced) > 0 {
		slog.Default().Warn("replaced invalid item states",
			slog.Any("ids", replaced),
		)
	}
}

// restoreSelection keeps the saved rows known to the catalog. A missing
// selection, or one whose rows all vanished, falls back to the default rows.
func (s *Session) restoreSelection(saved []string) []string {
	if saved == nil {
		return slices.Clone(s.catalog.DefaultRows)
	}
	known := s.catalog.KnownRows(saved)
	if len(known) == 0 && len(saved) > 0 {
		return slices.Clone(s.catalog.DefaultRows)
	}
	return known
}

// rebuild recomputes the pool. A new item is selected only when the pool was
// empty or the displayed item left it.
func (s *Session) rebuild() {
	if unknown := s.store.SetActive(s.catalog.EntryIDs(s.selection)); len(unknown) > 0 {
		slog.Default().Debug("selection contains unknown items", slog.Any("ids", unknown))
	}
	if s.store.ActiveLen() == 0 {
		s.show(nil)
		return
	}
	if s.current == nil || !s.store.IsActive(s.current.ID()) {
		s.selectNext()
	}
}

func (s *Session) selectNext() {
	s.show(s.policy.Select(s.store.ActiveItems(), s.cycle))
}

// show replaces the displayed item and cancels any pending reveal.
func (s *Session) show(item *srs.Item) {
	s.generation++
	if s.cancelReveal != nil {
		s.cancelReveal()
		s.cancelReveal = nil
	}
	s.revealed = false
	s.current = item
	if item != nil && item.Entry.AudioKey != "" {
		s.preloader.Preload(item.Entry.AudioKey)
	}
}

func (s *Session) persist(ctx context.Context) {
	items := s.store.Snapshot()
	for id, record := range s.dormant {
		items[id] = record
	}
	snapshot := progress.Snapshot{
		App:       s.source.App(),
		Mode:      s.catalog.Mode,
		Cycle:     s.cycle,
		Stats:     s.stats,
		Selection: append([]string{}, s.selection...),
		Items:     items,
		UpdatedAt: s.now(),
	}
	if err := s.repository.Save(ctx, snapshot); err != nil {
		slog.Default().Warn("failed to save progress",
			slog.String("app", snapshot.App),
			slog.Any("error", err),
		)
	}
}

// View returns the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) Catalog() catalog.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

// Items returns copies of every item of the current catalog in catalog
// order.
func (s *Session) Items() []srs.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]srs.Item, 0, s.store.Len())
	for _, entry := range s.catalog.Entries() {
		if item, ok := s.store.Item(entry.ID); ok {
			items = append(items, *item)
		}
	}
	return items
}

// SetSelection replaces the enabled rows.
func (s *Session) SetSelection(ctx context.Context, rowIDs []string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := s.catalog.KnownRows(rowIDs)
	for _, rowID := range rowIDs {
		if !slices.Contains(known, rowID) {
			return s.view(), fmt.Errorf("%w: %s", ErrUnknownRow, rowID)
		}
	}
	s.selection = known
	s.rebuild()
	s.persist(ctx)
	return s.view(), nil
}

// ToggleRow enables a disabled row or disables an enabled one.
func (s *Session) ToggleRow(ctx context.Context, rowID string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalog.Row(rowID); !ok {
		return s.view(), fmt.Errorf("%w: %s", ErrUnknownRow, rowID)
	}
	if i := slices.Index(s.selection, rowID); i >= 0 {
		s.selection = slices.Delete(slices.Clone(s.selection), i, i+1)
	} else {
		s.selection = append(slices.Clone(s.selection), rowID)
	}
	s.rebuild()
	s.persist(ctx)
	return s.view(), nil
}

// UnlockNext enables the next disabled row of kind. An empty kind unlocks
// the next row of any kind.
func (s *Session) UnlockNext(ctx context.Context, kind string) (catalog.Row, View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.catalog.NextRow(kind, s.selection)
	if !ok {
		return catalog.Row{}, s.view(), ErrNothingToUnlock
	}
	s.selection = append(slices.Clone(s.selection), row.ID)
	s.rebuild()
	s.persist(ctx)
	return row, s.view(), nil
}

// Next skips the displayed item without grading it.
func (s *Session) Next(_ context.Context) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.ActiveLen() > 0 {
		s.selectNext()
	}
	return s.view()
}

// Grade records the answer for the displayed item and selects the next one.
// Without a displayed item it does nothing.
func (s *Session) Grade(ctx context.Context, correct bool) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.grade(ctx, correct); err != nil {
		return s.view(), err
	}
	return s.view(), nil
}

// Answer grades the displayed item by comparing input to its answers.
func (s *Session) Answer(ctx context.Context, input string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return s.view(), nil
	}
	if err := s.grade(ctx, s.current.Entry.Matches(input)); err != nil {
		return s.view(), err
	}
	return s.view(), nil
}

func (s *Session) grade(ctx context.Context, correct bool) error {
	if s.current == nil {
		return nil
	}
	item, ok := s.store.Item(s.current.ID())
	if !ok || item != s.current {
		return fmt.Errorf("%w: %s", ErrUnknownItem, s.current.ID())
	}

	s.cycle = s.policy.Grade(item, correct, s.cycle)
	s.stats.Record(correct)
	s.previous = &Outcome{
		Entry:   item.Entry,
		Correct: correct,
	}
	s.persist(ctx)
	s.selectNext()
	return nil
}

// SwitchMode loads another catalog of the same app, e.g. katakana or a
// larger number range.
func (s *Session) SwitchMode(ctx context.Context, mode string) (View, error) {
	cat, err := s.source.Build(mode)
	if err != nil {
		return s.View(), fmt.Errorf("source.Build(%s) > %w", mode, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cat.Mode == s.catalog.Mode {
		return s.view(), nil
	}
	if s.resetOnCatalogChange {
		s.catalog = cat
		s.store = deck.NewStore(cat.Entries())
		s.dormant = make(map[string]deck.Record)
		s.cycle = 0
		s.stats = progress.Stats{}
		s.previous = nil
		s.selection = slices.Clone(cat.DefaultRows)
	} else {
		// items of the previous catalog stay in the store with their state
		s.catalog = cat
		s.store.Extend(cat.Entries())
		s.restoreRecords(s.dormant)
		s.selection = s.restoreSelection(s.selection)
	}
	s.current = nil
	s.rebuild()
	s.persist(ctx)
	return s.view(), nil
}

// Close cancels a pending reveal and saves the progress.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	if s.cancelReveal != nil {
		s.cancelReveal()
		s.cancelReveal = nil
	}
	s.persist(ctx)
}

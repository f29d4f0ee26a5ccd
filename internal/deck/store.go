// Package deck holds every item of a catalog and tracks which are active.
package deck

import (
	"github.com/at-ishikawa/flashdeck/internal/catalog"
	"github.com/at-ishikawa/flashdeck/internal/srs"
)

// Record is a persisted item state with its counters.
type Record struct {
	srs.State `yaml:",inline"`
	srs.Tally `yaml:",inline"`
}

// Store is the item store. Items are never removed; deactivating an item
// only excludes it from ActiveItems. It is not safe for concurrent use.
type Store struct {
	items  map[string]*srs.Item
	order  []string
	active map[string]struct{}
}

func NewStore(entries []catalog.Entry) *Store {
	store := &Store{
		items:  make(map[string]*srs.Item, len(entries)),
		active: make(map[string]struct{}),
	}
	store.Extend(entries)
	return store
}

// Extend adds entries that are not in the store yet. Existing items keep
// their state; their display payload is refreshed.
func (s *Store) Extend(entries []catalog.Entry) {
	for _, entry := range entries {
		if item, ok := s.items[entry.ID]; ok {
			item.Entry = entry
			continue
		}
		s.items[entry.ID] = srs.NewItem(entry)
		s.order = append(s.order, entry.ID)
	}
}

// SetActive replaces the active membership. Unknown ids are skipped and
// returned.
func (s *Store) SetActive(ids []string) []string {
	var unknown []string
	active := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.items[id]; !ok {
			unknown = append(unknown, id)
			continue
		}
		active[id] = struct{}{}
	}
	s.active = active
	return unknown
}

// ActiveItems returns the pool in catalog order.
func (s *Store) ActiveItems() []*srs.Item {
	items := make([]*srs.Item, 0, len(s.active))
	for _, id := range s.order {
		if _, ok := s.active[id]; ok {
			items = append(items, s.items[id])
		}
	}
	return items
}

func (s *Store) Item(id string) (*srs.Item, bool) {
	item, ok := s.items[id]
	return item, ok
}

// Items returns every item in catalog order.
func (s *Store) Items() []*srs.Item {
	items := make([]*srs.Item, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.items[id])
	}
	return items
}

func (s *Store) Contains(id string) bool {
	_, ok := s.items[id]
	return ok
}

func (s *Store) IsActive(id string) bool {
	_, ok := s.active[id]
	return ok
}

func (s *Store) Len() int {
	return len(s.items)
}

func (s *Store) ActiveLen() int {
	return len(s.active)
}

// Restore applies persisted records. Records of unknown ids are ignored and
// invalid states are replaced with a new state. It returns the ids whose
// state was replaced.
func (s *Store) Restore(records map[string]Record) []string {
	var replaced []string
	for id, record := range records {
		item, ok := s.items[id]
		if !ok {
			continue
		}
		if record.State.Valid() {
			item.State = record.State
		} else {
			item.State = srs.NewState()
			replaced = append(replaced, id)
		}
		item.Tally = sanitizeTally(record.Tally)
	}
	return replaced
}

// Snapshot returns the records of the items that were ever graded or
// restored with a non-default state.
func (s *Store) Snapshot() map[string]Record {
	records := make(map[string]Record)
	for id, item := range s.items {
		if item.State == srs.NewState() && item.Tally == (srs.Tally{}) {
			continue
		}
		records[id] = Record{State: item.State, Tally: item.Tally}
	}
	return records
}

// Reset puts every item back to a new state with zero counters.
func (s *Store) Reset() {
	for _, item := range s.items {
		item.State = srs.NewState()
		item.Tally = srs.Tally{}
	}
}

func sanitizeTally(t srs.Tally) srs.Tally {
	return srs.Tally{
		Right: max(t.Right, 0),
		Wrong: max(t.Wrong, 0),
	}
}

// Package catalog provides the static item definitions studied by each app.
package catalog

import (
	"strings"
)

// Entry is a single learnable unit. Fields other than ID are display payload
// and have no effect on scheduling.
type Entry struct {
	ID        string `yaml:"id" json:"id"`
	Kind      string `yaml:"kind,omitempty" json:"kind,omitempty"`
	Prompt    string `yaml:"prompt" json:"prompt"`
	Answer    string `yaml:"answer" json:"answer"`
	Reading   string `yaml:"reading,omitempty" json:"reading,omitempty"`
	Alternate string `yaml:"alternate,omitempty" json:"alternate,omitempty"`
	AudioKey  string `yaml:"audio,omitempty" json:"audio,omitempty"`
	Note      string `yaml:"note,omitempty" json:"note,omitempty"`
}

// Matches reports whether a typed answer matches the entry's answer.
// Comparison ignores surrounding spaces and letter case.
func (e Entry) Matches(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}
	return strings.EqualFold(input, strings.TrimSpace(e.Answer))
}

// Row is the unit of selection: a legend row for kana, a range chunk for
// numbers, an unlock batch for word lists.
type Row struct {
	ID      string  `yaml:"id" json:"id"`
	Label   string  `yaml:"label" json:"label"`
	Kind    string  `yaml:"kind,omitempty" json:"kind,omitempty"`
	Entries []Entry `yaml:"entries" json:"entries"`
}

type Section struct {
	Label string `yaml:"label" json:"label"`
	Rows  []Row  `yaml:"rows" json:"rows"`
}

// Catalog is the universe of entries of one app in one mode.
type Catalog struct {
	App         string
	Mode        string
	Sections    []Section
	DefaultRows []string
}

// Rows returns every row in legend order.
func (c Catalog) Rows() []Row {
	var rows []Row
	for _, section := range c.Sections {
		rows = append(rows, section.Rows...)
	}
	return rows
}

// Row finds a row by ID.
func (c Catalog) Row(id string) (Row, bool) {
	for _, section := range c.Sections {
		for _, row := range section.Rows {
			if row.ID == id {
				return row, true
			}
		}
	}
	return Row{}, false
}

// Entries returns every entry in legend order. An entry that appears in more
// than one row is returned once.
func (c Catalog) Entries() []Entry {
	seen := make(map[string]struct{})
	var entries []Entry
	for _, row := range c.Rows() {
		for _, entry := range row.Entries {
			if _, ok := seen[entry.ID]; ok {
				continue
			}
			seen[entry.ID] = struct{}{}
			entries = append(entries, entry)
		}
	}
	return entries
}

// EntryIDs expands row IDs into entry IDs. Unknown rows are ignored.
func (c Catalog) EntryIDs(rowIDs []string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, rowID := range rowIDs {
		row, ok := c.Row(rowID)
		if !ok {
			continue
		}
		for _, entry := range row.Entries {
			if _, ok := seen[entry.ID]; ok {
				continue
			}
			seen[entry.ID] = struct{}{}
			ids = append(ids, entry.ID)
		}
	}
	return ids
}

// KnownRows filters rowIDs down to the rows present in the catalog, keeping
// their order and dropping duplicates.
func (c Catalog) KnownRows(rowIDs []string) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0, len(rowIDs))
	for _, rowID := range rowIDs {
		if _, ok := seen[rowID]; ok {
			continue
		}
		if _, ok := c.Row(rowID); !ok {
			continue
		}
		seen[rowID] = struct{}{}
		result = append(result, rowID)
	}
	return result
}

// NextRow returns the first row of the given kind that is not enabled yet.
// An empty kind matches any row.
func (c Catalog) NextRow(kind string, enabled []string) (Row, bool) {
	on := make(map[string]struct{}, len(enabled))
	for _, id := range enabled {
		on[id] = struct{}{}
	}
	for _, row := range c.Rows() {
		if kind != "" && row.Kind != kind {
			continue
		}
		if _, ok := on[row.ID]; ok {
			continue
		}
		return row, true
	}
	return Row{}, false
}

// Kinds returns the distinct row kinds in legend order.
func (c Catalog) Kinds() []string {
	seen := make(map[string]struct{})
	var kinds []string
	for _, row := range c.Rows() {
		if row.Kind == "" {
			continue
		}
		if _, ok := seen[row.Kind]; ok {
			continue
		}
		seen[row.Kind] = struct{}{}
		kinds = append(kinds, row.Kind)
	}
	return kinds
}

// Source builds catalogs of one app.
type Source interface {
	App() string
	Modes() []string
	DefaultMode() string
	Build(mode string) (Catalog, error)
}

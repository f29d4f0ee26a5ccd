package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

const (
	AppVocab   = "vocab"
	AppPhrases = "phrases"

	KindWord   = "word"
	KindPhrase = "phrase"

	ModeDefault = "default"

	DefaultBatchSize = 20
)

// WordRecord is one row of a word or phrase list file.
type WordRecord struct {
	ID      string `yaml:"id"`
	Type    string `yaml:"type"`
	Kana    string `yaml:"kana"`
	Romaji  string `yaml:"romaji"`
	Kanji   string `yaml:"kanji"`
	English string `yaml:"english"`
	Audio   string `yaml:"audio"`
}

// WordListFile is a list file and the kind assigned to records without a type.
type WordListFile struct {
	Path string
	Kind string
}

// WordListSource builds a catalog from word/phrase list files. Entries are
// grouped per kind into unlock batches; the first batch of each kind is
// enabled by default.
type WordListSource struct {
	app       string
	batchSize int
	entries   []Entry
}

// NewWordListSource reads every file. YAML and JSON files hold a list of
// records; CSV and XLSX files have a header row naming the record fields.
func NewWordListSource(app string, files []WordListFile, batchSize int) (*WordListSource, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	seen := make(map[string]struct{})
	var entries []Entry
	for _, file := range files {
		records, err := ReadWordRecords(file.Path)
		if err != nil {
			return nil, fmt.Errorf("ReadWordRecords(%s) > %w", file.Path, err)
		}
		for i, record := range records {
			entry, err := record.toEntry(file.Kind)
			if err != nil {
				return nil, fmt.Errorf("%s: record %d: %w", file.Path, i+1, err)
			}
			if _, ok := seen[entry.ID]; ok {
				return nil, fmt.Errorf("%s: duplicated id %q", file.Path, entry.ID)
			}
			seen[entry.ID] = struct{}{}
			entries = append(entries, entry)
		}
	}

	return &WordListSource{
		app:       app,
		batchSize: batchSize,
		entries:   entries,
	}, nil
}

func (s *WordListSource) App() string {
	return s.app
}

func (s *WordListSource) Modes() []string {
	return []string{ModeDefault}
}

func (s *WordListSource) DefaultMode() string {
	return ModeDefault
}

func (s *WordListSource) Build(mode string) (Catalog, error) {
	if mode != "" && mode != ModeDefault {
		return Catalog{}, fmt.Errorf("unknown %s mode %q", s.app, mode)
	}

	var kinds []string
	byKind := make(map[string][]Entry)
	for _, entry := range s.entries {
		if _, ok := byKind[entry.Kind]; !ok {
			kinds = append(kinds, entry.Kind)
		}
		byKind[entry.Kind] = append(byKind[entry.Kind], entry)
	}

	cat := Catalog{
		App:  s.app,
		Mode: ModeDefault,
	}
	for _, kind := range kinds {
		section := Section{Label: kind + "s"}
		entries := byKind[kind]
		for start := 0; start < len(entries); start += s.batchSize {
			end := min(start+s.batchSize, len(entries))
			section.Rows = append(section.Rows, Row{
				ID:      fmt.Sprintf("%s-%d", kind, start/s.batchSize+1),
				Label:   fmt.Sprintf("%ss %d-%d", kind, start+1, end),
				Kind:    kind,
				Entries: entries[start:end],
			})
		}
		cat.Sections = append(cat.Sections, section)
		cat.DefaultRows = append(cat.DefaultRows, section.Rows[0].ID)
	}
	return cat, nil
}

func (r WordRecord) toEntry(defaultKind string) (Entry, error) {
	kind := strings.TrimSpace(r.Type)
	if kind == "" {
		kind = defaultKind
	}
	if kind == "" {
		kind = KindWord
	}
	kana := strings.TrimSpace(r.Kana)
	if kana == "" {
		return Entry{}, errors.New("kana is required")
	}
	id := strings.TrimSpace(r.ID)
	if id == "" {
		id = kind + ":" + kana
	}
	audio := strings.TrimSpace(r.Audio)
	if audio == "" {
		audio = id
	}
	audio = strings.TrimSuffix(audio, filepath.Ext(audio))

	return Entry{
		ID:        id,
		Kind:      kind,
		Prompt:    kana,
		Answer:    strings.TrimSpace(r.English),
		Reading:   strings.TrimSpace(r.Romaji),
		Alternate: strings.TrimSpace(r.Kanji),
		AudioKey:  audio,
	}, nil
}

// ReadWordRecords reads a list file according to its extension.
func ReadWordRecords(path string) ([]WordRecord, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml", ".json":
		return readYAMLRecords(path)
	case ".csv":
		return readCSVRecords(path)
	case ".xlsx":
		return readXLSXRecords(path)
	default:
		return nil, fmt.Errorf("unsupported word list format %q", ext)
	}
}

// readYAMLRecords also handles JSON, which is valid YAML.
func readYAMLRecords(path string) ([]WordRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	var records []WordRecord
	if err := yaml.NewDecoder(file).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("yaml.NewDecoder().Decode() > %w", err)
	}
	return records, nil
}

func readCSVRecords(path string) ([]WordRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv.Reader.ReadAll() > %w", err)
	}
	return recordsFromRows(rows), nil
}

func readXLSXRecords(path string) ([]WordRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("excelize.OpenFile(%s) > %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("GetRows(%s) > %w", sheet, err)
	}
	return recordsFromRows(rows), nil
}

// recordsFromRows maps tabular rows to records using the header row.
// Unknown columns are ignored and blank rows skipped.
func recordsFromRows(rows [][]string) []WordRecord {
	if len(rows) == 0 {
		return nil
	}
	columns := make(map[string]int)
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []WordRecord
	for _, row := range rows[1:] {
		record := WordRecord{
			ID:      cell(row, "id"),
			Type:    cell(row, "type"),
			Kana:    cell(row, "kana"),
			Romaji:  cell(row, "romaji"),
			Kanji:   cell(row, "kanji"),
			English: cell(row, "english"),
			Audio:   cell(row, "audio"),
		}
		if strings.TrimSpace(record.Kana) == "" && strings.TrimSpace(record.ID) == "" {
			continue
		}
		records = append(records, record)
	}
	return records
}

package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	AppKana = "kana"

	ModeHiragana = "hiragana"
	ModeKatakana = "katakana"
	ModeMixed    = "mixed"
)

//go:embed data/kana.yml
var kanaYAML []byte

type kanaGlyph struct {
	Kana   string `yaml:"k"`
	Romaji string `yaml:"r"`
}

type kanaRow struct {
	ID    string      `yaml:"id"`
	Label string      `yaml:"label"`
	Kana  []kanaGlyph `yaml:"kana"`
}

type kanaSection struct {
	Label string    `yaml:"label"`
	Rows  []kanaRow `yaml:"rows"`
}

// KanaSource builds the hiragana, katakana and mixed legends. Entry IDs are
// the glyphs themselves, so a glyph keeps its state across modes.
type KanaSource struct {
	sections    []kanaSection
	defaultRows []string
}

// NewKanaSource parses the embedded legend. defaultRows falls back to the
// vowel row when empty.
func NewKanaSource(defaultRows []string) (*KanaSource, error) {
	var sections []kanaSection
	if err := yaml.Unmarshal(kanaYAML, &sections); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal(kana.yml) > %w", err)
	}
	if len(defaultRows) == 0 {
		defaultRows = []string{"a"}
	}
	return &KanaSource{
		sections:    sections,
		defaultRows: defaultRows,
	}, nil
}

func (s *KanaSource) App() string {
	return AppKana
}

func (s *KanaSource) Modes() []string {
	return []string{ModeHiragana, ModeKatakana, ModeMixed}
}

func (s *KanaSource) DefaultMode() string {
	return ModeHiragana
}

func (s *KanaSource) Build(mode string) (Catalog, error) {
	if mode == "" {
		mode = s.DefaultMode()
	}
	switch mode {
	case ModeHiragana, ModeKatakana, ModeMixed:
	default:
		return Catalog{}, fmt.Errorf("unknown kana mode %q", mode)
	}

	cat := Catalog{
		App:         AppKana,
		Mode:        mode,
		DefaultRows: s.defaultRows,
	}
	for _, section := range s.sections {
		label := section.Label
		if mode == ModeMixed {
			label += " (Mixed)"
		}
		built := Section{Label: label}
		for _, row := range section.Rows {
			built.Rows = append(built.Rows, Row{
				ID:      row.ID,
				Label:   row.Label,
				Kind:    mode,
				Entries: kanaEntries(row.Kana, mode),
			})
		}
		cat.Sections = append(cat.Sections, built)
	}
	return cat, nil
}

func kanaEntries(glyphs []kanaGlyph, mode string) []Entry {
	var entries []Entry
	for _, g := range glyphs {
		hiragana := kanaEntry(g.Kana, ToKatakana(g.Kana), g.Romaji, ModeHiragana)
		katakana := kanaEntry(ToKatakana(g.Kana), g.Kana, g.Romaji, ModeKatakana)
		switch mode {
		case ModeHiragana:
			entries = append(entries, hiragana)
		case ModeKatakana:
			entries = append(entries, katakana)
		case ModeMixed:
			// The alternate script is the other card in mixed mode.
			hiragana.Alternate = ""
			katakana.Alternate = ""
			entries = append(entries, hiragana, katakana)
		}
	}
	return entries
}

func kanaEntry(glyph, alternate, romaji, kind string) Entry {
	return Entry{
		ID:        glyph,
		Kind:      kind,
		Prompt:    glyph,
		Answer:    romaji,
		Alternate: alternate,
		AudioKey:  romaji,
	}
}

// ToKatakana converts hiragana to katakana. Other runes are kept as is.
func ToKatakana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'ぁ' && r <= 'ゖ' {
			return r + ('ァ' - 'ぁ')
		}
		return r
	}, s)
}

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestKanaSource_Build(t *testing.T) {
	source, err := NewKanaSource(nil)
	require.NoError(t, err)

	tests := []struct {
		name        string
		mode        string
		rowID       string
		wantIDs     []string
		wantErr     bool
		wantSection string
	}{
		{
			name:        "hiragana vowels",
			mode:        ModeHiragana,
			rowID:       "a",
			wantIDs:     []string{"あ", "い", "う", "え", "お"},
			wantSection: "Basic",
		},
		{
			name:        "katakana is derived from hiragana",
			mode:        ModeKatakana,
			rowID:       "ky",
			wantIDs:     []string{"キャ", "キュ", "キョ"},
			wantSection: "Basic",
		},
		{
			name:        "mixed rows hold both scripts",
			mode:        ModeMixed,
			rowID:       "w",
			wantIDs:     []string{"わ", "ワ", "を", "ヲ"},
			wantSection: "Basic (Mixed)",
		},
		{
			name:    "unknown mode",
			mode:    "romaji",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := source.Build(tt.mode)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mode, got.Mode)
			assert.Equal(t, []string{"a"}, got.DefaultRows)
			assert.Equal(t, tt.wantSection, got.Sections[0].Label)
			assert.Equal(t, tt.wantIDs, got.EntryIDs([]string{tt.rowID}))
		})
	}
}

func TestKanaSource_SharedIDsAcrossModes(t *testing.T) {
	source, err := NewKanaSource([]string{"a", "k"})
	require.NoError(t, err)

	hiragana, err := source.Build(ModeHiragana)
	require.NoError(t, err)
	mixed, err := source.Build(ModeMixed)
	require.NoError(t, err)

	assert.Subset(t, mixed.EntryIDs([]string{"k"}), hiragana.EntryIDs([]string{"k"}))

	row, ok := hiragana.Row("k")
	require.True(t, ok)
	assert.Equal(t, "カ", row.Entries[0].Alternate)
	assert.Equal(t, "ka", row.Entries[0].AudioKey)
	assert.Len(t, hiragana.Entries(), 104)
	assert.Len(t, mixed.Entries(), 208)
}

func TestCatalog_RowHelpers(t *testing.T) {
	cat := Catalog{
		Sections: []Section{
			{Rows: []Row{
				{ID: "word-1", Kind: KindWord, Entries: []Entry{{ID: "w1"}, {ID: "w2"}}},
				{ID: "word-2", Kind: KindWord, Entries: []Entry{{ID: "w3"}}},
			}},
			{Rows: []Row{
				{ID: "phrase-1", Kind: KindPhrase, Entries: []Entry{{ID: "p1"}}},
			}},
		},
	}

	assert.Equal(t, []string{"w1", "w2", "p1"}, cat.EntryIDs([]string{"word-1", "missing", "phrase-1", "word-1"}))
	assert.Equal(t, []string{"word-2", "phrase-1"}, cat.KnownRows([]string{"word-2", "nope", "phrase-1", "word-2"}))
	assert.Equal(t, []string{KindWord, KindPhrase}, cat.Kinds())

	row, ok := cat.NextRow(KindWord, []string{"word-1"})
	require.True(t, ok)
	assert.Equal(t, "word-2", row.ID)

	_, ok = cat.NextRow(KindPhrase, []string{"phrase-1"})
	assert.False(t, ok)

	row, ok = cat.NextRow("", []string{"word-1", "word-2"})
	require.True(t, ok)
	assert.Equal(t, "phrase-1", row.ID)
}

func TestEntry_Matches(t *testing.T) {
	entry := Entry{Answer: "Thank you"}

	assert.True(t, entry.Matches("thank you"))
	assert.True(t, entry.Matches("  Thank you \n"))
	assert.False(t, entry.Matches(""))
	assert.False(t, entry.Matches("thanks"))
}

func TestNumberReading(t *testing.T) {
	tests := []struct {
		n    int
		want Reading
	}{
		{0, Reading{"ぜろ", "zero"}},
		{7, Reading{"なな", "nana"}},
		{10, Reading{"じゅう", "juu"}},
		{14, Reading{"じゅうよん", "juuyon"}},
		{90, Reading{"きゅうじゅう", "kyuujuu"}},
		{100, Reading{"ひゃく", "hyaku"}},
		{300, Reading{"さんびゃく", "sanbyaku"}},
		{612, Reading{"ろっぴゃくじゅうに", "roppyakujuuni"}},
		{800, Reading{"はっぴゃく", "happyaku"}},
		{1000, Reading{"せん", "sen"}},
		{3005, Reading{"さんぜんご", "sanzengo"}},
		{8888, Reading{"はっせんはっぴゃくはちじゅうはち", "hassenhappyakuhachijuuhachi"}},
		{10000, Reading{"いちまん", "ichiman"}},
		{250000, Reading{"にじゅうごまん", "nijuugoman"}},
		{25000, Reading{"にまんごせん", "nimangosen"}},
	}

	for _, tt := range tests {
		t.Run(tt.want.Romaji, func(t *testing.T) {
			got, err := NumberReading(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NumberReading(-1)
	assert.Error(t, err)
}

func TestNumbersSource_Build(t *testing.T) {
	source, err := NewNumbersSource("")
	require.NoError(t, err)
	assert.Equal(t, "0-10", source.DefaultMode())

	small, err := source.Build("0-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"0-10"}, small.DefaultRows)
	assert.Len(t, small.Entries(), 11)

	large, err := source.Build("0-1000")
	require.NoError(t, err)
	assert.Len(t, large.Entries(), 1001)
	assert.Len(t, large.DefaultRows, 11)
	assert.Equal(t, "0-99", large.DefaultRows[0])
	assert.Equal(t, "1000", large.DefaultRows[10])

	row, ok := large.Row("300-399")
	require.True(t, ok)
	assert.Equal(t, "さんびゃく", row.Entries[0].Prompt)
	assert.Equal(t, "300", row.Entries[0].Answer)
	assert.Equal(t, "300", row.Entries[0].AudioKey)

	_, err = source.Build("0-5")
	assert.Error(t, err)

	_, err = NewNumbersSource("1-2")
	assert.Error(t, err)
}

func TestWordListSource(t *testing.T) {
	dir := t.TempDir()

	wordsPath := filepath.Join(dir, "words.json")
	require.NoError(t, os.WriteFile(wordsPath, []byte(`[
  {"id": "w1", "kana": "ねこ", "romaji": "neko", "kanji": "猫", "english": "cat", "audio": "neko.mp3"},
  {"id": "w2", "kana": "いぬ", "romaji": "inu", "english": "dog"},
  {"id": "w3", "kana": "とり", "romaji": "tori", "english": "bird"}
]`), 0644))

	phrasesPath := filepath.Join(dir, "phrases.csv")
	require.NoError(t, os.WriteFile(phrasesPath, []byte("id,kana,romaji,english\np1,ありがとう,arigatou,thank you\n,,,\np2,すみません,sumimasen,excuse me\n"), 0644))

	source, err := NewWordListSource(AppVocab, []WordListFile{
		{Path: wordsPath, Kind: KindWord},
		{Path: phrasesPath, Kind: KindPhrase},
	}, 2)
	require.NoError(t, err)

	cat, err := source.Build("")
	require.NoError(t, err)
	assert.Equal(t, AppVocab, cat.App)
	assert.Equal(t, []string{"word-1", "phrase-1"}, cat.DefaultRows)
	assert.Equal(t, []string{"w1", "w2"}, cat.EntryIDs([]string{"word-1"}))
	assert.Equal(t, []string{"w3"}, cat.EntryIDs([]string{"word-2"}))
	assert.Equal(t, []string{"p1", "p2"}, cat.EntryIDs([]string{"phrase-1"}))

	row, ok := cat.Row("word-1")
	require.True(t, ok)
	assert.Equal(t, Entry{
		ID:        "w1",
		Kind:      KindWord,
		Prompt:    "ねこ",
		Answer:    "cat",
		Reading:   "neko",
		Alternate: "猫",
		AudioKey:  "neko",
	}, row.Entries[0])
	assert.Equal(t, "w2", row.Entries[1].AudioKey)
}

func TestWordListSource_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phrases.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"kana", "romaji", "english", "type"},
		{"おはよう", "ohayou", "good morning", ""},
		{"おやすみ", "oyasumi", "good night", "phrase"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	source, err := NewWordListSource(AppPhrases, []WordListFile{{Path: path, Kind: KindPhrase}}, 0)
	require.NoError(t, err)
	cat, err := source.Build(ModeDefault)
	require.NoError(t, err)

	assert.Equal(t, []string{"phrase:おはよう", "phrase:おやすみ"}, cat.EntryIDs([]string{"phrase-1"}))
}

func TestWordListSource_Errors(t *testing.T) {
	dir := t.TempDir()

	duplicated := filepath.Join(dir, "dup.yml")
	require.NoError(t, os.WriteFile(duplicated, []byte("- {id: a, kana: あ}\n- {id: a, kana: い}\n"), 0644))
	missingKana := filepath.Join(dir, "missing.yml")
	require.NoError(t, os.WriteFile(missingKana, []byte("- {id: a, english: hi}\n"), 0644))

	tests := []struct {
		name string
		path string
	}{
		{name: "duplicated id", path: duplicated},
		{name: "missing kana", path: missingKana},
		{name: "missing file", path: filepath.Join(dir, "nope.yml")},
		{name: "unsupported extension", path: filepath.Join(dir, "words.txt")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWordListSource(AppVocab, []WordListFile{{Path: tt.path}}, 10)
			assert.Error(t, err)
		})
	}
}

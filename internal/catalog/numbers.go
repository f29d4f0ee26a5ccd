package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	AppNumbers = "numbers"
	KindNumber = "number"

	numbersChunkSize = 100
)

// NumberRanges lists the supported ranges in ascending order.
var NumberRanges = []string{"0-10", "0-100", "0-1000", "0-10000"}

var numberRangeMax = map[string]int{
	"0-10":    10,
	"0-100":   100,
	"0-1000":  1000,
	"0-10000": 10000,
}

// Reading is the Japanese reading of a number in kana and romaji.
type Reading struct {
	Kana   string
	Romaji string
}

var digitReadings = [10]Reading{
	{"ぜろ", "zero"},
	{"いち", "ichi"},
	{"に", "ni"},
	{"さん", "san"},
	{"よん", "yon"},
	{"ご", "go"},
	{"ろく", "roku"},
	{"なな", "nana"},
	{"はち", "hachi"},
	{"きゅう", "kyuu"},
}

// Irregular hundreds and thousands; other multiples are digit + unit.
var (
	hundredReadings = map[int]Reading{
		1: {"ひゃく", "hyaku"},
		3: {"さんびゃく", "sanbyaku"},
		6: {"ろっぴゃく", "roppyaku"},
		8: {"はっぴゃく", "happyaku"},
	}
	thousandReadings = map[int]Reading{
		1: {"せん", "sen"},
		3: {"さんぜん", "sanzen"},
		8: {"はっせん", "hassen"},
	}
)

// NumberReading returns the reading of n for 0 <= n < 100000000.
func NumberReading(n int) (Reading, error) {
	if n < 0 || n >= 100000000 {
		return Reading{}, fmt.Errorf("number %d out of supported range", n)
	}
	if n == 0 {
		return digitReadings[0], nil
	}

	var kana, romaji strings.Builder
	write := func(r Reading) {
		kana.WriteString(r.Kana)
		romaji.WriteString(r.Romaji)
	}

	if man := n / 10000; man > 0 {
		prefix, _ := NumberReading(man)
		write(prefix)
		write(Reading{"まん", "man"})
		n %= 10000
	}
	if d := n / 1000; d > 0 {
		if r, ok := thousandReadings[d]; ok {
			write(r)
		} else {
			write(digitReadings[d])
			write(Reading{"せん", "sen"})
		}
	}
	if d := n / 100 % 10; d > 0 {
		if r, ok := hundredReadings[d]; ok {
			write(r)
		} else {
			write(digitReadings[d])
			write(Reading{"ひゃく", "hyaku"})
		}
	}
	if d := n / 10 % 10; d > 0 {
		if d > 1 {
			write(digitReadings[d])
		}
		write(Reading{"じゅう", "juu"})
	}
	if d := n % 10; d > 0 {
		write(digitReadings[d])
	}
	return Reading{Kana: kana.String(), Romaji: romaji.String()}, nil
}

// NumbersSource builds one catalog per number range. Every row is enabled by
// default.
type NumbersSource struct {
	defaultRange string
}

func NewNumbersSource(defaultRange string) (*NumbersSource, error) {
	if defaultRange == "" {
		defaultRange = NumberRanges[0]
	}
	if _, ok := numberRangeMax[defaultRange]; !ok {
		return nil, fmt.Errorf("unknown number range %q", defaultRange)
	}
	return &NumbersSource{defaultRange: defaultRange}, nil
}

func (s *NumbersSource) App() string {
	return AppNumbers
}

func (s *NumbersSource) Modes() []string {
	return NumberRanges
}

func (s *NumbersSource) DefaultMode() string {
	return s.defaultRange
}

func (s *NumbersSource) Build(mode string) (Catalog, error) {
	if mode == "" {
		mode = s.defaultRange
	}
	maxNumber, ok := numberRangeMax[mode]
	if !ok {
		return Catalog{}, fmt.Errorf("unknown number range %q", mode)
	}

	section := Section{Label: mode}
	if maxNumber <= 10 {
		row, err := numberRow(0, maxNumber)
		if err != nil {
			return Catalog{}, err
		}
		section.Rows = append(section.Rows, row)
	} else {
		for start := 0; start <= maxNumber; start += numbersChunkSize {
			end := min(start+numbersChunkSize-1, maxNumber)
			row, err := numberRow(start, end)
			if err != nil {
				return Catalog{}, err
			}
			section.Rows = append(section.Rows, row)
		}
	}

	cat := Catalog{
		App:      AppNumbers,
		Mode:     mode,
		Sections: []Section{section},
	}
	for _, row := range section.Rows {
		cat.DefaultRows = append(cat.DefaultRows, row.ID)
	}
	return cat, nil
}

func numberRow(start, end int) (Row, error) {
	id := fmt.Sprintf("%d-%d", start, end)
	if start == end {
		id = strconv.Itoa(start)
	}
	row := Row{ID: id, Label: id, Kind: KindNumber}
	for n := start; n <= end; n++ {
		reading, err := NumberReading(n)
		if err != nil {
			return Row{}, err
		}
		value := strconv.Itoa(n)
		row.Entries = append(row.Entries, Entry{
			ID:       value,
			Kind:     KindNumber,
			Prompt:   reading.Kana,
			Reading:  reading.Romaji,
			Answer:   value,
			AudioKey: value,
		})
	}
	return row, nil
}

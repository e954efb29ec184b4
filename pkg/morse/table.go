// Package morse provides the Latin <-> Morse code table and the transcoder
// built on top of it.
//
// Main features:
//   - Immutable forward (character -> code) and inverse (code -> character) tables
//   - Per-symbol duration units used by the synthesizer and the player
//   - Best-effort translation in both directions with an unmatched-token report
//
// Usage:
//
//	res := morse.TextToCode("SOS")
//	// res.Output == "... --- ..."
//	back := morse.CodeToText(res.Output)
//	// back.Output == "SOS"
package morse

import (
	"fmt"
)

// Code symbols.
const (
	Dot       = '.'
	Dash      = '-'
	LetterGap = ' '  // separator between two codes
	WordGap   = '/'  // code for a space in the text
	LineBreak = '\n' // literal line break, maps to itself
)

// Entry is one character -> code mapping.
type Entry struct {
	Char rune
	Code string
}

// LatinEntries is the default table. Order matters only for error messages.
var LatinEntries = []Entry{
	{'A', ".-"}, {'B', "-..."}, {'C', "-.-."}, {'D', "-.."}, {'E', "."},
	{'F', "..-."}, {'G', "--."}, {'H', "...."}, {'I', ".."}, {'J', ".---"},
	{'K', "-.-"}, {'L', ".-.."}, {'M', "--"}, {'N', "-."}, {'O', "---"},
	{'P', ".--."}, {'Q', "--.-"}, {'R', ".-."}, {'S', "..."}, {'T', "-"},
	{'U', "..-"}, {'V', "...-"}, {'W', ".--"}, {'X', "-..-"}, {'Y', "-.--"},
	{'Z', "--.."},
	{'1', ".----"}, {'2', "..---"}, {'3', "...--"}, {'4', "....-"}, {'5', "....."},
	{'6', "-...."}, {'7', "--..."}, {'8', "---.."}, {'9', "----."}, {'0', "-----"},
	{',', "--..--"}, {'.', ".-.-.-"}, {'?', "..--.."}, {'/', "-..-."},
	{'-', "-....-"}, {'(', "-.--."}, {')', "-.--.-"},
	{'\n', "\n"}, {' ', "/"},
}

// defaultDurations 每个符号占用的时间单位数
var defaultDurations = map[rune]int{
	Dot:       1,
	WordGap:   1,
	Dash:      3,
	LetterGap: 3,
	LineBreak: 10,
}

// SymbolTable maps characters to codes and back. It is never mutated after
// construction and is safe for concurrent use.
type SymbolTable struct {
	forward map[rune]string
	inverse map[string]rune
}

// NewSymbolTable builds a table from entries. Two characters sharing one code
// would make the inverse ambiguous, so that is reported as ErrCodeCollision.
func NewSymbolTable(entries []Entry) (*SymbolTable, error) {
	t := &SymbolTable{
		forward: make(map[rune]string, len(entries)),
		inverse: make(map[string]rune, len(entries)),
	}

	for _, e := range entries {
		if e.Code == "" {
			return nil, fmt.Errorf("%w: empty code for %q", ErrInvalidEntry, e.Char)
		}
		if _, ok := t.forward[e.Char]; ok {
			return nil, fmt.Errorf("%w: %q listed twice", ErrInvalidEntry, e.Char)
		}
		if prev, ok := t.inverse[e.Code]; ok {
			return nil, fmt.Errorf("%w: %q and %q both map to %q", ErrCodeCollision, prev, e.Char, e.Code)
		}
		t.forward[e.Char] = e.Code
		t.inverse[e.Code] = e.Char
	}

	return t, nil
}

// MustNewSymbolTable is like NewSymbolTable but panics on error.
func MustNewSymbolTable(entries []Entry) *SymbolTable {
	t, err := NewSymbolTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// CodeOf returns the code for an (already uppercased) character.
func (t *SymbolTable) CodeOf(c rune) (string, bool) {
	code, ok := t.forward[c]
	return code, ok
}

// CharOf returns the character for a code.
func (t *SymbolTable) CharOf(code string) (rune, bool) {
	c, ok := t.inverse[code]
	return c, ok
}

// Len returns the number of entries.
func (t *SymbolTable) Len() int {
	return len(t.forward)
}

// Chars returns every character in the table, in no particular order.
func (t *SymbolTable) Chars() []rune {
	chars := make([]rune, 0, len(t.forward))
	for c := range t.forward {
		chars = append(chars, c)
	}
	return chars
}

// DurationTable maps a code symbol to its length in time units.
type DurationTable struct {
	units map[rune]int
}

// NewDurationTable copies units into a new table.
func NewDurationTable(units map[rune]int) *DurationTable {
	t := &DurationTable{units: make(map[rune]int, len(units))}
	for sym, n := range units {
		t.units[sym] = n
	}
	return t
}

// Units returns the duration of sym in time units, 0 if sym is unknown.
func (t *DurationTable) Units(sym rune) int {
	return t.units[sym]
}

var (
	defaultTable     = MustNewSymbolTable(LatinEntries)
	defaultDurationT = NewDurationTable(defaultDurations)
)

// DefaultTable returns the shared Latin table.
func DefaultTable() *SymbolTable {
	return defaultTable
}

// DefaultDurations returns the shared duration table.
func DefaultDurations() *DurationTable {
	return defaultDurationT
}

// CodeOf looks c up in the default table.
func CodeOf(c rune) (string, bool) {
	return defaultTable.CodeOf(c)
}

// CharOf looks code up in the default table.
func CharOf(code string) (rune, bool) {
	return defaultTable.CharOf(code)
}

// DurationUnits returns the duration of sym in the default duration table.
func DurationUnits(sym rune) int {
	return defaultDurationT.Units(sym)
}

// IsTone reports whether sym is sounded (dot or dash).
func IsTone(sym rune) bool {
	return sym == Dot || sym == Dash
}

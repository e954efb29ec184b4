package morse

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Language labels used in not-found messages.
const (
	LangLatin = "Latin"
	LangMorse = "Morse"
)

// lineBreakPadding matches the separators the join leaves around a line break.
var lineBreakPadding = regexp.MustCompile(`\s\n\s`)

// Result is the outcome of one translation. Unmatched lists the distinct
// input tokens that had no mapping, in first-seen order.
type Result struct {
	Output    string   `json:"output"`
	Unmatched []string `json:"unmatched"`
}

// Message formats the unmatched tokens for display, e.g.
// `Latin Character(s) Not Found: "#", "@"`. It returns "" when every token matched.
func (r Result) Message(lang string) string {
	if len(r.Unmatched) == 0 {
		return ""
	}

	quoted := make([]string, len(r.Unmatched))
	for i, tok := range r.Unmatched {
		quoted[i] = strconv.Quote(tok)
	}
	return lang + " Character(s) Not Found: " + strings.Join(quoted, ", ")
}

// Transcoder translates between text and code using one SymbolTable.
// It holds no per-call state.
type Transcoder struct {
	table *SymbolTable
}

// NewTranscoder returns a Transcoder over table, or over the default table if nil.
func NewTranscoder(table *SymbolTable) *Transcoder {
	if table == nil {
		table = defaultTable
	}
	return &Transcoder{table: table}
}

// TextToCode translates text into a space-separated code string.
//
// Input is decomposed first so accented letters fall back to their base
// letter; the leftover combining marks are reported as unmatched like any
// other unknown character.
func (t *Transcoder) TextToCode(text string) Result {
	var (
		codes     []string
		unmatched unmatchedSet
	)

	for _, r := range norm.NFKD.String(text) {
		key := []rune(strings.ToUpper(string(r)))
		if len(key) == 1 {
			if code, ok := t.table.CodeOf(key[0]); ok {
				codes = append(codes, code)
				continue
			}
		}
		unmatched.add(string(r))
	}

	out := strings.Join(codes, string(LetterGap))
	out = lineBreakPadding.ReplaceAllString(out, string(LineBreak))

	return Result{Output: out, Unmatched: unmatched.list()}
}

// CodeToText translates a code string back into text. Underscores are read
// as dashes, "/" is a space, and unknown tokens are dropped from the output.
func (t *Transcoder) CodeToText(code string) Result {
	var (
		sb        strings.Builder
		unmatched unmatchedSet
	)

	code = strings.ReplaceAll(code, "_", string(Dash))
	for _, tok := range strings.Split(code, string(LetterGap)) {
		if tok == "" {
			continue
		}
		if tok == string(WordGap) {
			sb.WriteRune(' ')
			continue
		}
		c, ok := t.table.CharOf(tok)
		if !ok {
			unmatched.add(tok)
			continue
		}
		sb.WriteRune(c)
	}

	return Result{Output: sb.String(), Unmatched: unmatched.list()}
}

var defaultTranscoder = NewTranscoder(nil)

// TextToCode translates text with the default table.
func TextToCode(text string) Result {
	return defaultTranscoder.TextToCode(text)
}

// CodeToText translates code with the default table.
func CodeToText(code string) Result {
	return defaultTranscoder.CodeToText(code)
}

// unmatchedSet keeps distinct tokens in insertion order.
type unmatchedSet struct {
	seen  map[string]struct{}
	order []string
}

func (s *unmatchedSet) add(tok string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[tok]; ok {
		return
	}
	s.seen[tok] = struct{}{}
	s.order = append(s.order, tok)
}

func (s *unmatchedSet) list() []string {
	if s.order == nil {
		return []string{}
	}
	return s.order
}

package response

import "strings"

// state is the tokeniser's internal state (§4.7).
type state uint8

const (
	stateNormal state = iota
	stateInWord
	stateInSingle
	stateInDouble
	stateEscapeNormal
	stateEscapeDouble
)

// Tokeniser turns a byte stream into a sequence of lines, each a list of
// words, honouring single/double quoting and backslash escapes. It is
// stateful across Feed calls: feeding a stream one byte at a time yields
// the same lines as feeding it in one chunk.
type Tokeniser struct {
	state state
	word  strings.Builder
	words []string
}

// NewTokeniser returns a Tokeniser ready to consume input from the start of a
// stream.
func NewTokeniser() *Tokeniser {
	return &Tokeniser{}
}

// Feed consumes data and returns the lines it completed, if any. A line is
// a (possibly empty) list of words; a blank input line yields an empty
// word list, not a skipped line.
func (t *Tokeniser) Feed(data []byte) [][]string {
	var lines [][]string
	for _, b := range data {
		if line, ok := t.step(b); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

func (t *Tokeniser) step(b byte) ([]string, bool) {
	switch t.state {
	case stateNormal, stateInWord:
		switch b {
		case '\n':
			if t.state == stateInWord {
				t.pushWord()
			}
			t.state = stateNormal
			return t.takeLine(), true
		case '\r':
			// ignored
		case ' ', '\t':
			if t.state == stateInWord {
				t.pushWord()
				t.state = stateNormal
			}
		case '\'':
			t.state = stateInSingle
		case '"':
			t.state = stateInDouble
		case '\\':
			t.state = stateEscapeNormal
		default:
			t.word.WriteByte(b)
			t.state = stateInWord
		}
	case stateInSingle:
		if b == '\'' {
			t.state = stateInWord
		} else {
			t.word.WriteByte(b)
		}
	case stateInDouble:
		switch b {
		case '\\':
			t.state = stateEscapeDouble
		case '"':
			t.state = stateInWord
		default:
			t.word.WriteByte(b)
		}
	case stateEscapeNormal:
		t.word.WriteByte(b)
		t.state = stateInWord
	case stateEscapeDouble:
		t.word.WriteByte(b)
		t.state = stateInDouble
	}
	return nil, false
}

func (t *Tokeniser) pushWord() {
	t.words = append(t.words, t.word.String())
	t.word.Reset()
}

func (t *Tokeniser) takeLine() []string {
	words := t.words
	t.words = nil
	if words == nil {
		words = []string{}
	}
	return words
}

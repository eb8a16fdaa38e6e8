package response

import (
	"reflect"
	"testing"
)

func feedAll(t *testing.T, input string) [][]string {
	t.Helper()
	tok := NewTokeniser()
	return tok.Feed([]byte(input))
}

func TestTokeniserBasicWords(t *testing.T) {
	lines := feedAll(t, "x1 load /music/a.mp3\n")
	want := [][]string{{"x1", "load", "/music/a.mp3"}}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
}

func TestTokeniserBlankLineYieldsEmptyWordList(t *testing.T) {
	lines := feedAll(t, "\n")
	want := [][]string{{}}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
}

func TestTokeniserCarriageReturnIgnored(t *testing.T) {
	lines := feedAll(t, "x1 stop\r\n")
	want := [][]string{{"x1", "stop"}}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
}

func TestTokeniserSingleQuoteDoesNotInterpretEscapes(t *testing.T) {
	lines := feedAll(t, "x1 'a\\nb'\n")
	want := [][]string{{"x1", "a\\nb"}}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
}

func TestTokeniserDoubleQuoteEscapesNextByteLiterally(t *testing.T) {
	lines := feedAll(t, `x1 "a\nb"` + "\n")
	want := [][]string{{"x1", "anb"}}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
}

func TestTokeniserQuotedEmptyStringIsAWord(t *testing.T) {
	lines := feedAll(t, `x1 "" load` + "\n")
	want := [][]string{{"x1", "", "load"}}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
}

func TestTokeniserSingleQuoteEmbedsNewlineWithoutEndingLine(t *testing.T) {
	lines := feedAll(t, "x1 'a\nb' rest\n")
	want := [][]string{{"x1", "a\nb", "rest"}}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
}

func TestTokeniserByteAtATimeMatchesWholeChunk(t *testing.T) {
	input := "x1 load \"my file.mp3\"\nx2 play\n"

	whole := NewTokeniser().Feed([]byte(input))

	var byBytes [][]string
	tok := NewTokeniser()
	for i := 0; i < len(input); i++ {
		byBytes = append(byBytes, tok.Feed([]byte{input[i]})...)
	}

	if !reflect.DeepEqual(whole, byBytes) {
		t.Fatalf("byte-at-a-time = %v, whole-chunk = %v", byBytes, whole)
	}
}

func TestTokeniserEscapeAtEndOfNormalWord(t *testing.T) {
	lines := feedAll(t, "x1 a\\ b\n")
	want := [][]string{{"x1", "a b"}}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
}

package response

import (
	"reflect"
	"testing"
)

func TestPackSimpleResponse(t *testing.T) {
	r := New("x1", ACK, "OK", "load")
	if got, want := r.Pack(), `x1 ACK OK load`; got != want {
		t.Fatalf("Pack() = %q, want %q", got, want)
	}
}

func TestPackEscapesArgsWithSpaces(t *testing.T) {
	r := New("!", FLOAD, "/music/my song.mp3")
	if got, want := r.Pack(), `! FLOAD "/music/my song.mp3"`; got != want {
		t.Fatalf("Pack() = %q, want %q", got, want)
	}
}

func TestPackEscapesQuotesAndBackslashes(t *testing.T) {
	r := New("x1", ACK, "WHAT", `bad "arg" C:\path`)
	got := r.Pack()
	want := `x1 ACK WHAT "bad \"arg\" C:\\path"`
	if got != want {
		t.Fatalf("Pack() = %q, want %q", got, want)
	}
}

func TestPackEmptyArgIsQuoted(t *testing.T) {
	r := New("x1", EJECT, "")
	if got, want := r.Pack(), `x1 EJECT ""`; got != want {
		t.Fatalf("Pack() = %q, want %q", got, want)
	}
}

func TestPackRoundTripsThroughTokeniser(t *testing.T) {
	args := []string{`has space`, `quo"te`, `back\slash`, "", "plain"}
	r := New("tag1", ACK, args...)

	line := r.Pack() + "\n"
	lines := NewTokeniser().Feed([]byte(line))
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	got := lines[0]
	want := append([]string{"tag1", "ACK"}, args...)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip = %v, want %v", got, want)
	}
}

func TestAckBuildsCorrectShape(t *testing.T) {
	r := Ack("x2", AckWhat, "bad arity")
	if got, want := r.Pack(), `x2 ACK WHAT "bad arity"`; got != want {
		t.Fatalf("Pack() = %q, want %q", got, want)
	}
}

func TestAckWithoutMessageOmitsThirdWord(t *testing.T) {
	r := Ack("x2", AckOK, "")
	if got, want := r.Pack(), `x2 ACK OK`; got != want {
		t.Fatalf("Pack() = %q, want %q", got, want)
	}
}

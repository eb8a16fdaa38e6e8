package ring

import (
	"math/rand"
	"testing"
)

func TestNewRejectsNonPositive(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero size")
	}
	if _, err := New(-1); err == nil {
		t.Fatal("expected error for negative size")
	}
}

func TestNewRoundsUpToPowerOfTwo(t *testing.T) {
	b, err := New(5)
	if err != nil {
		t.Fatal(err)
	}
	if got := b.Cap(); got != 8 {
		t.Errorf("Cap() = %d, want 8", got)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	b, _ := New(16)
	data := []byte("hello world")
	n := b.Write(data)
	if n != len(data) {
		t.Fatalf("Write = %d, want %d", n, len(data))
	}

	out := make([]byte, len(data))
	n = b.Read(out)
	if n != len(data) {
		t.Fatalf("Read = %d, want %d", n, len(data))
	}
	if string(out) != string(data) {
		t.Fatalf("Read = %q, want %q", out, data)
	}
}

func TestWriteToFullReturnsShortCount(t *testing.T) {
	b, _ := New(4)
	n := b.Write([]byte{1, 2, 3, 4, 5, 6})
	if n != 4 {
		t.Errorf("Write = %d, want 4", n)
	}
	if got := b.Write([]byte{7}); got != 0 {
		t.Errorf("Write on full buffer = %d, want 0", got)
	}
}

func TestReadFromEmptyReturnsZero(t *testing.T) {
	b, _ := New(4)
	out := make([]byte, 4)
	if n := b.Read(out); n != 0 {
		t.Errorf("Read on empty buffer = %d, want 0", n)
	}
}

func TestFlushResetsToEmpty(t *testing.T) {
	b, _ := New(8)
	b.Write([]byte("abcd"))
	b.Flush()
	if got := b.ReadCapacity(); got != 0 {
		t.Errorf("ReadCapacity after Flush = %d, want 0", got)
	}
	if got := b.WriteCapacity(); got != b.Cap() {
		t.Errorf("WriteCapacity after Flush = %d, want %d", got, b.Cap())
	}
}

func TestCapacityInvariantHoldsAcrossWraparound(t *testing.T) {
	b, _ := New(8)
	rng := rand.New(rand.NewSource(1))
	var totalWritten, totalRead int
	src := make([]byte, 0, 4096)
	for i := 0; i < 4096; i++ {
		src = append(src, byte(i))
	}
	writeIdx, readIdx := 0, 0
	for step := 0; step < 2000; step++ {
		if rng.Intn(2) == 0 && writeIdx < len(src) {
			chunk := src[writeIdx:min(writeIdx+3, len(src))]
			n := b.Write(chunk)
			writeIdx += n
			totalWritten += n
		} else {
			out := make([]byte, 3)
			n := b.Read(out)
			for i := 0; i < n; i++ {
				if out[i] != src[readIdx+i] {
					t.Fatalf("byte order mismatch at %d: got %d want %d", readIdx+i, out[i], src[readIdx+i])
				}
			}
			readIdx += n
			totalRead += n
		}
		if rc, wc := b.ReadCapacity(), b.WriteCapacity(); rc+wc > b.Cap() {
			t.Fatalf("read_capacity + write_capacity (%d) exceeds capacity (%d)", rc+wc, b.Cap())
		}
	}
	if totalRead > totalWritten {
		t.Fatalf("read more bytes (%d) than written (%d)", totalRead, totalWritten)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

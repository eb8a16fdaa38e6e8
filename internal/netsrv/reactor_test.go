package netsrv

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/jscyril/playd/internal/audio"
	"github.com/jscyril/playd/internal/player"
)

func newTestReactor() (*Reactor, *player.Player) {
	faults := audio.NewFaultBus()
	p := player.New(0, nil, map[string]player.SourceFactory{}, faults)
	r := New(p)
	p.SetIO(r)
	return r, p
}

// connectPipe wires a net.Pipe connection into the reactor the same way
// admit would for a real accepted socket, and returns the peer end the
// test drives as "the client".
func connectPipe(t *testing.T, r *Reactor) net.Conn {
	t.Helper()
	serverSide, clientSide := net.Pipe()
	r.admit(serverSide)
	return clientSide
}

func readLine(t *testing.T, sc *bufio.Scanner) string {
	t.Helper()
	if !sc.Scan() {
		t.Fatalf("expected a line, scan failed: %v", sc.Err())
	}
	return sc.Text()
}

func TestConnectReceivesDumpOnAdmit(t *testing.T) {
	r, _ := newTestReactor()
	client := connectPipe(t, r)
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	sc := bufio.NewScanner(client)

	wantPrefixes := []string{"! OHAI", "! IAMA", "! EJECT", "! STOP"}
	for _, want := range wantPrefixes {
		line := readLine(t, sc)
		if !strings.HasPrefix(line, want) {
			t.Fatalf("line = %q, want prefix %q", line, want)
		}
	}
}

func TestRunCommandUnknownVerbRepliesWhat(t *testing.T) {
	r, _ := newTestReactor()
	client := connectPipe(t, r)
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	sc := bufio.NewScanner(client)
	for i := 0; i < 4; i++ {
		readLine(t, sc) // drain the initial dump
	}

	id := player.ClientId(1)
	c, ok := r.pool.get(id)
	if !ok {
		t.Fatal("expected connection 1 to exist")
	}
	r.runCommand(id, c, []string{"x1", "bogus"})

	line := readLine(t, sc)
	if !strings.HasPrefix(line, "x1 ACK WHAT") {
		t.Fatalf("line = %q, want ACK WHAT for unknown verb", line)
	}
}

func TestRunCommandEmptyWordsRepliesBadCommand(t *testing.T) {
	r, _ := newTestReactor()
	client := connectPipe(t, r)
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	sc := bufio.NewScanner(client)
	for i := 0; i < 4; i++ {
		readLine(t, sc)
	}

	id := player.ClientId(1)
	c, _ := r.pool.get(id)
	r.runCommand(id, c, []string{})

	line := readLine(t, sc)
	if !strings.HasPrefix(line, `! ACK FAIL "bad command"`) {
		t.Fatalf("line = %q, want bad-command ACK FAIL", line)
	}
}

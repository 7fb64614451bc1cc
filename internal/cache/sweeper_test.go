package cache

import (
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSweeper_EvictsWithinOneInterval(t *testing.T) {
	c := New(30 * time.Millisecond)
	s := NewSweeper(c, 20*time.Millisecond, nil)
	s.Start()
	defer s.Stop()

	c.Put(1, "a")

	// Staleness onset at +30ms; the entry must be physically gone within one
	// sweep interval after that.
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if c.Len() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("stale entry still present after %d entries remain", c.Len())
}

func TestSweeper_LeavesFreshEntries(t *testing.T) {
	c := New(10 * time.Minute)
	s := NewSweeper(c, 10*time.Millisecond, nil)
	s.Start()
	defer s.Stop()

	c.Put(1, "a")
	time.Sleep(50 * time.Millisecond)

	if c.Len() != 1 {
		t.Fatalf("Len() = %d; fresh entry must not be swept", c.Len())
	}
}

func TestSweeper_StartStopIdempotent(t *testing.T) {
	c := New(time.Minute)
	s := NewSweeper(c, time.Minute, nil)

	s.Start()
	s.Start() // no-op
	s.Stop()
	s.Stop() // no-op

	// Restart after stop works.
	s.Start()
	s.Stop()
}

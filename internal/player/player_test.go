package player

import (
	"testing"
	"time"

	"github.com/Hejdula/upsnake/internal/grid"
)

func TestNewDefaults(t *testing.T) {
	p := New("alice")
	if p.Nickname != "alice" {
		t.Fatalf("Nickname = %q", p.Nickname)
	}
	if p.Length != 3 {
		t.Fatalf("Length = %d, want 3", p.Length)
	}
	if p.LastMoveDir != grid.None {
		t.Fatalf("LastMoveDir = %v, want None", p.LastMoveDir)
	}
	if p.Alive {
		t.Fatal("Alive should start false")
	}
	if p.Updated {
		t.Fatal("Updated should start false")
	}
	if p.Apples != 0 {
		t.Fatalf("Apples = %d, want 0", p.Apples)
	}
	if len(p.Body) != 0 {
		t.Fatalf("Body should start empty, got %v", p.Body)
	}
}

func TestValidateNickname(t *testing.T) {
	cases := []struct {
		nick string
		ok   bool
	}{
		{"alice", true},
		{"", false},
		{"has space", false},
		{"tab\tnick", false},
	}
	for _, c := range cases {
		err := ValidateNickname(c.nick)
		if (err == nil) != c.ok {
			t.Errorf("ValidateNickname(%q) err=%v, want ok=%v", c.nick, err, c.ok)
		}
	}
}

func TestSetIntentRejectsReversal(t *testing.T) {
	p := New("alice")
	p.LastMoveDir = grid.Up
	p.SetIntent(grid.Down)
	if p.Dir != grid.None {
		t.Fatalf("Dir should be unchanged by reversal attempt, got %v", p.Dir)
	}
	p.SetIntent(grid.Left)
	if p.Dir != grid.Left {
		t.Fatalf("Dir = %v, want Left", p.Dir)
	}
}

func TestIdleSince(t *testing.T) {
	p := New("alice")
	now := time.Now()
	p.Touch(now)
	if p.IdleSince(now.Add(5*time.Second), 10*time.Second) {
		t.Fatal("should not be idle yet at 5s with a 10s timeout")
	}
	if !p.IdleSince(now.Add(11*time.Second), 10*time.Second) {
		t.Fatal("should be idle after exceeding the timeout")
	}
}

func TestRefIsZero(t *testing.T) {
	var r Ref
	if !r.IsZero() {
		t.Fatal("zero-value Ref should report IsZero")
	}
	r = Ref{Slot: 1, Gen: 1}
	if r.IsZero() {
		t.Fatal("non-zero Ref should not report IsZero")
	}
}

package server

import (
	"testing"

	"github.com/Hejdula/upsnake/internal/player"
)

func TestPlayerTableAddResolveRemove(t *testing.T) {
	tbl := newPlayerTable()
	p := player.New("alice")
	ref := tbl.Add(p)

	got, ok := tbl.Resolve(ref)
	if !ok || got != p {
		t.Fatalf("Resolve = %v, %v", got, ok)
	}

	tbl.Remove(ref)
	if _, ok := tbl.Resolve(ref); ok {
		t.Fatal("Resolve should fail after Remove")
	}
}

func TestPlayerTableRecyclesSlotWithNewGeneration(t *testing.T) {
	tbl := newPlayerTable()
	p1 := player.New("alice")
	ref1 := tbl.Add(p1)
	tbl.Remove(ref1)

	p2 := player.New("bob")
	ref2 := tbl.Add(p2)

	if ref2.Slot != ref1.Slot {
		t.Fatalf("expected the freed slot to be recycled, got slot %d want %d", ref2.Slot, ref1.Slot)
	}
	if ref2.Gen == ref1.Gen {
		t.Fatal("a recycled slot must carry a new generation")
	}
	if _, ok := tbl.Resolve(ref1); ok {
		t.Fatal("the stale ref1 must not resolve to the recycled slot")
	}
	got, ok := tbl.Resolve(ref2)
	if !ok || got != p2 {
		t.Fatalf("Resolve(ref2) = %v, %v, want bob", got, ok)
	}
}

func TestPlayerTableAll(t *testing.T) {
	tbl := newPlayerTable()
	tbl.Add(player.New("a"))
	tbl.Add(player.New("b"))
	if got := len(tbl.All()); got != 2 {
		t.Fatalf("All() returned %d entries, want 2", got)
	}
}

package game

import (
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/Hejdula/upsnake/internal/grid"
	"github.com/Hejdula/upsnake/internal/player"
	"github.com/Hejdula/upsnake/internal/randsrc/mocks"
)

// sequence is a hand-written fake randsrc.Source that returns a fixed list
// of answers in order, for tests that need a simple deterministic
// stand-in rather than a generated mock.
type sequence struct {
	vals []int
	i    int
}

func (s *sequence) IntN(n int) int {
	v := s.vals[s.i]
	s.i++
	return v % n
}

func TestHatchRequiresTwoPlayers(t *testing.T) {
	g := New(&sequence{vals: []int{0}})
	g.Join(player.New("solo"))
	if err := g.Hatch(); err != ErrCannotStart {
		t.Fatalf("Hatch with one player: got %v, want ErrCannotStart", err)
	}
}

func TestHatchPlacesHeadsAndApple(t *testing.T) {
	// x,y and a direction index for alice, then x,y and a direction index
	// for bob, then x,y for the apple.
	g := New(&sequence{vals: []int{1, 1, 0, 5, 5, 1, 9, 9}})
	alice := player.New("alice")
	bob := player.New("bob")
	g.Join(alice)
	g.Join(bob)

	if err := g.Hatch(); err != nil {
		t.Fatalf("Hatch: %v", err)
	}
	if !g.Active {
		t.Fatal("Active should be true after Hatch")
	}
	if len(alice.Body) != 1 || alice.Body[0] != (grid.Position{X: 1, Y: 1}) {
		t.Fatalf("alice head = %v", alice.Body)
	}
	if len(bob.Body) != 1 || bob.Body[0] != (grid.Position{X: 5, Y: 5}) {
		t.Fatalf("bob head = %v", bob.Body)
	}
	if g.Apple != (grid.Position{X: 9, Y: 9}) {
		t.Fatalf("apple = %v", g.Apple)
	}
	if !alice.Alive || !bob.Alive {
		t.Fatal("both players should be alive after Hatch")
	}
	if alice.Length != 3 || bob.Length != 3 {
		t.Fatal("Length should reset to 3")
	}
}

// TestBoundaryKillsWithoutExtendingBody checks that a head stepping out of
// bounds kills the player and the body is not extended.
func TestBoundaryKillsWithoutExtendingBody(t *testing.T) {
	g := New(&sequence{vals: []int{0}})
	alice := player.New("alice")
	bob := player.New("bob")
	alice.Alive, bob.Alive = true, true
	alice.Body = []grid.Position{{X: 0, Y: 0}}
	alice.Dir = grid.Up // steps to y = -1
	bob.Body = []grid.Position{{X: 5, Y: 5}}
	bob.Dir = grid.Right
	g.Grid.Set(alice.Body[0], true)
	g.Grid.Set(bob.Body[0], true)
	g.Join(alice)
	g.Join(bob)
	g.Apple = grid.Position{X: 9, Y: 9}

	g.Slither()

	if alice.Alive {
		t.Fatal("alice should have died stepping out of bounds")
	}
	if len(alice.Body) != 1 {
		t.Fatalf("alice body should not have been extended, got %v", alice.Body)
	}
}

// TestHeadToHeadCollisionIsDraw checks that two alive players stepping
// into the same non-apple cell both die.
func TestHeadToHeadCollisionIsDraw(t *testing.T) {
	g := New(&sequence{vals: []int{0}})
	a := player.New("a")
	b := player.New("b")
	a.Alive, b.Alive = true, true
	a.Body = []grid.Position{{X: 2, Y: 2}}
	b.Body = []grid.Position{{X: 4, Y: 2}}
	a.Dir = grid.Right
	b.Dir = grid.Left
	g.Grid.Set(a.Body[0], true)
	g.Grid.Set(b.Body[0], true)
	g.Join(a)
	g.Join(b)
	g.Apple = grid.Position{X: 9, Y: 9}

	cont := g.Slither()

	if a.Alive || b.Alive {
		t.Fatal("both players should have died in a head-to-head collision")
	}
	if cont {
		t.Fatal("Slither should report the match over")
	}
}

// TestApplePickupGrowsBodyWithoutPoppingTail checks that eating an apple
// grows the body and respawns the apple without popping the tail.
func TestApplePickupGrowsBodyWithoutPoppingTail(t *testing.T) {
	g := New(&sequence{vals: []int{7, 7}})
	alice := player.New("alice")
	alice.Alive = true
	alice.Body = []grid.Position{{X: 2, Y: 2}}
	alice.Dir = grid.Right
	g.Grid.Set(alice.Body[0], true)
	g.Join(alice)
	bob := player.New("bob")
	bob.Alive = true
	bob.Body = []grid.Position{{X: 8, Y: 8}}
	bob.Dir = grid.Up
	g.Grid.Set(bob.Body[0], true)
	g.Join(bob)
	g.Apple = grid.Position{X: 3, Y: 2}

	g.Slither()

	if alice.Apples != 1 {
		t.Fatalf("apples = %d, want 1", alice.Apples)
	}
	if alice.Length != 4 {
		t.Fatalf("length = %d, want 4", alice.Length)
	}
	want := []grid.Position{{X: 3, Y: 2}, {X: 2, Y: 2}}
	if len(alice.Body) != len(want) || alice.Body[0] != want[0] || alice.Body[1] != want[1] {
		t.Fatalf("body = %v, want %v", alice.Body, want)
	}
	if g.Apple == (grid.Position{X: 3, Y: 2}) {
		t.Fatal("apple should have respawned elsewhere")
	}
}

// TestReversalBlockedBySetIntent checks that SetIntent refuses to reverse
// a snake directly onto its own last move direction.
func TestReversalBlockedBySetIntent(t *testing.T) {
	p := player.New("alice")
	p.LastMoveDir = grid.Up
	p.Dir = grid.Up
	p.SetIntent(grid.Down)
	if p.Dir != grid.Up {
		t.Fatalf("intent should be unchanged by a reversal attempt, got %v", p.Dir)
	}
}

// TestFullStateEncodesBodyTrail checks that FullState encodes a body as a
// head position followed by a trail of per-segment directions.
func TestFullStateEncodesBodyTrail(t *testing.T) {
	g := New(&sequence{vals: []int{0}})
	alice := player.New("alice")
	alice.Alive = true
	alice.Body = []grid.Position{{X: 3, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 1}}
	g.Join(alice)
	g.Apple = grid.Position{X: 9, Y: 9}

	got := g.FullState()
	want := "9 9 alice 3 2 HLU"
	if got != want {
		t.Fatalf("FullState() = %q, want %q", got, want)
	}
}

// TestMockRandSourceDrivesRandomEmptyTile exercises the go.uber.org/mock
// generated mock directly, driving it through EXPECT/Return to control
// exactly which tile randomEmptyTile lands on.
func TestMockRandSourceDrivesRandomEmptyTile(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	gomock.InOrder(
		src.EXPECT().IntN(grid.Size).Return(4),
		src.EXPECT().IntN(grid.Size).Return(6),
	)

	g := New(src)
	pos := g.randomEmptyTile()
	if pos != (grid.Position{X: 4, Y: 6}) {
		t.Fatalf("randomEmptyTile() = %v, want {4 6}", pos)
	}
}

func TestSlitherEndsWithFewerThanTwoAlive(t *testing.T) {
	g := New(&sequence{vals: []int{0}})
	alice := player.New("alice")
	alice.Alive = true
	alice.Body = []grid.Position{{X: 0, Y: 0}}
	g.Join(alice)
	if g.Slither() {
		t.Fatal("Slither should return false with only one player ever having joined")
	}
}

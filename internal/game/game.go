// Package game implements the per-room simulation: hatching a match,
// advancing one tick under a strict eight-step ordering, and encoding the
// two wire snapshots clients receive.
package game

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Hejdula/upsnake/internal/grid"
	"github.com/Hejdula/upsnake/internal/player"
	"github.com/Hejdula/upsnake/internal/randsrc"
)

// ErrCannotStart is returned by Hatch when its preconditions are not met:
// a match already active, or fewer than two players in the room.
var ErrCannotStart = errors.New("game: cannot start match")

// Game is one room's match state: a fixed roster of players, the
// occupancy grid they share, the apple, and whether a match is running.
type Game struct {
	Players []*player.Player
	Grid    grid.Matrix
	Active  bool
	Apple   grid.Position

	rng randsrc.Source
}

// New returns an empty, inactive room using the given randomness source.
// Passing a randsrc mock lets tests force deterministic tile and direction
// choices instead of drawing real random numbers.
func New(rng randsrc.Source) *Game {
	if rng == nil {
		rng = randsrc.New()
	}
	return &Game{rng: rng}
}

// Join adds p to the room's roster. It does not validate capacity; the
// server enforces MAX_PLAYERS_IN_ROOM before calling Join.
func (g *Game) Join(p *player.Player) {
	g.Players = append(g.Players, p)
}

// Leave removes p from the roster if present. Leaving during an active
// match is permitted: Slither simply treats a removed player as absent
// from then on.
func (g *Game) Leave(p *player.Player) {
	for i, q := range g.Players {
		if q == p {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			return
		}
	}
}

// isEmptyTile reports whether no player's body occupies pos. It consults
// Players[*].Body directly rather than Grid, so it remains meaningful
// before Grid has been rebuilt (e.g. mid-Hatch, between placements) —
// is_empty(pos) is true iff no body segment occupies pos.
func (g *Game) isEmptyTile(pos grid.Position) bool {
	for _, p := range g.Players {
		for _, seg := range p.Body {
			if seg == pos {
				return false
			}
		}
	}
	return true
}

// randomEmptyTile draws a uniformly random tile (via rejection sampling)
// that no player's body currently occupies.
func (g *Game) randomEmptyTile() grid.Position {
	for {
		pos := grid.Position{X: g.rng.IntN(grid.Size), Y: g.rng.IntN(grid.Size)}
		if g.isEmptyTile(pos) {
			return pos
		}
	}
}

var directions = []grid.Direction{grid.Up, grid.Down, grid.Left, grid.Right}

func (g *Game) randomDirection() grid.Direction {
	return directions[g.rng.IntN(len(directions))]
}

// Hatch starts a match. Preconditions: the room is not already active and
// holds at least two players. On failure it returns ErrCannotStart and
// leaves the room untouched.
func (g *Game) Hatch() error {
	if g.Active || len(g.Players) < 2 {
		return ErrCannotStart
	}
	g.Grid.Clear()
	for _, p := range g.Players {
		p.Body = nil
		p.Length = 3
		p.Alive = true
		p.Updated = false
		p.Apples = 0
		p.LastMoveDir = grid.None
		head := g.randomEmptyTile()
		p.Body = append(p.Body, head)
		g.Grid.Set(head, true)
		p.Dir = g.randomDirection()
	}
	g.Apple = g.randomEmptyTile()
	g.Active = true
	return nil
}

// Slither advances the simulation by one tick, in a fixed order: compute
// new heads, resolve body collisions against pre-tick occupancy, resolve
// head-to-head collisions, commit new heads to the grid, then handle
// apple pickup or tail contraction, then apple respawn. It returns true
// iff the match should continue (at least two players remain alive).
func (g *Game) Slither() bool {
	alive := func() int {
		n := 0
		for _, p := range g.Players {
			if p.Alive {
				n++
			}
		}
		return n
	}

	// Step 1.
	if alive() < 2 {
		return false
	}

	type headMove struct {
		p       *player.Player
		head    grid.Position
		didMove bool
	}
	moves := make([]headMove, 0, len(g.Players))

	// Step 2.
	for _, p := range g.Players {
		if !p.Alive {
			continue
		}
		p.Updated = false
		oldHead, ok := p.Head()
		if !ok {
			continue
		}
		newHead := oldHead.Step(p.Dir)
		if !newHead.InBounds() {
			p.Alive = false
			moves = append(moves, headMove{p: p, didMove: false})
			continue
		}
		p.Body = append([]grid.Position{newHead}, p.Body...)
		p.LastMoveDir = p.Dir
		moves = append(moves, headMove{p: p, head: newHead, didMove: true})
	}

	// Step 3: collision against pre-tick occupancy (Grid still reflects
	// last tick's committed positions).
	for _, m := range moves {
		if !m.didMove || !m.p.Alive {
			continue
		}
		if g.Grid.At(m.head) {
			m.p.Alive = false
		}
	}

	// Step 4: head-to-head collisions among players still alive.
	for i := 0; i < len(moves); i++ {
		mi := moves[i]
		if !mi.didMove || !mi.p.Alive {
			continue
		}
		for j := i + 1; j < len(moves); j++ {
			mj := moves[j]
			if !mj.didMove || !mj.p.Alive {
				continue
			}
			if mi.head == mj.head {
				mi.p.Alive = false
				mj.p.Alive = false
			}
		}
	}

	// Step 5: commit every new head to the grid, regardless of whether
	// its owner survived the collision checks above.
	for _, m := range moves {
		if m.didMove {
			g.Grid.Set(m.head, true)
		}
	}

	// Step 6: apple pickup or tail contraction.
	appleEaten := false
	for _, p := range g.Players {
		if !p.Alive {
			continue
		}
		head, ok := p.Head()
		if !ok {
			continue
		}
		if head == g.Apple {
			p.Apples++
			p.Length++
			appleEaten = true
			continue
		}
		if len(p.Body) > p.Length {
			tail := p.Body[len(p.Body)-1]
			p.Body = p.Body[:len(p.Body)-1]
			g.Grid.Set(tail, false)
		}
	}

	// Step 7.
	if appleEaten {
		g.Apple = g.randomEmptyTile()
	}

	// Step 8.
	return alive() >= 2
}

// CurrentMove encodes the intent-direction snapshot: "<ax> <ay>" followed
// by " <nick> <U|D|L|R>" per player.
func (g *Game) CurrentMove() string {
	var b strings.Builder
	b.WriteString(g.Apple.String())
	for _, p := range g.Players {
		b.WriteByte(' ')
		b.WriteString(p.Nickname)
		b.WriteByte(' ')
		b.WriteByte(p.Dir.Letter())
	}
	return b.String()
}

// FullState encodes the simulation snapshot: "<ax> <ay>" followed, for
// each player with a non-empty body, by
// " <nick> <hx> <hy> <H|E><body-trail>", where body-trail gives, for each
// body segment after the head, the direction from the previous segment to
// this one.
func (g *Game) FullState() string {
	var b strings.Builder
	b.WriteString(g.Apple.String())
	for _, p := range g.Players {
		if len(p.Body) == 0 {
			continue
		}
		head := p.Body[0]
		status := byte('E')
		if p.Alive {
			status = 'H'
		}
		b.WriteByte(' ')
		b.WriteString(p.Nickname)
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(head.X))
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(head.Y))
		b.WriteByte(' ')
		b.WriteByte(status)
		for i := 1; i < len(p.Body); i++ {
			prev, curr := p.Body[i-1], p.Body[i]
			if curr == prev {
				continue
			}
			if dir, ok := grid.DirectionTo(prev, curr); ok {
				b.WriteByte(dir.Letter())
			}
		}
	}
	return b.String()
}

// Nicknames returns the roster's nicknames in join order, for LOBY
// listings.
func (g *Game) Nicknames() []string {
	names := make([]string, len(g.Players))
	for i, p := range g.Players {
		names[i] = p.Nickname
	}
	return names
}

// AliveCount returns the number of players currently alive in the room.
func (g *Game) AliveCount() int {
	n := 0
	for _, p := range g.Players {
		if p.Alive {
			n++
		}
	}
	return n
}

// AllUpdated reports whether every alive player has acknowledged the
// current tick.
func (g *Game) AllUpdated() bool {
	for _, p := range g.Players {
		if p.Alive && !p.Updated {
			return false
		}
	}
	return true
}

// PendingNicknames returns the nicknames of alive players who have not yet
// acknowledged the current tick, in roster order.
func (g *Game) PendingNicknames() []string {
	var names []string
	for _, p := range g.Players {
		if p.Alive && !p.Updated {
			names = append(names, p.Nickname)
		}
	}
	return names
}

// Winner returns the sole surviving player's nickname and true if exactly
// one player is alive, for the WINS/DRAW broadcast decision.
func (g *Game) Winner() (string, bool) {
	var name string
	n := 0
	for _, p := range g.Players {
		if p.Alive {
			name = p.Nickname
			n++
		}
	}
	if n == 1 {
		return name, true
	}
	return "", false
}

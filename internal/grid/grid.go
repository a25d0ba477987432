// Package grid implements the board's coordinate system: positions,
// cardinal directions, and the occupancy matrix every room maintains.
package grid

import "fmt"

// Size is the side length of the square board (N).
const Size = 10

// Direction is one of the four cardinal movement directions, plus the None
// sentinel used only as an initial last-executed direction.
type Direction uint8

const (
	None Direction = iota
	Up
	Down
	Left
	Right
)

// delta is the direction -> (dx, dy) table.
var delta = map[Direction]Position{
	Up:    {X: 0, Y: -1},
	Down:  {X: 0, Y: 1},
	Left:  {X: -1, Y: 0},
	Right: {X: 1, Y: 0},
}

// Delta returns the unit displacement for d. None returns the zero position.
func Delta(d Direction) Position {
	return delta[d]
}

// Opposite reports whether a and b point in opposite directions (their
// deltas sum to (0,0)).
func Opposite(a, b Direction) bool {
	if a == None || b == None {
		return false
	}
	da, db := Delta(a), Delta(b)
	return da.X+db.X == 0 && da.Y+db.Y == 0
}

// Letter encodes a direction as the single ASCII letter the wire protocol
// uses.
func (d Direction) Letter() byte {
	switch d {
	case Up:
		return 'U'
	case Down:
		return 'D'
	case Left:
		return 'L'
	case Right:
		return 'R'
	default:
		return 0
	}
}

// ParseDirection decodes a single wire letter into a Direction. ok is false
// for anything other than U, D, L, R.
func ParseDirection(letter byte) (Direction, bool) {
	switch letter {
	case 'U':
		return Up, true
	case 'D':
		return Down, true
	case 'L':
		return Left, true
	case 'R':
		return Right, true
	default:
		return None, false
	}
}

// Position is an integer coordinate on the board. The zero value is the
// top-left cell, (0,0).
type Position struct {
	X, Y int
}

// Add returns the componentwise sum of p and o.
func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns the componentwise difference of p and o.
func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y}
}

// InBounds reports whether p lies within the NxN board.
func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < Size && p.Y >= 0 && p.Y < Size
}

func (p Position) String() string {
	return fmt.Sprintf("%d %d", p.X, p.Y)
}

// Step returns the position reached by moving one cell in direction d.
func (p Position) Step(d Direction) Position {
	return p.Add(Delta(d))
}

// DirectionTo returns the direction whose delta equals (to - from). ok is
// false if to is not exactly one cardinal step away from from.
func DirectionTo(from, to Position) (Direction, bool) {
	d := to.Sub(from)
	for _, dir := range []Direction{Up, Down, Left, Right} {
		if delta[dir] == d {
			return dir, true
		}
	}
	return None, false
}

// Matrix is the NxN occupancy board. A true cell holds some snake segment,
// live or dead: a dead snake's tail is never popped, so its body stays
// solid until the next match, except a head that died moving onto a tile
// another snake vacated in the same tick, which that tail pop frees.
type Matrix [Size][Size]bool

// Set marks or clears the occupancy of p. Out-of-bounds positions are
// ignored since a dying head never lands inside the matrix.
func (m *Matrix) Set(p Position, occupied bool) {
	if !p.InBounds() {
		return
	}
	m[p.Y][p.X] = occupied
}

// At reports the occupancy of p. Out-of-bounds positions read as occupied,
// so boundary checks never need a separate bounds test before consulting
// the grid.
func (m *Matrix) At(p Position) bool {
	if !p.InBounds() {
		return true
	}
	return m[p.Y][p.X]
}

// Clear resets every cell to unoccupied.
func (m *Matrix) Clear() {
	*m = Matrix{}
}

// Package player implements the Player entity: identity, intent, body, and
// liveness bookkeeping, plus a single activity timestamp used to evict
// idle players.
package player

import (
	"errors"
	"time"
	"unicode"

	"github.com/Hejdula/upsnake/internal/grid"
)

// ErrEmptyNickname is returned by ValidateNickname when given an empty or
// non-printable nickname.
var ErrEmptyNickname = errors.New("player: nickname must be non-empty and printable")

// ValidateNickname reports whether nick is acceptable: non-empty and
// entirely printable (no control characters, no embedded whitespace that
// would break the space-delimited wire grammar).
func ValidateNickname(nick string) error {
	if nick == "" {
		return ErrEmptyNickname
	}
	for _, r := range nick {
		if !unicode.IsGraphic(r) || unicode.IsSpace(r) {
			return ErrEmptyNickname
		}
	}
	return nil
}

// Player is one participant's game-relevant state. Its lifecycle is owned
// exclusively by the server (internal/server.Server). A connection's bound
// player is a non-owning Ref; a room's roster holds *Player directly, and
// the server removes a player from its room before destroying it.
type Player struct {
	Nickname string

	Dir         grid.Direction // intent for the next tick
	LastMoveDir grid.Direction // direction actually executed last tick

	Alive   bool
	Updated bool // whether this tick's TACK was received

	Apples int
	Length int // target body length

	Body []grid.Position // index 0 is the head, last is the tail

	LastActive time.Time
}

// New constructs a freshly joined, not-yet-hatched player: body length
// target 3, no last move direction, not alive, not updated, zero apples,
// empty body.
func New(nickname string) *Player {
	return &Player{
		Nickname:    nickname,
		Dir:         grid.None,
		LastMoveDir: grid.None,
		Length:      3,
		LastActive:  time.Now(),
	}
}

// Head returns the current head position and true, or the zero position and
// false if the body is empty.
func (p *Player) Head() (grid.Position, bool) {
	if len(p.Body) == 0 {
		return grid.Position{}, false
	}
	return p.Body[0], true
}

// SetIntent updates the player's intent direction unless doing so would
// reverse onto LastMoveDir, in which case the intent is silently left
// unchanged.
func (p *Player) SetIntent(d grid.Direction) {
	if grid.Opposite(d, p.LastMoveDir) {
		return
	}
	p.Dir = d
}

// Touch records activity at the given time.
func (p *Player) Touch(now time.Time) {
	p.LastActive = now
}

// IdleSince reports whether the player has been inactive for longer than
// timeout, as of now.
func (p *Player) IdleSince(now time.Time, timeout time.Duration) bool {
	return now.Sub(p.LastActive) > timeout
}

// Ref is a non-owning, generation-checked reference to a Player slot held
// by Server.players: connections hold a Ref rather than a *Player, and
// resolving a stale Ref (one whose generation no longer matches the slot)
// fails instead of aliasing a reused slot.
type Ref struct {
	Slot int
	Gen  uint32
}

// IsZero reports whether r is the unset reference.
func (r Ref) IsZero() bool {
	return r == Ref{}
}

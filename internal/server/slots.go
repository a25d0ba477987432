package server

import "github.com/Hejdula/upsnake/internal/player"

// slot is one entry in the server's player arena: the live player plus a
// generation counter that lets a stale player.Ref be detected once the
// slot is recycled. The counter increments monotonically on every
// removal, so any past generation is distinguishable from the current
// one, not just "current" vs "freed".
type slot struct {
	occupied bool
	gen      uint32
	player   *player.Player
}

// playerTable owns every Player for the process lifetime of the server.
// Connections and the nickname index hold a player.Ref and resolve it
// through this table on every use, so a destroyed player can never be
// reached through a stale reference. Room rosters hold *player.Player and
// are scrubbed by destroyPlayer before the slot is freed.
type playerTable struct {
	slots []slot
	free  []int
}

func newPlayerTable() *playerTable {
	return &playerTable{}
}

// Slot indices are stored and addressed 1-based internally (index i lives
// at t.slots[i-1]). This keeps the zero value of player.Ref — Slot 0 —
// permanently invalid, so an unbound Connection.Player can never alias
// whatever player happens to land in the table's first real slot.

// Add inserts p into a free slot (recycling one if available) and returns
// the Ref that addresses it.
func (t *playerTable) Add(p *player.Player) player.Ref {
	if n := len(t.free); n > 0 {
		i := t.free[n-1]
		t.free = t.free[:n-1]
		t.slots[i].occupied = true
		t.slots[i].player = p
		return player.Ref{Slot: i + 1, Gen: t.slots[i].gen}
	}
	t.slots = append(t.slots, slot{occupied: true, player: p})
	return player.Ref{Slot: len(t.slots), Gen: 0}
}

// Resolve returns the player addressed by ref, or false if the slot has
// since been freed or recycled under a new generation.
func (t *playerTable) Resolve(ref player.Ref) (*player.Player, bool) {
	i := ref.Slot - 1
	if i < 0 || i >= len(t.slots) {
		return nil, false
	}
	s := t.slots[i]
	if !s.occupied || s.gen != ref.Gen {
		return nil, false
	}
	return s.player, true
}

// Remove frees ref's slot and bumps its generation, invalidating every Ref
// still pointing at it. Callers are responsible for first scrubbing the
// reference out of every room and connection.
func (t *playerTable) Remove(ref player.Ref) {
	i := ref.Slot - 1
	if i < 0 || i >= len(t.slots) {
		return
	}
	s := &t.slots[i]
	if !s.occupied || s.gen != ref.Gen {
		return
	}
	s.occupied = false
	s.player = nil
	s.gen++
	t.free = append(t.free, i)
}

// All returns every currently live (ref, player) pair. Order is slot
// order, which is stable enough for LIST/lobby enumeration but carries no
// other meaning.
func (t *playerTable) All() []struct {
	Ref player.Ref
	P   *player.Player
} {
	var out []struct {
		Ref player.Ref
		P   *player.Player
	}
	for i, s := range t.slots {
		if s.occupied {
			out = append(out, struct {
				Ref player.Ref
				P   *player.Player
			}{Ref: player.Ref{Slot: i + 1, Gen: s.gen}, P: s.player})
		}
	}
	return out
}

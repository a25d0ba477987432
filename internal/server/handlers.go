package server

import (
	"strconv"
	"time"

	"github.com/Hejdula/upsnake/internal/config"
	"github.com/Hejdula/upsnake/internal/grid"
	"github.com/Hejdula/upsnake/internal/netio"
	"github.com/Hejdula/upsnake/internal/player"
	"github.com/Hejdula/upsnake/internal/protocol"
)

// handleCommand dispatches one syntactically valid Command to its
// handler. Game-precondition and capacity failures reply with a sentinel
// and keep the connection open. It always returns nil: the argument checks
// protocol.Parse does not make (a JOIN room id, a NICK that fails
// player.ValidateNickname) are made by handleJoin and handleNick, which
// close the connection themselves.
func (s *Server) handleCommand(c *netio.Connection, cmd protocol.Command) error {
	switch cmd.Keyword {
	case "NICK":
		s.handleNick(c, cmd.Args[0])
	case "LIST":
		s.handleList(c)
	case "JOIN":
		s.handleJoin(c, cmd.Args[0])
	case "LEAV":
		s.handleLeave(c)
	case "STRT":
		s.handleStart(c)
	case "MOVE":
		s.handleMove(c, cmd.Args[0])
	case "TACK":
		s.handleTack(c)
	case "PONG":
		// Heartbeat response only touches last_active, already done by
		// the caller before handleCommand runs.
	case "QUIT":
		s.handleQuit(c)
	}
	return nil
}

// handleNick binds a new nickname, or displaces whatever connection
// currently holds an existing one and replays its state to the newcomer.
// A nickname that fails player.ValidateNickname closes the connection,
// the same as any other protocol violation.
func (s *Server) handleNick(c *netio.Connection, nick string) {
	if err := player.ValidateNickname(nick); err != nil {
		s.log.Debug("invalid nickname", "conn", c.PeerAddr, "err", err)
		s.closeConnection(c.ID)
		return
	}
	if ref, exists := s.nicknames[nick]; exists {
		if old, ok := s.findConnectionByPlayer(ref); ok && old.ID != c.ID {
			old.Player = player.Ref{}
			s.closeConnection(old.ID)
		}
		c.Player = ref
		if roomID, inRoom := s.roomOf[ref]; inRoom {
			s.sendLobby(c, roomID)
			if s.rooms[roomID].Active {
				c.Send(protocol.Frame("TICK", s.rooms[roomID].FullState()))
			}
		} else {
			s.sendRoomList(c)
		}
		return
	}

	p := player.New(nick)
	ref := s.players.Add(p)
	s.nicknames[nick] = ref
	c.Player = ref
	s.sendRoomList(c)
}

func (s *Server) handleList(c *netio.Connection) {
	s.sendRoomList(c)
}

func (s *Server) sendRoomList(c *netio.Connection) {
	counts := make([]string, config.NumberOfRooms)
	for i, r := range s.rooms {
		counts[i] = strconv.Itoa(len(r.Players))
	}
	c.Send(protocol.Frame("ROOM", counts...))
}

// handleJoin moves the caller's player into the requested room, rejecting
// a full room with FULL| and leaving any prior room membership in place.
func (s *Server) handleJoin(c *netio.Connection, arg string) {
	p, ok := s.players.Resolve(c.Player)
	if !ok {
		return
	}
	roomID, err := protocol.ParseRoomID(arg, config.NumberOfRooms)
	if err != nil {
		s.closeConnection(c.ID)
		return
	}
	if len(s.rooms[roomID].Players) >= config.MaxPlayersInRoom {
		c.Send(protocol.Frame("FULL"))
		return
	}

	oldRoom, wasInRoom := s.roomOf[c.Player]
	if wasInRoom {
		if oldRoom == roomID {
			// Joining the room the player is already in still
			// broadcasts LOBY, but the post-state is unchanged.
			s.broadcastLobby(roomID)
			return
		}
		s.rooms[oldRoom].Leave(p)
	}
	s.rooms[roomID].Join(p)
	s.roomOf[c.Player] = roomID

	if wasInRoom {
		s.broadcastLobby(oldRoom)
	}
	s.broadcastLobby(roomID)
}

func (s *Server) handleLeave(c *netio.Connection) {
	p, ok := s.players.Resolve(c.Player)
	if !ok {
		return
	}
	roomID, inRoom := s.roomOf[c.Player]
	if !inRoom {
		c.Send(protocol.Frame("LEFT"))
		return
	}
	s.rooms[roomID].Leave(p)
	delete(s.roomOf, c.Player)
	c.Send(protocol.Frame("LEFT"))
	s.broadcastLobby(roomID)
}

func (s *Server) handleStart(c *netio.Connection) {
	roomID, inRoom := s.roomOf[c.Player]
	if !inRoom {
		c.Send(protocol.Frame("STRT", "FAIL"))
		return
	}
	room := s.rooms[roomID]
	if err := room.Hatch(); err != nil {
		c.Send(protocol.Frame("STRT", "FAIL"))
		return
	}
	c.Send(protocol.Frame("STRT", "OK"))
	s.broadcastGame(roomID, protocol.Frame("TICK", room.FullState()))
}

func (s *Server) handleMove(c *netio.Connection, letter string) {
	p, ok := s.players.Resolve(c.Player)
	if !ok {
		return
	}
	dir, _ := grid.ParseDirection(letter[0])
	p.SetIntent(dir)
	c.Send(protocol.Frame("MOVD"))
}

func (s *Server) handleTack(c *netio.Connection) {
	p, ok := s.players.Resolve(c.Player)
	if !ok {
		return
	}
	p.Updated = true
}

func (s *Server) handleQuit(c *netio.Connection) {
	ref := c.Player
	if !ref.IsZero() {
		s.destroyPlayer(ref)
	}
	s.closeConnection(c.ID)
}

// sendLobby sends a LOBY listing for roomID to a single connection, e.g.
// the freshly reconnected one in handleNick.
func (s *Server) sendLobby(c *netio.Connection, roomID int) {
	c.Send(protocol.Frame("LOBY", s.rooms[roomID].Nicknames()...))
}

func (s *Server) broadcastLobby(roomID int) {
	s.broadcastGame(roomID, protocol.Frame("LOBY", s.rooms[roomID].Nicknames()...))
}

// broadcastGame iterates the room's players in roster (join) order,
// resolves each to its currently bound connection (skipping silently if
// none), and writes best-effort — a write error here is not immediately
// fatal.
func (s *Server) broadcastGame(roomID int, msg string) {
	for _, p := range s.rooms[roomID].Players {
		ref, ok := s.nicknames[p.Nickname]
		if !ok {
			continue
		}
		c, ok := s.findConnectionByPlayer(ref)
		if !ok {
			continue
		}
		c.Send(msg)
	}
}

// scanIdleConnections closes every connection whose last_active exceeds
// the connection-idle threshold.
func (s *Server) scanIdleConnections(now time.Time) {
	var stale []*netio.Connection
	for _, c := range s.connections {
		if c.IdleSince(now, s.connectionIdleTimeout) {
			stale = append(stale, c)
		}
	}
	for _, c := range stale {
		s.closeConnection(c.ID)
	}
}

// scanIdlePlayers destroys every player whose last_active exceeds the
// player-removal threshold, regardless of whether a connection is
// currently bound.
func (s *Server) scanIdlePlayers(now time.Time) {
	var stale []player.Ref
	for _, entry := range s.players.All() {
		if entry.P.IdleSince(now, s.playerRemovalTimeout) {
			stale = append(stale, entry.Ref)
		}
	}
	for _, ref := range stale {
		s.destroyPlayer(ref)
	}
}

func (s *Server) pingAll() {
	msg := protocol.Frame("PING")
	for _, c := range s.connections {
		c.Send(msg)
	}
}

// tickAllRooms advances every active room by one tick: a room whose
// players have not all acknowledged the previous tick is held back with
// WAIT instead of advancing.
func (s *Server) tickAllRooms() {
	for roomID, room := range s.rooms {
		if !room.Active {
			continue
		}
		if !room.AllUpdated() {
			s.broadcastToAcked(roomID, protocol.Frame("WAIT", room.PendingNicknames()...))
			continue
		}
		cont := room.Slither()
		s.broadcastGame(roomID, protocol.Frame("TICK", room.FullState()))
		if !cont {
			if winner, ok := room.Winner(); ok {
				s.broadcastGame(roomID, protocol.Frame("WINS", winner))
			} else {
				s.broadcastGame(roomID, protocol.Frame("DRAW"))
			}
			room.Active = false
		}
	}
}

// broadcastToAcked sends msg only to players who have already acked this
// tick.
func (s *Server) broadcastToAcked(roomID int, msg string) {
	for _, p := range s.rooms[roomID].Players {
		if !p.Updated {
			continue
		}
		ref, ok := s.nicknames[p.Nickname]
		if !ok {
			continue
		}
		c, ok := s.findConnectionByPlayer(ref)
		if !ok {
			continue
		}
		c.Send(msg)
	}
}

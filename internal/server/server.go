// Package server implements the event loop: the single goroutine that
// demultiplexes accepted sockets, inbound bytes, the heartbeat timer, and
// the game-tick timer, and dispatches each event to completion before
// pulling the next. Producer goroutines (the accept loop, each
// connection's reader) only ever send events into one channel; nothing
// outside the loop goroutine touches Server state directly.
package server

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Hejdula/upsnake/internal/config"
	"github.com/Hejdula/upsnake/internal/game"
	"github.com/Hejdula/upsnake/internal/netio"
	"github.com/Hejdula/upsnake/internal/player"
	"github.com/Hejdula/upsnake/internal/protocol"
	"github.com/Hejdula/upsnake/internal/randsrc"
)

// event is the sum type fed into the server's single inbound channel.
// Exactly one concrete kind is ever set.
type event struct {
	accept *acceptEvent
	data   *dataEvent
	closed *closeEvent
}

type acceptEvent struct {
	conn net.Conn
}

type dataEvent struct {
	id   uuid.UUID
	line string // one already-delimited frame body, '|' stripped
}

type closeEvent struct {
	id  uuid.UUID
	err error
}

// Server owns every piece of process state: the fixed room array, the
// player arena, the live connections, and the listening socket. Only the
// goroutine running Run ever mutates any of it; every other goroutine
// (the accept loop, each connection's reader) only ever sends events in.
type Server struct {
	log *slog.Logger
	rng randsrc.Source

	ln net.Listener

	rooms       [config.NumberOfRooms]*game.Game
	players     *playerTable
	connections map[uuid.UUID]*netio.Connection
	nicknames   map[string]player.Ref
	roomOf      map[player.Ref]int // -1 meaning "no room" is never stored; absence means no room

	heartbeatInterval     time.Duration
	gameTickInterval      time.Duration
	pingInterval          time.Duration
	connectionIdleTimeout time.Duration
	playerRemovalTimeout  time.Duration

	events chan event
}

// Option configures a timing parameter away from its config default. Tests
// use these to run the heartbeat and game-tick loops on a short fuse
// instead of waiting out the real config values.
type Option func(*Server)

// WithHeartbeatInterval overrides the heartbeat scan period.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(s *Server) { s.heartbeatInterval = d }
}

// WithGameTickInterval overrides the simulation tick period.
func WithGameTickInterval(d time.Duration) Option {
	return func(s *Server) { s.gameTickInterval = d }
}

// WithPingInterval overrides the PING broadcast period.
func WithPingInterval(d time.Duration) Option {
	return func(s *Server) { s.pingInterval = d }
}

// WithConnectionIdleTimeout overrides the connection-idle close threshold.
func WithConnectionIdleTimeout(d time.Duration) Option {
	return func(s *Server) { s.connectionIdleTimeout = d }
}

// WithPlayerRemovalTimeout overrides the player-removal threshold.
func WithPlayerRemovalTimeout(d time.Duration) Option {
	return func(s *Server) { s.playerRemovalTimeout = d }
}

// New constructs a Server bound to ln. rng is the randomness source every
// room's game uses; pass nil to use the process-wide source. Timing
// parameters default to the values in internal/config and can be
// overridden with the With* options.
func New(ln net.Listener, rng randsrc.Source, log *slog.Logger, opts ...Option) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		log:                   log,
		rng:                   rng,
		ln:                    ln,
		players:               newPlayerTable(),
		connections:           make(map[uuid.UUID]*netio.Connection),
		nicknames:             make(map[string]player.Ref),
		roomOf:                make(map[player.Ref]int),
		heartbeatInterval:     config.GlobalTimerCheck,
		gameTickInterval:      config.GameSpeed,
		pingInterval:          config.PingInterval,
		connectionIdleTimeout: config.ConnectionIdleTimeout,
		playerRemovalTimeout:  config.PlayerRemovalTimeout,
		events:                make(chan event, 256),
	}
	for _, opt := range opts {
		opt(s)
	}
	for i := range s.rooms {
		s.rooms[i] = game.New(rng)
	}
	return s
}

// Run is the event loop. It blocks until ctx is cancelled or the listener
// is closed out from under it. Setup (Listen/bind) happens before Run is
// called; per-connection and per-tick failures are handled inside the loop
// and never end it. The error Run returns is the accept loop's: nil after
// ctx is cancelled, the Accept error otherwise.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.acceptLoop(gctx) })

	heartbeat := time.NewTicker(s.heartbeatInterval)
	defer heartbeat.Stop()
	gameTick := time.NewTicker(s.gameTickInterval)
	defer gameTick.Stop()

	var sinceLastPing time.Duration

	for {
		select {
		case <-gctx.Done():
			return g.Wait()
		case ev := <-s.events:
			s.dispatch(ev)
		case <-heartbeat.C:
			sinceLastPing += s.heartbeatInterval
			s.scanIdleConnections(time.Now())
			s.scanIdlePlayers(time.Now())
			if sinceLastPing >= s.pingInterval {
				sinceLastPing = 0
				s.pingAll()
			}
		case <-gameTick.C:
			s.tickAllRooms()
		}
	}
}

// acceptLoop is the producer side of the listening-socket source: it
// blocks on Accept and forwards each new connection as an event, mirroring
// a single epoll registration for the listening fd.
func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				s.log.Error("accept failed", "err", err)
				return err
			}
		}
		select {
		case <-ctx.Done():
			conn.Close()
			return nil
		case s.events <- event{accept: &acceptEvent{conn: conn}}:
		}
	}
}

// readLoop is the producer side of one client socket: it reads whatever
// is available, splits complete '|' frames, and forwards each as a data
// event. EOF or a read error is forwarded as a close event. This goroutine
// never touches Server state directly; only the Run goroutine does, once
// the event is dispatched.
func (s *Server) readLoop(ctx context.Context, id uuid.UUID, conn net.Conn) {
	r := bufio.NewReader(conn)
	for {
		chunk, err := r.ReadString(protocol.FrameDelimiter)
		if err != nil {
			if err == io.EOF && chunk != "" {
				// A partial trailing frame with no '|' is simply dropped.
			}
			select {
			case <-ctx.Done():
			case s.events <- event{closed: &closeEvent{id: id, err: err}}:
			}
			return
		}
		line := chunk[:len(chunk)-1] // strip the trailing '|'
		select {
		case <-ctx.Done():
			return
		case s.events <- event{data: &dataEvent{id: id, line: line}}:
		}
	}
}

// dispatch handles exactly one event to completion: each demultiplexed
// event runs synchronously before the next is pulled.
func (s *Server) dispatch(ev event) {
	switch {
	case ev.accept != nil:
		s.handleAccept(ev.accept.conn)
	case ev.data != nil:
		s.handleData(ev.data.id, ev.data.line)
	case ev.closed != nil:
		s.handleClosed(ev.closed.id)
	}
}

func (s *Server) handleAccept(conn net.Conn) {
	c := netio.New(conn)
	s.connections[c.ID] = c
	go s.readLoop(context.Background(), c.ID, conn)
}

// handleData parses and dispatches one already-delimited frame body. A
// protocol violation closes the connection.
func (s *Server) handleData(id uuid.UUID, line string) {
	c, ok := s.connections[id]
	if !ok {
		return
	}
	_, named := s.players.Resolve(c.Player)
	cmd, err := protocol.Parse(line, named)
	if err != nil {
		s.log.Debug("protocol violation", "conn", c.PeerAddr, "err", err)
		s.closeConnection(id)
		return
	}

	now := time.Now()
	c.Touch(now)
	if p, ok := s.players.Resolve(c.Player); ok {
		p.Touch(now)
	}

	if err := s.handleCommand(c, cmd); err != nil {
		s.log.Debug("command handling failed", "conn", c.PeerAddr, "keyword", cmd.Keyword, "err", err)
		s.closeConnection(id)
	}
}

func (s *Server) handleClosed(id uuid.UUID) {
	s.closeConnection(id)
}

// closeConnection tears a connection down: deregister it, close its
// socket, and remove it from connections. The bound player, if any, is
// left intact — disconnecting never destroys a player.
func (s *Server) closeConnection(id uuid.UUID) {
	c, ok := s.connections[id]
	if !ok {
		return
	}
	c.Close()
	delete(s.connections, id)
}

// findConnectionByPlayer returns the connection currently bound to ref, if
// any. At most one connection is ever bound to a given player, so this
// search never needs to return more than one result.
func (s *Server) findConnectionByPlayer(ref player.Ref) (*netio.Connection, bool) {
	for _, c := range s.connections {
		if c.Player == ref {
			return c, true
		}
	}
	return nil, false
}

// destroyPlayer removes ref from any room it sits in, unbinds it from its
// connection, broadcasts the resulting LOBY, and frees its slot. This is
// the full scrub required before a slot can safely be recycled.
func (s *Server) destroyPlayer(ref player.Ref) {
	p, ok := s.players.Resolve(ref)
	if !ok {
		return
	}
	if roomID, inRoom := s.roomOf[ref]; inRoom {
		s.rooms[roomID].Leave(p)
		delete(s.roomOf, ref)
		s.broadcastLobby(roomID)
	}
	if c, ok := s.findConnectionByPlayer(ref); ok {
		c.Player = player.Ref{}
	}
	delete(s.nicknames, p.Nickname)
	s.players.Remove(ref)
}

// Package netio implements the Connection entity and the raw-TCP
// transport it is written to: a thin Send/Close seam over net.Conn, since
// the wire is a raw '|'-delimited bytestream rather than a framed
// protocol. Reading is done by the server's per-connection reader.
package netio

import (
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/Hejdula/upsnake/internal/player"
)

// Connection is one accepted socket: its identity, transport, peer
// address, optional bound player, and liveness timestamp. Its
// lifecycle is owned by the server; nothing outside the event loop
// goroutine mutates it.
type Connection struct {
	ID uuid.UUID

	Conn     net.Conn
	PeerAddr string

	Player player.Ref // zero value means unbound

	LastActive time.Time
}

// New wraps an accepted net.Conn into a Connection with its activity
// timestamp set to now.
func New(conn net.Conn) *Connection {
	return &Connection{
		ID:         uuid.New(),
		Conn:       conn,
		PeerAddr:   conn.RemoteAddr().String(),
		LastActive: time.Now(),
	}
}

// DisplayName returns nick if the connection has one bound (the caller
// resolves Player via the server's slot table and passes the nickname
// in), else the connection's peer address.
func (c *Connection) DisplayName(nick string, bound bool) string {
	if bound {
		return nick
	}
	return c.PeerAddr
}

// Touch records activity at the given time.
func (c *Connection) Touch(now time.Time) {
	c.LastActive = now
}

// IdleSince reports whether the connection has been inactive for longer
// than timeout, as of now.
func (c *Connection) IdleSince(now time.Time, timeout time.Duration) bool {
	return now.Sub(c.LastActive) > timeout
}

// Send writes a single outbound frame. Write errors are not fatal here:
// the connection-idle timeout or the next failed read will close a truly
// dead peer.
func (c *Connection) Send(frame string) error {
	_, err := c.Conn.Write([]byte(frame))
	return err
}

// Close closes the underlying transport. It is safe to call more than
// once; subsequent calls return the error net.Conn.Close reports for an
// already-closed connection, which callers ignore.
func (c *Connection) Close() error {
	return c.Conn.Close()
}

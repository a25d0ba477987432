// Package config collects the server's compile-time tunables in one
// place rather than scattering magic numbers through the codebase.
package config

import "time"

const (
	// GridSize is the side length of the square board (N).
	GridSize = 10

	// InitialSnakeLength is the body length every snake starts a match with.
	InitialSnakeLength = 3

	// NumberOfRooms is the number of fixed match rooms the server hosts (R).
	NumberOfRooms = 4

	// MaxPlayersInRoom is the capacity of a single room.
	MaxPlayersInRoom = 4

	// ConnectionIdleTimeout closes a connection that has sent nothing for
	// this long.
	ConnectionIdleTimeout = 10 * time.Second

	// PlayerRemovalTimeout destroys a player whose last activity is older
	// than this, regardless of whether a connection is currently bound.
	PlayerRemovalTimeout = 60 * time.Second

	// PingInterval is the wall-clock period at which PING is emitted to
	// every connection.
	PingInterval = 2 * time.Second

	// GlobalTimerCheck is the heartbeat scan period.
	GlobalTimerCheck = 1 * time.Second

	// GameSpeed is the duration of one simulation tick.
	GameSpeed = 1 * time.Second

	// DefaultBindAddress and DefaultPort are used when the process is
	// launched with no positional arguments.
	DefaultBindAddress = "127.0.0.1"
	DefaultPort        = 8888

	// ListenBacklog is the minimum accept backlog the listener must offer.
	// It is not passed to listen(2): package net requests the kernel's
	// maximum, which exceeds it; main only logs it.
	ListenBacklog = 10
)

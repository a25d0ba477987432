// Command upsnake runs the multi-snake match server: one TCP listener,
// one event loop, for the process lifetime.
//
// There is no signal handling or graceful shutdown: the loop runs until
// the process is killed.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"syscall"

	"github.com/Hejdula/upsnake/internal/config"
	"github.com/Hejdula/upsnake/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	addr, err := parseArgs(os.Args[1:])
	if err != nil {
		logger.Error("bad arguments", "err", err)
		os.Exit(1)
	}

	ln, err := listen(addr)
	if err != nil {
		logger.Error("listen failed", "addr", addr, "err", err)
		os.Exit(1)
	}
	logger.Info("listening", "addr", ln.Addr().String(), "min_backlog", config.ListenBacklog)

	srv := server.New(ln, nil, logger)
	if err := srv.Run(context.Background()); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

// parseArgs reads two optional positional parameters, port then bind
// address, falling back to defaults for whichever are omitted. There are
// no environment variables.
func parseArgs(args []string) (string, error) {
	port := config.DefaultPort
	host := config.DefaultBindAddress

	if len(args) > 0 {
		p, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("invalid port %q: %w", args[0], err)
		}
		port = p
	}
	if len(args) > 1 {
		host = args[1]
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

// listen binds a TCP listener with SO_REUSEADDR and SO_REUSEPORT set. The
// package net never exposes a listen(2) backlog argument directly; it
// always requests the kernel's own maximum (SOMAXCONN, typically in the
// hundreds or thousands), which comfortably exceeds config.ListenBacklog's
// floor of 10 on every platform this runs on.
func listen(addr string) (net.Listener, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
				if sockErr != nil {
					return
				}
				sockErr = setReusePort(fd)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
	return lc.Listen(context.Background(), "tcp4", addr)
}

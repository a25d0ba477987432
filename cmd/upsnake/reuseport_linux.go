//go:build linux

package main

import "syscall"

// SO_REUSEPORT is not exposed by the syscall package on linux/amd64; its
// numeric value is fixed by the Linux kernel ABI across architectures.
const soReusePort = 0xf

func setReusePort(fd uintptr) error {
	return syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, soReusePort, 1)
}

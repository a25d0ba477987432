//go:build !linux

package main

// setReusePort is a no-op outside Linux; SO_REUSEPORT is not portable.
func setReusePort(fd uintptr) error {
	return nil
}

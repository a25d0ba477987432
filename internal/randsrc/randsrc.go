// Package randsrc provides an injectable source of integers in [0, n), so
// tests can seed deterministic tile and direction choices instead of
// drawing real random numbers.
package randsrc

import "math/rand/v2"

// Source yields uniformly distributed integers in [0, n).
//
//go:generate go tool mockgen -destination=./mocks/randsrc_mock.go -package=mocks . Source
type Source interface {
	IntN(n int) int
}

// process is the process-wide pseudo-random source used outside of tests.
type process struct{}

// New returns the default, non-deterministic Source.
func New() Source {
	return process{}
}

func (process) IntN(n int) int {
	return rand.IntN(n)
}

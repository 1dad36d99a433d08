package collection

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultIDPrefix is prepended to generated sequence numbers.
const DefaultIDPrefix = "c"

// IDStrategy generates identifiers and keeps the collection's sequence ahead
// of identifiers assigned by callers.
type IDStrategy interface {
	// Next returns a fresh identifier and the sequence value that follows it.
	Next(seq int) (id string, next int)
	// Parse returns the sequence value embedded in id, if any.
	Parse(id string) (int, bool)
	// Advance returns the sequence value to use after seeing n.
	Advance(seq, n int) int
}

// PrefixStrategy generates prefix+n identifiers: c0, c1, c2...
type PrefixStrategy struct {
	Prefix string
}

// Next returns prefix+seq.
func (s PrefixStrategy) Next(seq int) (string, int) {
	return s.Prefix + strconv.Itoa(seq), seq + 1
}

// Parse reads the number after the prefix. math.MaxInt is refused since no
// sequence value can follow it.
func (s PrefixStrategy) Parse(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, s.Prefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 || n == math.MaxInt {
		return 0, false
	}
	return n, true
}

// Advance moves seq past n.
func (s PrefixStrategy) Advance(seq, n int) int {
	if n >= seq {
		return n + 1
	}
	return seq
}

// StepStrategy generates bare numbers, Step apart.
type StepStrategy struct {
	Step int
}

func (s StepStrategy) step() int {
	if s.Step <= 0 {
		return 1
	}
	return s.Step
}

// Next returns seq+Step.
func (s StepStrategy) Next(seq int) (string, int) {
	next := seq + s.step()
	return strconv.Itoa(next), next
}

// Parse reads a bare number. Numbers within Step of math.MaxInt are refused.
func (s StepStrategy) Parse(id string) (int, bool) {
	n, err := strconv.Atoi(id)
	if err != nil || n > math.MaxInt-s.step() {
		return 0, false
	}
	return n, true
}

// Advance returns n when it is ahead of seq.
func (s StepStrategy) Advance(seq, n int) int {
	if n > seq {
		return n
	}
	return seq
}

// UUIDStrategy generates random UUIDs and never touches the sequence.
type UUIDStrategy struct{}

// Next returns a random UUID and seq unchanged.
func (UUIDStrategy) Next(seq int) (string, int) {
	return uuid.NewString(), seq
}

// Parse never finds a sequence value.
func (UUIDStrategy) Parse(string) (int, bool) {
	return 0, false
}

// Advance returns seq.
func (UUIDStrategy) Advance(seq, _ int) int {
	return seq
}

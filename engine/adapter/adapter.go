// Package adapter describes the graphics adapters a backend enumerates and
// picks one of them according to a caller supplied preference.
package adapter

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strings"
)

// ErrNoAdaptersFound is returned by Select when the backend enumerated no adapters.
var ErrNoAdaptersFound = errors.New("adapter: no adapters found")

// Class identifies the kind of hardware behind an adapter.
// Values are ordered by preference so a larger Class is always the better choice.
type Class int

const (
	// ClassUnknown is an adapter whose kind the backend could not report.
	ClassUnknown Class = iota

	// ClassSoftware is a CPU rasterizer such as WARP, lavapipe or SwiftShader.
	ClassSoftware

	// ClassIntegrated is a GPU sharing system memory with the CPU.
	ClassIntegrated

	// ClassDiscrete is a dedicated GPU with its own local memory.
	ClassDiscrete
)

func (c Class) String() string {
	switch c {
	case ClassSoftware:
		return "software"
	case ClassIntegrated:
		return "integrated"
	case ClassDiscrete:
		return "discrete"
	default:
		return "unknown"
	}
}

// ParseClass converts a class name as written in config files and flags.
//
// Parameters:
//   - s: one of "discrete", "integrated", "software" or "unknown" (case-insensitive)
//
// Returns:
//   - Class: the parsed class
//   - error: an error if s names no class
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "discrete", "dgpu":
		return ClassDiscrete, nil
	case "integrated", "igpu":
		return ClassIntegrated, nil
	case "software", "cpu":
		return ClassSoftware, nil
	case "unknown":
		return ClassUnknown, nil
	default:
		return ClassUnknown, fmt.Errorf("adapter: unknown class %q", s)
	}
}

// Memory is the memory profile an adapter reports, in bytes.
type Memory struct {
	Local       uint64
	HostVisible uint64
	Unified     uint64
}

// Total returns the sum of all memory kinds, saturating at math.MaxUint64.
func (m Memory) Total() uint64 {
	sum, carry := bits.Add64(m.Local, m.HostVisible, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	sum, carry = bits.Add64(sum, m.Unified, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// Info is an immutable snapshot of one enumerated adapter.
type Info struct {
	// Index is the adapter's position in the backend's enumeration order.
	Index int

	Class  Class
	Memory Memory

	// Name and Backend are descriptive only; selection never reads them.
	Name    string
	Backend string
}

// Request carries the caller's adapter preference. Both fields are optional.
type Request struct {
	// Index requests an exact adapter. Takes priority over Class when in bounds.
	Index *int

	// Class requests the first adapter of the given class.
	Class *Class
}

// WithIndex returns a copy of r requesting the adapter at index i.
func (r Request) WithIndex(i int) Request {
	r.Index = &i
	return r
}

// WithClass returns a copy of r requesting the first adapter of class c.
func (r Request) WithClass(c Class) Request {
	r.Class = &c
	return r
}

// Selection is the outcome of Select.
type Selection struct {
	Index int
	Class Class
}

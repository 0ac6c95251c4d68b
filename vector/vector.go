// Package vector holds the interrupt vector tables of the supported
// microcontrollers.
//
// A table maps a symbolic identifier (e.g. "timer0_ovf") to the index of the
// vector in the hardware vector table and to the linkage symbol the AVR
// runtime expects for that index ("__vector_<index>").
package vector

import (
	"errors"
	"fmt"
	"strconv"
)

// SymbolPrefix is the fixed prefix of every AVR vector linkage symbol.
const SymbolPrefix = "__vector_"

var (
	// ErrUnknownDevice is returned for a device without a vector table.
	ErrUnknownDevice = errors.New("unknown device")
	// ErrInvalidTable is returned by Validate and ParseATDF for tables with
	// gaps, duplicates or malformed symbols.
	ErrInvalidTable  = errors.New("invalid vector table")
)

// Descriptor describes a single interrupt vector.
type Descriptor struct {
	Identifier  string `json:"identifier" yaml:"identifier" toml:"identifier"`
	Index       int    `json:"index" yaml:"index" toml:"index"`
	Symbol      string `json:"symbol" yaml:"symbol" toml:"symbol"`
	Description string `json:"description" yaml:"description" toml:"description"`
}

// Symbol derives the linkage symbol of the vector at index.
func Symbol(prefix string, index int) string {
	return prefix + strconv.Itoa(index)
}

// Table is an immutable vector table for one device.
type Table struct {
	device  string
	prefix  string
	vectors []Descriptor
	byID    map[string]int
}

type entry struct {
	id   string
	desc string
}

// newTable builds a table from entries listed in hardware order; the position
// of an entry is its vector index.
func newTable(device, prefix string, entries []entry) *Table {
	t := &Table{
		device:  device,
		prefix:  prefix,
		vectors: make([]Descriptor, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		t.vectors[i] = Descriptor{
			Identifier:  e.id,
			Index:       i,
			Symbol:      Symbol(prefix, i),
			Description: e.desc,
		}
		t.byID[e.id] = i
	}
	return t
}

// Device returns the name of the microcontroller the table belongs to.
func (t *Table) Device() string { return t.device }

// Prefix returns the linkage symbol prefix.
func (t *Table) Prefix() string { return t.prefix }

// Len returns the number of vectors.
func (t *Table) Len() int { return len(t.vectors) }

// Vectors returns a copy of all descriptors in index order.
func (t *Table) Vectors() []Descriptor {
	out := make([]Descriptor, len(t.vectors))
	copy(out, t.vectors)
	return out
}

// Lookup returns the descriptor for identifier.
func (t *Table) Lookup(identifier string) (Descriptor, bool) {
	i, ok := t.byID[identifier]
	if !ok {
		return Descriptor{}, false
	}
	return t.vectors[i], true
}

// ByIndex returns the descriptor at the given vector index.
func (t *Table) ByIndex(index int) (Descriptor, bool) {
	if index < 0 || index >= len(t.vectors) {
		return Descriptor{}, false
	}
	return t.vectors[index], true
}

// BySymbol returns the descriptor whose linkage symbol is symbol.
func (t *Table) BySymbol(symbol string) (Descriptor, bool) {
	for _, d := range t.vectors {
		if d.Symbol == symbol {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Validate checks that identifiers are unique and non-empty, that indices are
// dense and that every symbol is the prefix followed by the index.
func (t *Table) Validate() error {
	if len(t.vectors) == 0 {
		return fmt.Errorf("%w: %s has no vectors", ErrInvalidTable, t.device)
	}
	seen := make(map[string]int, len(t.vectors))
	for i, d := range t.vectors {
		if d.Identifier == "" {
			return fmt.Errorf("%w: vector %d has no identifier", ErrInvalidTable, i)
		}
		if prev, dup := seen[d.Identifier]; dup {
			return fmt.Errorf("%w: identifier %q used by vectors %d and %d", ErrInvalidTable, d.Identifier, prev, i)
		}
		seen[d.Identifier] = i
		if d.Index != i {
			return fmt.Errorf("%w: vector %q has index %d, expected %d", ErrInvalidTable, d.Identifier, d.Index, i)
		}
		if want := Symbol(t.prefix, i); d.Symbol != want {
			return fmt.Errorf("%w: vector %q has symbol %q, expected %q", ErrInvalidTable, d.Identifier, d.Symbol, want)
		}
	}
	return nil
}

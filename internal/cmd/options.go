package cmd

import (
	"fmt"
	"os"

	"github.com/isrbind/isrbind/transform"
	"github.com/isrbind/isrbind/vector"
)

// TableOptions selects the vector table.
type TableOptions struct {
	Device string `help:"Device whose vector table is used (default atmega1284p)" env:"ISRBIND_DEVICE"`
	ATDF   string `help:"Read the vector table from an ATDF device file instead of the built-in table" type:"path" env:"ISRBIND_ATDF"`
}

// Load returns the selected table.
func (o TableOptions) Load() (*vector.Table, error) {
	if o.ATDF == "" {
		if o.Device == "" {
			return vector.Default(), nil
		}
		return vector.Find(o.Device)
	}

	f, err := os.Open(o.ATDF)
	if err != nil {
		return nil, fmt.Errorf("failed to open atdf file: %w", err)
	}
	defer f.Close()

	t, err := vector.ParseATDF(f, o.Device)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", o.ATDF, err)
	}
	return t, nil
}

// DialectOptions overrides the directives of generated routines. Empty fields
// fall back to the SiGo dialect.
type DialectOptions struct {
	Convention string `help:"Calling convention directive template, placeholders {symbol}, {index} and {vector} (default //sigo:interrupt {symbol} {symbol})" env:"ISRBIND_DIALECT_CONVENTION"`
	Linkage    string `help:"Unmangled linkage directive template (default //sigo:export {symbol} {symbol})" env:"ISRBIND_DIALECT_LINKAGE"`
}

// Dialect returns the validated dialect.
func (o DialectOptions) Dialect() (transform.Dialect, error) {
	d := transform.SigoDialect
	if o.Convention != "" || o.Linkage != "" {
		d.Name = "custom"
	}
	if o.Convention != "" {
		d.Convention = o.Convention
	}
	if o.Linkage != "" {
		d.Linkage = o.Linkage
	}
	if err := d.Validate(); err != nil {
		return transform.Dialect{}, err
	}
	return d, nil
}

func entryPoints(table TableOptions, dialect DialectOptions) (*transform.Registry, error) {
	t, err := table.Load()
	if err != nil {
		return nil, err
	}
	d, err := dialect.Dialect()
	if err != nil {
		return nil, err
	}
	return transform.EntryPoints(t, transform.WithDialect(d)), nil
}

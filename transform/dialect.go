package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/isrbind/isrbind/vector"
)

// Dialect describes how the target toolchain spells the interrupt calling
// convention and the unmangled linkage of a routine. Both directives are
// templates; {symbol}, {index} and {vector} are replaced with the linkage symbol,
// the vector index and the vector identifier.
type Dialect struct {
	Name       string `json:"name" yaml:"name" toml:"name"`
	Convention string `json:"convention" yaml:"convention" toml:"convention"`
	Linkage    string `json:"linkage" yaml:"linkage" toml:"linkage"`
}

// SigoDialect targets the SiGo embedded compiler: the interrupt pragma selects
// the interrupt calling convention and //sigo:export keeps the symbol
// undecorated.
var SigoDialect = Dialect{
	Name:       "sigo",
	Convention: "//sigo:interrupt {symbol} {symbol}",
	Linkage:    "//sigo:export {symbol} {symbol}",
}

// Validate checks that both directives are line comments referencing {symbol}.
func (d Dialect) Validate() error {
	for _, dir := range []struct{ kind, tmpl string }{
		{"convention", d.Convention},
		{"linkage", d.Linkage},
	} {
		if !strings.HasPrefix(dir.tmpl, "//") || strings.ContainsAny(dir.tmpl, "\r\n") {
			return fmt.Errorf("dialect %s: %s directive %q must be a single line comment", d.Name, dir.kind, dir.tmpl)
		}
		if !strings.Contains(dir.tmpl, "{symbol}") {
			return fmt.Errorf("dialect %s: %s directive %q does not reference {symbol}", d.Name, dir.kind, dir.tmpl)
		}
	}
	return nil
}

func (d Dialect) render(tmpl string, v vector.Descriptor) string {
	return strings.NewReplacer(
		"{symbol}", v.Symbol,
		"{index}", strconv.Itoa(v.Index),
		"{vector}", v.Identifier,
	).Replace(tmpl)
}

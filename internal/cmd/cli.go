package cmd

import (
	"strings"

	"github.com/isrbind/isrbind/internal/log"
)

// CLI is the root command structure parsed by kong.
type CLI struct {
	Config string     `help:"Configuration file (json, yaml or toml)" type:"path" env:"ISRBIND_CONFIG"`
	Log    log.Config `embed:"" prefix:"log."`

	Generate  Generate      `cmd:"" help:"Bind annotated handler functions and write the generated vector routines"`
	Bind      Bind          `cmd:"" help:"Bind a single function definition to an entry point and print the routine"`
	Vectors   Vectors       `cmd:"" help:"Document the vector table and its entry points"`
	ConfigCmd ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
	Version   Version       `cmd:"" help:"Print the isrbind version"`
}

// WritesStdout reports whether the selected command prints its result on
// stdout, in which case logs must stay off stdout.
func (c *CLI) WritesStdout(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "bind", "vectors", "version":
		return true
	case "generate":
		return c.Generate.Output == "-"
	}
	return false
}

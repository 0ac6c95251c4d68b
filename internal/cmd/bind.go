package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/isrbind/isrbind/transform"
)

// Bind transforms a single function definition for one entry point.
type Bind struct {
	EntryPoint string         `arg:"" name:"entry-point" help:"Entry point, e.g. interrupt_handler_timer0_ovf (the prefix may be omitted)"`
	File       string         `arg:"" optional:"" type:"path" help:"File holding exactly one function definition ('-' or omitted for stdin)"`
	Table      TableOptions   `embed:""`
	Dialect    DialectOptions `embed:"" prefix:"dialect."`
}

// Run is called by Kong when the bind command is executed.
func (c *Bind) Run(logger *slog.Logger) error {
	return c.run(logger, os.Stdin, os.Stdout)
}

func (c *Bind) run(logger *slog.Logger, stdin io.Reader, stdout io.Writer) error {
	reg, err := entryPoints(c.Table, c.Dialect)
	if err != nil {
		return err
	}

	name := c.EntryPoint
	if !strings.HasPrefix(name, transform.EntryPointPrefix) {
		name = transform.EntryPointName(name)
	}
	tr, err := reg.Lookup(name)
	if err != nil {
		return err
	}

	filename, src, err := c.readInput(stdin)
	if err != nil {
		return err
	}

	r, err := tr.Transform(filename, src)
	if err != nil {
		return err
	}
	logger.Debug("Bound handler", "entry_point", tr.Name(), "symbol", r.Symbol, "statements", len(r.Body.Stmts))

	_, err = stdout.Write(r.Source())
	return err
}

func (c *Bind) readInput(stdin io.Reader) (string, []byte, error) {
	if c.File == "" || c.File == "-" {
		src, err := io.ReadAll(stdin)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return "<stdin>", src, nil
	}
	src, err := os.ReadFile(c.File)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read handler: %w", err)
	}
	return c.File, src, nil
}

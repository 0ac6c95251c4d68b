package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/isrbind/isrbind/internal/codegen/generator"
	"github.com/isrbind/isrbind/internal/codegen/scanner"
)

// Generate writes the routines of every //isr: handler found in the inputs.
type Generate struct {
	Inputs  []string       `arg:"" optional:"" default:"." help:"Go files, directories or package patterns holding //isr: handlers"`
	Output  string         `short:"o" help:"Generated file, '-' for stdout (default isr_vectors.go next to the first handler file)" env:"ISRBIND_OUTPUT"`
	Package string         `help:"Package clause of the generated file (default: package of the handlers)" env:"ISRBIND_PACKAGE"`
	Tags    []string       `help:"Build tags used when loading package patterns" sep:"," env:"ISRBIND_TAGS"`
	Check   bool           `help:"Fail when the generated file is out of date instead of writing it" env:"ISRBIND_CHECK"`
	Table   TableOptions   `embed:""`
	Dialect DialectOptions `embed:"" prefix:"dialect."`
}

// Run is called by Kong when the generate command is executed.
func (c *Generate) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.run(ctx, logger, os.Stdout)
}

func (c *Generate) run(ctx context.Context, logger *slog.Logger, stdout io.Writer) error {
	reg, err := entryPoints(c.Table, c.Dialect)
	if err != nil {
		return err
	}

	files, err := scanner.ResolveInputs(c.Inputs, c.Tags, c.Output)
	if err != nil {
		return err
	}
	out := generator.OutputPath(c.Output, files)
	files = withoutFile(files, out)
	if len(files) == 0 {
		return errors.New("no Go files found in the given inputs")
	}

	logger.Info("Generating interrupt vector routines",
		"device", reg.Table().Device(),
		"files", len(files),
		"output", out,
	)

	res, err := generator.New(reg, logger).Generate(ctx, files, c.Package)
	if err != nil {
		return err
	}
	if err := res.Write(out, stdout, c.Check); err != nil {
		return err
	}

	if c.Check {
		logger.Info("Generated file is up to date", "output", out)
	} else {
		logger.Info("Wrote interrupt vector routines", "output", out, "routines", len(res.Routines))
	}
	return nil
}

func withoutFile(files []string, path string) []string {
	if path == "-" {
		return files
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return files
	}
	out := files[:0:0]
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil && abs == target {
			continue
		}
		out = append(out, f)
	}
	return out
}

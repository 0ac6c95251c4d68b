package generator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrStale is returned in check mode when the output file differs from what
// the generator would write.
var ErrStale = errors.New("generated file is out of date")

// DefaultOutputName is the file written next to the handlers when no output
// is configured.
const DefaultOutputName = "isr_vectors.go"

// OutputPath returns output, or DefaultOutputName in the directory of the first
// input file when output is empty.
func OutputPath(output string, inputs []string) string {
	if output != "" {
		return output
	}
	if len(inputs) == 0 {
		return DefaultOutputName
	}
	return filepath.Join(filepath.Dir(inputs[0]), DefaultOutputName)
}

// Write stores the generated source at path. "-" writes to stdout. In check
// mode nothing is written and ErrStale is returned when path is not up to date.
func (r *Result) Write(path string, stdout io.Writer, check bool) error {
	if path == "-" {
		if check {
			return errors.New("check mode needs an output file")
		}
		_, err := stdout.Write(r.Source)
		return err
	}

	if check {
		existing, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s does not exist", ErrStale, path)
			}
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if !bytes.Equal(existing, r.Source) {
			return fmt.Errorf("%w: %s", ErrStale, path)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, r.Source, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

package transform

import (
	"errors"
	"fmt"
	"go/token"
)

var (
	// ErrMalformedInput is reported when the input is not a function definition.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnknownEntryPoint is reported for a directive naming a vector the
	// table does not have.
	ErrUnknownEntryPoint = errors.New("no such entry point")
)

// Diagnostic is an error attached to a source location.
type Diagnostic struct {
	Pos token.Position
	Msg string
	Err error
}

func (d *Diagnostic) Error() string {
	msg := d.Err.Error()
	if d.Msg != "" {
		msg += ": " + d.Msg
	}
	if d.Pos.IsValid() || d.Pos.Filename != "" {
		return d.Pos.String() + ": " + msg
	}
	return msg
}

func (d *Diagnostic) Unwrap() error { return d.Err }

// Malformed returns a malformed input diagnostic at pos.
func Malformed(pos token.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{Pos: pos, Msg: fmt.Sprintf(format, args...), Err: ErrMalformedInput}
}

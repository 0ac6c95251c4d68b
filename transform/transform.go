// Package transform binds handler functions to interrupt vectors.
//
// A Transformer is bound to one vector. It takes a function definition, keeps
// only its statements and re-emits them as a routine named after the vector's
// linkage symbol, annotated with the interrupt calling convention and the
// unmangled linkage directives of the selected Dialect:
//
//	//isr:interrupt_handler_timer0_ovf
//	func onOverflow(ticks int) {
//		setFlag()
//	}
//
// becomes
//
//	//sigo:interrupt __vector_18 __vector_18
//	//sigo:export __vector_18 __vector_18
//	func __vector_18() {
//		setFlag()
//	}
package transform

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"

	"github.com/isrbind/isrbind/vector"
)

// EntryPointPrefix prefixes the vector identifier in entry point names.
const EntryPointPrefix = "interrupt_handler_"

// EntryPointName returns the entry point name of the vector identifier.
func EntryPointName(identifier string) string {
	return EntryPointPrefix + identifier
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithDialect selects the directives emitted for generated routines.
func WithDialect(d Dialect) Option {
	return func(t *Transformer) {
		t.dialect = d
	}
}

// Transformer rewrites handler functions into routines for one vector.
type Transformer struct {
	vector  vector.Descriptor
	dialect Dialect
}

// New returns a transformer bound to v.
func New(v vector.Descriptor, opts ...Option) *Transformer {
	t := &Transformer{vector: v, dialect: SigoDialect}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the entry point name of the transformer.
func (t *Transformer) Name() string { return EntryPointName(t.vector.Identifier) }

// Vector returns the vector the transformer is bound to.
func (t *Transformer) Vector() vector.Descriptor { return t.vector }

// Transform parses src as a single function definition and binds its body.
func (t *Transformer) Transform(filename string, src []byte) (*GeneratedRoutine, error) {
	def, err := ParseHandler(filename, src)
	if err != nil {
		return nil, err
	}
	return t.Bind(def)
}

// TransformDecl binds a function declaration parsed from src with fset.
func (t *Transformer) TransformDecl(fset *token.FileSet, src []byte, fn *ast.FuncDecl) (*GeneratedRoutine, error) {
	def, err := NewHandlerDefinition(fset, src, fn)
	if err != nil {
		return nil, err
	}
	return t.Bind(def)
}

// Bind erases the signature of def and emits the bound routine.
func (t *Transformer) Bind(def *HandlerDefinition) (*GeneratedRoutine, error) {
	body := def.EraseSignature()

	r := &GeneratedRoutine{
		Vector:     t.vector,
		Symbol:     t.vector.Symbol,
		Convention: t.dialect.render(t.dialect.Convention, t.vector),
		Linkage:    t.dialect.render(t.dialect.Linkage, t.vector),
		Body:       body,
	}

	var buf bytes.Buffer
	fmt.Fprintln(&buf, r.Convention)
	fmt.Fprintln(&buf, r.Linkage)
	fmt.Fprintf(&buf, "func %s() {%s}\n", r.Symbol, body.Text)

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s for handler %s: %w", r.Symbol, def.Name, err)
	}
	r.source = src
	return r, nil
}

// GeneratedRoutine is a handler body bound to a vector.
type GeneratedRoutine struct {
	Vector     vector.Descriptor
	Symbol     string
	Convention string
	Linkage    string
	Body       Body

	source []byte
}

// Source returns the formatted declaration of the routine, directives
// included.
func (r *GeneratedRoutine) Source() []byte {
	return bytes.Clone(r.source)
}

func (r *GeneratedRoutine) String() string {
	return string(r.source)
}

package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/isrbind/isrbind/internal/codegen/common"
	"github.com/isrbind/isrbind/internal/codegen/scanner"
	"github.com/isrbind/isrbind/transform"
)

var (
	// ErrNoHandlers is returned when no input file carries an isr directive.
	ErrNoHandlers      = errors.New("no isr directives found")
	// ErrPackageMismatch is returned when handlers of several packages are
	// generated without a package override.
	ErrPackageMismatch = errors.New("handlers belong to different packages")
)

// Generator binds the annotated handlers of a set of files to the entry points
// of a registry.
type Generator struct {
	registry *transform.Registry
	logger   *slog.Logger
}

// Result is the assembled output of one generator run.
type Result struct {
	Package  string
	Routines []*transform.GeneratedRoutine
	Source   []byte
}

type boundRoutine struct {
	routine *transform.GeneratedRoutine
	file    *scanner.File
	pos     token.Position
}

// New returns a generator resolving directives against registry.
func New(registry *transform.Registry, logger *slog.Logger) *Generator {
	return &Generator{
		registry: registry,
		logger:   logger,
	}
}

// Generate scans files for isr directives, binds every annotated function
// and assembles one formatted Go file. pkg overrides the package clause; when
// empty the package of the handler files is used.
func (g *Generator) Generate(ctx context.Context, files []string, pkg string) (*Result, error) {
	g.logger.Debug("Scanning handler sources", "files", len(files))
	scanned, err := scanner.ScanFiles(files)
	if err != nil {
		return nil, fmt.Errorf("failed to scan handlers: %w", err)
	}

	var (
		bound    []boundRoutine
		sources  []*scanner.File
		diags    []error
		packages = map[string]string{}
	)
	for _, f := range scanned {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !f.HasBindings() {
			continue
		}
		sources = append(sources, f)
		packages[f.Package] = f.Path

		for _, b := range f.Bindings {
			r, err := g.bind(f, b)
			if err != nil {
				diags = append(diags, err)
				continue
			}
			g.logger.Debug("Bound handler", "entryPoint", b.EntryPoint, "symbol", r.Symbol, "pos", b.Pos.String())
			bound = append(bound, boundRoutine{routine: r, file: f, pos: b.Pos})
		}
	}
	if len(diags) > 0 {
		return nil, errors.Join(diags...)
	}
	if len(bound) == 0 {
		return nil, ErrNoHandlers
	}

	if pkg == "" {
		if len(packages) > 1 {
			var names []string
			for name, path := range packages {
				names = append(names, name+" ("+path+")")
			}
			sort.Strings(names)
			return nil, fmt.Errorf("%w: %s", ErrPackageMismatch, strings.Join(names, ", "))
		}
		for name := range packages {
			pkg = name
		}
	}

	sort.SliceStable(bound, func(i, j int) bool {
		a, b := bound[i], bound[j]
		if a.routine.Vector.Index != b.routine.Vector.Index {
			return a.routine.Vector.Index < b.routine.Vector.Index
		}
		if a.pos.Filename != b.pos.Filename {
			return a.pos.Filename < b.pos.Filename
		}
		return a.pos.Offset < b.pos.Offset
	})
	g.warnDuplicates(bound)

	routines := make([]*transform.GeneratedRoutine, len(bound))
	for i, b := range bound {
		routines[i] = b.routine
	}

	imports, err := usedImports(newImportResolver(ctx, g.logger, sources), bound)
	if err != nil {
		return nil, err
	}

	src, err := assemble(pkg, imports, routines)
	if err != nil {
		return nil, err
	}

	g.logger.Info("Generated interrupt routines", "package", pkg, "routines", len(routines))
	return &Result{Package: pkg, Routines: routines, Source: src}, nil
}

func (g *Generator) bind(f *scanner.File, b scanner.Binding) (*transform.GeneratedRoutine, error) {
	if b.Func == nil {
		return nil, transform.Malformed(b.Pos, "%s must annotate a function definition, found %s", b.EntryPoint, b.Kind)
	}
	tr, err := g.registry.Lookup(b.EntryPoint)
	if err != nil {
		return nil, &transform.Diagnostic{Pos: b.Pos, Msg: b.EntryPoint, Err: transform.ErrUnknownEntryPoint}
	}
	return tr.TransformDecl(f.Fset, f.Src, b.Func)
}

// warnDuplicates reports vectors bound more than once. Both routines are still
// emitted; the compiler rejects the duplicate symbol.
func (g *Generator) warnDuplicates(bound []boundRoutine) {
	first := map[string]token.Position{}
	for _, b := range bound {
		if prev, dup := first[b.routine.Symbol]; dup {
			g.logger.Warn("Vector bound more than once",
				"vector", b.routine.Vector.Identifier,
				"symbol", b.routine.Symbol,
				"first", prev.String(),
				"again", b.pos.String())
			continue
		}
		first[b.routine.Symbol] = b.pos
	}
}

func assemble(pkg string, imports []importRef, routines []*transform.GeneratedRoutine) ([]byte, error) {
	header, err := common.GeneratedHeader()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n\npackage %s\n\n", header, pkg)
	for _, r := range routines {
		buf.Write(r.Source())
		buf.WriteString("\n")
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "", buf.Bytes(), parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("generated source does not parse: %w", err)
	}
	for _, imp := range imports {
		astutil.AddNamedImport(fset, f, imp.name, imp.path)
	}

	var out bytes.Buffer
	if err := format.Node(&out, fset, f); err != nil {
		return nil, fmt.Errorf("failed to print generated source: %w", err)
	}
	return format.Source(out.Bytes())
}

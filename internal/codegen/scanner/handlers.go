package scanner

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"regexp"
	"strings"
)

// Binding is a declaration annotated with an isr directive.
type Binding struct {
	EntryPoint string         // e.g. "interrupt_handler_timer0_ovf"
	Args       []string       // directive arguments, ignored by the transformer
	Func       *ast.FuncDecl  // nil when the directive annotates something else
	Decl       ast.Node       // annotated declaration
	Kind       string         // "function", "type declaration", ...
	Pos        token.Position // position of the directive
}

// File is a scanned Go source file.
type File struct {
	Path     string
	Package  string
	Fset     *token.FileSet
	Src      []byte
	AST      *ast.File
	Bindings []Binding
}

// directivePattern matches: isr:<entry point> [args...]
var directivePattern = regexp.MustCompile(`^isr:(\w+)(?:\s+(.*))?$`)

// ScanFiles parses the given Go files and collects their isr directives.
func ScanFiles(paths []string) ([]*File, error) {
	fset := token.NewFileSet()
	files := make([]*File, 0, len(paths))
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		f, err := ScanSource(fset, path, src)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// ScanSource parses src as the file path and collects its isr directives.
func ScanSource(fset *token.FileSet, path string, src []byte) (*File, error) {
	astFile, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	f := &File{
		Path:    path,
		Package: astFile.Name.Name,
		Fset:    fset,
		Src:     src,
		AST:     astFile,
	}

	for _, decl := range astFile.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			f.collect(d.Doc, d, d, "function")
		case *ast.GenDecl:
			kind := describeGenDecl(d)
			f.collect(d.Doc, nil, d, kind)
			if d.Lparen.IsValid() {
				for _, spec := range d.Specs {
					f.collect(specDoc(spec), nil, spec, kind)
				}
			}
		}
	}

	return f, nil
}

func (f *File) collect(doc *ast.CommentGroup, fn *ast.FuncDecl, decl ast.Node, kind string) {
	if doc == nil {
		return
	}
	for _, c := range doc.List {
		name, args, ok := parseDirective(c.Text)
		if !ok {
			continue
		}
		f.Bindings = append(f.Bindings, Binding{
			EntryPoint: name,
			Args:       args,
			Func:       fn,
			Decl:       decl,
			Kind:       kind,
			Pos:        f.Fset.Position(c.Slash),
		})
	}
}

// parseDirective parses a single //isr: comment line. Directives are line
// comments without a space after the slashes, like //go: directives.
func parseDirective(comment string) (name string, args []string, ok bool) {
	if !strings.HasPrefix(comment, "//") {
		return "", nil, false
	}
	matches := directivePattern.FindStringSubmatch(strings.TrimRight(comment[2:], " \t"))
	if matches == nil {
		return "", nil, false
	}
	return matches[1], strings.Fields(matches[2]), true
}

func specDoc(spec ast.Spec) *ast.CommentGroup {
	switch s := spec.(type) {
	case *ast.TypeSpec:
		return s.Doc
	case *ast.ValueSpec:
		return s.Doc
	case *ast.ImportSpec:
		return s.Doc
	}
	return nil
}

func describeGenDecl(d *ast.GenDecl) string {
	switch d.Tok {
	case token.TYPE:
		return "type declaration"
	case token.VAR:
		return "variable declaration"
	case token.CONST:
		return "constant declaration"
	case token.IMPORT:
		return "import declaration"
	}
	return d.Tok.String()
}

// HasBindings reports whether any directive was found in the file.
func (f *File) HasBindings() bool {
	return len(f.Bindings) > 0
}

package transform

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
)

// HandlerDefinition is a parsed handler function. Everything except the body
// is kept only so that EraseSignature can drop it explicitly.
type HandlerDefinition struct {
	Name       string
	Recv       *ast.FieldList
	TypeParams *ast.FieldList
	Params     *ast.FieldList
	Results    *ast.FieldList
	Body       Body
}

// Body is the statement sequence of a handler.
type Body struct {
	// Text is the source between the braces of the function, untouched.
	Text  string
	Stmts []ast.Stmt
}

// EraseSignature returns the body of the handler and discards its name,
// receiver, type parameters, parameters and results.
func (h *HandlerDefinition) EraseSignature() Body {
	return h.Body
}

// NewHandlerDefinition extracts the handler definition of fn. src must be the
// content of the file fn was parsed from with fset.
func NewHandlerDefinition(fset *token.FileSet, src []byte, fn *ast.FuncDecl) (*HandlerDefinition, error) {
	if fn.Body == nil {
		return nil, Malformed(fset.Position(fn.Pos()), "function %s has no body", fn.Name.Name)
	}
	tf := fset.File(fn.Pos())
	if tf == nil {
		return nil, Malformed(token.Position{}, "function %s has no position information", fn.Name.Name)
	}
	lbrace := tf.Offset(fn.Body.Lbrace)
	rbrace := tf.Offset(fn.Body.Rbrace)
	if lbrace < 0 || rbrace > len(src) || lbrace >= rbrace {
		return nil, Malformed(fset.Position(fn.Pos()), "source does not match function %s", fn.Name.Name)
	}

	return &HandlerDefinition{
		Name:       fn.Name.Name,
		Recv:       fn.Recv,
		TypeParams: fn.Type.TypeParams,
		Params:     fn.Type.Params,
		Results:    fn.Type.Results,
		Body: Body{
			Text:  string(src[lbrace+1 : rbrace]),
			Stmts: fn.Body.List,
		},
	}, nil
}

// snippetClause makes a lone function definition a parseable file. It adds
// exactly one line in front of the input.
const snippetClause = "package handler\n"

// byteOrderMark is only valid at the very start of a file, so it is removed
// before snippetClause is added.
var byteOrderMark = []byte("\uFEFF")

// ParseHandler parses src, which must contain exactly one function definition
// with a body and nothing else.
func ParseHandler(filename string, src []byte) (*HandlerDefinition, error) {
	src = bytes.TrimPrefix(src, byteOrderMark)

	full := make([]byte, 0, len(snippetClause)+len(src))
	full = append(full, snippetClause...)
	full = append(full, src...)

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, full, parser.ParseComments)
	if err != nil {
		if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
			return nil, Malformed(snippetPosition(list[0].Pos), "%s", list[0].Msg)
		}
		return nil, Malformed(token.Position{Filename: filename}, "%v", err)
	}

	if len(file.Decls) != 1 {
		pos := token.Position{Filename: filename}
		if len(file.Decls) > 1 {
			pos = snippetPosition(fset.Position(file.Decls[1].Pos()))
		}
		return nil, Malformed(pos, "expected a single function definition, found %d declarations", len(file.Decls))
	}

	fn, ok := file.Decls[0].(*ast.FuncDecl)
	if !ok {
		pos := snippetPosition(fset.Position(file.Decls[0].Pos()))
		return nil, Malformed(pos, "expected a function definition, found %s", describeDecl(file.Decls[0]))
	}

	def, err := NewHandlerDefinition(fset, full, fn)
	if d, ok := err.(*Diagnostic); ok {
		d.Pos = snippetPosition(d.Pos)
	}
	return def, err
}

func snippetPosition(p token.Position) token.Position {
	if p.Line > 1 {
		p.Line--
	}
	p.Offset -= len(snippetClause)
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func describeDecl(d ast.Decl) string {
	gen, ok := d.(*ast.GenDecl)
	if !ok {
		return "unknown declaration"
	}
	switch gen.Tok {
	case token.TYPE:
		return "type declaration"
	case token.VAR:
		return "variable declaration"
	case token.CONST:
		return "constant declaration"
	case token.IMPORT:
		return "import declaration"
	}
	return gen.Tok.String()
}

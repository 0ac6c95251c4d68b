package generator

import (
	"context"
	"fmt"
	"go/ast"
	"go/types"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/isrbind/isrbind/internal/codegen/scanner"
)

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

type importRef struct {
	name string // explicit name of the import spec, "" when unnamed
	path string
}

// bodyRefs are the names a routine body takes from outside of it.
type bodyRefs struct {
	qualifiers map[string]bool // X of X.Sel where X is not declared in the handler file
	free       map[string]bool // other identifiers not declared in the handler file
}

func collectRefs(stmts []ast.Stmt) bodyRefs {
	refs := bodyRefs{qualifiers: map[string]bool{}, free: map[string]bool{}}
	var visit func(n ast.Node) bool
	visit = func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.SelectorExpr:
			if id, ok := n.X.(*ast.Ident); ok {
				if id.Obj == nil {
					refs.qualifiers[id.Name] = true
				}
				return false
			}
			ast.Inspect(n.X, visit)
			return false
		case *ast.Ident:
			if n.Obj == nil && n.Name != "_" && types.Universe.Lookup(n.Name) == nil {
				refs.free[n.Name] = true
			}
		}
		return true
	}
	for _, s := range stmts {
		ast.Inspect(s, visit)
	}
	return refs
}

type importedPackage struct {
	name  string
	scope *types.Scope // nil unless the package was dot imported
}

// importResolver answers which package name an import path declares and, for
// dot imports, which names it exports. Paths the go tool cannot load (e.g.
// packages that only exist for an embedded target) fall back to the name
// derived from the path.
type importResolver struct {
	pkgs map[string]importedPackage
}

func newImportResolver(ctx context.Context, logger *slog.Logger, files []*scanner.File) *importResolver {
	r := &importResolver{pkgs: map[string]importedPackage{}}

	var paths, dots []string
	seen := map[string]bool{}
	for _, f := range files {
		for _, spec := range f.AST.Imports {
			path, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			if spec.Name != nil && spec.Name.Name == "." {
				dots = append(dots, path)
			}
			if !seen[path] {
				seen[path] = true
				paths = append(paths, path)
			}
		}
	}
	if len(paths) == 0 {
		return r
	}

	dir := filepath.Dir(files[0].Path)
	r.load(ctx, logger, dir, packages.NeedName, paths)
	if len(dots) > 0 {
		r.load(ctx, logger, dir, packages.NeedName|packages.NeedTypes, dots)
	}
	return r
}

func (r *importResolver) load(ctx context.Context, logger *slog.Logger, dir string, mode packages.LoadMode, paths []string) {
	cfg := &packages.Config{Context: ctx, Dir: dir, Mode: mode}
	pkgs, err := packages.Load(cfg, paths...)
	if err != nil {
		logger.Debug("Failed to load imported packages", "paths", paths, "error", err)
		return
	}
	for _, pkg := range pkgs {
		if pkg.Name == "" || len(pkg.Errors) > 0 {
			logger.Debug("Imported package not resolved", "path", pkg.PkgPath, "errors", len(pkg.Errors))
			continue
		}
		p := importedPackage{name: pkg.Name}
		if pkg.Types != nil && mode&packages.NeedTypes != 0 {
			p.scope = pkg.Types.Scope()
		}
		r.pkgs[pkg.PkgPath] = p
	}
}

// name returns the package name declared by the package at path.
func (r *importResolver) name(path string) string {
	if p, ok := r.pkgs[path]; ok {
		return p.name
	}
	return guessPackageName(path)
}

// providesAny reports whether the dot imported package at path declares one
// of names. An unloadable package is assumed to provide every free name.
func (r *importResolver) providesAny(path string, names map[string]bool) bool {
	p, ok := r.pkgs[path]
	if !ok || p.scope == nil {
		return len(names) > 0
	}
	for name := range names {
		if obj := p.scope.Lookup(name); obj != nil && obj.Exported() {
			return true
		}
	}
	return false
}

// guessPackageName derives a package name from an import path the way
// goimports does when the package itself is not available.
func guessPackageName(path string) string {
	elems := strings.Split(path, "/")
	last := elems[len(elems)-1]
	if majorVersion.MatchString(last) && len(elems) > 1 {
		last = elems[len(elems)-2]
	}
	last = strings.TrimPrefix(last, "go-")
	last = strings.TrimSuffix(last, ".go")
	last = strings.TrimSuffix(last, "-go")
	if i := strings.IndexAny(last, ".-"); i >= 0 {
		last = last[:i]
	}
	return last
}

// usedImports returns the imports of the handler files that the bound
// routines refer to. Blank imports stay in the handler files.
func usedImports(resolver *importResolver, bound []boundRoutine) ([]importRef, error) {
	used := map[importRef]bool{}
	byName := map[string]string{}

	for _, b := range bound {
		refs := collectRefs(b.routine.Body.Stmts)
		for _, spec := range b.file.AST.Imports {
			path, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			ref := importRef{path: path}
			if spec.Name != nil {
				ref.name = spec.Name.Name
			}

			switch ref.name {
			case "_":
				continue
			case ".":
				if !resolver.providesAny(path, refs.free) {
					continue
				}
			default:
				name := ref.name
				if name == "" {
					name = resolver.name(path)
				}
				if !refs.qualifiers[name] {
					continue
				}
				if prev, ok := byName[name]; ok && prev != path {
					return nil, fmt.Errorf("handlers refer to %s as both %q and %q", name, prev, path)
				}
				byName[name] = path
			}
			used[ref] = true
		}
	}

	refs := make([]importRef, 0, len(used))
	for ref := range used {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].path != refs[j].path {
			return refs[i].path < refs[j].path
		}
		return refs[i].name < refs[j].name
	})
	return refs, nil
}

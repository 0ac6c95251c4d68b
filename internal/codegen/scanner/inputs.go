package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// ResolveInputs expands the command line inputs into Go source files. An input
// is a .go file, a directory (all non-test .go files in it) or a package
// pattern resolved with the go tool honoring the given build tags. Files listed
// in exclude are skipped.
func ResolveInputs(inputs []string, tags []string, exclude ...string) ([]string, error) {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		if abs, err := filepath.Abs(e); err == nil {
			skip[abs] = true
		}
	}

	var files []string
	seen := map[string]bool{}
	add := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if seen[abs] || skip[abs] {
			return
		}
		seen[abs] = true
		files = append(files, path)
	}

	var patterns []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		switch {
		case err == nil && info.IsDir():
			dirFiles, err := goFilesInDir(in)
			if err != nil {
				return nil, err
			}
			for _, f := range dirFiles {
				add(f)
			}
		case err == nil && strings.HasSuffix(in, ".go"):
			add(in)
		case err == nil:
			return nil, fmt.Errorf("unsupported input %s: not a Go file", in)
		case strings.HasSuffix(in, ".go"):
			return nil, fmt.Errorf("failed to read %s: %w", in, err)
		default:
			patterns = append(patterns, in)
		}
	}

	if len(patterns) > 0 {
		pkgFiles, err := loadPackageFiles(patterns, tags)
		if err != nil {
			return nil, err
		}
		for _, f := range pkgFiles {
			add(f)
		}
	}

	if len(files) == 0 {
		return nil, errors.New("no Go source files found in inputs")
	}
	return files, nil
}

func goFilesInDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

func loadPackageFiles(patterns []string, tags []string) ([]string, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles,
	}
	if len(tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(tags, ",")}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages %v: %w", patterns, err)
	}

	var files []string
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Errorf("%s: %s", pkg.PkgPath, e.Msg))
		}
		files = append(files, pkg.GoFiles...)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return files, nil
}

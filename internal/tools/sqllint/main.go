// Command sqllint verifies that every inline SQL constant carries the
// `--sql <uuid>` audit marker the runner requires at execution time.
// Run it against the sqlinline package (or the whole module) in CI:
//
//	go run ./internal/tools/sqllint ./internal/sqlinline
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	sqlKeywordPattern = regexp.MustCompile(`(?i)\b(select|insert|update|delete|with)\b`)
	auditMarker       = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

type finding struct {
	file  string
	line  int
	name  string
	issue string
}

func main() {
	flag.Parse()
	targets := flag.Args()
	if len(targets) == 0 {
		targets = []string{"."}
	}

	var findings []finding
	seen := map[string]string{}

	for _, target := range targets {
		if err := lintTarget(target, &findings, seen); err != nil {
			fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
			os.Exit(1)
		}
	}

	if len(findings) > 0 {
		fmt.Fprintln(os.Stderr, "sqllint: query constants failed the audit marker check")
		for _, f := range findings {
			fmt.Fprintf(os.Stderr, "  %s:%d %s: %s\n", f.file, f.line, f.name, f.issue)
		}
		os.Exit(1)
	}
}

func lintTarget(target string, findings *[]finding, seen map[string]string) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		if filepath.Ext(target) == ".go" {
			return lintFile(target, findings, seen)
		}
		return nil
	}
	return filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_") || d.Name() == "vendor" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		return lintFile(path, findings, seen)
	})
}

func lintFile(path string, findings *[]finding, seen map[string]string) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return err
	}
	ast.Inspect(file, func(n ast.Node) bool {
		spec, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		for _, value := range spec.Values {
			lit, ok := value.(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING {
				continue
			}
			raw, err := unquote(lit.Value)
			if err != nil || !sqlKeywordPattern.MatchString(raw) {
				continue
			}
			pos := fset.Position(lit.Pos())
			name := specName(spec)
			marker := firstLine(raw)
			if !auditMarker.MatchString(marker) {
				*findings = append(*findings, finding{
					file:  path,
					line:  pos.Line,
					name:  name,
					issue: "missing or invalid --sql <uuid> marker",
				})
				continue
			}
			// Markers identify queries in logs; duplicates defeat that.
			if prev, dup := seen[marker]; dup {
				*findings = append(*findings, finding{
					file:  path,
					line:  pos.Line,
					name:  name,
					issue: fmt.Sprintf("marker already used by %s", prev),
				})
				continue
			}
			seen[marker] = name
		}
		return true
	})
	return nil
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n\r \t")
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}

func unquote(v string) (string, error) {
	if len(v) > 1 && v[0] == '`' {
		return v[1 : len(v)-1], nil
	}
	return strconv.Unquote(v)
}

func specName(spec *ast.ValueSpec) string {
	parts := make([]string, 0, len(spec.Names))
	for _, ident := range spec.Names {
		if ident != nil {
			parts = append(parts, ident.Name)
		}
	}
	if len(parts) == 0 {
		return "(anonymous)"
	}
	return strings.Join(parts, ",")
}

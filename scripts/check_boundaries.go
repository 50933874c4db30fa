package main

import (
	"cmp"
	"flag"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const modulePath = "kanvas"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists what a service layer may import besides the standard
// library. Paths under the service itself are given relative to it.
type layerRule struct {
	ownLayers []string
	shared    []string
}

var layerRules = map[string]layerRule{
	"domain": {
		ownLayers: []string{"domain"},
		shared:    []string{modulePath + "/contracts"},
	},
	"ports": {
		ownLayers: []string{"domain", "ports"},
		shared:    []string{modulePath + "/contracts"},
	},
	"application": {
		ownLayers: []string{"application", "domain", "ports"},
		shared:    []string{modulePath + "/contracts", "golang.org/x/sync"},
	},
}

// check_boundaries enforces the layering of every service under contexts/:
// domain code sees only its own domain and the shared contracts, ports add
// nothing but themselves, application code adds its ports and errgroup, and
// no service imports another.
func main() {
	root := flag.String("root", "contexts", "directory holding <area>/<service> trees")
	flag.Parse()

	violations, err := collectViolations(*root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "walk %s: %v\n", *root, err)
		os.Exit(2)
	}
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}
	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

// collectViolations walks root, which must be the contexts directory, and
// returns violations sorted by file, line and import.
func collectViolations(root string) ([]violation, error) {
	var violations []violation
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 4 {
			return nil
		}
		service := fmt.Sprintf("%s/contexts/%s/%s", modulePath, parts[0], parts[1])
		found, err := checkFile(path, "contexts/"+filepath.ToSlash(rel), service, parts[2])
		if err != nil {
			return err
		}
		violations = append(violations, found...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(violations, func(a, b violation) int {
		return cmp.Or(
			cmp.Compare(a.File, b.File),
			cmp.Compare(a.Line, b.Line),
			cmp.Compare(a.Import, b.Import),
		)
	})
	return violations, nil
}

func checkFile(path string, display string, service string, layer string) ([]violation, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: display, Line: 1, Rule: "file must parse"}}, nil
	}

	rule, layered := layerRules[layer]
	var violations []violation
	for _, spec := range file.Imports {
		importPath := strings.Trim(spec.Path.Value, `"`)
		report := func(reason string) {
			violations = append(violations, violation{
				File:   display,
				Line:   fset.Position(spec.Pos()).Line,
				Import: importPath,
				Rule:   reason,
			})
		}

		if within(importPath, modulePath+"/contexts") && !within(importPath, service) {
			report("cross-service imports are forbidden")
		}
		if !layered || isStdlib(importPath) {
			continue
		}
		switch {
		case within(importPath, modulePath+"/internal"), within(importPath, modulePath+"/cmd"):
			report(layer + " must not import runtime infrastructure")
		case strings.Contains(importPath, "/adapters/"):
			report(layer + " must not import adapters")
		case !rule.allows(service, importPath):
			report(layer + " import is outside explicit allowlist")
		}
	}
	return violations, nil
}

func (r layerRule) allows(service string, importPath string) bool {
	for _, layer := range r.ownLayers {
		if within(importPath, service+"/"+layer) {
			return true
		}
	}
	for _, prefix := range r.shared {
		if within(importPath, prefix) {
			return true
		}
	}
	return false
}

func within(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// isStdlib treats any import whose first element has no dot as standard
// library, except the module's own paths.
func isStdlib(importPath string) bool {
	if within(importPath, modulePath) {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}

package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "creatorflow"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

func main() {
	root := "contexts"
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	violations := collectViolations(root)
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File == violations[j].File {
			if violations[i].Line == violations[j].Line {
				return violations[i].Import < violations[j].Import
			}
			return violations[i].Line < violations[j].Line
		}
		return violations[i].File < violations[j].File
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) []violation {
	var violations []violation

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		normalized := filepath.ToSlash(path)
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 4 {
			return nil
		}

		contextName := parts[0]
		serviceName := parts[1]
		layer := parts[2]
		modulePrefix := fmt.Sprintf("%s/contexts/%s/%s", modulePath, contextName, serviceName)

		fileViolations := validateFile(path, normalized, layer, modulePrefix)
		violations = append(violations, fileViolations...)
		return nil
	})

	return violations
}

func validateFile(path string, normalizedPath string, layer string, modulePrefix string) []violation {
	var violations []violation

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return append(violations, violation{
			File: normalizedPath,
			Line: 1,
			Rule: "file must parse",
		})
	}

	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line

		if strings.HasPrefix(importPath, modulePath+"/contexts/") && !hasPrefix(importPath, modulePrefix) {
			violations = append(violations, violation{
				File:   normalizedPath,
				Line:   line,
				Import: importPath,
				Rule:   "cross-module imports are forbidden",
			})
		}

		if rules, ok := layerRules[layer]; ok {
			violations = append(violations, rules.check(normalizedPath, line, importPath, modulePrefix)...)
		}
	}

	return violations
}

// layerRule lists the import prefixes a layer may use, relative to the
// service root unless marked shared.
type layerRule struct {
	name           string
	serviceImports []string
	sharedImports  []string
	strict         bool
}

var layerRules = map[string]layerRule{
	"domain":      {name: "domain", serviceImports: []string{"/domain"}, strict: true},
	"application": {name: "application", serviceImports: []string{"/application", "/domain", "/ports"}, sharedImports: []string{"/contracts"}, strict: true},
	"ports":       {name: "ports", serviceImports: []string{"/domain"}, sharedImports: []string{"/contracts"}},
}

func (r layerRule) check(file string, line int, importPath string, modulePrefix string) []violation {
	var violations []violation
	add := func(rule string) {
		violations = append(violations, violation{File: file, Line: line, Import: importPath, Rule: rule})
	}

	if r.strict && strings.Contains(importPath, "/adapters/") {
		add(r.name + " must not import adapters")
	}
	if r.strict && (hasPrefix(importPath, modulePath+"/internal") || hasPrefix(importPath, modulePath+"/cmd")) {
		add(r.name + " must not import runtime infrastructure")
	}
	if isStdlib(importPath) {
		return violations
	}
	for _, suffix := range r.serviceImports {
		if hasPrefix(importPath, modulePrefix+suffix) {
			return violations
		}
	}
	for _, suffix := range r.sharedImports {
		if hasPrefix(importPath, modulePath+suffix) {
			return violations
		}
	}
	add(r.name + " import is outside explicit allowlist")
	return violations
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isStdlib(importPath string) bool {
	if hasPrefix(importPath, modulePath) {
		return false
	}
	first := importPath
	if idx := strings.Index(first, "/"); idx != -1 {
		first = first[:idx]
	}
	return !strings.Contains(first, ".")
}

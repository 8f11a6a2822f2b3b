package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// modulePath must match the module line of go.mod.
const modulePath = "cardvault"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists which packages of this module a layer may import. {svc} expands to the
// account service root and {pkg} to the importing package itself.
type layerRule struct {
	thirdParty bool
	allow      []string
}

var layerRules = map[string]layerRule{
	"domain": {
		allow: []string{"{svc}/domain"},
	},
	"ports": {
		allow: []string{"{svc}/domain", "{svc}/ports"},
	},
	"application": {
		allow: []string{"{svc}/application", "{svc}/domain", "{svc}/ports"},
	},
	"transport": {
		allow: []string{"{svc}/transport"},
	},
	"adapters": {
		thirdParty: true,
		allow: []string{
			"{pkg}",
			"{svc}/application",
			"{svc}/domain",
			"{svc}/ports",
			"{svc}/transport",
			"internal/platform/cache",
			"internal/platform/config",
			"internal/platform/db",
			"internal/platform/logging",
		},
	},
	"service": {
		thirdParty: true,
		allow: []string{
			"{svc}",
			"internal/platform/cache",
			"internal/platform/config",
			"internal/platform/logging",
		},
	},
	"platform": {
		thirdParty: true,
		allow:      []string{"{pkg}", "internal/platform/config"},
	},
	"httpserver": {
		thirdParty: true,
		allow:      []string{"internal/platform/httpserver", "internal/platform/config", "contexts"},
	},
	"app": {
		thirdParty: true,
		allow:      []string{"internal/app", "internal/platform", "contexts"},
	},
}

func main() {
	violations := collectViolations("contexts", "internal")
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

func collectViolations(roots ...string) []violation {
	var violations []violation
	for _, root := range roots {
		_ = filepath.WalkDir(root, func(file string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || !strings.HasSuffix(file, ".go") || strings.HasSuffix(file, "_test.go") {
				return nil
			}
			violations = append(violations, validateFile(file, filepath.ToSlash(file))...)
			return nil
		})
	}

	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Import < b.Import
	})
	return violations
}

// classify maps a repository-relative file path to its layer and, for files under
// contexts/, the service root they belong to.
func classify(normalized string) (layer string, service string) {
	parts := strings.Split(normalized, "/")
	switch {
	case parts[0] == "contexts" && len(parts) == 4:
		return "service", strings.Join(parts[:3], "/")
	case parts[0] == "contexts" && len(parts) > 4:
		return parts[3], strings.Join(parts[:3], "/")
	case len(parts) > 2 && parts[0] == "internal" && parts[1] == "app":
		return "app", ""
	case len(parts) > 3 && parts[0] == "internal" && parts[1] == "platform" && parts[2] == "httpserver":
		return "httpserver", ""
	case len(parts) > 3 && parts[0] == "internal" && parts[1] == "platform":
		return "platform", ""
	}
	return "", ""
}

func validateFile(file string, normalized string) []violation {
	layer, service := classify(normalized)
	rule, known := layerRules[layer]
	if !known {
		return []violation{{File: normalized, Line: 1, Rule: "package sits outside the known layers"}}
	}

	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: normalized, Line: 1, Rule: "file must parse"}}
	}

	allowed := make([]string, 0, len(rule.allow))
	for _, entry := range rule.allow {
		entry = strings.ReplaceAll(entry, "{svc}", service)
		entry = strings.ReplaceAll(entry, "{pkg}", path.Dir(normalized))
		allowed = append(allowed, modulePath+"/"+entry)
	}

	var violations []violation
	for _, imp := range parsed.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)
		report := func(reason string) {
			violations = append(violations, violation{
				File:   normalized,
				Line:   fset.Position(imp.Pos()).Line,
				Import: importPath,
				Rule:   reason,
			})
		}

		switch {
		case service != "" && within(importPath, modulePath+"/contexts") && !within(importPath, modulePath+"/"+service):
			report("cross-module imports are forbidden")
		case within(importPath, modulePath):
			if !withinAny(importPath, allowed) {
				report(layer + " may not import this package")
			}
		case !isStdlib(importPath) && !rule.thirdParty:
			report(layer + " may only import the standard library and its own layers")
		}
	}
	return violations
}

func within(importPath string, prefix string) bool {
	return importPath == prefix || strings.HasPrefix(importPath, prefix+"/")
}

func withinAny(importPath string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if within(importPath, prefix) {
			return true
		}
	}
	return false
}

// isStdlib treats any import whose first element has no dot as standard library.
func isStdlib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".") && first != modulePath
}

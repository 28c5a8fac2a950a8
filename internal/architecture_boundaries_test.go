package internal

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const modulePrefix = "loki-messenger/go-backend/internal"

// Core packages hold the domain logic and must stay free of transport,
// wiring and process-level concerns.
var corePackages = []string{
	"mnemonic",
	"identity",
	"securestore",
	"account",
	"profile",
	"onboarding",
	"conversationsearch",
}

var forbiddenForCore = []string{
	modulePrefix + "/adapters",
	modulePrefix + "/composition",
	modulePrefix + "/config",
	modulePrefix + "/platform",
}

func TestArchitecture_CorePackagesDisallowOuterLayerImports(t *testing.T) {
	root := internalDir(t)
	var violations []string
	for _, pkg := range corePackages {
		forbidden := forbiddenForCore
		if pkg == "mnemonic" {
			// The codec is the leaf everything else builds on.
			forbidden = []string{modulePrefix}
		}
		violations = append(violations, scanImports(t, filepath.Join(root, pkg), forbidden)...)
	}
	if len(violations) > 0 {
		t.Fatalf("package boundary violations detected:\n- %s", strings.Join(violations, "\n- "))
	}
}

func internalDir(t *testing.T) string {
	t.Helper()
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to resolve current test file path")
	}
	return filepath.Dir(currentFile)
}

func scanImports(t *testing.T, dir string, forbidden []string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	fset := token.NewFileSet()
	var violations []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		path := filepath.Join(dir, name)
		parsed, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("parse file %s: %v", path, err)
		}
		for _, imp := range parsed.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			for _, prefix := range forbidden {
				if importPath == prefix || strings.HasPrefix(importPath, prefix+"/") {
					pos := fset.Position(imp.Path.Pos())
					violations = append(violations, fmt.Sprintf("%s/%s:%d imports %q", filepath.Base(dir), name, pos.Line, importPath))
					break
				}
			}
		}
	}
	return violations
}

package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// layers maps a directory prefix under internal/ to the internal packages it must not import.
// Test files are exempt so integration tests can assemble the whole stack.
var layers = []struct {
	prefix     string
	disallowed []string
}{
	{"internal/platform/", []string{"domain", "data", "services", "jobs", "http", "app", "clients", "ingestion", "observability"}},
	{"internal/domain/", []string{"data", "services", "jobs", "http", "app", "clients"}},
	{"internal/clients/", []string{"domain", "data", "services", "jobs", "http", "app"}},
	{"internal/ingestion/", []string{"data", "services", "jobs", "http", "app"}},
	{"internal/data/", []string{"services", "jobs", "http", "app"}},
	{"internal/services/", []string{"jobs", "http", "app"}},
	{"internal/jobs/", []string{"http", "app"}},
	{"internal/http/", []string{"data", "jobs", "app"}},
}

func TestImportBoundaries(t *testing.T) {
	root, modulePath := moduleRoot(t)
	internalDir := filepath.Join(root, "internal")
	fset := token.NewFileSet()

	type violation struct {
		file string
		imp  string
		rule string
	}
	var violations []violation

	walkErr := filepath.WalkDir(internalDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "vendor", "node_modules", ".gocache":
				return filepath.SkipDir
			default:
				return nil
			}
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		disallowed := disallowedImports(modulePath, rel)
		if len(disallowed) == 0 {
			return nil
		}

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			if spec == nil || spec.Path == nil {
				continue
			}
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			for _, bad := range disallowed {
				if imp == strings.TrimSuffix(bad, "/") || strings.HasPrefix(imp, bad) {
					violations = append(violations, violation{file: rel, imp: imp, rule: bad})
					break
				}
			}
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}

	if len(violations) > 0 {
		var b strings.Builder
		b.WriteString("import boundary violations:\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s imports %q (disallowed: %q)\n", v.file, v.imp, v.rule)
		}
		t.Fatal(b.String())
	}
}

func TestDisallowedImports(t *testing.T) {
	mp := "example.com/m"
	got := disallowedImports(mp, "internal/services/fact.go")
	if len(got) != 3 || got[0] != mp+"/internal/jobs/" {
		t.Fatalf("unexpected rules for services: %v", got)
	}
	if got := disallowedImports(mp, "internal/app/app.go"); got != nil {
		t.Fatalf("app should be unrestricted, got %v", got)
	}
}

func disallowedImports(modulePath, rel string) []string {
	for _, l := range layers {
		if !strings.HasPrefix(rel, l.prefix) {
			continue
		}
		out := make([]string, 0, len(l.disallowed))
		for _, pkg := range l.disallowed {
			out = append(out, modulePath+"/internal/"+pkg+"/")
		}
		return out
	}
	return nil
}

func moduleRoot(t *testing.T) (string, string) {
	t.Helper()
	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}
	return root, modulePath
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		mp := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		if mp == "" {
			return "", fmt.Errorf("empty module path in %s", goModPath)
		}
		return mp, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}

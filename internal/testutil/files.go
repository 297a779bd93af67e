package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFiles creates empty files (and parent directories) under root and
// returns their absolute paths in argument order.
func WriteFiles(t *testing.T, root string, names ...string) []string {
	t.Helper()
	out := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, nil, 0o600); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			t.Fatalf("abs %s: %v", p, err)
		}
		out = append(out, abs)
	}
	return out
}

// WriteConfig writes a YAML config into a temp dir and returns its path.
func WriteConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "dayloop.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

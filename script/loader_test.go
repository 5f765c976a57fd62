package script

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoaderLoadDir(t *testing.T) {
	dir := t.TempDir()

	valid := `
function init(ctx) end
function process_event(track, event) return true end
`
	if err := os.WriteFile(filepath.Join(dir, "mode1.lua"), []byte(valid), 0644); err != nil {
		t.Fatal(err)
	}
	// Broken script: loads but lacks process_event.
	if err := os.WriteFile(filepath.Join(dir, "mode2.lua"), []byte("function init(c) end"), 0644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader()
	defer l.Close()

	if got := l.LoadDir(dir); got != 1 {
		t.Errorf("loaded %d scripts, want 1", got)
	}
	if l.Script(1) == nil {
		t.Error("valid script not resolvable")
	}
	if l.Script(2) != nil {
		t.Error("broken script resolvable")
	}
	if l.Script(5) != nil {
		t.Error("missing script resolvable")
	}
	if l.Script(-1) != nil || l.Script(99) != nil {
		t.Error("out-of-range mode resolvable")
	}
}

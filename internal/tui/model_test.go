package tui

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"imgtriage/internal/config"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// waitReady drives the model through the pending decode to statusReady.
func waitReady(t *testing.T, m model) model {
	t.Helper()
	msg := m.waitDecodeMsg()()
	mm, _ := m.Update(msg)
	got := mm.(model)
	if got.st != statusReady {
		t.Fatalf("state after decode = %v, want statusReady", got.st)
	}
	return got
}

func testConfig(in string, bindings map[rune]config.Destination) *config.Config {
	return &config.Config{Dir: in, Bindings: bindings}
}

func TestController_MoveRoutesAndDrainsQueue(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	outA := filepath.Join(root, "out", "a")
	if err := os.MkdirAll(in, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	src := filepath.Join(in, "x.png")
	writePNG(t, src)

	cfg := testConfig(in, map[rune]config.Destination{
		'a': {Dir: outA},
		's': {Skip: true},
	})
	m := newModel(cfg, []string{src})
	defer m.dec.Close()

	m = waitReady(t, m)
	mm, _ := m.Update(keyPress('a'))
	m = mm.(model)

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source should be gone: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outA, "x.png")); err != nil {
		t.Fatalf("moved file missing: %v", err)
	}
	if m.st != statusEmpty {
		t.Fatalf("state = %v, want statusEmpty", m.st)
	}
	if !strings.Contains(m.lastAction, "Moved x.png") {
		t.Fatalf("status line = %q", m.lastAction)
	}
}

func TestController_ConflictLeavesFilesAndAdvances(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	outA := filepath.Join(root, "out", "a")
	if err := os.MkdirAll(in, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(outA, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	src := filepath.Join(in, "x.png")
	writePNG(t, src)
	existing := filepath.Join(outA, "x.png")
	if err := os.WriteFile(existing, []byte("different content"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := testConfig(in, map[rune]config.Destination{'a': {Dir: outA}})
	m := newModel(cfg, []string{src})
	defer m.dec.Close()

	m = waitReady(t, m)
	mm, _ := m.Update(keyPress('a'))
	m = mm.(model)

	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source must be untouched on conflict: %v", err)
	}
	data, _ := os.ReadFile(existing)
	if string(data) != "different content" {
		t.Fatalf("pre-existing destination changed: %q", data)
	}
	if !strings.Contains(m.lastAction, "Conflict") {
		t.Fatalf("status line = %q", m.lastAction)
	}
	if m.st != statusEmpty {
		t.Fatalf("queue should still advance past a conflict, state = %v", m.st)
	}
}

func TestController_SkipAdvancesWithoutMutation(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	if err := os.MkdirAll(in, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	a := filepath.Join(in, "a.png")
	b := filepath.Join(in, "b.png")
	writePNG(t, a)
	writePNG(t, b)

	cfg := testConfig(in, map[rune]config.Destination{'s': {Skip: true}})
	m := newModel(cfg, []string{a, b})
	defer m.dec.Close()

	m = waitReady(t, m)
	mm, cmd := m.Update(keyPress('s'))
	m = mm.(model)

	if _, err := os.Stat(a); err != nil {
		t.Fatalf("skipped file should remain: %v", err)
	}
	if m.st != statusLoading || m.current != b {
		t.Fatalf("expected decode of next file, state=%v current=%q", m.st, m.current)
	}
	if cmd == nil {
		t.Fatal("advancing must arm the decode wait")
	}
}

func TestController_DecodeFailureStillClassifiable(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	out := filepath.Join(root, "out")
	if err := os.MkdirAll(in, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	src := filepath.Join(in, "broken.png")
	if err := os.WriteFile(src, []byte("not a png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := testConfig(in, map[rune]config.Destination{'a': {Dir: out}})
	m := newModel(cfg, []string{src})
	defer m.dec.Close()

	m = waitReady(t, m)
	if m.res.Err == nil {
		t.Fatal("expected a decode error result")
	}
	m.termW, m.termH = 80, 24
	if !strings.Contains(m.View(), "cannot preview") {
		t.Fatal("view should show the error placeholder")
	}

	mm, _ := m.Update(keyPress('a'))
	m = mm.(model)
	if _, err := os.Stat(filepath.Join(out, "broken.png")); err != nil {
		t.Fatalf("undecodable file should still route: %v", err)
	}
}

func TestController_UnboundKeyIgnored(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	if err := os.MkdirAll(in, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	src := filepath.Join(in, "x.png")
	writePNG(t, src)

	cfg := testConfig(in, map[rune]config.Destination{'a': {Dir: filepath.Join(root, "out")}})
	m := newModel(cfg, []string{src})
	defer m.dec.Close()

	m = waitReady(t, m)
	mm, _ := m.Update(keyPress('z'))
	got := mm.(model)
	if got.st != statusReady || got.current != src || got.lastAction != "" {
		t.Fatalf("unbound key changed state: %+v", got.st)
	}
}

func TestController_KeysDroppedWhileLoading(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	if err := os.MkdirAll(in, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	src := filepath.Join(in, "x.png")
	writePNG(t, src)

	cfg := testConfig(in, map[rune]config.Destination{'a': {Dir: filepath.Join(root, "out")}})
	m := newModel(cfg, []string{src})
	defer m.dec.Close()

	// still statusLoading; the bound key must not route anything
	mm, _ := m.Update(keyPress('a'))
	got := mm.(model)
	if got.st != statusLoading {
		t.Fatalf("state = %v, want statusLoading", got.st)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("file must not move while loading: %v", err)
	}
}

func TestController_EmptyStateKeysDoNothing(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	out := filepath.Join(root, "out")
	if err := os.MkdirAll(in, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cfg := testConfig(in, map[rune]config.Destination{'a': {Dir: out}})
	m := newModel(cfg, nil)
	defer m.dec.Close()
	if m.st != statusEmpty {
		t.Fatalf("state = %v, want statusEmpty", m.st)
	}

	mm, _ := m.Update(keyPress('a'))
	m = mm.(model)
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("no filesystem mutation expected after drain: %v", err)
	}
}

func TestController_QuitAlwaysAvailable(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	if err := os.MkdirAll(in, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	src := filepath.Join(in, "x.png")
	writePNG(t, src)

	cfg := testConfig(in, map[rune]config.Destination{'a': {Dir: filepath.Join(root, "out")}})
	m := newModel(cfg, []string{src})
	defer m.dec.Close()

	// quit during Loading, before the decode result arrives
	_, cmd := m.Update(keyPress('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestController_StaleResultDiscarded(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	if err := os.MkdirAll(in, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	src := filepath.Join(in, "x.png")
	writePNG(t, src)

	cfg := testConfig(in, map[rune]config.Destination{'s': {Skip: true}})
	m := newModel(cfg, []string{src})
	defer m.dec.Close()

	stale := decodeMsg{Path: filepath.Join(in, "other.png")}
	mm, cmd := m.Update(stale)
	got := mm.(model)
	if got.st != statusLoading {
		t.Fatalf("stale result must not render, state = %v", got.st)
	}
	if cmd == nil {
		t.Fatal("discarding a stale result must re-arm the wait")
	}
}

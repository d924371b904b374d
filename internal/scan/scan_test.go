package scan

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/samcharles93/ggufscope/pkg/gguf"
)

func writeContainer(t *testing.T, dir, name string, answer uint32) string {
	t.Helper()
	var b []byte
	b = append(b, "GGUF"...)
	b = binary.LittleEndian.AppendUint32(b, 3)
	b = binary.LittleEndian.AppendUint64(b, 0)
	b = binary.LittleEndian.AppendUint64(b, 1)
	b = binary.LittleEndian.AppendUint64(b, uint64(len("answer")))
	b = append(b, "answer"...)
	b = binary.LittleEndian.AppendUint32(b, uint32(gguf.KindUint32))
	b = binary.LittleEndian.AppendUint32(b, answer)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeContainer(t, dir, "b.gguf", 1)
	writeContainer(t, dir, "A.GGUF", 2)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.gguf"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{filepath.Join(dir, "A.GGUF"), filepath.Join(dir, "b.gguf")}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v want %v", got, want)
	}

	if _, err := Discover(""); err == nil {
		t.Fatal("expected error for empty dir")
	}
	if _, err := Discover(want[0]); err == nil {
		t.Fatal("expected error for file path")
	}
}

func TestFilesKeepsInputOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var paths []string
	for i := range 8 {
		paths = append(paths, writeContainer(t, dir, string(rune('a'+i))+".gguf", uint32(i)))
	}
	bad := filepath.Join(dir, "bad.gguf")
	if err := os.WriteFile(bad, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	paths = append(paths, bad)

	results := Files(context.Background(), paths, Options{Workers: 3})
	if len(results) != len(paths) {
		t.Fatalf("got %d results want %d", len(results), len(paths))
	}
	for i, r := range results[:8] {
		if r.Err != nil {
			t.Fatalf("%s: %v", r.Path, r.Err)
		}
		if r.Path != paths[i] || r.Report.Path != paths[i] {
			t.Fatalf("result %d out of order: %s", i, r.Path)
		}
		if got := r.Report.Metadata[0].Value; got != uint32(i) {
			t.Fatalf("result %d: answer=%v", i, got)
		}
	}
	if !errors.Is(results[8].Err, gguf.ErrBadMagic) {
		t.Fatalf("expected bad magic, got %v", results[8].Err)
	}
}

func TestFilesCancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := []string{writeContainer(t, dir, "a.gguf", 1), writeContainer(t, dir, "b.gguf", 2)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, r := range Files(ctx, paths, Options{Workers: 1}) {
		if r.Err == nil {
			continue
		}
		if !errors.Is(r.Err, context.Canceled) {
			t.Fatalf("unexpected error: %v", r.Err)
		}
	}
}

func TestFilesEmpty(t *testing.T) {
	t.Parallel()

	if got := Files(context.Background(), nil, Options{}); len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
}

package mapping

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenMapsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "model.gguf")
	want := []byte("GGUF\x03\x00\x00\x00payload")
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(f.Bytes(), want) {
		t.Fatalf("bytes: got %q want %q", f.Bytes(), want)
	}
	if f.Size() != int64(len(want)) {
		t.Fatalf("size: got %d want %d", f.Size(), len(want))
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if f.Bytes() != nil {
		t.Fatalf("expected nil bytes after close")
	}
}

func TestOpenEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.gguf")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()
	if f.Size() != 0 || f.Mapped() {
		t.Fatalf("expected empty unmapped file, got size=%d mapped=%v", f.Size(), f.Mapped())
	}
	if f.Path != path {
		t.Fatalf("read fallback lost the path: got %q want %q", f.Path, path)
	}
	if f.Bytes() == nil {
		t.Fatal("expected non-nil empty bytes from the read fallback")
	}
}

func TestOpenMissing(t *testing.T) {
	t.Parallel()

	if _, err := Open(filepath.Join(t.TempDir(), "nope.gguf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFromReaderAt(t *testing.T) {
	t.Parallel()

	src := []byte("abcdef")
	f, err := FromReaderAt(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		t.Fatalf("FromReaderAt: %v", err)
	}
	if !bytes.Equal(f.Bytes(), src) {
		t.Fatalf("got %q want %q", f.Bytes(), src)
	}
	if _, err := FromReaderAt(bytes.NewReader(src), 10); err == nil {
		t.Fatal("expected short read error")
	}
	if _, err := FromReaderAt(bytes.NewReader(src), -1); err == nil {
		t.Fatal("expected error for negative size")
	}
}

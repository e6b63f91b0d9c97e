package archive

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRoundTrip(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	files := []string{
		writeFile(t, src, "a.txt", []byte("abc")),
		writeFile(t, src, "b.txt", nil),
		writeFile(t, src, "c.bin", bytes.Repeat([]byte{0x00, 0xff, ':', '\n'}, 3000)),
	}
	arc := filepath.Join(t.TempDir(), "out.arc")
	if err := Create(arc, files); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := Extract(arc, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, f := range files {
		want, err := os.ReadFile(f)
		if err != nil {
			t.Fatal(err)
		}
		got, err := os.ReadFile(filepath.Join(dest, ExtractPrefix+filepath.Base(f)))
		if err != nil {
			t.Fatalf("extracted file missing: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("content mismatch for %s: got %d bytes, want %d", filepath.Base(f), len(got), len(want))
		}
	}
}

func TestWireLayout(t *testing.T) {
	src := t.TempDir()
	a := writeFile(t, src, "a.txt", []byte("abc"))
	b := writeFile(t, src, "b.txt", nil)
	arc := filepath.Join(t.TempDir(), "out.arc")
	if err := Create(arc, []string{a, b}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := os.ReadFile(arc)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte("00000003" + "00000005" + "a.txt" + "abc" + "00000000" + "00000005" + "b.txt")
	if !bytes.Equal(got, want) {
		t.Errorf("archive bytes:\n got %q\nwant %q", got, want)
	}
}

func TestExtractEmptyArchive(t *testing.T) {
	arc := writeFile(t, t.TempDir(), "empty.arc", nil)
	dest := t.TempDir()
	if err := Extract(arc, dest); err != nil {
		t.Fatalf("Extract of empty archive: %v", err)
	}
	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no extracted files, got %d", len(entries))
	}
}

func TestCreateMissingSource(t *testing.T) {
	arc := filepath.Join(t.TempDir(), "out.arc")
	err := Create(arc, []string{filepath.Join(t.TempDir(), "nope.txt")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestCreateFieldOverflow(t *testing.T) {
	src := t.TempDir()
	path := filepath.Join(src, "huge.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	// Sparse file just past the 8-digit ceiling.
	if err := f.Truncate(100_000_000); err != nil {
		f.Close()
		t.Skipf("cannot create sparse file: %v", err)
	}
	f.Close()

	arc := filepath.Join(t.TempDir(), "out.arc")
	if err := Create(arc, []string{path}); !errors.Is(err, ErrFieldOverflow) {
		t.Errorf("got %v, want ErrFieldOverflow", err)
	}
}

func TestExtractCorruptHeaders(t *testing.T) {
	cases := map[string]string{
		"partial size field":     "00000",
		"non-numeric size":       "ABCDEFGH00000005a.txt",
		"missing name length":    "00000003",
		"partial name length":    "000000030005",
		"short name":             "0000000300000005a.t",
		"second entry truncated": "0000000300000005a.txtabc0000",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			arc := writeFile(t, t.TempDir(), "bad.arc", []byte(raw))
			err := Extract(arc, t.TempDir())
			if !errors.Is(err, ErrCorruptArchive) {
				t.Errorf("got %v, want ErrCorruptArchive", err)
			}
		})
	}
}

func TestExtractTruncatedEntry(t *testing.T) {
	raw := "00000010" + "00000005" + "a.txt" + "abc" // declares 10 content bytes, has 3
	arc := writeFile(t, t.TempDir(), "short.arc", []byte(raw))
	err := Extract(arc, t.TempDir())
	if !errors.Is(err, ErrTruncatedEntry) {
		t.Errorf("got %v, want ErrTruncatedEntry", err)
	}
}

func TestExtractZeroSizeEntry(t *testing.T) {
	raw := "00000000" + "00000005" + "b.txt"
	arc := writeFile(t, t.TempDir(), "zero.arc", []byte(raw))
	dest := t.TempDir()
	if err := Extract(arc, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	info, err := os.Stat(filepath.Join(dest, ExtractPrefix+"b.txt"))
	if err != nil {
		t.Fatalf("extracted file missing: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected zero-length output, got %d bytes", info.Size())
	}
}

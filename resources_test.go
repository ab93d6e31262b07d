package md2enex

import (
	"crypto/md5" // #nosec G501 -- hashes compared against production values
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectMime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		want string
	}{
		{name: "png", file: "photo.png", want: "image/png"},
		{name: "jpeg", file: "photo.jpg", want: "image/jpeg"},
		{name: "uppercase extension", file: "PHOTO.PNG", want: "image/png"},
		{name: "pdf", file: "doc.pdf", want: "application/pdf"},
		{name: "office document", file: "report.docx", want: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{name: "audio", file: "memo.m4a", want: "audio/mp4"},
		{name: "unknown extension", file: "data.xyz123", want: "application/octet-stream"},
		{name: "no extension", file: "Makefile", want: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := detectMime(tt.file); got != tt.want {
				t.Errorf("detectMime(%q) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestResourceIndexIntern(t *testing.T) {
	t.Parallel()

	ix := NewResourceIndex()

	a := &Resource{Hash: "abc", Data: []byte("x")}
	b := &Resource{Hash: "abc", Data: []byte("x")}
	c := &Resource{Hash: "def", Data: []byte("y")}

	if got := ix.intern(a); got != a {
		t.Error("first intern should return the stored resource")
	}
	if got := ix.intern(b); got != a {
		t.Error("second intern of the same hash should return the canonical copy")
	}
	if got := ix.intern(c); got != c {
		t.Error("different hash should store a new resource")
	}
	if ix.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ix.Len())
	}
}

func TestResolverResolve(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	payload := []byte("0123456789")
	if err := os.WriteFile(filepath.Join(dir, "pic.png"), payload, 0o644); err != nil {
		t.Fatal(err)
	}

	rr := &resourceResolver{maxSize: DefaultMaxResourceSize, index: NewResourceIndex()}

	res, err := rr.resolve(dir, "pic.png")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if res.Size() != 10 {
		t.Errorf("Size() = %d, want 10", res.Size())
	}
	sum := md5.Sum(payload) // #nosec G401 -- expected value for comparison
	if want := hex.EncodeToString(sum[:]); res.Hash != want {
		t.Errorf("Hash = %q, want %q", res.Hash, want)
	}
	if res.Mime != "image/png" {
		t.Errorf("Mime = %q, want image/png", res.Mime)
	}
	if res.FileName != "pic.png" {
		t.Errorf("FileName = %q, want pic.png", res.FileName)
	}
	if res.Placeholder {
		t.Error("real file should not be marked as placeholder")
	}
}

func TestResolverBaseNameOnly(t *testing.T) {
	t.Parallel()

	// References carrying a path resolve by base name inside the
	// resource directory; they never escape it.
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pic.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	rr := &resourceResolver{index: NewResourceIndex()}

	res, err := rr.resolve(dir, "_resources/pic.png")
	if err != nil {
		t.Fatalf("resolve with path prefix: %v", err)
	}
	if res.FileName != "pic.png" {
		t.Errorf("FileName = %q, want pic.png", res.FileName)
	}

	if _, err := rr.resolve(dir, "../../../../etc/passwd"); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("traversal attempt error = %v, want ErrResourceNotFound", err)
	}
}

func TestResolverMissing(t *testing.T) {
	t.Parallel()

	rr := &resourceResolver{index: NewResourceIndex()}

	if _, err := rr.resolve(t.TempDir(), "nope.png"); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("missing file error = %v, want ErrResourceNotFound", err)
	}
	if _, err := rr.resolve("", "pic.png"); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("empty dir error = %v, want ErrResourceNotFound", err)
	}
	if _, err := rr.resolve(t.TempDir(), "   "); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("blank reference error = %v, want ErrResourceNotFound", err)
	}
}

func TestResolverSizeLimit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "big.png"), []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}

	rr := &resourceResolver{maxSize: 4, index: NewResourceIndex()}

	if _, err := rr.resolve(dir, "big.png"); !errors.Is(err, ErrResourceTooLarge) {
		t.Errorf("oversize error = %v, want ErrResourceTooLarge", err)
	}

	// Zero means no limit.
	rr.maxSize = 0
	if _, err := rr.resolve(dir, "big.png"); err != nil {
		t.Errorf("no-limit resolve: %v", err)
	}
}

func TestResolverDedup(t *testing.T) {
	t.Parallel()

	// Identical content under different names resolves to one record.
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("same bytes"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	rr := &resourceResolver{index: NewResourceIndex()}

	first, err := rr.resolve(dir, "a.png")
	if err != nil {
		t.Fatal(err)
	}
	second, err := rr.resolve(dir, "b.png")
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Error("same content should intern to one resource")
	}
	if rr.index.Len() != 1 {
		t.Errorf("index holds %d resources, want 1", rr.index.Len())
	}
	// The canonical record keeps the first name seen.
	if first.FileName != "a.png" {
		t.Errorf("canonical FileName = %q, want a.png", first.FileName)
	}
}

func TestResolverPlaceholder(t *testing.T) {
	t.Parallel()

	rr := &resourceResolver{index: NewResourceIndex()}

	p := rr.placeholder()
	if !p.Placeholder {
		t.Error("placeholder flag not set")
	}
	if p.Mime != "image/png" {
		t.Errorf("Mime = %q, want image/png", p.Mime)
	}
	if p.FileName != placeholderFileName {
		t.Errorf("FileName = %q, want %q", p.FileName, placeholderFileName)
	}
	if len(p.Data) == 0 {
		t.Error("placeholder has no payload")
	}
	// PNG magic bytes.
	if p.Data[0] != 0x89 || string(p.Data[1:4]) != "PNG" {
		t.Error("placeholder payload is not a PNG")
	}

	if again := rr.placeholder(); again != p {
		t.Error("repeated placeholders should intern to one resource")
	}
	if rr.index.Len() != 1 {
		t.Errorf("index holds %d resources, want 1", rr.index.Len())
	}
}

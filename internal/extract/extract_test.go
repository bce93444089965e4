package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExtract_MissingFile(t *testing.T) {
	_, err := NewPDFExtractor().Extract(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))
	if err == nil {
		t.Fatal("Extract() succeeded on missing file")
	}
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("error type = %T, want *ConversionError", err)
	}
}

func TestExtract_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "11849_broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf at all"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	_, err := NewPDFExtractor().Extract(context.Background(), path)
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("error = %v, want *ConversionError", err)
	}
	if convErr.Path != path {
		t.Errorf("Path = %q, want %q", convErr.Path, path)
	}
}

func TestCleanPageText(t *testing.T) {
	if got := cleanPageText(" body text \n"); got != "body text" {
		t.Errorf("cleanPageText = %q", got)
	}
}

func TestFileSHA256(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.bin")
	if err := os.WriteFile(path, []byte("abc"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	got, err := fileSHA256(path)
	if err != nil {
		t.Fatalf("fileSHA256() error = %v", err)
	}
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("fileSHA256 = %q, want %q", got, want)
	}
}

package ocr

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ManfrediC/sps-review/internal/config"
)

// shellConverter builds a converter whose "OCR tool" is a shell one-liner;
// the source and output paths arrive as positional parameters.
func shellConverter(t *testing.T, script string, timeout time.Duration) *CommandConverter {
	t.Helper()
	cfg := config.OCRConfig{
		Tool:        "sh",
		ExtraArgs:   []string{"-c", script},
		Timeout:     config.Duration(timeout),
		RatePerSec:  1000,
		Concurrency: 2,
	}
	return NewCommandConverter(cfg, t.TempDir())
}

func TestConvert_Success(t *testing.T) {
	c := shellConverter(t, `echo ocr > "$1"`, time.Minute)
	out, err := c.Convert(context.Background(), "/data/pdf/11849_source.pdf")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if filepath.Base(out) != "11849_source.ocr.pdf" {
		t.Errorf("augmented path = %q", out)
	}
}

func TestConvert_ToolFailure(t *testing.T) {
	c := shellConverter(t, `echo boom >&2; exit 3`, time.Minute)
	_, err := c.Convert(context.Background(), "/data/pdf/11849_source.pdf")
	if err == nil {
		t.Fatal("Convert() succeeded, want tool error")
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("error type = %T, want *ToolError", err)
	}
	if !strings.Contains(toolErr.Stderr, "boom") {
		t.Errorf("Stderr = %q, want to contain boom", toolErr.Stderr)
	}
	if IsTimeout(err) {
		t.Error("tool failure misreported as timeout")
	}
}

func TestConvert_Timeout(t *testing.T) {
	c := shellConverter(t, `sleep 5`, 50*time.Millisecond)
	start := time.Now()
	_, err := c.Convert(context.Background(), "/data/pdf/11849_source.pdf")
	if !IsTimeout(err) {
		t.Fatalf("error = %v, want timeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("subprocess not killed promptly, took %s", elapsed)
	}
}

func TestConvert_Disabled(t *testing.T) {
	c := NewCommandConverter(config.OCRConfig{}, t.TempDir())
	_, err := c.Convert(context.Background(), "source.pdf")
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("error = %v, want ErrDisabled", err)
	}
}

func TestConvert_CancelledContext(t *testing.T) {
	c := shellConverter(t, `sleep 5`, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Convert(ctx, "source.pdf"); err == nil {
		t.Error("Convert() succeeded with cancelled context")
	}
}

package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/ManfrediC/sps-review/internal/config"
)

// Converter produces an OCR-augmented copy of a source file. Implementations
// must be safe to invoke repeatedly for the same source across reruns.
type Converter interface {
	Convert(ctx context.Context, sourcePath string) (augmentedPath string, err error)
}

// CommandConverter runs an external OCR tool (ocrmypdf by default) as a
// subprocess. Invocations are rate limited and capped to a configured number
// of simultaneous subprocesses; each runs under a per-document timeout and is
// killed when the context is cancelled, so no orphan processes outlive a
// batch.
type CommandConverter struct {
	cfg     config.OCRConfig
	outDir  string
	limiter *rate.Limiter
	slots   *semaphore.Weighted
}

// NewCommandConverter returns a converter writing augmented files to outDir.
func NewCommandConverter(cfg config.OCRConfig, outDir string) *CommandConverter {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 1
	}
	return &CommandConverter{
		cfg:     cfg,
		outDir:  outDir,
		limiter: rate.NewLimiter(rate.Limit(perSec), 1),
		slots:   semaphore.NewWeighted(int64(concurrency)),
	}
}

// Convert implements Converter.
func (c *CommandConverter) Convert(ctx context.Context, sourcePath string) (string, error) {
	if c.cfg.Tool == "" {
		return "", ErrDisabled
	}
	if err := c.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquiring ocr slot: %w", err)
	}
	defer c.slots.Release(1)
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for ocr rate limit: %w", err)
	}

	if err := os.MkdirAll(c.outDir, 0755); err != nil {
		return "", fmt.Errorf("creating ocr output directory: %w", err)
	}
	outPath := filepath.Join(c.outDir, ocrFilename(sourcePath))

	runCtx := ctx
	timeout := time.Duration(c.cfg.Timeout)
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	args := make([]string, 0, len(c.cfg.ExtraArgs)+4)
	if c.cfg.Language != "" {
		args = append(args, "--language", c.cfg.Language)
	}
	args = append(args, c.cfg.ExtraArgs...)
	args = append(args, sourcePath, outPath)

	cmd := exec.CommandContext(runCtx, c.cfg.Tool, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return "", &ToolError{
			Tool:   c.cfg.Tool,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return outPath, nil
}

// ocrFilename derives the augmented file name from the source name, keeping
// the extension so downstream extractors recognize the format.
func ocrFilename(sourcePath string) string {
	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + ".ocr" + ext
}

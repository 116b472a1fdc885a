// Package command runs the tesseract binary as an OCR engine.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	defaultBinary = "tesseract"
	waitDelay     = 2 * time.Second
)

type Engine struct {
	Path string
}

// Resolve locates the binary: an explicit path (or name) from config, else
// tesseract on PATH.
func Resolve(configured string) (string, error) {
	name := strings.TrimSpace(configured)
	if name == "" {
		name = defaultBinary
	}
	p, err := exec.LookPath(name)
	if err != nil {
		if configured == "" {
			return "", fmt.Errorf("tesseract not found on PATH; set TESSERACT_CMD: %w", err)
		}
		return "", fmt.Errorf("tesseract binary %q not usable: %w", configured, err)
	}
	return p, nil
}

func New(configured string) (*Engine, error) {
	p, err := Resolve(configured)
	if err != nil {
		return nil, err
	}
	return &Engine{Path: p}, nil
}

func (e *Engine) Name() string { return "tesseract-cmd" }

// Recognize pipes the image through `tesseract stdin stdout`.
func (e *Engine) Recognize(ctx context.Context, png []byte) (string, error) {
	cmd := exec.CommandContext(ctx, e.Path, "stdin", "stdout")
	cmd.Stdin = bytes.NewReader(png)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("tesseract: %w", ctxErr)
		}
		msg := strings.TrimSpace(stderr.String())
		var ee *exec.ExitError
		if errors.As(err, &ee) && msg != "" {
			return "", fmt.Errorf("tesseract exited %d: %s", ee.ExitCode(), msg)
		}
		return "", fmt.Errorf("failed to run tesseract: %w", err)
	}
	return stdout.String(), nil
}

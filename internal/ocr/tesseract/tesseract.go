// Package tesseract runs the tesseract CLI as an OCR provider.
package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"stockrecon/internal/config"
	"stockrecon/internal/domain"
	"stockrecon/internal/ocr"
	"stockrecon/internal/port"
)

// ProviderName is the registry name of this provider.
const ProviderName = "tesseract"

// Extractor implements port.TextExtractor by piping the image through tesseract.
type Extractor struct {
	binary  string
	lang    string
	oem     int
	psm     int
	timeout time.Duration
}

// New creates an Extractor. Empty settings default to "tesseract -l spa --oem 3 --psm 6".
func New(cfg *config.OCRProviderConfig) *Extractor {
	e := &Extractor{
		binary:  cfg.Binary,
		lang:    cfg.Language,
		oem:     cfg.EngineMode,
		psm:     cfg.PageSegMode,
		timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
	}
	if e.binary == "" {
		e.binary = "tesseract"
	}
	if e.lang == "" {
		e.lang = "spa"
	}
	if e.oem == 0 {
		e.oem = 3
	}
	if e.psm == 0 {
		e.psm = 6
	}
	if e.timeout == 0 {
		e.timeout = 60 * time.Second
	}
	return e
}

// Factory adapts New to ocr.ProviderFactory.
func Factory(cfg *config.OCRProviderConfig) (port.TextExtractor, error) {
	return New(cfg), nil
}

// Args returns the command-line arguments used for an invocation.
func (e *Extractor) Args() []string {
	return []string{
		"stdin", "stdout",
		"-l", e.lang,
		"--oem", strconv.Itoa(e.oem),
		"--psm", strconv.Itoa(e.psm),
	}
}

func (e *Extractor) ExtractText(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.binary, e.Args()...)
	cmd.Stdin = bytes.NewReader(input.Image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ocr.NewMissingError(ProviderName, fmt.Errorf("%w: %s not installed", domain.ErrOCRUnavailable, e.binary))
		}
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "Error in pixReadMem") || strings.Contains(msg, "Unsupported image type") {
			return nil, ocr.NewRejectedError(ProviderName, fmt.Errorf("image not readable: %s", msg))
		}
		return nil, fmt.Errorf("running %s: %w: %s", e.binary, err, msg)
	}

	return &port.ExtractOutput{Text: stdout.String(), Provider: ProviderName}, nil
}

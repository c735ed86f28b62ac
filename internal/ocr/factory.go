// Package ocr turns invoice images into text through pluggable providers.
package ocr

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"stockrecon/internal/config"
	"stockrecon/internal/port"
)

// ProviderFactory creates a TextExtractor from a provider config.
type ProviderFactory func(cfg *config.OCRProviderConfig) (port.TextExtractor, error)

var (
	mu        sync.RWMutex
	providers = map[string]ProviderFactory{}
)

// RegisterProvider registers an OCR provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	mu.Lock()
	defer mu.Unlock()
	providers[name] = factory
}

// NewExtractor creates a TextExtractor using the factory registered for cfg.Provider.
func NewExtractor(cfg *config.OCRProviderConfig) (port.TextExtractor, error) {
	mu.RLock()
	factory, ok := providers[cfg.Provider]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown OCR provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the configured extractor chain: the primary provider, a fallback to
// the secondary when one is configured, and image preprocessing in front of both.
func NewFromConfig(cfg *config.OCRConfig, log logrus.FieldLogger) (port.TextExtractor, error) {
	primary, err := NewExtractor(&cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("creating primary OCR provider: %w", err)
	}

	var extractor port.TextExtractor = primary
	if sc := cfg.SecondaryConfig(); sc != nil {
		secondary, err := NewExtractor(sc)
		if err != nil {
			return nil, fmt.Errorf("creating secondary OCR provider: %w", err)
		}
		extractor = NewFallbackExtractor(
			[]port.TextExtractor{primary, secondary},
			[]string{cfg.Primary.Provider, sc.Provider},
			log,
		)
	}

	if cfg.Preprocess {
		extractor = NewPreprocessing(extractor)
	}
	return extractor, nil
}

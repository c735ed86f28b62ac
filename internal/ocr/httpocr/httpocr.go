// Package httpocr calls a remote OCR service over HTTP.
//
// The service receives {"image": <base64>, "content_type": ..., "language": ...} and
// answers {"text": ...}.
package httpocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stockrecon/internal/config"
	"stockrecon/internal/ocr"
	"stockrecon/internal/port"
)

// ProviderName is the registry name of this provider.
const ProviderName = "http"

// Extractor implements port.TextExtractor against an HTTP OCR endpoint.
type Extractor struct {
	endpoint string
	apiKey   string
	language string
	client   *http.Client
}

// New creates an Extractor from a provider config.
func New(cfg *config.OCRProviderConfig) (*Extractor, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("http OCR provider requires an endpoint")
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	lang := cfg.Language
	if lang == "" {
		lang = "spa"
	}
	return &Extractor{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		language: lang,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Factory adapts New to ocr.ProviderFactory.
func Factory(cfg *config.OCRProviderConfig) (port.TextExtractor, error) {
	return New(cfg)
}

type request struct {
	Image       string `json:"image"`
	ContentType string `json:"content_type"`
	Language    string `json:"language"`
}

type response struct {
	Text string `json:"text"`
}

func (e *Extractor) ExtractText(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	bodyBytes, err := json.Marshal(request{
		Image:       base64.StdEncoding.EncodeToString(input.Image),
		ContentType: input.ContentType,
		Language:    e.language,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling OCR service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("OCR service error (status %d): %s", resp.StatusCode, string(respBody))
		switch ocr.ClassifyStatus(resp.StatusCode) {
		case ocr.FailureRateLimited:
			retryAfter := ocr.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, ocr.NewRateLimitError(ProviderName, baseErr, retryAfter)
		case ocr.FailureMissing:
			return nil, ocr.NewMissingError(ProviderName, baseErr)
		case ocr.FailureRejected:
			return nil, ocr.NewRejectedError(ProviderName, baseErr)
		default:
			return nil, baseErr
		}
	}

	var parsed response
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	return &port.ExtractOutput{Text: parsed.Text, Provider: ProviderName}, nil
}

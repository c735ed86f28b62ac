package port

import "context"

// ExtractInput carries an invoice image for OCR.
type ExtractInput struct {
	Image       []byte
	ContentType string
}

// ExtractOutput is the raw text recognised in an invoice image.
type ExtractOutput struct {
	Text     string
	Provider string
}

// TextExtractor abstracts the OCR service that turns an invoice image into text.
type TextExtractor interface {
	ExtractText(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}

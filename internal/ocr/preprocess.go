package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"stockrecon/internal/port"
)

// Binarize converts an encoded JPEG or PNG to a black-and-white PNG using a grayscale
// pass and an Otsu threshold.
func Binarize(data []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	gray := imaging.Grayscale(src)
	threshold := otsuThreshold(gray)

	b := gray.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			// Grayscale leaves R=G=B.
			if gray.Pix[gray.PixOffset(x, y)] > threshold {
				out.Pix[out.PixOffset(x, y)] = 255
			}
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}

// otsuThreshold picks the level that maximises between-class variance.
func otsuThreshold(img *image.NRGBA) uint8 {
	var hist [256]int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[img.Pix[img.PixOffset(x, y)]]++
		}
	}

	total := b.Dx() * b.Dy()
	if total == 0 {
		return 127
	}
	var sum float64
	for i, n := range hist {
		sum += float64(i * n)
	}

	var sumB, best float64
	var wB int
	var threshold uint8
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(t)
		}
	}
	return threshold
}

// Preprocessing binarizes images before handing them to the wrapped extractor.
type Preprocessing struct {
	next port.TextExtractor
}

// NewPreprocessing wraps next.
func NewPreprocessing(next port.TextExtractor) *Preprocessing {
	return &Preprocessing{next: next}
}

func (p *Preprocessing) ExtractText(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	bw, err := Binarize(input.Image)
	if err != nil {
		return nil, fmt.Errorf("preprocessing invoice image: %w", err)
	}
	return p.next.ExtractText(ctx, port.ExtractInput{Image: bw, ContentType: "image/png"})
}

package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"stockrecon/internal/port"
)

// pause keeps a provider out of rotation until resetAt.
type pause struct {
	mu      sync.RWMutex
	resetAt time.Time
	class   FailureClass
}

func (p *pause) active(now time.Time) (time.Time, FailureClass, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.resetAt, p.class, now.Before(p.resetAt)
}

func (p *pause) set(until time.Time, class FailureClass) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetAt = until
	p.class = class
}

// FallbackExtractor tries OCR providers in order. It implements port.TextExtractor.
//
// A rate-limited provider sits out until its Retry-After passes and a missing one sits out
// for a few minutes. A provider that returns only whitespace hands the image to the next
// one; if every provider reads nothing, the first empty reading is returned.
type FallbackExtractor struct {
	extractors []port.TextExtractor
	pauses     []*pause
	names      []string
	log        logrus.FieldLogger
	now        func() time.Time
}

// NewFallbackExtractor creates a FallbackExtractor from an ordered list of extractors and their names.
func NewFallbackExtractor(extractors []port.TextExtractor, names []string, log logrus.FieldLogger) *FallbackExtractor {
	pauses := make([]*pause, len(extractors))
	for i := range pauses {
		pauses[i] = &pause{}
	}
	return &FallbackExtractor{
		extractors: extractors,
		pauses:     pauses,
		names:      names,
		log:        log.WithField("component", "ocr_fallback"),
		now:        time.Now,
	}
}

func (f *FallbackExtractor) ExtractText(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	now := f.now()
	var (
		blank      *port.ExtractOutput
		errs       []error
		tried      bool
		onlyPaused = true
		soonest    time.Time
		soonestWhy FailureClass
	)
	noteOutage := func(until time.Time, class FailureClass) {
		if soonest.IsZero() || until.Before(soonest) {
			soonest, soonestWhy = until, class
		}
	}

	for i, e := range f.extractors {
		plog := f.log.WithField("provider", f.names[i])
		if until, class, paused := f.pauses[i].active(now); paused {
			plog.WithFields(logrus.Fields{"until": until.Format(time.RFC3339), "reason": class.String()}).Info("skipping paused OCR provider")
			noteOutage(until, class)
			continue
		}
		tried = true

		out, err := e.ExtractText(ctx, input)
		if err == nil {
			if strings.TrimSpace(out.Text) != "" {
				return out, nil
			}
			plog.Warn("OCR provider read no text")
			if blank == nil {
				blank = out
			}
			onlyPaused = false
			continue
		}
		if isCanceled(ctx, err) {
			return nil, err
		}

		class := ClassOf(err)
		plog.WithError(err).WithField("class", class.String()).Warn("OCR provider failed")
		errs = append(errs, err)

		switch class {
		case FailureRateLimited, FailureMissing:
			var pErr *ProviderError
			wait := missingCooldown
			if errors.As(err, &pErr) && pErr.RetryAfter > 0 {
				wait = pErr.RetryAfter
			}
			until := now.Add(wait)
			f.pauses[i].set(until, class)
			noteOutage(until, class)
		default:
			onlyPaused = false
		}
	}

	if blank != nil {
		return blank, nil
	}
	if !tried || onlyPaused {
		retryAfter := soonest.Sub(f.now())
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		cause := errors.New("every OCR provider is paused")
		if len(errs) > 0 {
			cause = errors.Join(errs...)
		}
		return nil, &ProviderError{
			Provider:   "all",
			Class:      soonestWhy,
			RetryAfter: retryAfter.Round(time.Second),
			Err:        cause,
		}
	}
	return nil, fmt.Errorf("all OCR providers failed: %w", errors.Join(errs...))
}

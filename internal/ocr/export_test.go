package ocr

import "time"

// SetClock replaces the clock used to time provider pauses.
func (f *FallbackExtractor) SetClock(now func() time.Time) { f.now = now }

package order

import "regexp"

// Order number patterns, tried in order: "N° 43564893", "No 12345", then the looser
// "N2 43564893" where OCR turned the degree sign into a digit.
var orderNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bN[°oº*]?\s*(\d{4,})\b`),
	regexp.MustCompile(`(?i)\bN[°oº*]?\s*\d*\s*(\d{4,})\b`),
}

// ExtractOrderNumber finds the purchase-order number printed on an invoice.
func ExtractOrderNumber(text string) (string, bool) {
	for _, re := range orderNumberPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

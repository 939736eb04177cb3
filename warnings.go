package pdfblocks

import (
	"fmt"
	"strings"
)

// Warning reports a page that could not be extracted. The page is left out
// of the document; the other pages are unaffected.
type Warning struct {
	Page    int
	Message string
}

// String returns the warning as "page N: message"
func (w Warning) String() string {
	if w.Page <= 0 {
		return w.Message
	}
	return fmt.Sprintf("page %d: %s", w.Page, w.Message)
}

// FormatWarnings joins warnings into a single line
func FormatWarnings(warnings []Warning) string {
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}

package pdfblocks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON extracts the document and writes its block tree to w as
// indented JSON. This is a terminal operation that closes the underlying
// reader.
//
// Example:
//
//	warnings, err := pdfblocks.Open("document.pdf").WriteJSON(ctx, os.Stdout)
func (e *Extractor) WriteJSON(ctx context.Context, w io.Writer) ([]Warning, error) {
	doc, warnings, err := e.Document(ctx)
	if err != nil {
		return warnings, err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return warnings, fmt.Errorf("failed to encode document: %w", err)
	}
	return warnings, nil
}

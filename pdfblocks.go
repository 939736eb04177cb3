// Package pdfblocks provides a fluent API for decomposing PDF pages into a
// tree of consolidated text and image blocks.
//
// Basic usage:
//
//	doc, warnings, err := pdfblocks.Open("document.pdf").Document(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pdfblocks.FormatWarnings(warnings))
//	}
//
// With options:
//
//	doc, _, err := pdfblocks.Open("report.pdf").
//	    PageRange(1, 10).
//	    Concurrency(4).
//	    SkipImages().
//	    Document(ctx)
//
// Runs of text are merged into words and lines, lines into paragraphs, and
// the result is annotated with relations between nearby blocks. The merge
// pipeline lives in the layout package; the reader and builder packages
// are available for lower-level use.
package pdfblocks

import (
	"github.com/tsawler/pdfblocks/reader"
)

// Open returns an Extractor for the PDF file at filename. The file is opened
// by the first operation that needs it and closed by terminal operations
// such as Document, or explicitly with Close.
//
// Example:
//
//	doc, warnings, err := pdfblocks.Open("document.pdf").Document(ctx)
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromReader creates an Extractor from an already opened document. The
// caller is responsible for closing it.
//
// Example:
//
//	doc, err := reader.Open("document.pdf")
//	if err != nil {
//	    // handle error
//	}
//	defer doc.Close()
//	tree, warnings, err := pdfblocks.FromReader(doc).Document(ctx)
func FromReader(doc *reader.Document) *Extractor {
	return &Extractor{
		source:  doc,
		opened:  true,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := pdfblocks.Must(pdfblocks.Open("document.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustIgnoreWarnings wraps a call to Document or Text, panics if the error
// is non-nil and discards warnings.
//
// Example:
//
//	text := pdfblocks.MustIgnoreWarnings(pdfblocks.Open("document.pdf").Text(ctx))
func MustIgnoreWarnings[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// Package reader walks the content streams of PDF pages.
//
// Parsing of the file structure is done by github.com/ledongthuc/pdf; image
// XObject payloads are read with pdfcpu. This package interprets the page
// operators and reports what is painted, in user space mapped to page
// space (origin top-left, y down).
//
// # Opening Documents
//
//	doc, err := reader.Open("document.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer doc.Close()
//
// Or use [NewDocument] with any io.ReaderAt.
//
// # Walking Pages
//
// [Document.Walk] drives a [Listener] with one event per text object
// boundary, shown string and painted image:
//
//	err := doc.Walk(ctx, 1, listener)
//
// Each [model.GlyphRun] carries its oriented area, font program, effective
// point size, horizontal scaling, baseline angle and the marked-content id
// and tags in effect. Form XObjects are followed with their own matrix and
// resources.
//
// # Graphics State
//
// [GraphicsState] tracks the CTM and the text state (font, spacing,
// scaling, leading, rise, text and line matrices) with a q/Q stack.
//
// # Thread Safety
//
// A Document serializes its page walks. Extract pages concurrently by
// sharing one Document; the layout work done by listeners runs outside
// the lock once Walk returns.
package reader

// Package font measures and registers the fonts used on a document's pages.
//
// # Registry
//
// A [Registry] hands out one [model.FontMeta] per font name and size. Page
// tasks register fonts concurrently; the first task to see a font measures
// it and every later lookup returns the same UID:
//
//	reg := font.NewRegistry()
//	meta, err := reg.AddOrGet(12, program)
//	same, err := reg.Get(meta.UID)
//
// Strategies depend on the read-only [Provider] interface.
//
// # Measurement
//
// [Measure] estimates the narrowest and widest glyph from a fixed sample
// ("A G H i 0 6 Q P p") and the line size from the font's ascent and
// descent.
//
// # Standard Fonts
//
// Widths and vertical metrics for the standard 14 fonts are available
// through [StandardWidth] and [StandardVertical] for PDFs that rely on them
// without embedding metrics.
package font

package reader

import (
	"github.com/ledongthuc/pdf"
	"github.com/tsawler/pdfblocks/font"
)

// Fallbacks in glyph space (1/1000 em)
const (
	defaultGlyphWidth = 500
	defaultSpaceWidth = 250
)

// fontProgram adapts a PDF font dictionary to model.FontProgram and
// measures the codes of shown strings
type fontProgram struct {
	name      string
	font      pdf.Font
	composite bool

	// standard is set for the standard 14 fonts, whose widths are built in
	standard bool

	// Simple fonts
	firstChar int
	widths    []float64

	// Composite fonts
	cidWidths    map[int]float64
	defaultWidth float64

	missingWidth float64
	ascent       float64
	descent      float64
	encoder      pdf.TextEncoding
}

// newFontProgram reads the metrics of the font dictionary v. resourceName
// names the font when the dictionary carries no BaseFont.
func newFontProgram(v pdf.Value, resourceName string) *fontProgram {
	f := &fontProgram{
		font:         pdf.Font{V: v},
		defaultWidth: 1000,
	}

	f.name = v.Key("BaseFont").Name()
	if f.name == "" {
		f.name = resourceName
	}
	f.standard = font.IsStandardFont(f.name)

	descriptor := v.Key("FontDescriptor")
	if v.Key("Subtype").Name() == "Type0" {
		f.composite = true
		descendant := v.Key("DescendantFonts").Index(0)
		if dw := descendant.Key("DW"); dw.Kind() == pdf.Integer || dw.Kind() == pdf.Real {
			f.defaultWidth = dw.Float64()
		}
		f.cidWidths = parseCIDWidths(descendant.Key("W"))
		descriptor = descendant.Key("FontDescriptor")
	} else {
		f.firstChar = f.font.FirstChar()
		f.widths = f.font.Widths()
	}

	f.missingWidth = descriptor.Key("MissingWidth").Float64()
	f.ascent = descriptor.Key("Ascent").Float64()
	f.descent = descriptor.Key("Descent").Float64()
	if f.ascent == 0 && f.descent == 0 {
		f.ascent, f.descent = font.StandardVertical(f.name)
	}

	f.encoder = f.font.Encoder()
	return f
}

// standardFontProgram is used when a text run names no usable font
func standardFontProgram(name string) *fontProgram {
	f := &fontProgram{name: name, defaultWidth: 1000, standard: font.IsStandardFont(name)}
	f.ascent, f.descent = font.StandardVertical(name)
	return f
}

// parseCIDWidths reads a W array: "c [w1 w2 ...]" or "cFirst cLast w"
func parseCIDWidths(w pdf.Value) map[int]float64 {
	out := make(map[int]float64)
	for i := 0; i < w.Len(); {
		first := int(w.Index(i).Int64())
		if i+1 >= w.Len() {
			break
		}
		next := w.Index(i + 1)
		if next.Kind() == pdf.Array {
			for j := 0; j < next.Len(); j++ {
				out[first+j] = next.Index(j).Float64()
			}
			i += 2
			continue
		}
		if i+2 >= w.Len() {
			break
		}
		last := int(next.Int64())
		width := w.Index(i + 2).Float64()
		for c := first; c <= last && c-first < 65536; c++ {
			out[c] = width
		}
		i += 3
	}
	return out
}

// Name implements model.FontProgram
func (f *fontProgram) Name() string {
	return f.name
}

// GlyphWidth implements model.FontProgram. Simple fonts are assumed to map
// ASCII runes to the same codes.
func (f *fontProgram) GlyphWidth(r rune) float64 {
	if !f.composite && r < 256 {
		if w := f.simpleWidth(int(r)); w > 0 {
			return w
		}
	}
	if w, ok := f.standardWidth(r); ok {
		return w
	}
	if f.composite {
		return f.defaultWidth
	}
	return defaultGlyphWidth
}

// Ascent implements model.FontProgram
func (f *fontProgram) Ascent() float64 {
	return f.ascent
}

// Descent implements model.FontProgram
func (f *fontProgram) Descent() float64 {
	return f.descent
}

// codes splits a shown string into character codes
func (f *fontProgram) codes(raw string) []int {
	if f.composite {
		out := make([]int, 0, len(raw)/2)
		for i := 0; i+1 < len(raw); i += 2 {
			out = append(out, int(raw[i])<<8|int(raw[i+1]))
		}
		return out
	}
	out := make([]int, len(raw))
	for i := 0; i < len(raw); i++ {
		out[i] = int(raw[i])
	}
	return out
}

// width returns the advance of code in glyph space
func (f *fontProgram) width(code int) float64 {
	if f.composite {
		if w, ok := f.cidWidths[code]; ok {
			return w
		}
		return f.defaultWidth
	}
	if w := f.simpleWidth(code); w > 0 {
		return w
	}
	if w, ok := f.standardWidth(rune(code)); ok {
		return w
	}
	if f.missingWidth > 0 {
		return f.missingWidth
	}
	return defaultGlyphWidth
}

func (f *fontProgram) standardWidth(r rune) (float64, bool) {
	if !f.standard {
		return 0, false
	}
	return font.StandardWidth(f.name, r)
}

func (f *fontProgram) simpleWidth(code int) float64 {
	i := code - f.firstChar
	if i < 0 || i >= len(f.widths) {
		return 0
	}
	return f.widths[i]
}

// isWordSpace reports whether word spacing applies to code: only the
// single-byte code 32
func (f *fontProgram) isWordSpace(code int) bool {
	return !f.composite && code == 32
}

// spaceWidth returns the advance of a space in glyph space
func (f *fontProgram) spaceWidth() float64 {
	if f.composite {
		if w, ok := f.cidWidths[32]; ok && w > 0 {
			return w
		}
	} else if w := f.simpleWidth(32); w > 0 {
		return w
	}
	if w, ok := f.standardWidth(' '); ok {
		return w
	}
	return defaultSpaceWidth
}

// decode converts a shown string to text
func (f *fontProgram) decode(raw string) string {
	if f.encoder == nil {
		return raw
	}
	return f.encoder.Decode(raw)
}

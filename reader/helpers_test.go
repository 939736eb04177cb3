package reader

import (
	"bytes"
	"fmt"

	"github.com/tsawler/pdfblocks/model"
)

// buildPDF writes objects 1..n with a valid xref table. Object 1 must be
// the catalog.
func buildPDF(trailerExtra string, objects ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d %05d n \n", off, 0)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R %s>>\n", len(objects)+1, trailerExtra)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

func stream(dict, data string) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

// samplePDF is a single 612x792 page with two text objects and an image
func samplePDF(content string) []byte {
	pixels := string([]byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 255, 255, 255,
	})
	return buildPDF("/Info 7 0 R ",
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 612 792] >>",
		"<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 4 0 R >> /XObject << /Im1 6 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		stream("", content),
		stream("/Type /XObject /Subtype /Image /Width 2 /Height 2 /ColorSpace /DeviceRGB /BitsPerComponent 8", pixels),
		"<< /Title (Sample) /Author (Ann Author) >>",
	)
}

const sampleContent = `BT /F1 12 Tf 72 700 Td (Hello) Tj ET
q 100 0 0 50 200 300 cm /Im1 Do Q
/P << /MCID 3 /Lang (en-US) >> BDC
BT /F1 10 Tf 72 600 Td [(Wor) -200 (ld)] TJ ET
EMC`

// recorder is a Listener that keeps every event
type recorder struct {
	events []string
	runs   []model.GlyphRun
	images []model.ImagePlacement
}

func (r *recorder) BeginText() { r.events = append(r.events, "BT") }
func (r *recorder) EndText()   { r.events = append(r.events, "ET") }

func (r *recorder) Glyph(run model.GlyphRun) {
	r.events = append(r.events, "glyph:"+run.Text)
	r.runs = append(r.runs, run)
}

func (r *recorder) Image(p model.ImagePlacement) {
	r.events = append(r.events, "image:"+p.Name)
	r.images = append(r.images, p)
}

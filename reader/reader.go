package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
	"github.com/tsawler/pdfblocks/model"
)

var (
	// ErrPageOutOfRange is returned for page numbers outside 1..PageCount
	ErrPageOutOfRange = errors.New("page number out of range")

	// ErrMalformedContent is returned when a page or its content streams
	// cannot be interpreted
	ErrMalformedContent = errors.New("malformed page content")
)

var versionPattern = regexp.MustCompile(`^%PDF-(\d+)\.(\d+)`)

// PDFVersion represents a PDF version
type PDFVersion struct {
	Major int
	Minor int
}

// String returns the version as a string (e.g., "1.7")
func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Config holds options for reading a document
type Config struct {
	// LoadImages resolves image XObject payloads. Placements are reported
	// either way.
	LoadImages bool

	Logger logrus.FieldLogger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		LoadImages: true,
	}
}

// Info holds the document information dictionary
type Info struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
}

// PageGeometry describes the user space of a page
type PageGeometry struct {
	Number   int
	MediaBox model.Bounds
	Rotation int
}

// Width returns the media box width
func (g PageGeometry) Width() float64 { return g.MediaBox.Width() }

// Height returns the media box height
func (g PageGeometry) Height() float64 { return g.MediaBox.Height() }

// Document is an open PDF file. Page walks are serialized; a Document may be
// shared between goroutines.
type Document struct {
	name    string
	closer  io.Closer
	pdf     *pdf.Reader
	version PDFVersion
	config  Config
	images  *imageIndex

	mu sync.Mutex
}

// Open opens a PDF file with the default configuration
func Open(path string) (*Document, error) {
	return OpenWithConfig(path, DefaultConfig())
}

// OpenWithConfig opens a PDF file
func OpenWithConfig(path string, config Config) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	doc, err := NewDocument(file, info.Size(), config)
	if err != nil {
		file.Close()
		return nil, err
	}
	doc.name = filepath.Base(path)
	doc.closer = file
	return doc, nil
}

// NewDocument reads a PDF from r. The caller keeps ownership of r, which
// must stay readable until the document is no longer used.
func NewDocument(r io.ReaderAt, size int64, config Config) (doc *Document, err error) {
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}

	version, err := parseHeader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			doc, err = nil, fmt.Errorf("failed to read PDF: %v", p)
		}
	}()

	parsed, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	doc = &Document{
		pdf:     parsed,
		version: version,
		config:  config,
	}
	if config.LoadImages {
		doc.images = newImageIndex(func() io.ReadSeeker {
			return io.NewSectionReader(r, 0, size)
		}, config.Logger)
	}
	return doc, nil
}

// parseHeader reads the version from the %PDF-x.y header
func parseHeader(r io.ReaderAt) (PDFVersion, error) {
	header := make([]byte, 16)
	n, err := r.ReadAt(header, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return PDFVersion{}, fmt.Errorf("failed to read header: %w", err)
	}
	header = header[:n]

	matches := versionPattern.FindSubmatch(header)
	if matches == nil {
		return PDFVersion{}, fmt.Errorf("invalid PDF header: %q", bytes.TrimSpace(header))
	}

	major, _ := strconv.Atoi(string(matches[1]))
	minor, _ := strconv.Atoi(string(matches[2]))
	return PDFVersion{Major: major, Minor: minor}, nil
}

// Close releases the underlying file when the document was opened by path
func (d *Document) Close() error {
	if d.closer != nil {
		err := d.closer.Close()
		d.closer = nil
		return err
	}
	return nil
}

// Name returns the base name of the file, "" for documents read from a
// reader
func (d *Document) Name() string {
	return d.name
}

// Version returns the header version
func (d *Document) Version() PDFVersion {
	return d.version
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pdf.NumPage()
}

// Info returns the document information dictionary. Missing entries are
// empty.
func (d *Document) Info() Info {
	d.mu.Lock()
	defer d.mu.Unlock()

	info := d.pdf.Trailer().Key("Info")
	return Info{
		Title:    info.Key("Title").Text(),
		Author:   info.Key("Author").Text(),
		Subject:  info.Key("Subject").Text(),
		Keywords: info.Key("Keywords").Text(),
		Creator:  info.Key("Creator").Text(),
		Producer: info.Key("Producer").Text(),
	}
}

func (d *Document) page(n int) (pdf.Page, error) {
	if n < 1 || n > d.pdf.NumPage() {
		return pdf.Page{}, fmt.Errorf("page %d: %w", n, ErrPageOutOfRange)
	}
	page := d.pdf.Page(n)
	if page.V.IsNull() {
		return pdf.Page{}, fmt.Errorf("page %d: %w", n, ErrPageOutOfRange)
	}
	return page, nil
}

// inherited looks key up on the page and then on its ancestors
func inherited(page pdf.Value, key string) pdf.Value {
	v := page
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		if value := v.Key(key); !value.IsNull() {
			return value
		}
		v = v.Key("Parent")
	}
	return pdf.Value{}
}

func geometryOf(n int, page pdf.Value) PageGeometry {
	box := model.Bounds{MinX: 0, MinY: 0, MaxX: 612, MaxY: 792}
	if mb := inherited(page, "MediaBox"); mb.Kind() == pdf.Array && mb.Len() == 4 {
		x0, y0 := mb.Index(0).Float64(), mb.Index(1).Float64()
		x1, y1 := mb.Index(2).Float64(), mb.Index(3).Float64()
		if x0 > x1 {
			x0, x1 = x1, x0
		}
		if y0 > y1 {
			y0, y1 = y1, y0
		}
		if x1 > x0 && y1 > y0 {
			box = model.Bounds{MinX: x0, MinY: y0, MaxX: x1, MaxY: y1}
		}
	}

	rotation := int(inherited(page, "Rotate").Int64()) % 360
	if rotation < 0 {
		rotation += 360
	}
	return PageGeometry{Number: n, MediaBox: box, Rotation: rotation - rotation%90}
}

// Page returns the geometry of page n (1-based)
func (d *Document) Page(n int) (geometry PageGeometry, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("page %d: %w: %v", n, ErrMalformedContent, p)
		}
	}()

	page, err := d.page(n)
	if err != nil {
		return PageGeometry{}, err
	}
	return geometryOf(n, page.V), nil
}

// Walk interprets the content of page n and reports its text runs and
// images to listener. Walk returns ctx.Err() when cancelled mid-page.
func (d *Document) Walk(ctx context.Context, n int, listener Listener) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			if a, ok := p.(abort); ok {
				err = a.err
				return
			}
			err = fmt.Errorf("page %d: %w: %v", n, ErrMalformedContent, p)
		}
	}()

	page, err := d.page(n)
	if err != nil {
		return err
	}

	w := newWalker(ctx, geometryOf(n, page.V), listener)
	if d.images != nil {
		w.images = func(name string) (*model.ImageResource, error) {
			return d.images.Lookup(n, name)
		}
	}

	w.walk(page.V.Key("Contents"), page.Resources())
	return nil
}

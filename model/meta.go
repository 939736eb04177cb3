package model

import "github.com/google/uuid"

// FontMeta describes a font/size pair used on at least one page.
// Glyph widths and line size are in points at Size.
type FontMeta struct {
	UID            uuid.UUID `json:"uid"`
	Name           string    `json:"name"`
	Size           float64   `json:"size"`
	MinGlyphWidth  float64   `json:"minGlyphWidth"`
	MaxGlyphWidth  float64   `json:"maxGlyphWidth"`
	LineSizePoints float64   `json:"lineSizePoints"`
}

// ImageMeta describes a distinct embedded image, identified by the hash of
// its bytes.
type ImageMeta struct {
	UID         uuid.UUID `json:"uid"`
	Extension   string    `json:"extension"`
	Type        string    `json:"type"`
	Hash        string    `json:"hash"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	EncodedData string    `json:"encodedData,omitempty"`
}

// FontProgram is the view of a font the extractor needs to measure text.
// Widths and vertical metrics are in glyph space (1/1000 em).
type FontProgram interface {
	Name() string
	GlyphWidth(r rune) float64
	Ascent() float64
	Descent() float64
}

// GlyphRun is one run of text shown with a single text state.
type GlyphRun struct {
	Text       string
	Font       FontProgram
	FontSize   float64
	PointValue float64
	Scale      float64
	Magnitude  float64
	SpaceWidth float64
	Area       Area
	TextBoxID  int // marked-content id, -1 when outside marked content
	Tags       []Tag
}

// ImageResource holds the bytes of an image XObject.
type ImageResource struct {
	Name     string
	Data     []byte
	FileType string
	Width    int
	Height   int
}

// ImagePlacement is an image painted on the page. Resource is nil when the
// payload could not be read; Err then says why.
type ImagePlacement struct {
	Name     string
	Resource *ImageResource
	Err      error
	Area     Area
	Tags     []Tag
}

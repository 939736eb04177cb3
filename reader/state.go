package reader

import (
	"errors"
	"math"

	"github.com/tsawler/pdfblocks/model"
)

// errStackUnderflow is returned by Restore without a matching Save
var errStackUnderflow = errors.New("graphics state stack underflow")

// GraphicsState is the part of the PDF graphics state that positions text
// and images
type GraphicsState struct {
	// Current Transformation Matrix
	CTM model.Matrix

	// Text state
	Text TextState

	// Graphics state stack (for q/Q operators)
	stack []GraphicsState
}

// TextState represents text-specific state
type TextState struct {
	// Font resource name and size (Tf)
	FontName string
	FontSize float64
	Font     *fontProgram

	CharSpacing float64
	WordSpacing float64

	// Horizontal scaling (percentage)
	HorizontalScaling float64

	// Leading (line spacing)
	Leading float64

	Rise float64

	// Text matrices
	TextMatrix     model.Matrix
	TextLineMatrix model.Matrix
}

// NewGraphicsState creates a new graphics state with default values
func NewGraphicsState() *GraphicsState {
	return &GraphicsState{
		CTM: model.Identity(),
		Text: TextState{
			FontSize:          12.0,
			HorizontalScaling: 100.0,
			TextMatrix:        model.Identity(),
			TextLineMatrix:    model.Identity(),
		},
	}
}

// Save pushes the current graphics state onto the stack (q operator)
func (gs *GraphicsState) Save() {
	gs.stack = append(gs.stack, GraphicsState{CTM: gs.CTM, Text: gs.Text})
}

// Restore pops a graphics state from the stack (Q operator)
func (gs *GraphicsState) Restore() error {
	if len(gs.stack) == 0 {
		return errStackUnderflow
	}

	saved := gs.stack[len(gs.stack)-1]
	gs.stack = gs.stack[:len(gs.stack)-1]

	gs.CTM = saved.CTM
	gs.Text = saved.Text
	return nil
}

// Depth returns the number of saved states
func (gs *GraphicsState) Depth() int {
	return len(gs.stack)
}

// Transform concatenates m to the CTM (cm operator)
func (gs *GraphicsState) Transform(m model.Matrix) {
	gs.CTM = m.Multiply(gs.CTM)
}

// SetFont sets the current font (Tf operator)
func (gs *GraphicsState) SetFont(name string, size float64, font *fontProgram) {
	gs.Text.FontName = name
	gs.Text.FontSize = size
	gs.Text.Font = font
}

// BeginText resets the text matrices (BT operator)
func (gs *GraphicsState) BeginText() {
	gs.Text.TextMatrix = model.Identity()
	gs.Text.TextLineMatrix = model.Identity()
}

// SetTextMatrix sets the text matrix (Tm operator)
func (gs *GraphicsState) SetTextMatrix(m model.Matrix) {
	gs.Text.TextMatrix = m
	gs.Text.TextLineMatrix = m
}

// TranslateText moves to the start of the next line offset by (tx, ty)
// (Td operator)
func (gs *GraphicsState) TranslateText(tx, ty float64) {
	gs.Text.TextLineMatrix = model.Translate(tx, ty).Multiply(gs.Text.TextLineMatrix)
	gs.Text.TextMatrix = gs.Text.TextLineMatrix
}

// TranslateTextSetLeading translates text and sets leading (TD operator)
func (gs *GraphicsState) TranslateTextSetLeading(tx, ty float64) {
	gs.Text.Leading = -ty
	gs.TranslateText(tx, ty)
}

// NextLine moves to next line (T* operator)
func (gs *GraphicsState) NextLine() {
	gs.TranslateText(0, -gs.Text.Leading)
}

// Advance moves the text matrix by tx unscaled text space units along the
// baseline
func (gs *GraphicsState) Advance(tx float64) {
	gs.Text.TextMatrix = model.Translate(tx, 0).Multiply(gs.Text.TextMatrix)
}

// Scale returns the horizontal scaling as a factor
func (gs *GraphicsState) Scale() float64 {
	return gs.Text.HorizontalScaling / 100
}

// RenderMatrix maps text space to user space: Tm × CTM
func (gs *GraphicsState) RenderMatrix() model.Matrix {
	return gs.Text.TextMatrix.Multiply(gs.CTM)
}

// EffectiveFontSize returns the font size after the text and page
// transforms: the length of a font-size tall vector in user space
func (gs *GraphicsState) EffectiveFontSize() float64 {
	return gs.RenderMatrix().TransformVector(model.Vector{X: 0, Y: gs.Text.FontSize}).Length()
}

// BaselineAngle returns the orientation of the baseline in degrees,
// measured counter-clockwise in user space
func (gs *GraphicsState) BaselineAngle() float64 {
	v := gs.RenderMatrix().TransformVector(model.Vector{X: 1, Y: 0})
	if v.Length() == 0 {
		return 0
	}
	deg := math.Atan2(v.Y, v.X) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return math.Mod(math.Round(deg), 360)
}

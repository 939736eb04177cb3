package reader

import (
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/tsawler/pdfblocks/model"
	"github.com/tsawler/pdfblocks/text"
)

// maxFormDepth bounds form XObject nesting
const maxFormDepth = 8

// Listener receives the render events of a page walk, in content stream
// order. BeginText and EndText delimit text objects.
type Listener interface {
	BeginText()
	EndText()
	Glyph(run model.GlyphRun)
	Image(placement model.ImagePlacement)
}

// abort carries an error out of the content interpreter callback
type abort struct {
	err error
}

type markedContent struct {
	mcid int
	tags []model.Tag
}

// walker interprets the content streams of one page
type walker struct {
	ctx      context.Context
	listener Listener
	geometry PageGeometry
	images   func(name string) (*model.ImageResource, error)

	gs     *GraphicsState
	marked []markedContent
	depth  int
	ops    int
}

func newWalker(ctx context.Context, geometry PageGeometry, listener Listener) *walker {
	return &walker{
		ctx:      ctx,
		listener: listener,
		geometry: geometry,
		gs:       NewGraphicsState(),
	}
}

// walk interprets contents, a stream or an array of streams
func (w *walker) walk(contents, resources pdf.Value) {
	fonts := make(map[string]*fontProgram)
	if contents.Kind() == pdf.Array {
		for i := 0; i < contents.Len(); i++ {
			w.interpret(contents.Index(i), resources, fonts)
		}
		return
	}
	w.interpret(contents, resources, fonts)
}

func (w *walker) interpret(strm, resources pdf.Value, fonts map[string]*fontProgram) {
	if strm.Kind() != pdf.Stream {
		return
	}
	pdf.Interpret(strm, func(stk *pdf.Stack, op string) {
		w.ops++
		if w.ops%256 == 0 {
			if err := w.ctx.Err(); err != nil {
				panic(abort{err: err})
			}
		}

		n := stk.Len()
		args := make([]pdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		w.operator(op, args, resources, fonts)
	})
}

func number(args []pdf.Value, i int) float64 {
	if i >= len(args) {
		return 0
	}
	return args[i].Float64()
}

func matrixOf(args []pdf.Value) model.Matrix {
	var m model.Matrix
	for i := range m {
		m[i] = number(args, i)
	}
	return m
}

func (w *walker) operator(op string, args []pdf.Value, resources pdf.Value, fonts map[string]*fontProgram) {
	gs := w.gs
	switch op {
	// Graphics state
	case "q":
		gs.Save()
	case "Q":
		_ = gs.Restore()
	case "cm":
		if len(args) == 6 {
			gs.Transform(matrixOf(args))
		}

	// Text objects
	case "BT":
		gs.BeginText()
		w.listener.BeginText()
	case "ET":
		w.listener.EndText()

	// Text state
	case "Tf":
		if len(args) == 2 {
			name := args[0].Name()
			gs.SetFont(name, args[1].Float64(), w.font(name, resources, fonts))
		}
	case "Tc":
		gs.Text.CharSpacing = number(args, 0)
	case "Tw":
		gs.Text.WordSpacing = number(args, 0)
	case "Tz":
		gs.Text.HorizontalScaling = number(args, 0)
	case "TL":
		gs.Text.Leading = number(args, 0)
	case "Ts":
		gs.Text.Rise = number(args, 0)

	// Text positioning
	case "Tm":
		if len(args) == 6 {
			gs.SetTextMatrix(matrixOf(args))
		}
	case "Td":
		gs.TranslateText(number(args, 0), number(args, 1))
	case "TD":
		gs.TranslateTextSetLeading(number(args, 0), number(args, 1))
	case "T*":
		gs.NextLine()

	// Text showing
	case "Tj":
		if len(args) == 1 {
			w.show(args[0].RawString())
		}
	case "'":
		gs.NextLine()
		if len(args) == 1 {
			w.show(args[0].RawString())
		}
	case "\"":
		if len(args) == 3 {
			gs.Text.WordSpacing = args[0].Float64()
			gs.Text.CharSpacing = args[1].Float64()
			gs.NextLine()
			w.show(args[2].RawString())
		}
	case "TJ":
		if len(args) == 1 {
			w.showArray(args[0])
		}

	// Marked content
	case "BMC":
		if len(args) == 1 {
			w.marked = append(w.marked, markedContent{mcid: -1, tags: []model.Tag{model.RawTag(args[0].Name())}})
		}
	case "BDC":
		if len(args) == 2 {
			w.marked = append(w.marked, w.properties(args[0].Name(), args[1], resources))
		}
	case "EMC":
		if len(w.marked) > 0 {
			w.marked = w.marked[:len(w.marked)-1]
		}

	// XObjects
	case "Do":
		if len(args) == 1 {
			w.do(args[0].Name(), resources)
		}
	}
}

// font returns the program of the font resource name, reading it once per
// resource scope
func (w *walker) font(name string, resources pdf.Value, fonts map[string]*fontProgram) *fontProgram {
	if f, ok := fonts[name]; ok {
		return f
	}
	var f *fontProgram
	if v := resources.Key("Font").Key(name); v.Kind() == pdf.Dict {
		f = newFontProgram(v, name)
	} else {
		f = standardFontProgram(name)
	}
	fonts[name] = f
	return f
}

func (w *walker) properties(tag string, props pdf.Value, resources pdf.Value) markedContent {
	if props.Kind() == pdf.Name {
		props = resources.Key("Properties").Key(props.Name())
	}

	mc := markedContent{mcid: -1, tags: []model.Tag{model.RawTag(tag)}}
	if props.Kind() != pdf.Dict {
		return mc
	}

	if mcid := props.Key("MCID"); mcid.Kind() == pdf.Integer {
		mc.mcid = int(mcid.Int64())
	}
	for _, key := range []string{"Lang", "Language"} {
		if lang := props.Key(key).Text(); lang != "" {
			mc.tags = append(mc.tags, model.LangTag(lang))
			break
		}
	}
	for _, key := range []string{"ActualText", "Alt", "E"} {
		if value := props.Key(key).Text(); value != "" {
			mc.tags = append(mc.tags, model.PropTag(key, value, key+"="+value))
		}
	}
	return mc
}

// textBoxID returns the innermost marked-content id, -1 outside marked
// content
func (w *walker) textBoxID() int {
	for i := len(w.marked) - 1; i >= 0; i-- {
		if w.marked[i].mcid >= 0 {
			return w.marked[i].mcid
		}
	}
	return -1
}

func (w *walker) tags() []model.Tag {
	if len(w.marked) == 0 {
		return nil
	}
	sets := make([][]model.Tag, len(w.marked))
	for i, mc := range w.marked {
		sets[i] = mc.tags
	}
	return model.MergeTags(sets...)
}

func (w *walker) do(name string, resources pdf.Value) {
	xobj := resources.Key("XObject").Key(name)
	if xobj.Kind() != pdf.Stream {
		return
	}

	switch xobj.Key("Subtype").Name() {
	case "Image":
		w.image(name)
	case "Form":
		if w.depth >= maxFormDepth {
			return
		}
		w.gs.Save()
		if m := xobj.Key("Matrix"); m.Kind() == pdf.Array && m.Len() == 6 {
			var mat model.Matrix
			for i := range mat {
				mat[i] = m.Index(i).Float64()
			}
			w.gs.Transform(mat)
		}
		formResources := xobj.Key("Resources")
		if formResources.Kind() != pdf.Dict {
			formResources = resources
		}

		w.depth++
		w.interpret(xobj, formResources, make(map[string]*fontProgram))
		w.depth--
		_ = w.gs.Restore()
	}
}

// toPage maps a user space point to page space: origin at the top-left
// corner of the media box, y growing down
func (w *walker) toPage(p model.Point) model.Point {
	box := w.geometry.MediaBox
	return model.Point{X: p.X - box.MinX, Y: box.MaxY - p.Y}
}

func (w *walker) image(name string) {
	ctm := w.gs.CTM
	corner := func(x, y float64) model.Point {
		return w.toPage(ctm.Transform(model.Point{X: x, Y: y}))
	}

	placement := model.ImagePlacement{
		Name: name,
		Area: model.NewArea(corner(0, 1), corner(1, 1), corner(1, 0), corner(0, 0)),
		Tags: w.tags(),
	}
	if w.images != nil {
		placement.Resource, placement.Err = w.images(name)
	}
	w.listener.Image(placement)
}

func (w *walker) showArray(arr pdf.Value) {
	ts := &w.gs.Text
	for i := 0; i < arr.Len(); i++ {
		item := arr.Index(i)
		switch item.Kind() {
		case pdf.String:
			w.show(item.RawString())
		case pdf.Integer, pdf.Real:
			w.gs.Advance(-item.Float64() / 1000 * ts.FontSize * w.gs.Scale())
		}
	}
}

// show reports one run for a shown string and advances the text matrix
func (w *walker) show(raw string) {
	ts := &w.gs.Text
	if ts.Font == nil {
		ts.Font = standardFontProgram("Helvetica")
	}
	f := ts.Font

	// tx = ((w0 - Tj/1000) * Tfs + Tc + Tw) * Th, summed over the codes
	var advance float64
	for _, code := range f.codes(raw) {
		adv := f.width(code)/1000*ts.FontSize + ts.CharSpacing
		if f.isWordSpace(code) {
			adv += ts.WordSpacing
		}
		advance += adv * w.gs.Scale()
	}

	if s := text.Normalize(f.decode(raw)); strings.TrimSpace(s) != "" {
		w.emit(s, advance, f)
	}
	w.gs.Advance(advance)
}

func (w *walker) emit(s string, advance float64, f *fontProgram) {
	ts := w.gs.Text
	m := w.gs.RenderMatrix()

	top := f.ascent/1000*ts.FontSize + ts.Rise
	bottom := f.descent/1000*ts.FontSize + ts.Rise
	corner := func(x, y float64) model.Point {
		return w.toPage(m.Transform(model.Point{X: x, Y: y}))
	}

	space := (f.spaceWidth()/1000*ts.FontSize + ts.CharSpacing + ts.WordSpacing) * w.gs.Scale()

	w.listener.Glyph(model.GlyphRun{
		Text:       s,
		Font:       f,
		FontSize:   ts.FontSize,
		PointValue: w.gs.EffectiveFontSize(),
		Scale:      w.gs.Scale(),
		Magnitude:  w.gs.BaselineAngle(),
		SpaceWidth: m.TransformVector(model.Vector{X: space}).Length(),
		Area:       model.NewArea(corner(0, top), corner(advance, top), corner(advance, bottom), corner(0, bottom)),
		TextBoxID:  w.textBoxID(),
		Tags:       w.tags(),
	})
}

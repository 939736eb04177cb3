package builder

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsawler/pdfblocks/font"
	"github.com/tsawler/pdfblocks/images"
	"github.com/tsawler/pdfblocks/layout"
	"github.com/tsawler/pdfblocks/model"
)

type fixedFont struct{}

func (fixedFont) Name() string              { return "Fixed" }
func (fixedFont) GlyphWidth(r rune) float64 { return 500 }
func (fixedFont) Ascent() float64           { return 800 }
func (fixedFont) Descent() float64          { return -200 }

func run(s string, x, y, w float64) model.GlyphRun {
	return model.GlyphRun{
		Text:       s,
		Font:       fixedFont{},
		FontSize:   10,
		PointValue: 10,
		Scale:      1,
		SpaceWidth: 2.5,
		Area:       model.NewRectArea(x, y, w, 10),
		TextBoxID:  -1,
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 2))))
	return buf.Bytes()
}

func newCollector(t *testing.T, config CollectorConfig) (*PageCollector, *font.Registry, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	config.Logger = logger
	fonts := font.NewRegistry()
	return NewPageCollectorWithConfig(fonts, images.NewStore(), config), fonts, hook
}

func TestPageCollectorScopes(t *testing.T) {
	c, _, _ := newCollector(t, DefaultCollectorConfig())

	c.BeginText()
	c.Glyph(run("a", 0, 0, 5))
	c.BeginText()
	c.Glyph(run("b", 0, 20, 5))
	c.EndText()
	c.EndText()
	c.EndText() // unbalanced, ignored

	c.BeginText()
	c.Glyph(run("c", 0, 40, 5))
	c.EndText()

	roots := c.Roots()
	require.Len(t, roots, 2)
	assert.Len(t, roots[0].Blocks(), 1)
	require.Len(t, roots[0].Children(), 1)
	assert.Equal(t, "b", roots[0].Children()[0].Blocks()[0].PlainText())
	assert.Equal(t, "c", roots[1].Blocks()[0].PlainText())
}

func TestPageCollectorRegistersFonts(t *testing.T) {
	c, fonts, _ := newCollector(t, DefaultCollectorConfig())

	c.BeginText()
	c.Glyph(run("a", 0, 0, 5))
	c.Glyph(run("b", 10, 0, 5))
	c.Glyph(run("", 20, 0, 5))
	c.EndText()

	require.Equal(t, 1, fonts.Len())
	meta := fonts.All()[0]

	blocks := c.Roots()[0].Blocks()
	require.Len(t, blocks, 2, "empty runs are dropped")
	for _, b := range blocks {
		assert.Equal(t, meta.UID, b.Text.FontUID)
		assert.InDelta(t, 10, b.Text.LineSize, 1e-9)
	}
}

func TestPageCollectorDropsRunsWithoutFont(t *testing.T) {
	c, _, hook := newCollector(t, DefaultCollectorConfig())

	r := run("lost", 0, 0, 20)
	r.Font = nil
	c.BeginText()
	c.Glyph(r)
	c.EndText()

	assert.Empty(t, c.Roots()[0].Blocks())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "lost", hook.LastEntry().Data["text"])
}

func TestPageCollectorImages(t *testing.T) {
	c, _, hook := newCollector(t, DefaultCollectorConfig())
	data := pngBytes(t)

	c.Image(model.ImagePlacement{
		Name:     "Im1",
		Resource: &model.ImageResource{Name: "Im1", Data: data, FileType: "png"},
		Area:     model.NewRectArea(0, 0, 30, 20),
	})
	c.BeginText()
	c.Image(model.ImagePlacement{Name: "Im2", Err: errors.New("broken stream"), Area: model.NewRectArea(0, 40, 30, 20)})
	c.EndText()

	roots := c.Roots()
	require.Len(t, roots, 2, "image outside a text object gets its own scope")

	first := roots[0].Blocks()[0]
	require.NotNil(t, first.Image.ImageUID)
	assert.Equal(t, "Im1", first.Image.Name)

	second := roots[1].Blocks()[0]
	assert.Nil(t, second.Image.ImageUID, "failed images keep their block")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Im2", hook.LastEntry().Data["image"])
}

func TestPageCollectorSkipImages(t *testing.T) {
	c, _, _ := newCollector(t, CollectorConfig{SkipImages: true})

	c.Image(model.ImagePlacement{Name: "Im1", Area: model.NewRectArea(0, 0, 30, 20)})
	assert.Empty(t, c.Roots())
}

func TestPageCollectorCompile(t *testing.T) {
	c, fonts, _ := newCollector(t, DefaultCollectorConfig())

	c.BeginText()
	c.Glyph(run("Hello", 0, 0, 50))
	c.EndText()
	c.BeginText()
	c.Glyph(run("World", 52, 0, 48))
	c.EndText()
	c.BeginText()
	c.Glyph(run("Again", 0, 12, 50))
	c.EndText()

	pool := layout.NewGroupPool(32)
	strategies := []layout.Strategy{
		layout.NewHorizontalSiblingStrategy(fonts),
		layout.NewVerticalSiblingStrategy(fonts),
	}

	page, err := c.Compile(context.Background(), PageInfo{Number: 3, Width: 612, Height: 792, Rotation: 90}, strategies, layout.DefaultRelationSpecs(pool))
	require.NoError(t, err)

	assert.Equal(t, model.KindPage, page.Kind)
	assert.Equal(t, 3, page.Page.Number)
	assert.Equal(t, 90, page.Page.Rotation)
	assert.InDelta(t, 612, page.Area.Width(), 1e-9)
	assert.InDelta(t, 792, page.Area.Height(), 1e-9)

	require.Len(t, page.Children, 1, "words merge across scopes, then lines stack")
	assert.Equal(t, "Hello World\nAgain", page.Children[0].PlainText())
	assert.Empty(t, page.Page.Relations, "a single block has no relations")
	assert.Equal(t, 32, pool.Available())
}

func TestPageCollectorCompileRelations(t *testing.T) {
	c, _, _ := newCollector(t, DefaultCollectorConfig())

	c.BeginText()
	c.Glyph(run("left", 0, 0, 40))
	c.EndText()
	c.BeginText()
	c.Glyph(run("right", 43, 0, 40))
	c.EndText()

	page, err := c.Compile(context.Background(), PageInfo{Number: 1, Width: 100, Height: 100}, nil, layout.DefaultRelationSpecs(layout.NewGroupPool(8)))
	require.NoError(t, err)

	require.Len(t, page.Children, 2)
	require.Len(t, page.Page.Relations, 2)
	labels := map[string]bool{}
	for _, r := range page.Page.Relations {
		rel := r.Relation
		labels[rel.Label] = true
		require.Len(t, rel.Members, 2)
		assert.Equal(t, page.Children[0].UID, rel.Members[0])
		assert.Equal(t, page.Children[1].UID, rel.Members[1])
	}
	assert.True(t, labels["OverlapWithoutFont"])
	assert.True(t, labels["ProximityDefault"])
}

func TestPageCollectorCompileKeepsPageWhenRelationsFail(t *testing.T) {
	c, _, hook := newCollector(t, DefaultCollectorConfig())

	c.BeginText()
	c.Glyph(run("left", 0, 0, 40))
	c.EndText()
	c.BeginText()
	c.Glyph(run("right", 43, 0, 40))
	c.EndText()

	// Two blocks never fit a single-group pool
	pool := layout.NewGroupPool(1)
	page, err := c.Compile(context.Background(), PageInfo{Number: 4, Width: 100, Height: 100}, nil, layout.DefaultRelationSpecs(pool))
	require.NoError(t, err)

	require.Len(t, page.Children, 2)
	assert.Empty(t, page.Page.Relations)
	assert.Equal(t, 1, pool.Available())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, 4, entry.Data["page"])
	assert.ErrorIs(t, entry.Data["error"].(error), layout.ErrPoolExhausted)
}

func TestPageCollectorCompileCancelled(t *testing.T) {
	c, _, _ := newCollector(t, DefaultCollectorConfig())

	c.BeginText()
	c.Glyph(run("left", 0, 0, 40))
	c.EndText()
	c.BeginText()
	c.Glyph(run("right", 43, 0, 40))
	c.EndText()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Compile(ctx, PageInfo{Number: 1, Width: 100, Height: 100}, nil, layout.DefaultRelationSpecs(layout.NewGroupPool(8)))
	assert.Error(t, err)
}

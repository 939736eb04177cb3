package builder

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsawler/pdfblocks/layout"
	"github.com/tsawler/pdfblocks/model"
)

// recordingStrategy manages every block and returns its input unchanged,
// remembering the text of each call
type recordingStrategy struct {
	calls []string
}

func (s *recordingStrategy) Manages(b *model.Block) bool { return true }

func (s *recordingStrategy) Merge(_ context.Context, blocks []*model.Block) ([]*model.Block, error) {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.PlainText()
	}
	s.calls = append(s.calls, strings.Join(parts, " "))
	return blocks, nil
}

func leaf(b *Builder, s string) {
	b.AddText(model.GlyphRun{
		Text:       s,
		FontSize:   10,
		PointValue: 10,
		Scale:      1,
		SpaceWidth: 2.5,
		Area:       model.NewRectArea(0, 0, 10, 10),
		TextBoxID:  -1,
	}, model.FontMeta{Size: 10, LineSizePoints: 12})
}

func TestBuilderTree(t *testing.T) {
	root := NewBuilder(nil)
	child := NewBuilder(root)
	grandchild := NewBuilder(child)

	assert.Nil(t, root.Parent())
	assert.Same(t, root, child.Parent())
	assert.Equal(t, []*Builder{child}, root.Children())
	assert.Equal(t, []*Builder{grandchild}, child.Children())
	assert.Empty(t, grandchild.Children())
}

func TestAddText(t *testing.T) {
	b := NewBuilder(nil)
	fontMeta := model.FontMeta{Size: 10, LineSizePoints: 12}
	run := model.GlyphRun{
		Text:       "Hi",
		FontSize:   10,
		PointValue: 20,
		Scale:      0.9,
		Magnitude:  90,
		SpaceWidth: 5,
		Area:       model.NewRectArea(1, 2, 3, 4),
		TextBoxID:  7,
		Tags:       []model.Tag{model.RawTag("Span")},
	}

	block := b.AddText(run, fontMeta)
	require.True(t, block.IsText())
	assert.Equal(t, []*model.Block{block}, b.Blocks())

	data := block.Text
	assert.Equal(t, "Hi", data.Text)
	assert.Equal(t, 10.0, data.FontLevel)
	assert.Equal(t, 20.0, data.PointValue)
	assert.InDelta(t, 24, data.LineSize, 1e-9, "line size scales with the effective size")
	assert.Equal(t, 0.9, data.Scale)
	assert.Equal(t, 90.0, data.Magnitude)
	assert.Equal(t, []uint32{7}, data.TextBoxIDs)
	assert.Equal(t, run.Area, block.Area)
	assert.Len(t, block.Tags, 1)

	run.TextBoxID = -1
	assert.Empty(t, b.AddText(run, fontMeta).Text.TextBoxIDs)
}

func TestAddImage(t *testing.T) {
	b := NewBuilder(nil)
	placement := model.ImagePlacement{Name: "Im0", Area: model.NewRectArea(0, 0, 5, 5)}

	bare := b.AddImage(placement, nil)
	assert.Equal(t, model.KindImage, bare.Kind)
	assert.Nil(t, bare.Image.ImageUID)

	meta := &model.ImageMeta{EncodedData: "AAAA"}
	withMeta := b.AddImage(placement, meta)
	require.NotNil(t, withMeta.Image.ImageUID)
	assert.Equal(t, meta.UID, *withMeta.Image.ImageUID)
	assert.Equal(t, "AAAA", withMeta.Image.RawData)
}

func TestConsolidatePostOrder(t *testing.T) {
	root := NewBuilder(nil)
	leaf(root, "r")
	first := NewBuilder(root)
	leaf(first, "a")
	leaf(NewBuilder(first), "x")
	leaf(NewBuilder(root), "b")

	s := &recordingStrategy{}
	out, err := root.Consolidate(context.Background(), []layout.Strategy{s})
	require.NoError(t, err)
	assert.Len(t, out, 4)
	assert.Equal(t, []string{"x", "a x", "b", "r a x b"}, s.calls)
}

func TestConsolidateDeepNesting(t *testing.T) {
	const depth = 20000

	root := NewBuilder(nil)
	current := root
	for i := 0; i < depth; i++ {
		leaf(current, "w")
		current = NewBuilder(current)
	}

	out, err := root.Consolidate(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, out, depth)
}

func TestConsolidateCancelled(t *testing.T) {
	root := NewBuilder(nil)
	leaf(root, "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := root.Consolidate(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConsolidateMerges(t *testing.T) {
	root := NewBuilder(nil)
	leaf(root, "a")
	leaf(NewBuilder(root), "b")

	pool := layout.NewGroupPool(8)
	out, err := root.Consolidate(context.Background(), []layout.Strategy{layout.NewOverlapStrategy(pool)})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 8, pool.Available())
}

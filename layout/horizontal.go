package layout

import (
	"context"
	"math"
	"strings"

	"github.com/tsawler/pdfblocks/font"
	"github.com/tsawler/pdfblocks/model"
	"github.com/tsawler/pdfblocks/text"
)

// HorizontalSiblingStrategy joins the words of a line: a block merges with
// the next block whose top-left corner follows its top-right corner along
// the baseline.
type HorizontalSiblingStrategy struct {
	fonts font.Provider
}

// NewHorizontalSiblingStrategy creates a horizontal sibling strategy. fonts
// may be nil, in which case blocks must share a font UID to merge.
func NewHorizontalSiblingStrategy(fonts font.Provider) *HorizontalSiblingStrategy {
	return &HorizontalSiblingStrategy{fonts: fonts}
}

// Manages reports whether b is a text block
func (s *HorizontalSiblingStrategy) Manages(b *model.Block) bool {
	return managesText(b)
}

// Merge joins adjacent blocks of the same line
func (s *HorizontalSiblingStrategy) Merge(ctx context.Context, blocks []*model.Block) ([]*model.Block, error) {
	return siblingMerge{fonts: s.fonts, rules: horizontalRules{}}.merge(ctx, blocks)
}

type horizontalRules struct{}

// Rows first, then left to right
func (horizontalRules) sortKey(b *model.Block) (float64, float64) {
	return bucket(b.Area.TopLeft.Y, b.Text.LineSize/2), b.Area.TopLeft.X
}

func (horizontalRules) adjacent(source, target *model.Block, sourceFont, targetFont model.FontMeta) bool {
	if !parallel(source.Area.TopLine(), target.Area.TopLine()) {
		return false
	}

	along, across := edgeGap(source.Area.TopLine(), source.Area.TopRight, target.Area.TopLeft)
	drift := math.Max(source.Area.Height(), target.Area.Height()) / 2

	allowed := math.Max(allowedWordGap(source, sourceFont), allowedWordGap(target, targetFont)) * 1.1
	return along >= -drift && along <= allowed && across <= drift
}

// allowedWordGap is the widest gap still read as a word boundary: the
// widest glyph of the font at the block's effective size, never less than
// a space, plus one space for every space already inside the block.
func allowedWordGap(b *model.Block, meta model.FontMeta) float64 {
	gap := b.Text.SpaceWidth
	if meta.Size > 0 {
		gap = math.Max(gap, meta.MaxGlyphWidth/meta.Size*b.Text.PointValue)
	}
	return gap + float64(strings.Count(b.Text.Text, " "))*b.Text.SpaceWidth
}

func (horizontalRules) combine(source, target *model.Block) string {
	gap, _ := edgeGap(source.Area.TopLine(), source.Area.TopRight, target.Area.TopLeft)

	// Touching fragments belong to the same word
	if gap <= math.Max(source.Text.SpaceWidth*0.1, model.EqualityTolerance) {
		return source.Text.Text + target.Text.Text
	}
	return text.JoinWords(source.Text.Text, target.Text.Text)
}

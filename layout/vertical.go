package layout

import (
	"context"
	"math"

	"github.com/tsawler/pdfblocks/font"
	"github.com/tsawler/pdfblocks/model"
	"github.com/tsawler/pdfblocks/text"
)

// VerticalConfig holds configuration for VerticalSiblingStrategy
type VerticalConfig struct {
	// AlignRight stacks lines sharing a right edge instead of a left edge
	AlignRight bool

	// SpacingFactor is the largest gap between two lines, in line sizes
	// (default: 2.5)
	SpacingFactor float64
}

// DefaultVerticalConfig returns sensible default configuration
func DefaultVerticalConfig() VerticalConfig {
	return VerticalConfig{
		AlignRight:    false,
		SpacingFactor: 2.5,
	}
}

// VerticalSiblingStrategy stacks the lines of a paragraph: a block merges
// with the next block aligned on the same edge just below it.
type VerticalSiblingStrategy struct {
	fonts  font.Provider
	config VerticalConfig
}

// NewVerticalSiblingStrategy creates a left-aligned vertical sibling strategy
func NewVerticalSiblingStrategy(fonts font.Provider) *VerticalSiblingStrategy {
	return NewVerticalSiblingStrategyWithConfig(fonts, DefaultVerticalConfig())
}

// NewVerticalSiblingStrategyWithConfig creates a vertical sibling strategy with custom configuration
func NewVerticalSiblingStrategyWithConfig(fonts font.Provider, config VerticalConfig) *VerticalSiblingStrategy {
	return &VerticalSiblingStrategy{fonts: fonts, config: config}
}

// Manages reports whether b is a text block
func (s *VerticalSiblingStrategy) Manages(b *model.Block) bool {
	return managesText(b)
}

// Merge stacks aligned consecutive lines
func (s *VerticalSiblingStrategy) Merge(ctx context.Context, blocks []*model.Block) ([]*model.Block, error) {
	return siblingMerge{fonts: s.fonts, rules: verticalRules{config: s.config}}.merge(ctx, blocks)
}

type verticalRules struct {
	config VerticalConfig
}

// edge returns the aligned edge of an area with its top and bottom corners
func (r verticalRules) edge(a model.Area) (line model.Vector, top, bottom model.Point) {
	if r.config.AlignRight {
		return a.RightLine(), a.TopRight, a.BottomRight
	}
	return a.LeftLine(), a.TopLeft, a.BottomLeft
}

// Columns first, then top to bottom
func (r verticalRules) sortKey(b *model.Block) (float64, float64) {
	_, top, _ := r.edge(b.Area)
	return bucket(top.X, math.Max(b.Text.SpaceWidth, 1)), top.Y
}

func (r verticalRules) adjacent(source, target *model.Block, _, _ model.FontMeta) bool {
	sourceLine, _, sourceBottom := r.edge(source.Area)
	targetLine, targetTop, _ := r.edge(target.Area)
	if !parallel(sourceLine, targetLine) {
		return false
	}

	along, across := edgeGap(sourceLine, sourceBottom, targetTop)
	drift := math.Max(source.Text.SpaceWidth, model.EqualityTolerance)
	allowed := source.Text.LineSize * r.config.SpacingFactor

	return along >= -source.Text.LineSize/4 && along <= allowed && across <= drift
}

func (verticalRules) combine(source, target *model.Block) string {
	return text.JoinLines(source.Text.Text, target.Text.Text)
}

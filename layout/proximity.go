package layout

import (
	"context"
	"math"

	"github.com/tsawler/pdfblocks/model"
)

// ProximityConfig holds configuration for ProximityStrategy
type ProximityConfig struct {
	// CompareFontInfo requires the same font and line size
	CompareFontInfo bool

	// HorizontalTolerance is the largest gap between neighbours on a line,
	// in space widths (default: 1.5)
	HorizontalTolerance float64

	// VerticalTolerance is the largest gap between stacked neighbours, in
	// line sizes (default: 0.6)
	VerticalTolerance float64
}

// DefaultProximityConfig returns sensible default configuration
func DefaultProximityConfig() ProximityConfig {
	return ProximityConfig{
		CompareFontInfo:     true,
		HorizontalTolerance: 1.5,
		VerticalTolerance:   0.6,
	}
}

// ProximityStrategy merges aligned text blocks that are close to each other
// along their baseline or across it.
type ProximityStrategy struct {
	pool   *GroupPool
	config ProximityConfig
}

// NewProximityStrategy creates a proximity strategy with default configuration
func NewProximityStrategy(pool *GroupPool) *ProximityStrategy {
	return NewProximityStrategyWithConfig(pool, DefaultProximityConfig())
}

// NewProximityStrategyWithConfig creates a proximity strategy with custom configuration
func NewProximityStrategyWithConfig(pool *GroupPool, config ProximityConfig) *ProximityStrategy {
	return &ProximityStrategy{pool: pool, config: config}
}

// Manages reports whether b is a text block
func (s *ProximityStrategy) Manages(b *model.Block) bool {
	return managesText(b)
}

// Merge clusters neighbouring text blocks
func (s *ProximityStrategy) Merge(ctx context.Context, blocks []*model.Block) ([]*model.Block, error) {
	return s.MergeGroups(ctx, blocks, nil)
}

// MergeGroups runs the proximity clustering with a custom compile step
func (s *ProximityStrategy) MergeGroups(ctx context.Context, blocks []*model.Block, compile func(g *TextGroup) *model.Block) ([]*model.Block, error) {
	return clusterMerge{
		pool:     s.pool,
		canMerge: s.canMerge,
		compile:  compile,
	}.merge(ctx, blocks)
}

func (s *ProximityStrategy) canMerge(current, other *TextGroup) bool {
	if current.SameTextBoxes(other) {
		return true
	}

	if s.config.CompareFontInfo {
		if current.Referential().Text.FontUID != other.Referential().Text.FontUID {
			return false
		}
		if !model.NearlyEqual(current.LineSize(), other.LineSize()) {
			return false
		}
	}

	a, b := current.WorldArea(), other.WorldArea()
	if model.RadianAngle(a.TopLine(), b.TopLine(), true) > model.AlignMagnitudeTolerance {
		return false
	}

	frame := current.Frame()
	delta := model.Diff(a.Center(), b.Center())
	otherLocal := frame.LocalBounds(b)
	local := current.LocalBounds()

	// Compare along the axis the centres are best aligned with
	if model.RadianAngle(frame.U, delta, true) <= model.RadianAngle(frame.V, delta, true) {
		if !current.IsInHorizontalLimit(other) {
			return false
		}
		dist := math.Abs(delta.Dot(frame.U))
		extent := local.Width()/2 + otherLocal.Width()/2
		tolerance := math.Max(current.SpaceWidth(), other.SpaceWidth()) * s.config.HorizontalTolerance
		return dist <= extent+tolerance
	}

	if !current.IsInVerticalLimit(other) {
		return false
	}
	dist := math.Abs(delta.Dot(frame.V))
	extent := local.Height()/2 + otherLocal.Height()/2
	tolerance := math.Min(current.LineSize(), other.LineSize()) * s.config.VerticalTolerance
	return dist <= extent+tolerance
}

package layout

import (
	"context"

	"github.com/tsawler/pdfblocks/model"
)

// GroupStrategy is a Strategy built on TextGroups. MergeGroups lets callers
// decide what each surviving group compiles to.
type GroupStrategy interface {
	Strategy
	MergeGroups(ctx context.Context, blocks []*model.Block, compile func(g *TextGroup) *model.Block) ([]*model.Block, error)
}

// OverlapConfig holds configuration for OverlapStrategy
type OverlapConfig struct {
	// CompareFontInfo refuses to merge blocks with different line sizes
	CompareFontInfo bool

	// Tolerance is the distance, in points, by which two areas may miss
	// each other and still count as overlapping (default: 4)
	Tolerance float64
}

// DefaultOverlapConfig returns sensible default configuration
func DefaultOverlapConfig() OverlapConfig {
	return OverlapConfig{
		CompareFontInfo: true,
		Tolerance:       4,
	}
}

// OverlapStrategy merges text blocks whose areas overlap, exactly or within
// a small tolerance.
type OverlapStrategy struct {
	pool   *GroupPool
	config OverlapConfig
}

// NewOverlapStrategy creates an overlap strategy with default configuration
func NewOverlapStrategy(pool *GroupPool) *OverlapStrategy {
	return NewOverlapStrategyWithConfig(pool, DefaultOverlapConfig())
}

// NewOverlapStrategyWithConfig creates an overlap strategy with custom configuration
func NewOverlapStrategyWithConfig(pool *GroupPool, config OverlapConfig) *OverlapStrategy {
	return &OverlapStrategy{pool: pool, config: config}
}

// Manages reports whether b is a text block
func (s *OverlapStrategy) Manages(b *model.Block) bool {
	return managesText(b)
}

// Merge folds overlapping text blocks together
func (s *OverlapStrategy) Merge(ctx context.Context, blocks []*model.Block) ([]*model.Block, error) {
	return s.MergeGroups(ctx, blocks, nil)
}

// MergeGroups runs the overlap clustering with a custom compile step
func (s *OverlapStrategy) MergeGroups(ctx context.Context, blocks []*model.Block, compile func(g *TextGroup) *model.Block) ([]*model.Block, error) {
	return clusterMerge{
		pool:     s.pool,
		canMerge: s.canMerge,
		reach:    func(*TextGroup) float64 { return s.config.Tolerance },
		compile:  compile,
	}.merge(ctx, blocks)
}

func (s *OverlapStrategy) canMerge(current, other *TextGroup) bool {
	if s.config.CompareFontInfo && !model.NearlyEqual(current.LineSize(), other.LineSize()) {
		return false
	}
	if !model.NearlyEqual(current.Magnitude(), other.Magnitude()) {
		return false
	}

	a, b := current.WorldArea(), other.WorldArea()
	return a.Overlap(b, 0) || a.Overlap(b, s.config.Tolerance)
}

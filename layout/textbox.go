package layout

import (
	"context"

	"github.com/tsawler/pdfblocks/model"
)

// TextBoxStrategy merges text blocks that belong to the same marked-content
// sections, whatever their position.
type TextBoxStrategy struct {
	pool *GroupPool
}

// NewTextBoxStrategy creates a text-box strategy
func NewTextBoxStrategy(pool *GroupPool) *TextBoxStrategy {
	return &TextBoxStrategy{pool: pool}
}

// Manages reports whether b is a text block carrying text-box ids
func (s *TextBoxStrategy) Manages(b *model.Block) bool {
	return managesText(b) && len(b.Text.TextBoxIDs) > 0
}

// Merge folds blocks with identical text-box id sets together
func (s *TextBoxStrategy) Merge(ctx context.Context, blocks []*model.Block) ([]*model.Block, error) {
	return s.MergeGroups(ctx, blocks, nil)
}

// MergeGroups runs the text-box clustering with a custom compile step
func (s *TextBoxStrategy) MergeGroups(ctx context.Context, blocks []*model.Block, compile func(g *TextGroup) *model.Block) ([]*model.Block, error) {
	return clusterMerge{
		pool: s.pool,
		canMerge: func(current, other *TextGroup) bool {
			return current.SameTextBoxes(other)
		},
		compile: compile,
	}.merge(ctx, blocks)
}

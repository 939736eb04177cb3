package pdfblocks

import (
	"github.com/tsawler/pdfblocks/font"
	"github.com/tsawler/pdfblocks/layout"
)

// StrategySet builds the merge pipeline of one extraction. It is called
// once per Document call with the font registry and group pool of that
// extraction.
type StrategySet func(fonts font.Provider, pool *layout.GroupPool) []layout.Strategy

// RelationSet builds the relation specs of one extraction
type RelationSet func(pool *layout.GroupPool) []layout.RelationSpec

// DefaultStrategies merges runs into words and lines, then lines into left
// and right aligned paragraphs.
func DefaultStrategies(fonts font.Provider, _ *layout.GroupPool) []layout.Strategy {
	right := layout.DefaultVerticalConfig()
	right.AlignRight = true

	return []layout.Strategy{
		layout.NewHorizontalSiblingStrategy(fonts),
		layout.NewVerticalSiblingStrategy(fonts),
		layout.NewVerticalSiblingStrategyWithConfig(fonts, right),
	}
}

// GroupStrategies extends the default pipeline with overlap and proximity
// clustering, folding blocks that the sibling passes leave apart.
func GroupStrategies(fonts font.Provider, pool *layout.GroupPool) []layout.Strategy {
	return append(DefaultStrategies(fonts, pool),
		layout.NewOverlapStrategy(pool),
		layout.NewProximityStrategy(pool),
	)
}

// DefaultRelations computes overlap and proximity relations
func DefaultRelations(pool *layout.GroupPool) []layout.RelationSpec {
	return layout.DefaultRelationSpecs(pool)
}

// SectionRelations adds marked-content section relations to the defaults
func SectionRelations(pool *layout.GroupPool) []layout.RelationSpec {
	return append(DefaultRelations(pool), layout.TextBoxRelationSpec(pool))
}

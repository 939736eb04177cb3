package layout

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tsawler/pdfblocks/model"
)

// RelationSpec pairs a clustering strategy with the kind and label of the
// relations it produces
type RelationSpec struct {
	Strategy GroupStrategy
	Kind     model.RelationKind
	Label    string
}

// DefaultRelationSpecs returns the relations computed for every page: blocks
// that overlap, and blocks that sit close together, regardless of font.
func DefaultRelationSpecs(pool *GroupPool) []RelationSpec {
	overlap := DefaultOverlapConfig()
	overlap.CompareFontInfo = false

	proximity := DefaultProximityConfig()
	proximity.CompareFontInfo = false

	return []RelationSpec{
		{
			Strategy: NewOverlapStrategyWithConfig(pool, overlap),
			Kind:     model.RelationGroup,
			Label:    "OverlapWithoutFont",
		},
		{
			Strategy: NewProximityStrategyWithConfig(pool, proximity),
			Kind:     model.RelationGroup,
			Label:    "ProximityDefault",
		},
	}
}

// TextBoxRelationSpec groups blocks of the same marked-content sections
func TextBoxRelationSpec(pool *GroupPool) RelationSpec {
	return RelationSpec{
		Strategy: NewTextBoxStrategy(pool),
		Kind:     model.RelationSectionID,
		Label:    "TextBoxId",
	}
}

// relationStrategy adapts a GroupStrategy so that each multi-member cluster
// compiles to a relation block instead of a merged text block
type relationStrategy struct {
	spec RelationSpec
}

func (s relationStrategy) Manages(b *model.Block) bool {
	return s.spec.Strategy.Manages(b)
}

func (s relationStrategy) Merge(ctx context.Context, blocks []*model.Block) ([]*model.Block, error) {
	return s.spec.Strategy.MergeGroups(ctx, blocks, func(g *TextGroup) *model.Block {
		if g.Len() < 2 {
			return nil
		}
		members := g.OrderedMembers()
		uids := make([]uuid.UUID, 0, len(members))
		seen := make(map[uuid.UUID]bool, len(members))
		for _, m := range members {
			if !seen[m.UID] {
				seen[m.UID] = true
				uids = append(uids, m.UID)
			}
		}
		return model.NewRelationBlock(g.WorldArea(), model.RelationData{
			RelationKind: s.spec.Kind,
			Label:        s.spec.Label,
			Members:      uids,
		})
	})
}

// ComputeRelations finds soft groupings among already consolidated blocks.
// blocks are only read; every member of a returned relation is one of them
// or one of their descendants.
func ComputeRelations(ctx context.Context, blocks []*model.Block, specs []RelationSpec) ([]*model.Block, error) {
	flat := model.Flatten(blocks)

	var relations []*model.Block
	seen := make(map[string]bool)
	for _, spec := range specs {
		out, err := Apply(ctx, []Strategy{relationStrategy{spec: spec}}, flat, ApplyOptions{SinglePass: true})
		if err != nil {
			return nil, err
		}

		for _, b := range out {
			if b.Kind != model.KindRelation {
				continue
			}
			key := relationKey(b.Relation)
			if seen[key] {
				continue
			}
			seen[key] = true
			relations = append(relations, b)
		}
	}
	return relations, nil
}

func relationKey(r *model.RelationData) string {
	var sb strings.Builder
	sb.WriteString(r.RelationKind.String())
	sb.WriteByte('|')
	sb.WriteString(r.Label)
	for _, uid := range r.Members {
		sb.WriteByte('|')
		sb.WriteString(uid.String())
	}
	return sb.String()
}

package layout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsawler/pdfblocks/model"
)

func TestComputeRelations(t *testing.T) {
	a := makeText("A", 0, 0, 10, 10)
	b := makeText("B", 8, 0, 10, 10)
	c := makeText("C", 300, 300, 10, 10)
	img := makeImage(0, 50, 20, 20)
	blocks := []*model.Block{c, b, img, a}

	pool := NewGroupPool(16)
	relations, err := ComputeRelations(context.Background(), blocks, DefaultRelationSpecs(pool))
	require.NoError(t, err)
	require.Len(t, relations, 2)

	labels := map[string]bool{}
	for _, r := range relations {
		require.Equal(t, model.KindRelation, r.Kind)
		assert.Equal(t, model.RelationGroup, r.Relation.RelationKind)
		assert.Equal(t, []uuid.UUID{a.UID, b.UID}, r.Relation.Members, "members in reading order")
		labels[r.Relation.Label] = true
	}
	assert.True(t, labels["OverlapWithoutFont"])
	assert.True(t, labels["ProximityDefault"])

	// Inputs are only read
	assert.Equal(t, []*model.Block{c, b, img, a}, blocks)
	assert.Equal(t, "A", a.Text.Text)
	assert.Equal(t, 16, pool.Available())
}

func TestComputeRelationsReferencesExistingBlocks(t *testing.T) {
	child := makeText("child", 0, 0, 30, 10)
	parent := model.NewTextBlock(child.Area, *child.Text, nil)
	parent.Children = []*model.Block{child}
	neighbour := makeText("next", 32, 0, 30, 10)

	relations, err := ComputeRelations(context.Background(), []*model.Block{parent, neighbour}, DefaultRelationSpecs(NewGroupPool(16)))
	require.NoError(t, err)
	require.NotEmpty(t, relations)

	index := model.Index([]*model.Block{parent, neighbour})
	for _, r := range relations {
		for _, uid := range r.Relation.Members {
			assert.Contains(t, index, uid)
		}
	}
}

func TestComputeRelationsDeduplicates(t *testing.T) {
	a := makeText("A", 0, 0, 10, 10)
	b := makeText("B", 8, 0, 10, 10)
	pool := NewGroupPool(16)

	spec := DefaultRelationSpecs(pool)[0]
	relations, err := ComputeRelations(context.Background(), []*model.Block{a, b}, []RelationSpec{spec, spec})
	require.NoError(t, err)
	assert.Len(t, relations, 1)
}

func TestTextBoxRelations(t *testing.T) {
	a := withTextBoxes(makeText("a", 0, 0, 10, 10), 4)
	b := withTextBoxes(makeText("b", 0, 200, 10, 10), 4)
	c := makeText("c", 100, 0, 10, 10)

	relations, err := ComputeRelations(context.Background(), []*model.Block{a, b, c}, []RelationSpec{TextBoxRelationSpec(NewGroupPool(8))})
	require.NoError(t, err)
	require.Len(t, relations, 1)

	r := relations[0].Relation
	assert.Equal(t, model.RelationSectionID, r.RelationKind)
	assert.Equal(t, "TextBoxId", r.Label)
	assert.Equal(t, []uuid.UUID{a.UID, b.UID}, r.Members)
}

func TestComputeRelationsEmpty(t *testing.T) {
	relations, err := ComputeRelations(context.Background(), nil, DefaultRelationSpecs(NewGroupPool(4)))
	require.NoError(t, err)
	assert.Empty(t, relations)
}

package builder

import (
	"context"

	"github.com/tsawler/pdfblocks/layout"
	"github.com/tsawler/pdfblocks/model"
)

// Builder collects the leaf blocks of one text-object scope
type Builder struct {
	parent   *Builder
	children []*Builder
	blocks   []*model.Block
}

// NewBuilder creates a scope nested in parent. A nil parent creates a root.
func NewBuilder(parent *Builder) *Builder {
	b := &Builder{parent: parent}
	if parent != nil {
		parent.children = append(parent.children, b)
	}
	return b
}

// Parent returns the enclosing scope, nil for a root
func (b *Builder) Parent() *Builder {
	return b.parent
}

// Children returns the nested scopes in creation order
func (b *Builder) Children() []*Builder {
	return b.children
}

// Blocks returns the leaves added directly to this scope
func (b *Builder) Blocks() []*model.Block {
	return b.blocks
}

// AddText adds a leaf text block for run. meta is the registered metadata
// of the run's font at the run's size.
func (b *Builder) AddText(run model.GlyphRun, meta model.FontMeta) *model.Block {
	lineSize := run.PointValue
	if meta.Size > 0 && meta.LineSizePoints > 0 {
		lineSize = meta.LineSizePoints / meta.Size * run.PointValue
	}

	var ids []uint32
	if run.TextBoxID >= 0 {
		ids = []uint32{uint32(run.TextBoxID)}
	}

	block := model.NewTextBlock(run.Area, model.TextData{
		FontLevel:  run.FontSize,
		PointValue: run.PointValue,
		LineSize:   lineSize,
		Scale:      run.Scale,
		Magnitude:  run.Magnitude,
		Text:       run.Text,
		FontUID:    meta.UID,
		SpaceWidth: run.SpaceWidth,
		TextBoxIDs: ids,
	}, run.Tags)

	b.blocks = append(b.blocks, block)
	return block
}

// AddImage adds a leaf image block. meta is nil when the image payload could
// not be registered; the block then has no image UID.
func (b *Builder) AddImage(placement model.ImagePlacement, meta *model.ImageMeta) *model.Block {
	data := model.ImageData{Name: placement.Name}
	if meta != nil {
		uid := meta.UID
		data.ImageUID = &uid
		data.RawData = meta.EncodedData
	}

	block := model.NewImageBlock(placement.Area, data, placement.Tags)
	b.blocks = append(b.blocks, block)
	return block
}

// Consolidate merges the scope tree rooted at b. Children are consolidated
// before their parent and their results join the parent's own leaves before
// strategies run over the combined set. The walk uses an explicit stack, so
// nesting depth is not limited by the goroutine stack.
func (b *Builder) Consolidate(ctx context.Context, strategies []layout.Strategy) ([]*model.Block, error) {
	type visit struct {
		node     *Builder
		expanded bool
	}

	results := make(map[*Builder][]*model.Block)
	stack := []visit{{node: b}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !top.expanded {
			stack = append(stack, visit{node: top.node, expanded: true})
			for i := len(top.node.children) - 1; i >= 0; i-- {
				stack = append(stack, visit{node: top.node.children[i]})
			}
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		blocks := make([]*model.Block, 0, len(top.node.blocks))
		blocks = append(blocks, top.node.blocks...)
		for _, child := range top.node.children {
			blocks = append(blocks, results[child]...)
			delete(results, child)
		}

		merged, err := layout.Apply(ctx, strategies, blocks, layout.ApplyOptions{})
		if err != nil {
			return nil, err
		}
		results[top.node] = merged
	}

	return results[b], nil
}

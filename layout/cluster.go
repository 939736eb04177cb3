package layout

import (
	"context"
	"sort"

	"github.com/tidwall/rtree"
	"github.com/tsawler/pdfblocks/model"
)

// clusterMerge is the engine behind the group-based strategies: every input
// starts in its own pooled group and groups absorb each other while canMerge
// accepts a pair.
type clusterMerge struct {
	pool *GroupPool

	// canMerge decides whether other should be absorbed into current
	canMerge func(current, other *TextGroup) bool

	// reach, when set, bounds how far apart two mergeable groups can be.
	// Candidates are then looked up in an R-tree instead of scanning every
	// pair.
	reach func(g *TextGroup) float64

	// compile turns a surviving group into its output block
	compile func(g *TextGroup) *model.Block
}

func (c clusterMerge) merge(ctx context.Context, blocks []*model.Block) ([]*model.Block, error) {
	if len(blocks) < 2 {
		out := make([]*model.Block, len(blocks))
		copy(out, blocks)
		if c.compile != nil && len(blocks) == 1 {
			return c.compileSingle(ctx, blocks[0])
		}
		return out, nil
	}

	handles, err := c.pool.Pull(ctx, len(blocks))
	if err != nil {
		return nil, err
	}
	alive := make([]bool, len(handles))
	for i := range alive {
		alive[i] = true
	}
	defer func() {
		var held []GroupHandle
		for i, h := range handles {
			if alive[i] {
				held = append(held, h)
			}
		}
		_ = c.pool.Release(held...)
	}()

	groups := make([]*TextGroup, len(handles))
	for i, h := range handles {
		groups[i] = c.pool.Group(h)
		if err := groups[i].Push(blocks[i]); err != nil {
			return nil, err
		}
	}

	absorb := func(i, j int) error {
		if err := groups[i].Consume(groups[j]); err != nil {
			return err
		}
		alive[j] = false
		return c.pool.Release(handles[j])
	}

	if c.reach != nil {
		err = c.indexedPass(ctx, groups, alive, absorb)
	} else {
		err = c.scanPass(ctx, groups, alive, absorb)
	}
	if err != nil {
		return nil, err
	}

	compile := c.compile
	if compile == nil {
		compile = (*TextGroup).Compile
	}
	var out []*model.Block
	for i, g := range groups {
		if !alive[i] {
			continue
		}
		if b := compile(g); b != nil {
			out = append(out, b)
		}
	}
	return out, nil
}

func (c clusterMerge) compileSingle(ctx context.Context, b *model.Block) ([]*model.Block, error) {
	handles, err := c.pool.Pull(ctx, 1)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.pool.Release(handles...) }()

	g := c.pool.Group(handles[0])
	if err := g.Push(b); err != nil {
		return nil, err
	}
	if out := c.compile(g); out != nil {
		return []*model.Block{out}, nil
	}
	return nil, nil
}

// scanPass compares every live pair until a full pass merges nothing
func (c clusterMerge) scanPass(ctx context.Context, groups []*TextGroup, alive []bool, absorb func(i, j int) error) error {
	for changed := true; changed; {
		changed = false
		for i := range groups {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !alive[i] {
				continue
			}
			for j := range groups {
				if j == i || !alive[j] {
					continue
				}
				if c.canMerge(groups[i], groups[j]) {
					if err := absorb(i, j); err != nil {
						return err
					}
					changed = true
				}
			}
		}
	}
	return nil
}

type rect struct {
	min, max [2]float64
}

func rectOf(g *TextGroup) rect {
	b := g.WorldArea().Bounds()
	return rect{min: [2]float64{b.MinX, b.MinY}, max: [2]float64{b.MaxX, b.MaxY}}
}

// indexedPass is scanPass restricted to the candidates an R-tree returns
// within reach of each group. Candidates are visited in input order so the
// result matches a full scan.
func (c clusterMerge) indexedPass(ctx context.Context, groups []*TextGroup, alive []bool, absorb func(i, j int) error) error {
	var tr rtree.RTreeG[int]
	rects := make([]rect, len(groups))
	for i, g := range groups {
		rects[i] = rectOf(g)
		tr.Insert(rects[i].min, rects[i].max, i)
	}

	for changed := true; changed; {
		changed = false
		for i := range groups {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !alive[i] {
				continue
			}

			r := c.reach(groups[i])
			var candidates []int
			tr.Search(
				[2]float64{rects[i].min[0] - r, rects[i].min[1] - r},
				[2]float64{rects[i].max[0] + r, rects[i].max[1] + r},
				func(_, _ [2]float64, j int) bool {
					if j != i && alive[j] {
						candidates = append(candidates, j)
					}
					return true
				},
			)
			sort.Ints(candidates)

			grown := false
			for _, j := range candidates {
				if !c.canMerge(groups[i], groups[j]) {
					continue
				}
				if err := absorb(i, j); err != nil {
					return err
				}
				tr.Delete(rects[j].min, rects[j].max, j)
				grown = true
				changed = true
			}

			if grown {
				tr.Delete(rects[i].min, rects[i].max, i)
				rects[i] = rectOf(groups[i])
				tr.Insert(rects[i].min, rects[i].max, i)
			}
		}
	}
	return nil
}

package layout

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/google/uuid"
	"github.com/tsawler/pdfblocks/font"
	"github.com/tsawler/pdfblocks/model"
)

// MaxSiblingMerges bounds the number of passes a sibling strategy makes
const MaxSiblingMerges = 5000

// siblingRules are the parts of a sibling strategy that differ between the
// horizontal and vertical variants.
type siblingRules interface {
	// sortKey orders blocks so that a source precedes its targets
	sortKey(b *model.Block) (primary, secondary float64)

	// adjacent decides whether target continues source
	adjacent(source, target *model.Block, sourceFont, targetFont model.FontMeta) bool

	// combine builds the merged text
	combine(source, target *model.Block) string
}

// siblingMerge is the engine behind the sibling strategies. It works on
// plain slices: each block looks forward for the first compatible neighbour
// it continues or is continued by, and the pair is replaced by a new merged
// block.
type siblingMerge struct {
	fonts font.Provider
	rules siblingRules
}

func (m siblingMerge) merge(ctx context.Context, blocks []*model.Block) ([]*model.Block, error) {
	list := make([]*model.Block, len(blocks))
	copy(list, blocks)

	fonts := make(map[uuid.UUID]model.FontMeta)
	for pass := 0; pass < MaxSiblingMerges; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		before := len(list)
		list = m.tryMerge(list, fonts)
		if len(list) == before {
			break
		}
	}
	return list, nil
}

func (m siblingMerge) tryMerge(list []*model.Block, fonts map[uuid.UUID]model.FontMeta) []*model.Block {
	keys := make(map[*model.Block][2]float64, len(list))
	for _, b := range list {
		p, s := m.rules.sortKey(b)
		keys[b] = [2]float64{p, s}
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := keys[list[i]], keys[list[j]]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		return a[1] < b[1]
	})

	for i := 0; i < len(list); i++ {
		current := list[i]
		currentFont, ok := m.font(current, fonts)
		if !ok {
			continue
		}

		for j := i + 1; j < len(list); j++ {
			next := list[j]
			nextFont, ok := m.font(next, fonts)
			if !ok || !compatible(current, next, currentFont, nextFont) {
				continue
			}

			// Sort keys are bucketed, so a pair straddling a bucket edge
			// can come out reversed
			source, target := current, next
			switch {
			case m.rules.adjacent(current, next, currentFont, nextFont):
			case m.rules.adjacent(next, current, nextFont, currentFont):
				source, target = next, current
			default:
				continue
			}

			list[i] = mergeSiblings(source, target, m.rules.combine(source, target))
			list = append(list[:j], list[j+1:]...)

			// Continue from the merged block
			i--
			break
		}
	}
	return list
}

// font resolves the metadata of a block's font. Without a provider the
// font UID alone identifies the font.
func (m siblingMerge) font(b *model.Block, cache map[uuid.UUID]model.FontMeta) (model.FontMeta, bool) {
	uid := b.Text.FontUID
	if meta, ok := cache[uid]; ok {
		return meta, true
	}
	if m.fonts == nil {
		meta := model.FontMeta{UID: uid, Size: b.Text.FontLevel}
		cache[uid] = meta
		return meta, true
	}
	meta, err := m.fonts.Get(uid)
	if err != nil {
		return model.FontMeta{}, false
	}
	cache[uid] = meta
	return meta, true
}

func compatible(a, b *model.Block, af, bf model.FontMeta) bool {
	if af.Name != "" || bf.Name != "" {
		if !strings.EqualFold(af.Name, bf.Name) {
			return false
		}
	} else if af.UID != bf.UID {
		return false
	}

	return model.NearlyEqual(af.Size, bf.Size) &&
		model.NearlyEqual(af.LineSizePoints, bf.LineSizePoints) &&
		model.NearlyEqual(a.Text.Scale, b.Text.Scale) &&
		model.NearlyEqual(a.Text.Magnitude, b.Text.Magnitude) &&
		model.NearlyEqual(a.Text.LineSize, b.Text.LineSize)
}

// edgeGap measures how target continues source along line: the distance
// from the source corner to the target corner projected on line, and how
// far the target corner drifts across it.
func edgeGap(line model.Vector, from, to model.Point) (along, across float64) {
	u := line.Normalize()
	diff := model.Diff(from, to)
	return diff.Dot(u), math.Abs(diff.Cross(u))
}

// parallel reports whether two edges are aligned within tolerance
func parallel(a, b model.Vector) bool {
	if a.Length() == 0 || b.Length() == 0 {
		return false
	}
	return model.RadianAngle(a, b, true) <= model.AlignMagnitudeTolerance
}

// mergeSiblings creates the block replacing source and target. Fields other
// than text, area, ids and tags come from source.
func mergeSiblings(source, target *model.Block, text string) *model.Block {
	ids := roaring.New()
	ids.AddMany(source.Text.TextBoxIDs)
	ids.AddMany(target.Text.TextBoxIDs)
	var textBoxIDs []uint32
	if !ids.IsEmpty() {
		textBoxIDs = ids.ToArray()
	}

	data := *source.Text
	data.Text = text
	data.TextBoxIDs = textBoxIDs
	data.SpaceWidth = math.Max(source.Text.SpaceWidth, target.Text.SpaceWidth)

	area := model.BoundingArea(model.FrameOf(source.Area), source.Area, target.Area)
	merged := model.NewTextBlock(area, data, model.MergeTags(source.Tags, target.Tags))

	if children := append(append([]*model.Block(nil), source.Children...), target.Children...); len(children) > 0 {
		merged.Children = distinctBlocks(children)
	}
	return merged
}

func distinctBlocks(blocks []*model.Block) []*model.Block {
	seen := make(map[uuid.UUID]bool, len(blocks))
	out := blocks[:0]
	for _, b := range blocks {
		if !seen[b.UID] {
			seen[b.UID] = true
			out = append(out, b)
		}
	}
	return out
}

// bucket snaps v to a grid of the given step so that small jitter does not
// break a row or a column apart
func bucket(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Floor(v / step)
}

package layout

import (
	"errors"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/tsawler/pdfblocks/model"
	"github.com/tsawler/pdfblocks/text"
)

// ErrNotText is returned when a non-text block is pushed into a group
var ErrNotText = errors.New("block is not a text block")

// TextGroup accumulates text blocks that will be compiled into one block.
// Geometry is tracked in the local frame of the first block pushed (the
// referential), so rotated text is measured along its own baseline.
type TextGroup struct {
	members    []*model.Block
	frame      model.Frame
	local      model.Bounds
	textBoxIDs *roaring.Bitmap
	lineSize   float64
	spaceWidth float64
	tags       []model.Tag
}

// NewTextGroup creates an unpooled group
func NewTextGroup() *TextGroup {
	return &TextGroup{}
}

// Push adds a text block to the group and updates the aggregates
func (g *TextGroup) Push(b *model.Block) error {
	if !b.IsText() {
		return ErrNotText
	}
	if g.textBoxIDs == nil {
		g.textBoxIDs = roaring.New()
	}

	if len(g.members) == 0 {
		g.frame = model.FrameOf(b.Area)
		g.local = g.frame.LocalBounds(b.Area)
		g.lineSize = b.Text.LineSize
		g.spaceWidth = b.Text.SpaceWidth
	} else {
		lb := g.frame.LocalBounds(b.Area)
		g.local = g.local.Extend(model.Point{X: lb.MinX, Y: lb.MinY}).Extend(model.Point{X: lb.MaxX, Y: lb.MaxY})
		g.lineSize = math.Min(g.lineSize, b.Text.LineSize)
		g.spaceWidth = math.Max(g.spaceWidth, b.Text.SpaceWidth)
	}

	g.members = append(g.members, b)
	g.textBoxIDs.AddMany(b.Text.TextBoxIDs)
	g.tags = model.MergeTags(g.tags, b.Tags)
	return nil
}

// Consume pushes every member of other into g. other is left unchanged.
func (g *TextGroup) Consume(other *TextGroup) error {
	for _, m := range other.members {
		if err := g.Push(m); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of members
func (g *TextGroup) Len() int { return len(g.members) }

// Referential returns the first block pushed, or nil for an empty group
func (g *TextGroup) Referential() *model.Block {
	if len(g.members) == 0 {
		return nil
	}
	return g.members[0]
}

// Members returns the members in push order
func (g *TextGroup) Members() []*model.Block {
	out := make([]*model.Block, len(g.members))
	copy(out, g.members)
	return out
}

// Frame returns the local frame of the group
func (g *TextGroup) Frame() model.Frame { return g.frame }

// LocalBounds returns the group extent in its local frame
func (g *TextGroup) LocalBounds() model.Bounds { return g.local }

// WorldArea returns the group extent in page space
func (g *TextGroup) WorldArea() model.Area { return g.frame.WorldArea(g.local) }

// LineSize is the smallest line size among the members
func (g *TextGroup) LineSize() float64 { return g.lineSize }

// SpaceWidth is the largest space width among the members
func (g *TextGroup) SpaceWidth() float64 { return g.spaceWidth }

// Magnitude is the orientation of the referential block
func (g *TextGroup) Magnitude() float64 {
	if ref := g.Referential(); ref != nil {
		return ref.Text.Magnitude
	}
	return 0
}

// TextBoxIDs returns the distinct text-box ids of all members, ascending
func (g *TextGroup) TextBoxIDs() []uint32 {
	if g.textBoxIDs == nil || g.textBoxIDs.IsEmpty() {
		return nil
	}
	return g.textBoxIDs.ToArray()
}

// SameTextBoxes reports whether both groups carry the same non-empty set of
// text-box ids
func (g *TextGroup) SameTextBoxes(other *TextGroup) bool {
	if g.textBoxIDs == nil || other.textBoxIDs == nil {
		return false
	}
	if g.textBoxIDs.IsEmpty() || other.textBoxIDs.IsEmpty() {
		return false
	}
	return g.textBoxIDs.Equals(other.textBoxIDs)
}

// Tags returns the union of the members' tags
func (g *TextGroup) Tags() []model.Tag {
	out := make([]model.Tag, len(g.tags))
	copy(out, g.tags)
	return out
}

// IsInHorizontalLimit reports whether other's extent, measured in g's frame,
// shares part of g's vertical range, i.e. the two sit on a common line.
func (g *TextGroup) IsInHorizontalLimit(other *TextGroup) bool {
	ob := g.frame.LocalBounds(other.WorldArea())
	return ob.MaxY >= g.local.MinY-model.EqualityTolerance &&
		ob.MinY <= g.local.MaxY+model.EqualityTolerance
}

// IsInVerticalLimit reports whether other's extent, measured in g's frame,
// shares part of g's horizontal range, i.e. the two are stacked.
func (g *TextGroup) IsInVerticalLimit(other *TextGroup) bool {
	ob := g.frame.LocalBounds(other.WorldArea())
	return ob.MaxX >= g.local.MinX-model.EqualityTolerance &&
		ob.MinX <= g.local.MaxX+model.EqualityTolerance
}

type placedMember struct {
	block *model.Block
	local model.Bounds
	row   float64
	index int
}

// OrderedMembers returns the members in reading order: rows from top to
// bottom, bucketed by half a line size, then left to right (right to left
// for rows whose text is right-to-left).
func (g *TextGroup) OrderedMembers() []*model.Block {
	placed := g.place()
	out := make([]*model.Block, len(placed))
	for i, p := range placed {
		out[i] = p.block
	}
	return out
}

func (g *TextGroup) place() []placedMember {
	half := g.lineSize / 2
	placed := make([]placedMember, len(g.members))
	for i, m := range g.members {
		lb := g.frame.LocalBounds(m.Area)
		row := lb.MinY
		if half > 0 {
			row = math.Floor(lb.MinY / half)
		}
		placed[i] = placedMember{block: m, local: lb, row: row, index: i}
	}

	sort.SliceStable(placed, func(i, j int) bool {
		if placed[i].row != placed[j].row {
			return placed[i].row < placed[j].row
		}
		if placed[i].local.MinX != placed[j].local.MinX {
			return placed[i].local.MinX < placed[j].local.MinX
		}
		return placed[i].index < placed[j].index
	})

	// Reverse runs of right-to-left rows
	for start := 0; start < len(placed); {
		end := start + 1
		for end < len(placed) && placed[end].row == placed[start].row {
			end++
		}
		var row string
		for _, p := range placed[start:end] {
			row += p.block.Text.Text
		}
		if text.DetectDirection(row) == text.RTL {
			for i, j := start, end-1; i < j; i, j = i+1, j-1 {
				placed[i], placed[j] = placed[j], placed[i]
			}
		}
		start = end
	}
	return placed
}

// Compile turns the group into a single block. A one-member group returns
// its member unchanged; an empty group returns nil.
func (g *TextGroup) Compile() *model.Block {
	switch len(g.members) {
	case 0:
		return nil
	case 1:
		return g.members[0]
	}

	placed := g.place()
	half := g.lineSize / 2

	s := placed[0].block.Text.Text
	for i := 1; i < len(placed); i++ {
		prev, cur := placed[i-1], placed[i]
		next := cur.block.Text.Text

		if math.Abs(cur.local.MinY-prev.local.MinY) > half {
			s = text.JoinLines(s, next)
			continue
		}

		gap := cur.local.MinX - prev.local.MaxX
		if cur.local.MinX < prev.local.MinX {
			gap = prev.local.MinX - cur.local.MaxX
		}
		if text.NeedsSpace(s, next, gap, g.spaceWidth) {
			s += " "
		}
		s += next
	}

	ref := g.members[0].Text
	return model.NewTextBlock(g.WorldArea(), model.TextData{
		FontLevel:  ref.FontLevel,
		PointValue: ref.PointValue,
		LineSize:   g.lineSize,
		Scale:      ref.Scale,
		Magnitude:  ref.Magnitude,
		Text:       s,
		FontUID:    ref.FontUID,
		SpaceWidth: g.spaceWidth,
		TextBoxIDs: g.TextBoxIDs(),
	}, g.tags)
}

func (g *TextGroup) reset() {
	for i := range g.members {
		g.members[i] = nil
	}
	g.members = g.members[:0]
	g.frame = model.Frame{}
	g.local = model.Bounds{}
	if g.textBoxIDs != nil {
		g.textBoxIDs.Clear()
	}
	g.lineSize = 0
	g.spaceWidth = 0
	g.tags = nil
}

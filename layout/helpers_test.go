package layout

import (
	"sort"

	"github.com/google/uuid"
	"github.com/tsawler/pdfblocks/model"
)

var testFontUID = uuid.MustParse("6f1c7a2e-3b9d-4f0e-9a51-2d7c8e4b1a30")

// makeText builds a leaf text block with line size equal to its height and
// a space width of 5
func makeText(s string, x, y, w, h float64) *model.Block {
	return model.NewTextBlock(model.NewRectArea(x, y, w, h), model.TextData{
		FontLevel:  h,
		PointValue: h,
		LineSize:   h,
		Scale:      1,
		Text:       s,
		FontUID:    testFontUID,
		SpaceWidth: 5,
	}, nil)
}

func withTextBoxes(b *model.Block, ids ...uint32) *model.Block {
	data := *b.Text
	data.TextBoxIDs = ids
	return model.NewTextBlock(b.Area, data, b.Tags)
}

func makeImage(x, y, w, h float64) *model.Block {
	return model.NewImageBlock(model.NewRectArea(x, y, w, h), model.ImageData{Name: "Im1"}, nil)
}

func texts(blocks []*model.Block) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.IsText() {
			out = append(out, b.Text.Text)
		}
	}
	sort.Strings(out)
	return out
}

type fontMap map[uuid.UUID]model.FontMeta

func (m fontMap) Get(uid uuid.UUID) (model.FontMeta, error) {
	meta, ok := m[uid]
	if !ok {
		return model.FontMeta{}, errUnknownTestFont
	}
	return meta, nil
}

type testError string

func (e testError) Error() string { return string(e) }

const errUnknownTestFont = testError("unknown font")

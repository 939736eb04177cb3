package reader

import (
	"testing"

	"github.com/tsawler/pdfblocks/model"
)

func TestGraphicsStateSaveRestore(t *testing.T) {
	gs := NewGraphicsState()

	gs.Save()
	gs.Transform(model.Scale(2, 2))
	gs.SetFont("F1", 20, nil)
	if gs.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", gs.Depth())
	}

	if err := gs.Restore(); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if gs.CTM != model.Identity() {
		t.Errorf("CTM = %v, want identity", gs.CTM)
	}
	if gs.Text.FontSize != 12 {
		t.Errorf("FontSize = %v, want 12", gs.Text.FontSize)
	}

	if err := gs.Restore(); err != errStackUnderflow {
		t.Errorf("Restore() on empty stack = %v, want errStackUnderflow", err)
	}
}

func TestGraphicsStateTextPositioning(t *testing.T) {
	gs := NewGraphicsState()
	gs.BeginText()

	gs.TranslateTextSetLeading(10, -14)
	if gs.Text.Leading != 14 {
		t.Errorf("Leading = %v, want 14", gs.Text.Leading)
	}

	gs.Advance(30)
	p := gs.RenderMatrix().Transform(model.Point{})
	if !closeTo(p.X, 40) || !closeTo(p.Y, -14) {
		t.Errorf("origin after Advance = %v, want {40 -14}", p)
	}

	// T* returns to the line start, not the advanced position
	gs.NextLine()
	p = gs.RenderMatrix().Transform(model.Point{})
	if !closeTo(p.X, 10) || !closeTo(p.Y, -28) {
		t.Errorf("origin after T* = %v, want {10 -28}", p)
	}
}

func TestGraphicsStateRenderMatrix(t *testing.T) {
	tests := []struct {
		name      string
		ctm       model.Matrix
		tm        model.Matrix
		size      float64
		wantSize  float64
		wantAngle float64
	}{
		{"identity", model.Identity(), model.Identity(), 12, 12, 0},
		{"ctm scale", model.Scale(2, 2), model.Identity(), 10, 20, 0},
		{"text matrix scale", model.Identity(), model.Scale(12, 12), 1, 12, 0},
		{"rotated 90", model.Identity(), model.Matrix{0, 1, -1, 0, 0, 0}, 10, 10, 90},
		{"upside down", model.Matrix{-1, 0, 0, -1, 0, 0}, model.Identity(), 10, 10, 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := NewGraphicsState()
			gs.Transform(tt.ctm)
			gs.SetTextMatrix(tt.tm)
			gs.SetFont("F1", tt.size, nil)

			if got := gs.EffectiveFontSize(); !closeTo(got, tt.wantSize) {
				t.Errorf("EffectiveFontSize() = %v, want %v", got, tt.wantSize)
			}
			if got := gs.BaselineAngle(); got != tt.wantAngle {
				t.Errorf("BaselineAngle() = %v, want %v", got, tt.wantAngle)
			}
		})
	}
}

func TestGraphicsStateConcatOrder(t *testing.T) {
	gs := NewGraphicsState()
	gs.Transform(model.Translate(100, 0))
	gs.Transform(model.Scale(2, 2))

	// the later cm applies first
	p := gs.CTM.Transform(model.Point{X: 1, Y: 1})
	if !closeTo(p.X, 102) || !closeTo(p.Y, 2) {
		t.Errorf("Transform() = %v, want {102 2}", p)
	}
}

package reader

import (
	"bytes"
	"errors"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestPixelImageToPNG(t *testing.T) {
	tests := []struct {
		name    string
		img     pixelImage
		wantErr bool
	}{
		{"gray 8", pixelImage{2, 2, 1, 8, []byte{0, 64, 128, 255}}, false},
		{"rgb 8", pixelImage{1, 2, 3, 8, []byte{255, 0, 0, 0, 255, 0}}, false},
		{"cmyk 8", pixelImage{1, 1, 4, 8, []byte{0, 0, 0, 255}}, false},
		{"gray 1 padded rows", pixelImage{3, 2, 1, 1, []byte{0xA0, 0x40}}, false},
		{"gray 4", pixelImage{2, 1, 1, 4, []byte{0xF0}}, false},
		{"short data", pixelImage{4, 4, 3, 8, []byte{1, 2, 3}}, true},
		{"bad bpc", pixelImage{1, 1, 1, 16, []byte{0, 0}}, true},
		{"bad components", pixelImage{1, 1, 2, 8, []byte{0, 0}}, true},
		{"zero size", pixelImage{0, 1, 1, 8, nil}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.img.ToPNG()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToPNG() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			decoded, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("png.Decode() error = %v", err)
			}
			if b := decoded.Bounds(); b.Dx() != tt.img.Width || b.Dy() != tt.img.Height {
				t.Errorf("bounds = %v, want %dx%d", b, tt.img.Width, tt.img.Height)
			}
		})
	}
}

func TestPixelImageOneBitSamples(t *testing.T) {
	img := pixelImage{Width: 3, Height: 1, Components: 1, BitsPerComponent: 1, Data: []byte{0xA0}}
	goImg, err := img.toImage()
	if err != nil {
		t.Fatal(err)
	}

	want := []uint32{0xFFFF, 0, 0xFFFF}
	for x, w := range want {
		if g, _, _, _ := goImg.At(x, 0).RGBA(); g != w {
			t.Errorf("pixel %d = %#x, want %#x", x, g, w)
		}
	}
}

func TestImageIndexLookup(t *testing.T) {
	data := samplePDF(sampleContent)
	x := newImageIndex(func() io.ReadSeeker { return bytes.NewReader(data) }, logrus.StandardLogger())

	res, err := x.Lookup(1, "Im1")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if res.FileType != "png" || res.Name != "Im1" {
		t.Errorf("Lookup() = %+v", res)
	}

	if _, err := x.Lookup(1, "Missing"); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("Lookup(Missing) error = %v, want ErrImageNotFound", err)
	}
}

func TestImageIndexUnreadable(t *testing.T) {
	logger, hook := test.NewNullLogger()
	x := newImageIndex(func() io.ReadSeeker { return strings.NewReader("garbage") }, logger)

	if _, err := x.Lookup(1, "Im1"); err == nil {
		t.Fatal("expected error for unreadable document")
	}
	if _, err := x.Lookup(1, "Im1"); err == nil {
		t.Fatal("expected error on repeated lookup")
	}
	if len(hook.Entries) != 1 {
		t.Errorf("logged %d entries, want 1", len(hook.Entries))
	}
}

package images

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/tsawler/pdfblocks/model"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAddDeduplicates(t *testing.T) {
	store := NewStore()
	data := encodePNG(t, 4, 3)

	a, err := store.Add(model.ImageResource{Name: "Im1", Data: data})
	require.NoError(t, err)
	b, err := store.Add(model.ImageResource{Name: "Im7", Data: append([]byte(nil), data...)})
	require.NoError(t, err)

	assert.Equal(t, a.UID, b.UID)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, "png", a.Type)
	assert.Equal(t, ".png", a.Extension)
	assert.Equal(t, 4, a.Width)
	assert.Equal(t, 3, a.Height)
	assert.Equal(t, Hash(data), a.Hash)
	assert.Empty(t, a.EncodedData)
}

func TestAddTIFF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, image.NewGray(image.Rect(0, 0, 5, 7)), nil))

	meta, err := NewStore().Add(model.ImageResource{Name: "Im2", Data: buf.Bytes()})
	require.NoError(t, err)
	assert.Equal(t, "tiff", meta.Type)
	assert.Equal(t, 5, meta.Width)
	assert.Equal(t, 7, meta.Height)
}

func TestAddRawPixelsUsesDeclaredSize(t *testing.T) {
	meta, err := NewStore().Add(model.ImageResource{
		Name:   "Im3",
		Data:   []byte{1, 2, 3, 4, 5, 6},
		Width:  2,
		Height: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "raw", meta.Type)
	assert.Equal(t, ".bin", meta.Extension)
	assert.Equal(t, 2, meta.Width)
}

func TestAddErrors(t *testing.T) {
	store := NewStore()

	_, err := store.Add(model.ImageResource{Name: "empty"})
	assert.True(t, errors.Is(err, ErrEmptyImage))

	_, err = store.Add(model.ImageResource{Name: "junk", Data: []byte("not an image")})
	assert.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestInlineData(t *testing.T) {
	store := NewStoreWithConfig(StoreConfig{InlineData: true})
	meta, err := store.Add(model.ImageResource{Name: "Im1", Data: encodePNG(t, 1, 1)})
	require.NoError(t, err)
	assert.NotEmpty(t, meta.EncodedData)
}

func TestAddConcurrent(t *testing.T) {
	store := NewStore()
	data := encodePNG(t, 2, 2)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Add(model.ImageResource{Name: "Im1", Data: data})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.Len())
	assert.Len(t, store.All(), 1)
}

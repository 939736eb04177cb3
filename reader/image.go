package reader

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sirupsen/logrus"
	"github.com/tsawler/pdfblocks/model"
)

// ErrImageNotFound is returned for an image name missing from the page
// resources
var ErrImageNotFound = errors.New("image resource not found")

// imageIndex loads image XObjects with pdfcpu. The document is parsed on
// first use and each page is indexed once, by resource name.
type imageIndex struct {
	open   func() io.ReadSeeker
	logger logrus.FieldLogger

	once sync.Once
	ctx  *pdfmodel.Context
	err  error

	mu    sync.Mutex
	pages map[int]map[string]imageEntry
}

type imageEntry struct {
	resource *model.ImageResource
	err      error
}

func newImageIndex(open func() io.ReadSeeker, logger logrus.FieldLogger) *imageIndex {
	return &imageIndex{
		open:   open,
		logger: logger,
		pages:  make(map[int]map[string]imageEntry),
	}
}

func (x *imageIndex) context() (*pdfmodel.Context, error) {
	x.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				x.err = fmt.Errorf("failed to read image resources: %v", r)
			}
			if x.err != nil {
				x.logger.WithField("error", x.err).Warn("image payloads disabled")
			}
		}()

		ctx, err := api.ReadContext(x.open(), pdfmodel.NewDefaultConfiguration())
		if err != nil {
			x.err = fmt.Errorf("failed to read image resources: %w", err)
			return
		}
		if err := ctx.EnsurePageCount(); err != nil {
			x.err = fmt.Errorf("failed to count pages: %w", err)
			return
		}
		x.ctx = ctx
	})
	return x.ctx, x.err
}

// Lookup returns the payload of the image XObject name on page n
func (x *imageIndex) Lookup(n int, name string) (*model.ImageResource, error) {
	entries, err := x.page(n)
	if err != nil {
		return nil, err
	}
	entry, ok := entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, name)
	}
	return entry.resource, entry.err
}

func (x *imageIndex) page(n int) (map[string]imageEntry, error) {
	ctx, err := x.context()
	if err != nil {
		return nil, err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if entries, ok := x.pages[n]; ok {
		return entries, nil
	}

	pageDict, _, _, err := ctx.PageDict(n, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load page %d: %w", n, err)
	}

	entries := make(map[string]imageEntry)
	x.collect(ctx, pageResources(ctx, pageDict), entries, 0)
	x.pages[n] = entries
	return entries, nil
}

// pageResources returns the resources of a page, inherited from the page
// tree when the page has none
func pageResources(ctx *pdfmodel.Context, pageDict types.Dict) types.Dict {
	node := pageDict
	for i := 0; node != nil && i < 32; i++ {
		if obj, found := node.Find("Resources"); found {
			if res, err := ctx.DereferenceDict(obj); err == nil {
				return res
			}
		}
		parent, found := node.Find("Parent")
		if !found {
			break
		}
		next, err := ctx.DereferenceDict(parent)
		if err != nil {
			break
		}
		node = next
	}
	return nil
}

// collect indexes the images of resources, then those of nested forms.
// Names already indexed keep their first entry.
func (x *imageIndex) collect(ctx *pdfmodel.Context, resources types.Dict, entries map[string]imageEntry, depth int) {
	if resources == nil || depth > maxFormDepth {
		return
	}
	obj, found := resources.Find("XObject")
	if !found {
		return
	}
	xobjects, err := ctx.DereferenceDict(obj)
	if err != nil || xobjects == nil {
		return
	}

	var forms []*types.StreamDict
	for name, obj := range xobjects {
		sd, _, err := ctx.DereferenceStreamDict(obj)
		if err != nil || sd == nil {
			continue
		}
		switch subtype(sd.Dict) {
		case "Image":
			if _, ok := entries[name]; !ok {
				res, err := decodeImage(ctx, name, sd)
				entries[name] = imageEntry{resource: res, err: err}
			}
		case "Form":
			forms = append(forms, sd)
		}
	}

	for _, form := range forms {
		if obj, found := form.Dict.Find("Resources"); found {
			if res, err := ctx.DereferenceDict(obj); err == nil {
				x.collect(ctx, res, entries, depth+1)
			}
		}
	}
}

func subtype(d types.Dict) string {
	obj, found := d.Find("Subtype")
	if !found {
		return ""
	}
	name, _ := obj.(types.Name)
	return string(name)
}

func intEntry(ctx *pdfmodel.Context, d types.Dict, key string) int {
	obj, found := d.Find(key)
	if !found {
		return 0
	}
	obj, err := ctx.Dereference(obj)
	if err != nil {
		return 0
	}
	switch v := obj.(type) {
	case types.Integer:
		return int(v)
	case types.Float:
		return int(v)
	}
	return 0
}

// decodeImage turns an image XObject into a resource. JPEG and JPEG 2000
// payloads are kept as is; other images are decoded to pixels and
// re-encoded as PNG.
func decodeImage(ctx *pdfmodel.Context, name string, sd *types.StreamDict) (*model.ImageResource, error) {
	res := &model.ImageResource{
		Name:   name,
		Width:  intEntry(ctx, sd.Dict, "Width"),
		Height: intEntry(ctx, sd.Dict, "Height"),
	}

	var last string
	if n := len(sd.FilterPipeline); n > 0 {
		last = sd.FilterPipeline[n-1].Name
	}

	switch last {
	case "DCTDecode", "JPXDecode":
		res.FileType = "jpg"
		if last == "JPXDecode" {
			res.FileType = "jp2"
		}
		if len(sd.FilterPipeline) == 1 {
			res.Data = sd.Raw
			return res, nil
		}
	}

	if err := sd.Decode(); err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", name, err)
	}
	if res.FileType != "" {
		res.Data = sd.Content
		return res, nil
	}

	pixels := pixelImage{
		Width:            res.Width,
		Height:           res.Height,
		Components:       colorComponents(ctx, sd.Dict),
		BitsPerComponent: intEntry(ctx, sd.Dict, "BitsPerComponent"),
		Data:             sd.Content,
	}
	if pixels.BitsPerComponent == 0 {
		pixels.BitsPerComponent = 8
	}

	encoded, err := pixels.ToPNG()
	if err != nil {
		// Keep the raw samples; the declared size still describes them
		res.Data = sd.Content
		res.FileType = "raw"
		return res, nil
	}
	res.Data = encoded
	res.FileType = "png"
	return res, nil
}

// colorComponents returns the number of color components of an image's
// color space: 1, 3 or 4
func colorComponents(ctx *pdfmodel.Context, d types.Dict) int {
	obj, found := d.Find("ColorSpace")
	if !found {
		return 1
	}
	return componentsOf(ctx, obj, 0)
}

func componentsOf(ctx *pdfmodel.Context, obj types.Object, depth int) int {
	obj, err := ctx.Dereference(obj)
	if err != nil || depth > 4 {
		return 1
	}

	switch v := obj.(type) {
	case types.Name:
		switch v {
		case "DeviceRGB", "CalRGB", "Lab":
			return 3
		case "DeviceCMYK":
			return 4
		}
		return 1
	case types.Array:
		if len(v) == 0 {
			return 1
		}
		family, _ := v[0].(types.Name)
		switch {
		case family == "ICCBased" && len(v) > 1:
			if sd, _, err := ctx.DereferenceStreamDict(v[1]); err == nil && sd != nil {
				if n := intEntry(ctx, sd.Dict, "N"); n == 3 || n == 4 {
					return n
				}
			}
			return 1
		case family == "Indexed":
			// Index samples are single component
			return 1
		default:
			return componentsOf(ctx, family, depth+1)
		}
	}
	return 1
}

// pixelImage is decoded image sample data
type pixelImage struct {
	Width            int
	Height           int
	Components       int
	BitsPerComponent int
	Data             []byte
}

// ToPNG converts the samples to PNG
func (img pixelImage) ToPNG() ([]byte, error) {
	goImg, err := img.toImage()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, goImg); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func (img pixelImage) toImage() (image.Image, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", img.Width, img.Height)
	}
	bpc := img.BitsPerComponent
	if bpc != 1 && bpc != 2 && bpc != 4 && bpc != 8 {
		return nil, fmt.Errorf("unsupported bits per component: %d", bpc)
	}

	// Rows are padded to whole bytes
	rowBytes := (img.Width*img.Components*bpc + 7) / 8
	if need := rowBytes * img.Height; len(img.Data) < need {
		return nil, fmt.Errorf("insufficient data: got %d, expected %d", len(img.Data), need)
	}

	maxSample := float64(int(1)<<bpc - 1)
	sample := func(row []byte, i int) uint8 {
		bit := i * bpc
		v := (row[bit/8] >> (8 - bpc - bit%8)) & byte(maxSample)
		return uint8(float64(v) * 255 / maxSample)
	}

	rect := image.Rect(0, 0, img.Width, img.Height)
	switch img.Components {
	case 1:
		out := image.NewGray(rect)
		for y := 0; y < img.Height; y++ {
			row := img.Data[y*rowBytes:]
			for x := 0; x < img.Width; x++ {
				out.SetGray(x, y, color.Gray{Y: sample(row, x)})
			}
		}
		return out, nil
	case 3:
		out := image.NewRGBA(rect)
		for y := 0; y < img.Height; y++ {
			row := img.Data[y*rowBytes:]
			for x := 0; x < img.Width; x++ {
				out.SetRGBA(x, y, color.RGBA{R: sample(row, 3*x), G: sample(row, 3*x+1), B: sample(row, 3*x+2), A: 255})
			}
		}
		return out, nil
	case 4:
		out := image.NewRGBA(rect)
		for y := 0; y < img.Height; y++ {
			row := img.Data[y*rowBytes:]
			for x := 0; x < img.Width; x++ {
				r, g, b := color.CMYKToRGB(sample(row, 4*x), sample(row, 4*x+1), sample(row, 4*x+2), sample(row, 4*x+3))
				out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported color components: %d", img.Components)
}

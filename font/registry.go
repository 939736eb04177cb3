package font

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tsawler/pdfblocks/model"
)

// ErrUnknownFont is returned when a font UID was never registered
var ErrUnknownFont = errors.New("unknown font")

// Provider gives strategies read access to registered font metadata
type Provider interface {
	Get(uid uuid.UUID) (model.FontMeta, error)
}

// sampleGlyphs are measured to estimate the narrowest and widest glyph
var sampleGlyphs = []rune{'A', 'G', 'H', 'i', '0', '6', 'Q', 'P', 'p'}

type registryKey struct {
	name string
	size float64
}

// Registry hands out one FontMeta per (font name, size) pair. It is safe
// for concurrent use by page tasks.
type Registry struct {
	mu    sync.RWMutex
	byKey map[registryKey]model.FontMeta
	byUID map[uuid.UUID]model.FontMeta
	order []uuid.UUID
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byKey: make(map[registryKey]model.FontMeta),
		byUID: make(map[uuid.UUID]model.FontMeta),
	}
}

// AddOrGet returns the metadata registered for program at size, measuring
// and registering it on first use. Font names compare case-insensitively.
func (r *Registry) AddOrGet(size float64, program model.FontProgram) (model.FontMeta, error) {
	if program == nil {
		return model.FontMeta{}, errors.New("font program is nil")
	}
	k := registryKey{
		name: strings.ToLower(program.Name()),
		size: math.Round(size*1000) / 1000,
	}

	r.mu.RLock()
	meta, ok := r.byKey[k]
	r.mu.RUnlock()
	if ok {
		return meta, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another page may have registered it while we waited for the lock
	if meta, ok := r.byKey[k]; ok {
		return meta, nil
	}

	meta = Measure(program, k.size)
	r.byKey[k] = meta
	r.byUID[meta.UID] = meta
	r.order = append(r.order, meta.UID)
	return meta, nil
}

// Get returns the metadata for uid
func (r *Registry) Get(uid uuid.UUID) (model.FontMeta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.byUID[uid]
	if !ok {
		return model.FontMeta{}, fmt.Errorf("%w: %s", ErrUnknownFont, uid)
	}
	return meta, nil
}

// All returns every registered font in registration order
func (r *Registry) All() []model.FontMeta {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.FontMeta, 0, len(r.order))
	for _, uid := range r.order {
		out = append(out, r.byUID[uid])
	}
	return out
}

// Len returns the number of registered fonts
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Measure computes the metadata of program at size without registering it
func Measure(program model.FontProgram, size float64) model.FontMeta {
	meta := model.FontMeta{
		UID:  uuid.New(),
		Name: program.Name(),
		Size: size,
	}

	// Step 1: glyph width range over the sample glyphs
	first := true
	for _, g := range sampleGlyphs {
		w := program.GlyphWidth(g) * size / 1000
		if w <= 0 {
			continue
		}
		if first || w < meta.MinGlyphWidth {
			meta.MinGlyphWidth = w
		}
		if first || w > meta.MaxGlyphWidth {
			meta.MaxGlyphWidth = w
		}
		first = false
	}

	// Step 2: line size from the vertical extent
	meta.LineSizePoints = (program.Ascent() - program.Descent()) * size / 1000
	if meta.LineSizePoints <= 0 {
		meta.LineSizePoints = size
	}

	return meta
}

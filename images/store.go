package images

import (
	"bytes"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	// Decoders registered for image.DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/google/uuid"
	"github.com/tsawler/pdfblocks/model"
)

// ErrEmptyImage is returned when an image resource carries no bytes
var ErrEmptyImage = errors.New("image has no data")

// StoreConfig holds configuration for an image Store
type StoreConfig struct {
	// InlineData keeps the base64 payload of every image in its metadata
	InlineData bool
}

// DefaultStoreConfig returns sensible defaults
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{InlineData: false}
}

// Store deduplicates images by the hash of their bytes. It is safe for
// concurrent use by page tasks.
type Store struct {
	config StoreConfig

	mu     sync.RWMutex
	byHash map[string]model.ImageMeta
	order  []string
}

// NewStore creates a store with default configuration
func NewStore() *Store {
	return NewStoreWithConfig(DefaultStoreConfig())
}

// NewStoreWithConfig creates a store with custom configuration
func NewStoreWithConfig(config StoreConfig) *Store {
	return &Store{
		config: config,
		byHash: make(map[string]model.ImageMeta),
	}
}

// Hash returns the base64 encoded SHA-512 digest of data
func Hash(data []byte) string {
	sum := sha512.Sum512(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Add registers res and returns its metadata. Identical bytes always map
// to the same metadata.
func (s *Store) Add(res model.ImageResource) (model.ImageMeta, error) {
	if len(res.Data) == 0 {
		return model.ImageMeta{}, fmt.Errorf("%w: %s", ErrEmptyImage, res.Name)
	}
	hash := Hash(res.Data)

	s.mu.RLock()
	meta, ok := s.byHash[hash]
	s.mu.RUnlock()
	if ok {
		return meta, nil
	}

	// Decode outside the lock; it is the slow part
	meta, err := s.describe(res, hash)
	if err != nil {
		return model.ImageMeta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byHash[hash]; ok {
		return existing, nil
	}
	s.byHash[hash] = meta
	s.order = append(s.order, hash)
	return meta, nil
}

func (s *Store) describe(res model.ImageResource, hash string) (model.ImageMeta, error) {
	meta := model.ImageMeta{
		UID:    uuid.New(),
		Hash:   hash,
		Width:  res.Width,
		Height: res.Height,
		Type:   strings.ToLower(res.FileType),
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(res.Data))
	switch {
	case err == nil:
		meta.Width = cfg.Width
		meta.Height = cfg.Height
		meta.Type = format
	case res.Width <= 0 || res.Height <= 0:
		return model.ImageMeta{}, fmt.Errorf("failed to read dimensions of image %s: %w", res.Name, err)
	}

	if meta.Type == "" {
		meta.Type = "raw"
	}
	meta.Extension = extensionFor(meta.Type)

	if s.config.InlineData {
		meta.EncodedData = base64.StdEncoding.EncodeToString(res.Data)
	}
	return meta, nil
}

// All returns every registered image in registration order
func (s *Store) All() []model.ImageMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ImageMeta, 0, len(s.order))
	for _, h := range s.order {
		out = append(out, s.byHash[h])
	}
	return out
}

// Len returns the number of distinct images
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func extensionFor(format string) string {
	switch format {
	case "jpeg", "jpg":
		return ".jpg"
	case "jpx", "jp2":
		return ".jp2"
	case "tiff", "tif":
		return ".tif"
	case "png", "gif", "bmp":
		return "." + format
	default:
		return ".bin"
	}
}

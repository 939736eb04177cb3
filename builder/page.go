package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/pdfblocks/font"
	"github.com/tsawler/pdfblocks/images"
	"github.com/tsawler/pdfblocks/layout"
	"github.com/tsawler/pdfblocks/model"
)

// PageInfo describes the page being compiled
type PageInfo struct {
	Number   int
	Width    float64
	Height   float64
	Rotation int
}

// CollectorConfig holds configuration for PageCollector
type CollectorConfig struct {
	// SkipImages drops image placements instead of adding image blocks
	SkipImages bool

	// Logger receives registration failures (default: logrus standard logger)
	Logger logrus.FieldLogger
}

// DefaultCollectorConfig returns sensible default configuration
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		SkipImages: false,
		Logger:     logrus.StandardLogger(),
	}
}

// PageCollector builds the scope tree of one page from render events
type PageCollector struct {
	fonts   *font.Registry
	images  *images.Store
	config  CollectorConfig
	roots   []*Builder
	current *Builder
	glyphs  int
}

// NewPageCollector creates a collector with default configuration. store
// may be nil, in which case image blocks carry no image UID.
func NewPageCollector(fonts *font.Registry, store *images.Store) *PageCollector {
	return NewPageCollectorWithConfig(fonts, store, DefaultCollectorConfig())
}

// NewPageCollectorWithConfig creates a collector with custom configuration
func NewPageCollectorWithConfig(fonts *font.Registry, store *images.Store, config CollectorConfig) *PageCollector {
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	return &PageCollector{
		fonts:  fonts,
		images: store,
		config: config,
	}
}

// Roots returns the top-level scopes opened so far
func (c *PageCollector) Roots() []*Builder {
	return c.roots
}

// BeginText opens a scope nested in the current one
func (c *PageCollector) BeginText() {
	b := NewBuilder(c.current)
	if c.current == nil {
		c.roots = append(c.roots, b)
	}
	c.current = b
}

// EndText closes the current scope. Unbalanced calls are ignored.
func (c *PageCollector) EndText() {
	if c.current != nil {
		c.current = c.current.Parent()
	}
}

// Glyph adds a text block for run to the current scope
func (c *PageCollector) Glyph(run model.GlyphRun) {
	if run.Text == "" {
		return
	}

	meta, err := c.fonts.AddOrGet(run.FontSize, run.Font)
	if err != nil {
		c.config.Logger.WithFields(logrus.Fields{
			"text":  run.Text,
			"error": err,
		}).Warn("dropping text run without usable font")
		return
	}

	c.within(func(b *Builder) {
		b.AddText(run, meta)
	})
	c.glyphs++
}

// Image adds an image block to the current scope. An image painted outside
// any text object gets a scope of its own.
func (c *PageCollector) Image(placement model.ImagePlacement) {
	if c.config.SkipImages {
		return
	}

	meta, err := c.register(placement)
	if err != nil {
		c.config.Logger.WithFields(logrus.Fields{
			"image": placement.Name,
			"error": err,
		}).Warn("failed to register image")
	}

	c.within(func(b *Builder) {
		b.AddImage(placement, meta)
	})
}

func (c *PageCollector) register(placement model.ImagePlacement) (*model.ImageMeta, error) {
	if placement.Err != nil {
		return nil, placement.Err
	}
	if placement.Resource == nil || c.images == nil {
		return nil, nil
	}
	meta, err := c.images.Add(*placement.Resource)
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// within runs fn on the current scope, wrapping it in an implicit scope
// when no text object is open
func (c *PageCollector) within(fn func(b *Builder)) {
	implicit := c.current == nil
	if implicit {
		c.BeginText()
	}
	fn(c.current)
	if implicit {
		c.EndText()
	}
}

// Compile consolidates every root scope, runs strategies once more over the
// whole page and computes relations between the resulting blocks.
func (c *PageCollector) Compile(ctx context.Context, info PageInfo, strategies []layout.Strategy, relations []layout.RelationSpec) (*model.Block, error) {
	// Step 1: consolidate each root scope
	var blocks []*model.Block
	for _, root := range c.roots {
		out, err := root.Consolidate(ctx, strategies)
		if err != nil {
			return nil, fmt.Errorf("failed to consolidate page %d: %w", info.Number, err)
		}
		blocks = append(blocks, out...)
	}

	// Step 2: merge across scopes
	blocks, err := layout.Apply(ctx, strategies, blocks, layout.ApplyOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to consolidate page %d: %w", info.Number, err)
	}

	// Step 3: relations over the consolidated blocks. The page survives a
	// relation failure with no relations; cancellation still aborts it.
	var rels []*model.Block
	if len(relations) > 0 {
		rels, err = layout.ComputeRelations(ctx, blocks, relations)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("failed to compute relations on page %d: %w", info.Number, err)
			}
			c.config.Logger.WithFields(logrus.Fields{
				"page":  info.Number,
				"error": err,
			}).Warn("failed to compute relations")
		}
	}

	c.config.Logger.WithFields(logrus.Fields{
		"page":      info.Number,
		"glyphs":    c.glyphs,
		"blocks":    len(blocks),
		"relations": len(rels),
	}).Debug("page compiled")

	return model.NewPageBlock(
		model.NewRectArea(0, 0, info.Width, info.Height),
		model.PageData{Number: info.Number, Rotation: info.Rotation, Relations: rels},
		blocks,
	), nil
}

package pdfblocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/tsawler/pdfblocks/builder"
	"github.com/tsawler/pdfblocks/font"
	"github.com/tsawler/pdfblocks/images"
	"github.com/tsawler/pdfblocks/layout"
	"github.com/tsawler/pdfblocks/model"
	"github.com/tsawler/pdfblocks/reader"
)

// pageSource is the part of reader.Document the extractor drives
type pageSource interface {
	Name() string
	Version() reader.PDFVersion
	Info() reader.Info
	PageCount() int
	Page(n int) (reader.PageGeometry, error)
	Walk(ctx context.Context, n int, listener reader.Listener) error
	Close() error
}

var _ pageSource = (*reader.Document)(nil)

// Extractor provides a fluent interface for extracting block trees from
// PDFs. Each configuration method returns a new Extractor instance, making
// it safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	filename string
	source   pageSource

	// Lifecycle
	ownsSource bool // true if we opened the source and should close it
	opened     bool

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename:   e.filename,
		source:     e.source,
		ownsSource: e.ownsSource,
		opened:     e.opened,
		options:    e.options.clone(),
		err:        e.err,
	}
}

// ensureSource opens the PDF if not already open.
func (e *Extractor) ensureSource() error {
	if e.opened {
		return nil
	}
	if e.filename == "" {
		return fmt.Errorf("no filename specified")
	}

	doc, err := reader.OpenWithConfig(e.filename, reader.Config{
		LoadImages: !e.options.skipImages,
		Logger:     e.options.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	e.source = doc
	e.ownsSource = true
	e.opened = true
	return nil
}

// Close releases resources associated with the Extractor.
// It is safe to call Close multiple times.
func (e *Extractor) Close() error {
	if e.ownsSource && e.source != nil {
		err := e.source.Close()
		e.source = nil
		e.ownsSource = false
		e.opened = false
		return err
	}
	return nil
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Pages specifies which pages to extract from (1-indexed).
// Multiple calls are cumulative.
//
// Example:
//
//	doc, _, err := pdfblocks.Open("doc.pdf").Pages(1, 3, 5).Document(ctx)
func (e *Extractor) Pages(pages ...int) *Extractor {
	newExt := e.clone()
	newExt.options.pages = append(newExt.options.pages, pages...)
	return newExt
}

// PageRange specifies a range of pages to extract (1-indexed, inclusive).
//
// Example:
//
//	doc, _, err := pdfblocks.Open("doc.pdf").PageRange(5, 10).Document(ctx)
func (e *Extractor) PageRange(start, end int) *Extractor {
	newExt := e.clone()
	if start > end {
		newExt.err = fmt.Errorf("invalid page range %d-%d", start, end)
		return newExt
	}
	for i := start; i <= end; i++ {
		newExt.options.pages = append(newExt.options.pages, i)
	}
	return newExt
}

// Concurrency sets how many pages are extracted at the same time. Values
// below 1 are treated as 1. The default is the number of CPUs.
func (e *Extractor) Concurrency(n int) *Extractor {
	newExt := e.clone()
	if n < 1 {
		n = 1
	}
	newExt.options.concurrency = n
	return newExt
}

// Sequential extracts one page at a time.
func (e *Extractor) Sequential() *Extractor {
	return e.Concurrency(1)
}

// SkipImages leaves image placements out of the page trees and skips
// loading image payloads.
func (e *Extractor) SkipImages() *Extractor {
	newExt := e.clone()
	newExt.options.skipImages = true
	return newExt
}

// InjectImageData embeds base64 image payloads in the image blocks and the
// document image table.
func (e *Extractor) InjectImageData() *Extractor {
	newExt := e.clone()
	newExt.options.injectImageData = true
	return newExt
}

// Strategies replaces the merge pipeline.
//
// Example:
//
//	doc, _, err := pdfblocks.Open("doc.pdf").Strategies(pdfblocks.GroupStrategies).Document(ctx)
func (e *Extractor) Strategies(set StrategySet) *Extractor {
	newExt := e.clone()
	newExt.options.strategies = set
	return newExt
}

// Relations replaces the relation specs. A nil set disables relations.
func (e *Extractor) Relations(set RelationSet) *Extractor {
	newExt := e.clone()
	newExt.options.relations = set
	return newExt
}

// PoolCapacity sets the number of text groups shared by the pages of an
// extraction.
func (e *Extractor) PoolCapacity(n int) *Extractor {
	newExt := e.clone()
	if n < 1 {
		newExt.err = fmt.Errorf("pool capacity must be positive, got %d", n)
		return newExt
	}
	newExt.options.poolCapacity = n
	return newExt
}

// Logger sets the logger used for warnings and page diagnostics.
func (e *Extractor) Logger(logger logrus.FieldLogger) *Extractor {
	newExt := e.clone()
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	newExt.options.logger = logger
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// PageCount returns the number of pages in the document.
// Note: This does NOT close the reader, allowing further operations.
//
// Example:
//
//	ext := pdfblocks.Open("document.pdf")
//	defer ext.Close()
//	count, err := ext.PageCount()
func (e *Extractor) PageCount() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	if err := e.ensureSource(); err != nil {
		return 0, err
	}
	return e.source.PageCount(), nil
}

// extraction holds the state shared by the pages of one Document call
type extraction struct {
	fonts      *font.Registry
	images     *images.Store
	strategies []layout.Strategy
	relations  []layout.RelationSpec
}

// Document extracts the selected pages and returns the document block.
// Pages that fail are left out and reported as warnings; cancelling ctx
// aborts the whole extraction. This is a terminal operation that closes
// the underlying reader.
//
// Example:
//
//	doc, warnings, err := pdfblocks.Open("document.pdf").Document(ctx)
//	for _, page := range doc.Children {
//	    for _, block := range page.Children {
//	        fmt.Println(block.PlainText())
//	    }
//	}
func (e *Extractor) Document(ctx context.Context) (*model.Block, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}
	if err := e.ensureSource(); err != nil {
		return nil, nil, err
	}
	defer e.Close()

	pageNums, err := e.resolvePages()
	if err != nil {
		return nil, nil, err
	}

	// Step 1: per-extraction registries and pipeline
	pool := layout.NewGroupPool(e.options.poolCapacity)
	x := &extraction{
		fonts:  font.NewRegistry(),
		images: images.NewStoreWithConfig(images.StoreConfig{InlineData: e.options.injectImageData}),
	}
	if e.options.strategies != nil {
		x.strategies = e.options.strategies(x.fonts, pool)
	}
	if e.options.relations != nil {
		x.relations = e.options.relations(pool)
	}

	// Step 2: pages, bounded by the concurrency limit
	pageBlocks, warnings, err := e.extractPages(ctx, x, pageNums)
	if err != nil {
		return nil, warnings, err
	}

	// Step 3: assemble the document
	return e.assemble(x, pageBlocks), warnings, nil
}

func (e *Extractor) extractPages(ctx context.Context, x *extraction, pageNums []int) ([]*model.Block, []Warning, error) {
	results := make([]*model.Block, len(pageNums))

	var (
		mu       sync.Mutex
		warnings []Warning
	)

	sem := semaphore.NewWeighted(int64(e.options.concurrency))
	g, gctx := errgroup.WithContext(ctx)

	for i, n := range pageNums {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		i, n := i, n
		g.Go(func() error {
			defer sem.Release(1)

			block, err := e.extractPage(gctx, x, n)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				e.options.logger.WithFields(logrus.Fields{
					"page":  n,
					"error": err,
				}).Warn("page skipped")

				mu.Lock()
				warnings = append(warnings, Warning{Page: n, Message: err.Error()})
				mu.Unlock()
				return nil
			}
			results[i] = block
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, sortWarnings(warnings), err
	}
	if err := ctx.Err(); err != nil {
		return nil, sortWarnings(warnings), err
	}

	pages := make([]*model.Block, 0, len(results))
	for _, b := range results {
		if b != nil {
			pages = append(pages, b)
		}
	}
	return pages, sortWarnings(warnings), nil
}

func sortWarnings(warnings []Warning) []Warning {
	sort.SliceStable(warnings, func(i, j int) bool {
		return warnings[i].Page < warnings[j].Page
	})
	return warnings
}

// extractPage walks page n into its own collector and compiles it
func (e *Extractor) extractPage(ctx context.Context, x *extraction, n int) (*model.Block, error) {
	geometry, err := e.source.Page(n)
	if err != nil {
		return nil, err
	}

	collector := builder.NewPageCollectorWithConfig(x.fonts, x.images, builder.CollectorConfig{
		SkipImages: e.options.skipImages,
		Logger:     e.options.logger.WithField("page", n),
	})
	if err := e.source.Walk(ctx, n, collector); err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}

	return collector.Compile(ctx, builder.PageInfo{
		Number:   n,
		Width:    geometry.Width(),
		Height:   geometry.Height(),
		Rotation: geometry.Rotation,
	}, x.strategies, x.relations)
}

// assemble builds the document block. Its area spans the largest page.
func (e *Extractor) assemble(x *extraction, pages []*model.Block) *model.Block {
	var width, height float64
	for _, p := range pages {
		if w := p.Area.Width(); w > width {
			width = w
		}
		if h := p.Area.Height(); h > height {
			height = h
		}
	}

	info := e.source.Info()
	data := model.DocumentData{
		FileName: e.source.Name(),
		Author:   info.Author,
		Keywords: info.Keywords,
		Producer: info.Producer,
		Subject:  info.Subject,
		Title:    info.Title,
		Fonts:    x.fonts.All(),
		Images:   x.images.All(),
	}
	if e.filename != "" && data.FileName == "" {
		data.FileName = e.filename
	}
	if v := e.source.Version(); v.Major > 0 {
		data.PDFVersion = v.String()
	}

	return model.NewDocumentBlock(model.NewRectArea(0, 0, width, height), data, pages)
}

// Text extracts the document and returns the text of its blocks, one
// block per line and pages separated by a blank line. This is a terminal
// operation that closes the underlying reader.
func (e *Extractor) Text(ctx context.Context) (string, []Warning, error) {
	doc, warnings, err := e.Document(ctx)
	if err != nil {
		return "", warnings, err
	}

	var result strings.Builder
	for _, page := range doc.Children {
		var lines []string
		for _, b := range page.Children {
			if s := b.PlainText(); s != "" {
				lines = append(lines, s)
			}
		}
		if len(lines) == 0 {
			continue
		}
		if result.Len() > 0 {
			result.WriteString("\n\n")
		}
		result.WriteString(strings.Join(lines, "\n"))
	}
	return result.String(), warnings, nil
}

// ============================================================================
// Internal helpers
// ============================================================================

// resolvePages validates the selected page numbers and returns them sorted
// and without duplicates. If no pages are specified, returns all pages.
func (e *Extractor) resolvePages() ([]int, error) {
	pageCount := e.source.PageCount()
	if pageCount == 0 {
		return nil, errors.New("document has no pages")
	}

	if len(e.options.pages) == 0 {
		pageNums := make([]int, pageCount)
		for i := range pageNums {
			pageNums[i] = i + 1
		}
		return pageNums, nil
	}

	seen := make(map[int]bool)
	var pageNums []int
	for _, p := range e.options.pages {
		if p < 1 || p > pageCount {
			return nil, fmt.Errorf("page %d out of range (1-%d)", p, pageCount)
		}
		if !seen[p] {
			seen[p] = true
			pageNums = append(pageNums, p)
		}
	}

	sort.Ints(pageNums)
	return pageNums, nil
}

package pdfblocks

import (
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/pdfblocks/layout"
)

// ExtractOptions holds configuration for block extraction.
type ExtractOptions struct {
	// Page selection (1-indexed)
	pages []int

	// Pages extracted at the same time
	concurrency int

	// Image handling
	skipImages      bool
	injectImageData bool

	// Merge pipeline
	strategies   StrategySet
	relations    RelationSet
	poolCapacity int

	logger logrus.FieldLogger
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		pages:        nil, // nil means all pages
		concurrency:  runtime.NumCPU(),
		strategies:   DefaultStrategies,
		relations:    DefaultRelations,
		poolCapacity: layout.DefaultPoolCapacity,
		logger:       logrus.StandardLogger(),
	}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := o

	// Deep copy pages slice
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}

	return newOpts
}

// Package builder turns the render events of a page into a consolidated
// page block.
//
// # Scopes
//
// A [Builder] mirrors one text object of the content stream. Text objects
// nest, so builders form a tree; a page may have several roots. Each
// builder holds the leaf blocks created while it was the innermost open
// scope.
//
// [Builder.Consolidate] folds the tree bottom up: every child is
// consolidated first, its result is appended to the parent's own leaves and
// the merge pipeline runs over the combined set.
//
// # Pages
//
// [PageCollector] receives the events of one page walk, registers fonts and
// images with the shared providers and builds the scope tree:
//
//	collector := builder.NewPageCollector(fonts, store)
//	if err := doc.Walk(ctx, pageNum, collector); err != nil {
//		return err
//	}
//	page, err := collector.Compile(ctx, info, strategies, relations)
//
// A collector belongs to a single page and is not safe for concurrent use.
package builder

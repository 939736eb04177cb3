// Package layout merges the blocks of a page into larger semantic units and
// computes soft relations between them.
//
// # Pipeline
//
// [Apply] runs an ordered list of [Strategy] values over a block set. Each
// strategy takes the blocks it manages, merges them and puts the result
// back. Rounds repeat until no strategy reduces the block count:
//
//	strategies := []layout.Strategy{
//		layout.NewHorizontalSiblingStrategy(fonts),
//		layout.NewVerticalSiblingStrategy(fonts),
//	}
//	blocks, err := layout.Apply(ctx, strategies, blocks, layout.ApplyOptions{})
//
// # Strategies
//
// Sibling strategies walk a sorted list and join neighbours edge to edge:
//
//   - [HorizontalSiblingStrategy] - words of a line
//   - [VerticalSiblingStrategy] - lines of a paragraph, left or right aligned
//
// Group strategies cluster pooled [TextGroup] values:
//
//   - [OverlapStrategy] - areas that overlap, exactly or within a tolerance
//   - [ProximityStrategy] - aligned areas close along or across the baseline
//   - [TextBoxStrategy] - areas from the same marked-content sections
//
// # Groups and the Pool
//
// A [TextGroup] measures its members in the local frame of the first block
// pushed, so rotated text keeps its own baseline. Groups come from a
// [GroupPool], a fixed arena shared by the pages of one extraction. Pull
// waits while the pool is short of groups:
//
//	pool := layout.NewGroupPool(layout.DefaultPoolCapacity)
//	overlap := layout.NewOverlapStrategy(pool)
//
// # Relations
//
// [ComputeRelations] runs group strategies once over consolidated blocks and
// reports each cluster as a relation block listing member UIDs in reading
// order. The blocks themselves are left untouched.
package layout

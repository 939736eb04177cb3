// Package model provides the block tree produced by page decomposition.
//
// Every node of the tree is a [Block]. A block carries a UID, a kind, an
// oriented [Area], optional [Tag] provenance and children, plus exactly one
// payload:
//
//   - [TextData] - a run, word, line or paragraph of text
//   - [ImageData] - an image painted on the page
//   - [PageData] - a page; its children are the consolidated blocks
//   - [DocumentData] - the root; its children are the pages
//   - [RelationData] - a non-owning group of sibling block UIDs
//
// Blocks are built with the New*Block constructors and are not modified
// afterwards. Merging always produces new blocks.
//
// # Geometry
//
// Page space has its origin at the top-left corner with y growing down.
//
//   - [Point] and [Vector] - 2D positions and displacements
//   - [Area] - an oriented quad with derived edge lines
//   - [Frame] - the local basis of an area, used to measure rotated text
//   - [Matrix] - 2D affine transformation matrix
//
// # Serialization
//
// Blocks encode to JSON with a "type" discriminator so that a tree can be
// written and read back without losing the variant of any node:
//
//	data, err := json.Marshal(doc)
//	var back model.Block
//	err = json.Unmarshal(data, &back)
//
// # Render Events
//
// [GlyphRun] and [ImagePlacement] are the values a content-stream walker
// reports for each painted text run or image.
package model

// Package text provides the string-level rules used when blocks are merged.
//
// # Joining
//
// Merged blocks combine their text with [JoinWords] (same line) or
// [JoinLines] (stacked lines). When two fragments sit on the same line,
// [NeedsSpace] decides whether the gap between them is a word boundary:
//
//	if text.NeedsSpace(left, right, gap, spaceWidth) {
//		s = left + " " + right
//	}
//
// # Normalization
//
// Decoded glyph text is normalised to NFC with [Normalize] so that
// precomposed and decomposed accents compare equal.
//
// # Text Direction
//
// [DetectDirection] reports the dominant writing direction of a string.
// Rows whose text is right-to-left are read from right to left when a group
// of blocks is compiled.
package text

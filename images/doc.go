// Package images registers the distinct images embedded in a document.
//
// Images are keyed by the SHA-512 hash of their bytes, so an image drawn on
// several pages is described once:
//
//	store := images.NewStore()
//	meta, err := store.Add(resource)
//
// Dimensions come from the image header when the bytes are in a format the
// standard library or golang.org/x/image can read (PNG, JPEG, GIF, BMP,
// TIFF); otherwise the width and height declared by the PDF are used.
package images

package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns s in Unicode normalization form C
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// NeedsSpace determines if a space should be inserted between two fragments
// on the same line, given the gap separating them and the width of a space
// in the current font.
func NeedsSpace(left, right string, gap, spaceWidth float64) bool {
	// The text stream already carries the space
	if endsWithSpace(left) || startsWithSpace(right) {
		return false
	}
	if left == "" || right == "" {
		return false
	}
	if gap <= 0 {
		return false
	}
	if spaceWidth <= 0 {
		return true
	}

	// Insert space if gap is >= 50% of a space character width
	return gap >= spaceWidth*0.5
}

// JoinWords concatenates two fragments of the same line with one space,
// unless either side already provides whitespace.
func JoinWords(left, right string) string {
	switch {
	case left == "":
		return right
	case right == "":
		return left
	case endsWithSpace(left) || startsWithSpace(right):
		return left + right
	}
	return left + " " + right
}

// JoinLines stacks two lines with a newline
func JoinLines(top, bottom string) string {
	switch {
	case top == "":
		return bottom
	case bottom == "":
		return top
	}
	return strings.TrimRight(top, "\n") + "\n" + bottom
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r != utf8.RuneError && unicode.IsSpace(r)
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsSpace(r)
}

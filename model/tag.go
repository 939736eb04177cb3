package model

import (
	"strings"

	"golang.org/x/text/language"
)

// TagKind identifies what a Tag describes
type TagKind int

const (
	TagNone TagKind = iota
	TagRaw
	TagLang
	TagAnnotation
	TagProp
)

func (k TagKind) String() string {
	switch k {
	case TagRaw:
		return "raw"
	case TagLang:
		return "lang"
	case TagAnnotation:
		return "annotation"
	case TagProp:
		return "prop"
	default:
		return "none"
	}
}

// Tag is auxiliary provenance attached to a block, such as the marked
// content it was found in or its declared language.
type Tag struct {
	Kind  TagKind `json:"type"`
	Raw   string  `json:"raw"`
	Lang  string  `json:"lang,omitempty"`
	Prop  string  `json:"prop,omitempty"`
	Value string  `json:"value,omitempty"`
}

// RawTag wraps an unparsed marker
func RawTag(raw string) Tag {
	return Tag{Kind: TagRaw, Raw: raw}
}

// LangTag creates a language tag. The language is normalised to its BCP 47
// form when it parses; otherwise it is kept verbatim.
func LangTag(raw string) Tag {
	lang := strings.TrimSpace(raw)
	if tag, err := language.Parse(lang); err == nil {
		lang = tag.String()
	}
	return Tag{Kind: TagLang, Raw: raw, Lang: lang}
}

// PropTag creates a property tag
func PropTag(prop, value, raw string) Tag {
	return Tag{Kind: TagProp, Raw: raw, Prop: prop, Value: value}
}

// Equal compares two tags ignoring case
func (t Tag) Equal(other Tag) bool {
	return t.Kind == other.Kind &&
		strings.EqualFold(t.Raw, other.Raw) &&
		strings.EqualFold(t.Lang, other.Lang) &&
		strings.EqualFold(t.Prop, other.Prop) &&
		strings.EqualFold(t.Value, other.Value)
}

// MergeTags returns the distinct union of the given tag sets, keeping first
// occurrences in order. Tags with an empty Raw value are dropped.
func MergeTags(sets ...[]Tag) []Tag {
	var out []Tag
	for _, set := range sets {
		for _, t := range set {
			if t.Raw == "" {
				continue
			}
			dup := false
			for _, o := range out {
				if o.Equal(t) {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, t)
			}
		}
	}
	return out
}

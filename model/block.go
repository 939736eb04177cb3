package model

import (
	"github.com/google/uuid"
)

// Kind identifies the variant of a Block
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindImage
	KindPage
	KindDocument
	KindRelation
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindPage:
		return "page"
	case KindDocument:
		return "document"
	case KindRelation:
		return "relation"
	default:
		return "unknown"
	}
}

// RelationKind classifies a RelationBlock
type RelationKind int

const (
	RelationNone RelationKind = iota
	RelationGroup
	RelationSectionID
)

func (k RelationKind) String() string {
	switch k {
	case RelationGroup:
		return "group"
	case RelationSectionID:
		return "sectionId"
	default:
		return "none"
	}
}

// Block is a node of the extracted page tree. Exactly one of the payload
// pointers (Text, Image, Page, Document, Relation) is set and matches Kind.
//
// Blocks are treated as immutable once built: merging produces new blocks
// and never edits the ones it consumed.
type Block struct {
	UID      uuid.UUID
	Kind     Kind
	Area     Area
	Tags     []Tag
	Children []*Block

	Text     *TextData
	Image    *ImageData
	Page     *PageData
	Document *DocumentData
	Relation *RelationData
}

// TextData is the payload of a text block
type TextData struct {
	FontLevel  float64   `json:"fontLevel"`  // font size as set by the content stream
	PointValue float64   `json:"pointValue"` // effective size after text and page transforms
	LineSize   float64   `json:"lineSize"`
	Scale      float64   `json:"scale"` // horizontal scaling, 1 = 100%
	Magnitude  float64   `json:"magnitude"`
	Text       string    `json:"text"`
	FontUID    uuid.UUID `json:"fontUid"`
	SpaceWidth float64   `json:"spaceWidth"`
	TextBoxIDs []uint32  `json:"textBoxIds,omitempty"`
}

// ImageData is the payload of an image block
type ImageData struct {
	Name     string     `json:"name"`
	ImageUID *uuid.UUID `json:"imageUid,omitempty"`
	RawData  string     `json:"rawData,omitempty"`
}

// PageData is the payload of a page block
type PageData struct {
	Number    int      `json:"number"`
	Rotation  int      `json:"rotation"`
	Relations []*Block `json:"relations,omitempty"`
}

// DocumentData is the payload of the document root
type DocumentData struct {
	FileName   string      `json:"fileName"`
	PDFVersion string      `json:"pdfVersion,omitempty"`
	Author     string      `json:"author,omitempty"`
	Keywords   string      `json:"keywords,omitempty"`
	Producer   string      `json:"producer,omitempty"`
	Subject    string      `json:"subject,omitempty"`
	Title      string      `json:"title,omitempty"`
	Fonts      []FontMeta  `json:"fonts,omitempty"`
	Images     []ImageMeta `json:"images,omitempty"`
}

// RelationData is the payload of a relation block. Members are references
// to blocks owned elsewhere in the page, in reading order.
type RelationData struct {
	RelationKind RelationKind `json:"relationKind"`
	Label        string       `json:"label,omitempty"`
	Members      []uuid.UUID  `json:"members"`
}

// NewTextBlock creates a text block with a fresh UID
func NewTextBlock(area Area, data TextData, tags []Tag) *Block {
	data.TextBoxIDs = cloneSlice(data.TextBoxIDs)
	return &Block{
		UID:  uuid.New(),
		Kind: KindText,
		Area: area,
		Tags: cloneSlice(tags),
		Text: &data,
	}
}

// NewImageBlock creates an image block with a fresh UID
func NewImageBlock(area Area, data ImageData, tags []Tag) *Block {
	return &Block{
		UID:   uuid.New(),
		Kind:  KindImage,
		Area:  area,
		Tags:  cloneSlice(tags),
		Image: &data,
	}
}

// NewPageBlock creates a page block owning children
func NewPageBlock(area Area, data PageData, children []*Block) *Block {
	data.Relations = cloneSlice(data.Relations)
	return &Block{
		UID:      uuid.New(),
		Kind:     KindPage,
		Area:     area,
		Children: cloneSlice(children),
		Page:     &data,
	}
}

// NewDocumentBlock creates the document root
func NewDocumentBlock(area Area, data DocumentData, pages []*Block) *Block {
	data.Fonts = cloneSlice(data.Fonts)
	data.Images = cloneSlice(data.Images)
	return &Block{
		UID:      uuid.New(),
		Kind:     KindDocument,
		Area:     area,
		Children: cloneSlice(pages),
		Document: &data,
	}
}

// NewRelationBlock creates a relation block
func NewRelationBlock(area Area, data RelationData) *Block {
	data.Members = cloneSlice(data.Members)
	return &Block{
		UID:      uuid.New(),
		Kind:     KindRelation,
		Area:     area,
		Relation: &data,
	}
}

// IsText reports whether b carries a text payload
func (b *Block) IsText() bool {
	return b != nil && b.Kind == KindText && b.Text != nil
}

// IsLeaf reports whether b has no children
func (b *Block) IsLeaf() bool {
	return len(b.Children) == 0
}

// PlainText returns the text of a text block and "" for every other kind
func (b *Block) PlainText() string {
	if !b.IsText() {
		return ""
	}
	return b.Text.Text
}

func cloneSlice[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

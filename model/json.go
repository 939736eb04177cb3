package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type blockJSON struct {
	UID      uuid.UUID       `json:"uid"`
	Type     Kind            `json:"type"`
	Area     Area            `json:"area"`
	Tags     []Tag           `json:"tags,omitempty"`
	Children []*Block        `json:"children,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON encodes a block with a "type" discriminator and its payload
// under "data".
func (b *Block) MarshalJSON() ([]byte, error) {
	var payload interface{}
	switch b.Kind {
	case KindText:
		payload = b.Text
	case KindImage:
		payload = b.Image
	case KindPage:
		payload = b.Page
	case KindDocument:
		payload = b.Document
	case KindRelation:
		payload = b.Relation
	default:
		return nil, fmt.Errorf("cannot encode block %s: unknown kind %d", b.UID, int(b.Kind))
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", b.Kind, err)
	}

	return json.Marshal(blockJSON{
		UID:      b.UID,
		Type:     b.Kind,
		Area:     b.Area,
		Tags:     b.Tags,
		Children: b.Children,
		Data:     data,
	})
}

// UnmarshalJSON decodes a block written by MarshalJSON
func (b *Block) UnmarshalJSON(raw []byte) error {
	var wire blockJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}

	*b = Block{
		UID:      wire.UID,
		Kind:     wire.Type,
		Area:     wire.Area,
		Tags:     wire.Tags,
		Children: wire.Children,
	}

	var target interface{}
	switch wire.Type {
	case KindText:
		b.Text = &TextData{}
		target = b.Text
	case KindImage:
		b.Image = &ImageData{}
		target = b.Image
	case KindPage:
		b.Page = &PageData{}
		target = b.Page
	case KindDocument:
		b.Document = &DocumentData{}
		target = b.Document
	case KindRelation:
		b.Relation = &RelationData{}
		target = b.Relation
	default:
		return fmt.Errorf("cannot decode block %s: unknown type", wire.UID)
	}

	if len(wire.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(wire.Data, target); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", wire.Type, err)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	for _, c := range []Kind{KindText, KindImage, KindPage, KindDocument, KindRelation} {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown block type %q", text)
}

// MarshalText implements encoding.TextMarshaler
func (k RelationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *RelationKind) UnmarshalText(text []byte) error {
	for _, c := range []RelationKind{RelationNone, RelationGroup, RelationSectionID} {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown relation kind %q", text)
}

// MarshalText implements encoding.TextMarshaler
func (k TagKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *TagKind) UnmarshalText(text []byte) error {
	for _, c := range []TagKind{TagNone, TagRaw, TagLang, TagAnnotation, TagProp} {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown tag type %q", text)
}

package schema

import "github.com/bridgesearch/bridge/wire"

// FieldId identifies a field within a Schema. It is assigned by
// SchemaBuilder in insertion order, starting at 0.
type FieldId uint8

// FieldValueTag discriminates FieldValue's variants on the wire.
type FieldValueTag uint8

const (
	TagText FieldValueTag = iota
	TagU32
)

// FieldValue is a tagged union over the closed set {Text(string),
// U32(uint32)}. The set is extensible by adding tags; each tag is
// written as a leading discriminator byte so an unrecognized tag is
// detected rather than silently misread.
type FieldValue struct {
	tag  FieldValueTag
	text string
	u32  uint32
}

// TextValue constructs a Text field value.
func TextValue(s string) FieldValue { return FieldValue{tag: TagText, text: s} }

// U32Value constructs a U32 field value.
func U32Value(v uint32) FieldValue { return FieldValue{tag: TagU32, u32: v} }

// Tag returns the value's discriminator.
func (v FieldValue) Tag() FieldValueTag { return v.tag }

// Text returns the value's string payload and whether v is a Text value.
func (v FieldValue) Text() (string, bool) { return v.text, v.tag == TagText }

// U32 returns the value's uint32 payload and whether v is a U32 value.
func (v FieldValue) U32() (uint32, bool) { return v.u32, v.tag == TagU32 }

// Equal reports whether v and o carry the same tag and payload.
func (v FieldValue) Equal(o FieldValue) bool {
	if v.tag != o.tag {
		return false
	}
	switch v.tag {
	case TagText:
		return v.text == o.text
	case TagU32:
		return v.u32 == o.u32
	default:
		return false
	}
}

// encodePayload writes v's variant payload alone, with no leading tag:
// length:u64||utf8-bytes for Text, a plain u32 for U32. Callers that need
// a self-describing value (not nested inside a Field, which carries the
// tag itself) should prepend the tag with PutU8(uint8(v.tag)).
func (v FieldValue) encodePayload(w *wire.Writer) error {
	switch v.tag {
	case TagText:
		return w.PutString(v.text)
	case TagU32:
		return w.PutU32(v.u32)
	default:
		return bridgeSerializationErrorf("unknown field value tag %d", v.tag)
	}
}

func decodeFieldValuePayload(tag FieldValueTag, r *wire.Reader) (FieldValue, error) {
	switch tag {
	case TagText:
		s, err := r.GetString()
		if err != nil {
			return FieldValue{}, err
		}
		return TextValue(s), nil
	case TagU32:
		v, err := r.GetU32()
		if err != nil {
			return FieldValue{}, err
		}
		return U32Value(v), nil
	default:
		return FieldValue{}, bridgeSerializationErrorf("unknown field value tag %d", tag)
	}
}

// Encode writes v's wire representation as a standalone sum type:
// tag:u8 || encoded-variant.
func (v FieldValue) Encode(w *wire.Writer) error {
	if err := w.PutU8(uint8(v.tag)); err != nil {
		return err
	}
	return v.encodePayload(w)
}

// DecodeFieldValue decodes a FieldValue previously written by Encode.
func DecodeFieldValue(r *wire.Reader) (FieldValue, error) {
	tag, err := r.GetU8()
	if err != nil {
		return FieldValue{}, err
	}
	return decodeFieldValuePayload(FieldValueTag(tag), r)
}

// Field is the pair (FieldId, FieldValue). Fields are ordered by
// FieldId (see Document.SortByID). Field defines no equality of its
// own: == on two Fields compares both ID and Value.
type Field struct {
	ID    FieldId
	Value FieldValue
}

// Encode writes f's wire representation:
// tag:u8 || field_id:u8 || value.
func (f Field) Encode(w *wire.Writer) error {
	if err := w.PutU8(uint8(f.Value.tag)); err != nil {
		return err
	}
	if err := w.PutU8(uint8(f.ID)); err != nil {
		return err
	}
	return f.Value.encodePayload(w)
}

// DecodeField decodes a Field previously written by Encode.
func DecodeField(r *wire.Reader) (Field, error) {
	tag, err := r.GetU8()
	if err != nil {
		return Field{}, err
	}
	id, err := r.GetU8()
	if err != nil {
		return Field{}, err
	}
	v, err := decodeFieldValuePayload(FieldValueTag(tag), r)
	if err != nil {
		return Field{}, err
	}
	return Field{ID: FieldId(id), Value: v}, nil
}

package schema

import (
	"bytes"
)

// Term is a (FieldId, FieldValue) pair used as a dictionary key by the
// (out-of-scope) inverted index. It is distinct from Field, which is
// ordered by FieldId alone: a Term additionally orders by its value, since a dictionary needs to distinguish
// "apple" from "banana" within the same field, not just group them.
// The store package never constructs a Term; it exists so the schema
// package, which owns FieldId and FieldValue, can also own the
// dictionary-key type that consumes them.
//
// original_source/bridge/src/schema/term.cpp's equality operator
// compares the full encoded term (field id and value together), but
// its ordering operator compares only the leading field-id byte — a
// weak order sufficient for grouping terms by field but not for fully
// sorting a dictionary. Compare below intentionally provides a total
// order consistent with that equality operator instead: it compares
// FieldID first and, for terms sharing a FieldID, falls through to the
// value's encoding, so a sorted term dictionary can binary-search
// across same-field terms rather than merely grouping them.
type Term struct {
	FieldID FieldId
	Value   FieldValue
}

// NewTerm constructs a Term.
func NewTerm(id FieldId, v FieldValue) Term {
	return Term{FieldID: id, Value: v}
}

// Compare orders Terms first by FieldID, then by the byte-wise encoding
// of Value (its tag, followed by its payload), giving a total order
// even across differently-tagged values. See the Term doc comment for
// why this diverges from the narrower field-id-only ordering the
// original C++ term type used.
func (t Term) Compare(o Term) int {
	if t.FieldID != o.FieldID {
		if t.FieldID < o.FieldID {
			return -1
		}
		return 1
	}
	return bytes.Compare(t.Value.sortKey(), o.Value.sortKey())
}

// sortKey returns a byte sequence suitable for ordering FieldValues: the
// tag byte followed by a tag-specific payload encoding that preserves
// lexicographic order within a tag (U32's payload is big-endian so that
// byte-wise comparison matches numeric comparison; the wire encoding
// proper uses the archive's native order instead, since the wire format
// is read back with the same order it was written with and need not be
// independently comparable).
func (v FieldValue) sortKey() []byte {
	switch v.tag {
	case TagText:
		key := make([]byte, 1+len(v.text))
		key[0] = byte(v.tag)
		copy(key[1:], v.text)
		return key
	case TagU32:
		key := make([]byte, 5)
		key[0] = byte(v.tag)
		key[1] = byte(v.u32 >> 24)
		key[2] = byte(v.u32 >> 16)
		key[3] = byte(v.u32 >> 8)
		key[4] = byte(v.u32)
		return key
	default:
		return []byte{byte(v.tag)}
	}
}

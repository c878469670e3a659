package schema

// FieldType distinguishes the two families of field entry a Schema can
// hold. Unlike FieldValue (a runtime-tagged union over stored values),
// FieldType only selects which option struct governs the field.
type FieldType uint8

const (
	TextField FieldType = iota
	NumericField
)

func (t FieldType) String() string {
	switch t {
	case TextField:
		return "text"
	case NumericField:
		return "numeric"
	default:
		return "unknown"
	}
}

// FieldEntry is a named, typed, option-carrying catalog entry: the
// schema builder's unit of declaration. Exactly one of TextOptions or
// NumericOptions is meaningful, selected by Type.
type FieldEntry struct {
	Name           string
	Type           FieldType
	TextOptions    TextOptions
	NumericOptions NumericOptions
}

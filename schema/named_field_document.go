package schema

import "github.com/bridgesearch/bridge/errors"

// NamedFieldDocument is a document keyed by field name rather than
// FieldId, the shape the named-field JSON format uses.
type NamedFieldDocument map[string][]FieldValue

// ToNamedFieldDocument converts d to name-keyed form using schema to
// resolve each field's name. Every field in d must reference a name
// declared in schema, or the conversion fails with SchemaMismatch.
func (s *Schema) ToNamedFieldDocument(d *Document) (NamedFieldDocument, error) {
	named := make(NamedFieldDocument)
	for _, f := range d.Fields() {
		name, ok := s.FieldName(f.ID)
		if !ok {
			return nil, errors.E(errors.SchemaMismatch, "field id not present in schema")
		}
		named[name] = append(named[name], f.Value)
	}
	return named, nil
}

// FromNamedFieldDocument converts a name-keyed document back into a
// Document, in field-declaration order, resolving each name through
// schema. An unknown name fails with SchemaMismatch.
func (s *Schema) FromNamedFieldDocument(named NamedFieldDocument) (*Document, error) {
	d := NewDocument()
	for _, entry := range s.Fields() {
		values, ok := named[entry.Name]
		if !ok {
			continue
		}
		id, _ := s.FieldID(entry.Name)
		for _, v := range values {
			d.addField(Field{ID: id, Value: v})
		}
	}
	for name := range named {
		if _, ok := s.FieldID(name); !ok {
			return nil, errors.E(errors.SchemaMismatch, "unknown field name "+name)
		}
	}
	return d, nil
}

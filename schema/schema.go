package schema

import "fmt"

// SchemaBuilder incrementally assigns FieldIds as fields are declared.
// FieldIds are assigned in insertion order starting at 0.
type SchemaBuilder struct {
	entries []FieldEntry
	buckets map[uint32][]FieldId
}

// NewSchemaBuilder returns an empty SchemaBuilder.
func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{buckets: make(map[uint32][]FieldId)}
}

func (b *SchemaBuilder) findByName(name string) (FieldId, bool) {
	for _, id := range b.buckets[nameHash(name)] {
		if b.entries[id].Name == name {
			return id, true
		}
	}
	return 0, false
}

func (b *SchemaBuilder) add(entry FieldEntry) (FieldId, error) {
	if _, exists := b.findByName(entry.Name); exists {
		return 0, fmt.Errorf("schema: duplicate field name %q", entry.Name)
	}
	id := FieldId(len(b.entries))
	b.entries = append(b.entries, entry)
	h := nameHash(entry.Name)
	b.buckets[h] = append(b.buckets[h], id)
	return id, nil
}

// AddTextField declares a text field entry and returns its assigned id.
func (b *SchemaBuilder) AddTextField(name string, opts TextOptions) (FieldId, error) {
	return b.add(FieldEntry{Name: name, Type: TextField, TextOptions: opts})
}

// AddNumericField declares a numeric field entry and returns its
// assigned id.
func (b *SchemaBuilder) AddNumericField(name string, opts NumericOptions) (FieldId, error) {
	return b.add(FieldEntry{Name: name, Type: NumericField, NumericOptions: opts})
}

// Build finalizes the catalog into an immutable Schema.
func (b *SchemaBuilder) Build() *Schema {
	entries := make([]FieldEntry, len(b.entries))
	copy(entries, b.entries)
	nameToID := make(map[string]FieldId, len(entries))
	for i, e := range entries {
		nameToID[e.Name] = FieldId(i)
	}
	return &Schema{entries: entries, nameToID: nameToID}
}

// Schema is an immutable, ordered catalog of field entries plus a
// name->id map.
type Schema struct {
	entries  []FieldEntry
	nameToID map[string]FieldId
}

// FieldEntry returns the entry declared for id.
func (s *Schema) FieldEntry(id FieldId) (FieldEntry, bool) {
	if int(id) >= len(s.entries) {
		return FieldEntry{}, false
	}
	return s.entries[id], true
}

// FieldName returns the name of the field with the given id.
func (s *Schema) FieldName(id FieldId) (string, bool) {
	e, ok := s.FieldEntry(id)
	return e.Name, ok
}

// FieldID returns the id assigned to the field with the given name.
func (s *Schema) FieldID(name string) (FieldId, bool) {
	id, ok := s.nameToID[name]
	return id, ok
}

// Fields returns the schema's entries in id order. The returned slice
// must not be mutated.
func (s *Schema) Fields() []FieldEntry {
	return s.entries
}

// Equal reports whether s and o declare the same fields, in the same
// order, with the same options.
func (s *Schema) Equal(o *Schema) bool {
	if len(s.entries) != len(o.entries) {
		return false
	}
	for i := range s.entries {
		a, b := s.entries[i], o.entries[i]
		if a.Name != b.Name || a.Type != b.Type {
			return false
		}
		switch a.Type {
		case TextField:
			if a.TextOptions != b.TextOptions {
				return false
			}
		case NumericField:
			if a.NumericOptions != b.NumericOptions {
				return false
			}
		}
	}
	return true
}

package schema

import (
	"encoding/json"
	"fmt"

	"github.com/bridgesearch/bridge/errors"
)

// No domain JSON library from the examined corpus offers anything
// stdlib's encoding/json doesn't already provide for these small, fixed
// shapes (bigslice itself never reaches for an alternative JSON codec);
// see DESIGN.md.

type jsonTextOptions struct {
	Indexing string `json:"indexing"`
	Stored   bool   `json:"stored"`
}

type jsonNumericOptions struct {
	Indexed bool `json:"indexed"`
	Fast    bool `json:"fast"`
	Stored  bool `json:"stored"`
}

type jsonFieldType struct {
	Field   string          `json:"field"`
	Options json.RawMessage `json:"options"`
}

type jsonFieldEntry struct {
	Name string        `json:"name"`
	Type jsonFieldType `json:"type"`
}

type jsonSchema struct {
	Fields []jsonFieldEntry `json:"fields"`
}

// ToJSON marshals s as a JSON object describing each field's name, type,
// and options.
func (s *Schema) ToJSON() ([]byte, error) {
	out := jsonSchema{Fields: make([]jsonFieldEntry, len(s.entries))}
	for i, e := range s.entries {
		je := jsonFieldEntry{Name: e.Name}
		switch e.Type {
		case TextField:
			je.Type.Field = "text"
			opts, err := json.Marshal(jsonTextOptions{
				Indexing: e.TextOptions.Indexing.String(),
				Stored:   e.TextOptions.Stored,
			})
			if err != nil {
				return nil, err
			}
			je.Type.Options = opts
		case NumericField:
			je.Type.Field = "numeric"
			opts, err := json.Marshal(jsonNumericOptions{
				Indexed: e.NumericOptions.Indexed,
				Fast:    e.NumericOptions.Fast,
				Stored:  e.NumericOptions.Stored,
			})
			if err != nil {
				return nil, err
			}
			je.Type.Options = opts
		default:
			return nil, fmt.Errorf("schema: unknown field type %d", e.Type)
		}
		out.Fields[i] = je
	}
	return json.Marshal(out)
}

// SchemaFromJSON parses a schema previously marshaled by ToJSON.
func SchemaFromJSON(data []byte) (*Schema, error) {
	var in jsonSchema
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, errors.E(errors.SerializationError, err)
	}
	b := NewSchemaBuilder()
	for _, je := range in.Fields {
		switch je.Type.Field {
		case "text":
			var opts jsonTextOptions
			if err := json.Unmarshal(je.Type.Options, &opts); err != nil {
				return nil, errors.E(errors.SerializationError, err)
			}
			indexing, ok := textIndexingFromString(opts.Indexing)
			if !ok {
				return nil, errors.E(errors.SerializationError, "unknown indexing option "+opts.Indexing)
			}
			if _, err := b.AddTextField(je.Name, TextOptions{Indexing: indexing, Stored: opts.Stored}); err != nil {
				return nil, errors.E(errors.SerializationError, err)
			}
		case "numeric":
			var opts jsonNumericOptions
			if err := json.Unmarshal(je.Type.Options, &opts); err != nil {
				return nil, errors.E(errors.SerializationError, err)
			}
			if _, err := b.AddNumericField(je.Name, NumericOptions{
				Indexed: opts.Indexed, Fast: opts.Fast, Stored: opts.Stored,
			}); err != nil {
				return nil, errors.E(errors.SerializationError, err)
			}
		default:
			return nil, errors.E(errors.SerializationError, "unknown field type "+je.Type.Field)
		}
	}
	return b.Build(), nil
}

// DocToJSON marshals d as a named-field document: a mapping from field
// name to an array of scalar values, with no envelope.
func (s *Schema) DocToJSON(d *Document) ([]byte, error) {
	named, err := s.ToNamedFieldDocument(d)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]interface{}, len(named))
	for name, values := range named {
		scalars := make([]interface{}, len(values))
		for i, v := range values {
			switch v.Tag() {
			case TagText:
				text, _ := v.Text()
				scalars[i] = text
			case TagU32:
				n, _ := v.U32()
				scalars[i] = n
			default:
				return nil, fmt.Errorf("schema: unknown field value tag %d", v.Tag())
			}
		}
		out[name] = scalars
	}
	return json.Marshal(out)
}

// DocFromJSON parses a named-field document JSON object (as produced by
// DocToJSON) back into a Document ordered by schema's field declaration
// order, resolving each named field through schema.
func (s *Schema) DocFromJSON(data []byte) (*Document, error) {
	var raw map[string][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.E(errors.SerializationError, err)
	}
	named := make(NamedFieldDocument, len(raw))
	for name, rawValues := range raw {
		id, ok := s.FieldID(name)
		if !ok {
			return nil, errors.E(errors.SchemaMismatch, "unknown field name "+name)
		}
		entry, _ := s.FieldEntry(id)
		values := make([]FieldValue, len(rawValues))
		for i, rv := range rawValues {
			switch entry.Type {
			case TextField:
				var str string
				if err := json.Unmarshal(rv, &str); err != nil {
					return nil, errors.E(errors.SerializationError, err)
				}
				values[i] = TextValue(str)
			case NumericField:
				var n uint32
				if err := json.Unmarshal(rv, &n); err != nil {
					return nil, errors.E(errors.SerializationError, err)
				}
				values[i] = U32Value(n)
			default:
				return nil, fmt.Errorf("schema: unknown field type %d", entry.Type)
			}
		}
		named[name] = values
	}
	return s.FromNamedFieldDocument(named)
}

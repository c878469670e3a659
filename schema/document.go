package schema

import "sort"

// Document is an ordered sequence of Field. Multiple entries with the
// same FieldId are permitted. IsSorted records whether SortByID has
// stably ordered the sequence; SortByID is idempotent.
type Document struct {
	fields   []Field
	isSorted bool
}

// NewDocument returns an empty Document.
func NewDocument() *Document {
	return &Document{}
}

// AddText appends a Text field.
func (d *Document) AddText(id FieldId, s string) {
	d.addField(Field{ID: id, Value: TextValue(s)})
}

// AddU32 appends a U32 field.
func (d *Document) AddU32(id FieldId, v uint32) {
	d.addField(Field{ID: id, Value: U32Value(v)})
}

func (d *Document) addField(f Field) {
	d.fields = append(d.fields, f)
	d.isSorted = false
}

// AddField appends an already-constructed Field, as used by decoders
// that reconstruct a Document from its wire representation.
func (d *Document) AddField(f Field) {
	d.addField(f)
}

// Len returns the number of fields in the document.
func (d *Document) Len() int { return len(d.fields) }

// Fields returns the document's fields in their current order. The
// returned slice must not be mutated.
func (d *Document) Fields() []Field { return d.fields }

// IsSorted reports whether SortByID has been called since the last
// field was added.
func (d *Document) IsSorted() bool { return d.isSorted }

// SortByID stably reorders the document's fields by FieldId. It is
// idempotent: calling it again on an already-sorted document is a
// cheap no-op check, not a re-sort.
func (d *Document) SortByID() {
	if d.isSorted {
		return
	}
	sort.SliceStable(d.fields, func(i, j int) bool {
		return d.fields[i].ID < d.fields[j].ID
	})
	d.isSorted = true
}

// FirstByID returns the value of the first field with the given id,
// scanning in the document's current order. Because SortByID is
// stable, sorting does not change which value is returned.
func (d *Document) FirstByID(id FieldId) (FieldValue, bool) {
	for _, f := range d.fields {
		if f.ID == id {
			return f.Value, true
		}
	}
	return FieldValue{}, false
}

// SortedFieldGroup is one FieldId's worth of values, as returned by
// GetSortedFields.
type SortedFieldGroup struct {
	ID     FieldId
	Values []FieldValue
}

// GetSortedFields sorts the document by FieldId (via SortByID) and
// returns a grouped view: one entry per distinct FieldId, each carrying
// every value recorded under that id, in their original relative order.
func (d *Document) GetSortedFields() []SortedFieldGroup {
	d.SortByID()
	var groups []SortedFieldGroup
	for _, f := range d.fields {
		if n := len(groups); n > 0 && groups[n-1].ID == f.ID {
			groups[n-1].Values = append(groups[n-1].Values, f.Value)
			continue
		}
		groups = append(groups, SortedFieldGroup{ID: f.ID, Values: []FieldValue{f.Value}})
	}
	return groups
}

// Equal reports whether d and o hold the same fields in the same
// order. Two documents that contain the same fields in different
// orders are not Equal; sort both with SortByID first if order should
// be ignored.
func (d *Document) Equal(o *Document) bool {
	if len(d.fields) != len(o.fields) {
		return false
	}
	for i := range d.fields {
		if d.fields[i].ID != o.fields[i].ID || !d.fields[i].Value.Equal(o.fields[i].Value) {
			return false
		}
	}
	return true
}

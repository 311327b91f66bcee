package entity

import (
	"maps"
	"slices"

	"github.com/joseph-ayodele/nfse-extractor/constants"
)

// Record is the set of normalized field values extracted from one document.
// It is immutable once built.
type Record struct {
	sourceFile string
	fields     map[string]Value
}

// NewRecord copies fields so later changes by the caller do not leak in.
func NewRecord(sourceFile string, fields map[string]Value) *Record {
	cp := make(map[string]Value, len(fields)+1)
	maps.Copy(cp, fields)
	cp[constants.FieldSourceFile] = Text(sourceFile)
	return &Record{sourceFile: sourceFile, fields: cp}
}

// SourceFile is the base filename the record was extracted from.
func (r *Record) SourceFile() string { return r.sourceFile }

// Get returns the value stored under field.
func (r *Record) Get(field string) (Value, bool) {
	v, ok := r.fields[field]
	return v, ok
}

// GetOrDefault returns the stored value or the type default for field.
func (r *Record) GetOrDefault(field string) Value {
	if v, ok := r.fields[field]; ok {
		return v
	}
	return Default(field)
}

// Fields returns the field names present, sorted.
func (r *Record) Fields() []string {
	var keys []string
	for k := range r.fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len is the number of fields, source filename included.
func (r *Record) Len() int { return len(r.fields) }

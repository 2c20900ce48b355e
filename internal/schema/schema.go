package schema

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"csvcast/diagnostic"
	"csvcast/internal/common"
	"csvcast/primitive"
)

// TagName is the struct tag consulted for field keys.
const TagName = "csv"

// Strategy selects how parsing locates a field: by fixed column
// position or by matching a header name to an index.
type Strategy int

const (
	// Positional binds the row field at physical position k to the
	// schema field whose index equals k.
	Positional Strategy = iota
	// Named binds columns through a header row matched against field keys.
	Named
)

// String returns a human-readable strategy name.
func (s Strategy) String() string {
	switch s {
	case Positional:
		return "positional"
	case Named:
		return "named"
	default:
		return "unknown"
	}
}

// Field describes one record member.
type Field struct {
	// Name is the Go field name.
	Name string
	// Key is the effective key: the declared name in Named mode, the
	// decimal rendering of the index in Positional mode.
	Key string
	// HeaderBytes is the exact byte string that appears in a CSV
	// header cell for this field, precomputed once.
	HeaderBytes []byte
	// Kind classifies the content type; the zero kind routes the field
	// to the formatter fallback registry.
	Kind primitive.KindEnum
	// Type is the field's Go type.
	Type reflect.Type
	// Index is the positional column index, also used for dispatch and
	// default-value scaffolding.
	Index int
	// Offset is the field's byte offset inside the record struct.
	Offset uintptr
	// HasStringKey is true when the field declared an explicit string key.
	HasStringKey bool
}

// Schema is the normalized, immutable field list for one record type.
// Field order matches declaration order and is the positional column
// order. A Schema is read-only after Build and safe to share.
type Schema struct {
	// Type is the record struct type.
	Type reflect.Type
	// Fields in declaration order.
	Fields []Field
	// Strategy is the column-resolution strategy, one per schema.
	Strategy Strategy
	// MaxIndex is the highest declared positional index.
	MaxIndex int

	byLen map[int][]int // key byte length -> field slots, declaration order
}

// Build produces the Schema for rt, precomputing header encodings and
// determining the resolution strategy. namedKeys forces Named mode
// with field names as keys. Schema-definition errors are appended to
// diags (when non-nil) and returned; the caller skips generation for
// this type and continues with siblings.
func Build(rt reflect.Type, namedKeys bool, diags *diagnostic.Diagnostics) (*Schema, error) {
	var local diagnostic.Diagnostics
	sc := build(rt, namedKeys, &local)
	if diags != nil {
		diags.Merge(local)
	}
	if err := local.Error(); err != nil {
		return nil, err
	}
	return sc, nil
}

func build(rt reflect.Type, namedKeys bool, d *diagnostic.Diagnostics) *Schema {
	typeName := "<nil>"
	if rt != nil {
		typeName = rt.String()
	}

	if rt == nil || rt.Kind() != reflect.Struct {
		d.AddError(diagnostic.CodeNotAStruct,
			"record type must be a concrete struct", typeName, "")
		return nil
	}
	if rt.Name() == "" {
		d.AddError(diagnostic.CodeAnonymousType,
			"record type must be a named struct declaration", typeName, "")
		return nil
	}

	var (
		fields     []Field
		anyString  bool
		anyNumeric bool
		nextIndex  int
	)

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		if sf.Anonymous {
			d.AddWarning(diagnostic.CodeEmbeddedField,
				"embedded fields are not flattened and were skipped", typeName, sf.Name)
			continue
		}

		tag, _, _ := strings.Cut(sf.Tag.Get(TagName), ",")
		if tag == "-" {
			continue
		}

		f := Field{
			Name:   sf.Name,
			Kind:   primitive.FromReflectType(sf.Type),
			Type:   sf.Type,
			Offset: sf.Offset,
			Index:  nextIndex,
		}

		switch {
		case tag == "":
			// declaration position, field name as the name key
		case isAllDigits(tag):
			idx, err := strconv.Atoi(tag)
			if err != nil {
				d.AddError(diagnostic.CodeBadIndexTag,
					fmt.Sprintf("index key %q does not fit an int", tag), typeName, sf.Name)
				continue
			}
			f.Index = idx
			anyNumeric = true
		default:
			f.Key = tag
			f.HasStringKey = true
			anyString = true
		}

		nextIndex = f.Index + 1
		fields = append(fields, f)
	}

	sc := &Schema{Type: rt, Fields: fields}

	// Named when the type requests name-based keys or any field
	// carries a string key; Positional when the first field's key is
	// numeric and names were not requested. Mixing both is a
	// schema-definition error.
	first, ok := common.First(fields)
	switch {
	case namedKeys || anyString:
		sc.Strategy = Named
		if anyNumeric {
			d.AddError(diagnostic.CodeMixedKeys,
				"schema mixes numeric index keys with string keys", typeName, "")
			return nil
		}
	case ok && !first.HasStringKey:
		sc.Strategy = Positional
	default:
		sc.Strategy = Positional
	}

	seenKeys := make(map[string]string, len(fields))
	seenIdx := make(map[int]string, len(fields))
	sc.byLen = make(map[int][]int, len(fields))

	for slot := range sc.Fields {
		f := &sc.Fields[slot]
		if sc.Strategy == Named {
			if f.Key == "" {
				f.Key = f.Name
			}
			if prev, dup := seenKeys[f.Key]; dup {
				d.AddError(diagnostic.CodeDuplicateKey,
					fmt.Sprintf("key %q already used by field %s", f.Key, prev), typeName, f.Name)
				return nil
			}
			seenKeys[f.Key] = f.Name
		} else {
			f.Key = strconv.Itoa(f.Index)
			if prev, dup := seenIdx[f.Index]; dup {
				d.AddError(diagnostic.CodeDuplicateKey,
					fmt.Sprintf("index %d already used by field %s", f.Index, prev), typeName, f.Name)
				return nil
			}
			seenIdx[f.Index] = f.Name
		}

		f.HeaderBytes = []byte(f.Key)
		sc.byLen[len(f.HeaderBytes)] = append(sc.byLen[len(f.HeaderBytes)], slot)

		if f.Index > sc.MaxIndex {
			sc.MaxIndex = f.Index
		}
	}

	return sc
}

// LookupKey resolves a header cell's raw bytes to the field slot in
// declaration order, or -1 when no key matches. Candidates are
// bucketed by key byte length before exact comparison, and the first
// declared match wins for duplicated header text.
func (s *Schema) LookupKey(cell []byte) int {
	for _, slot := range s.byLen[len(cell)] {
		if bytes.Equal(cell, s.Fields[slot].HeaderBytes) {
			return slot
		}
	}
	return -1
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

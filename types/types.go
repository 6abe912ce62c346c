// Package types defines the zinc script type system consumed by the
// optimizer and the virtual machine: scalar tags, vector and record types,
// and the promotion relationship used for run-time "any" checks.
package types

import "fmt"

// Tag identifies the basic kind of a type.
type Tag int

const (
	TagVoid Tag = iota
	TagBool
	TagInt
	TagCount
	TagDouble
	TagTime
	TagString
	TagAny
	TagRecord
	TagVector
	TagFunc
)

// String returns the script-level name of the tag.
func (t Tag) String() string {
	switch t {
	case TagVoid:
		return "void"
	case TagBool:
		return "bool"
	case TagInt:
		return "int"
	case TagCount:
		return "count"
	case TagDouble:
		return "double"
	case TagTime:
		return "time"
	case TagString:
		return "string"
	case TagAny:
		return "any"
	case TagRecord:
		return "record"
	case TagVector:
		return "vector"
	case TagFunc:
		return "func"
	default:
		return "unknown"
	}
}

// Field is one named field of a record type.
type Field struct {
	Name string
	Type *Type
}

// Type describes a script type. Scalar types are shared singletons obtained
// from the base type accessors; vector and record types are constructed.
type Type struct {
	tag    Tag
	yield  *Type   // element type, for vectors
	fields []Field // declared fields, for records
	name   string  // declared name, for records
}

var baseTypes = map[Tag]*Type{
	TagVoid:   {tag: TagVoid},
	TagBool:   {tag: TagBool},
	TagInt:    {tag: TagInt},
	TagCount:  {tag: TagCount},
	TagDouble: {tag: TagDouble},
	TagTime:   {tag: TagTime},
	TagString: {tag: TagString},
	TagAny:    {tag: TagAny},
	TagFunc:   {tag: TagFunc},
}

// Base returns the shared singleton for a scalar tag.
func Base(tag Tag) *Type {
	t, ok := baseTypes[tag]
	if !ok {
		panic(fmt.Sprintf("no base type for tag %s", tag))
	}
	return t
}

// VectorOf returns a vector type with the given element type.
func VectorOf(yield *Type) *Type {
	return &Type{tag: TagVector, yield: yield}
}

// NewRecord returns a record type with the given name and fields.
func NewRecord(name string, fields ...Field) *Type {
	return &Type{tag: TagRecord, name: name, fields: fields}
}

// Tag returns the type's tag.
func (t *Type) Tag() Tag { return t.tag }

// Yield returns a vector type's element type, or nil for non-vectors.
func (t *Type) Yield() *Type { return t.yield }

// Fields returns a record type's declared fields.
func (t *Type) Fields() []Field { return t.fields }

// Name returns the declared name of the type, or the tag name if it has none.
func (t *Type) Name() string {
	if t.name != "" {
		return t.name
	}
	return t.tag.String()
}

// IsAny reports whether the type is the dynamic "any" type.
func (t *Type) IsAny() bool { return t != nil && t.tag == TagAny }

// IsManaged reports whether values of this type require explicit
// release when they leave a frame slot. Scalars are unmanaged; strings,
// vectors, records, and boxed "any" values are managed.
func (t *Type) IsManaged() bool {
	switch t.tag {
	case TagString, TagVector, TagRecord, TagAny:
		return true
	default:
		return false
	}
}

// Same reports structural type equality.
func Same(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.tag != b.tag {
		return false
	}
	switch a.tag {
	case TagVector:
		return Same(a.yield, b.yield)
	case TagRecord:
		if a.name != b.name || len(a.fields) != len(b.fields) {
			return false
		}
		for i := range a.fields {
			if a.fields[i].Name != b.fields[i].Name || !Same(a.fields[i].Type, b.fields[i].Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// PromotionCompatible reports whether a record value of the observed type
// can be promoted to the expected record type: every field the expected
// type declares must be present in the observed type with the same type.
// Extra fields on the observed type are permitted.
func PromotionCompatible(expected, observed *Type) bool {
	if expected == nil || observed == nil {
		return false
	}
	if expected.tag != TagRecord || observed.tag != TagRecord {
		return false
	}
	for _, ef := range expected.fields {
		found := false
		for _, of := range observed.fields {
			if of.Name == ef.Name {
				found = Same(of.Type, ef.Type)
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// IsIntegral reports whether the tag is a signed or unsigned integer type.
func IsIntegral(tag Tag) bool {
	return tag == TagInt || tag == TagCount
}

// IsArithmetic reports whether the tag supports numeric operations.
func IsArithmetic(tag Tag) bool {
	return IsIntegral(tag) || tag == TagDouble || tag == TagBool || tag == TagTime
}

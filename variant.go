package uatypes

import (
	"fmt"
	"reflect"
	"slices"
)

// Variant is the tagged union over every built-in scalar and array type.
// The zero Variant is the null Variant.
//
// Scalars are held as the Go type below; arrays as a slice of it. A nil
// slice is the null array (wire length -1), a zero-length slice the empty
// array (wire length 0).
//
//	Boolean bool              String          String
//	SByte   int8              DateTime        DateTime
//	Byte    byte              Guid            Guid
//	Int16   int16             ByteString      ByteString
//	UInt16  uint16            XmlElement      XmlElement
//	Int32   int32             NodeId          NodeID
//	UInt32  uint32            ExpandedNodeId  ExpandedNodeID
//	Int64   int64             StatusCode      StatusCode
//	UInt64  uint64            QualifiedName   QualifiedName
//	Float   float32           LocalizedText   LocalizedText
//	Double  float64           ExtensionObject ExtensionObject
//	DataValue DataValue       DiagnosticInfo  DiagnosticInfo
//	Variant []Variant (arrays only)
//
// A []byte is a Byte array; a ByteString is a scalar byte string.
type Variant struct {
	typ   TypeID
	array bool
	value any
	dims  []int32
}

// Variant encoding mask bits.
const (
	variantTypeMask byte = 0x3f
	variantHasDims  byte = 0x40
	variantIsArray  byte = 0x80
)

// NewVariant wraps a Go value. A Go string becomes a non-null String and a
// []string a []String; nil yields the null Variant.
func NewVariant(v any) (Variant, error) {
	switch x := v.(type) {
	case nil:
		return Variant{}, nil
	case Variant:
		return Variant{}, newError(CodeInvalidValue, -1, "a scalar variant cannot hold a variant")
	case string:
		return Variant{typ: TypeString, value: NewString(x)}, nil
	case []string:
		if x == nil {
			return Variant{typ: TypeString, array: true, value: []String(nil)}, nil
		}
		return Variant{typ: TypeString, array: true, value: Strings(x...)}, nil
	}
	if t, ok := typeOfValue(v); ok {
		return Variant{typ: t, value: v}, nil
	}
	if t, ok := typeOfSlice(v); ok {
		return Variant{typ: t, array: true, value: v}, nil
	}
	return Variant{}, newError(CodeInvalidValue, -1, "Go type %T has no built-in variant type", v)
}

// MustVariant is NewVariant that panics on error.
func MustVariant(v any) Variant {
	out, err := NewVariant(v)
	if err != nil {
		panic(err)
	}
	return out
}

// NewArrayVariant wraps a slice whose element type must be t. A nil v
// yields the null array of type t.
func NewArrayVariant(t TypeID, v any) (Variant, error) {
	if !t.Valid() {
		return Variant{}, newError(CodeInvalidDiscriminant, -1, "invalid built-in type id %d", t)
	}
	if v == nil {
		return Variant{typ: t, array: true, value: nilSlice(t)}, nil
	}
	if st, ok := typeOfSlice(v); !ok || st != t {
		return Variant{}, newError(CodeInvalidValue, -1, "Go type %T is not a %s array", v, t)
	}
	return Variant{typ: t, array: true, value: v}, nil
}

// NewMatrixVariant wraps a flat slice with explicit dimensions. The product
// of dims must equal the element count.
func NewMatrixVariant(v any, dims []int32) (Variant, error) {
	out, err := NewVariant(v)
	if err != nil {
		return Variant{}, err
	}
	if !out.array {
		return Variant{}, newError(CodeInvalidValue, -1, "matrix needs a slice, got %T", v)
	}
	if err := checkDimensions(dims, sliceLen(out.value)); err != nil {
		return Variant{}, err
	}
	if len(dims) > 0 {
		out.dims = append([]int32(nil), dims...)
	}
	return out, nil
}

func checkDimensions(dims []int32, n int) error {
	if len(dims) == 0 {
		return nil
	}
	for _, d := range dims {
		if d < 0 {
			return newError(CodeInvalidLength, -1, "negative array dimension %d", d)
		}
		if d == 0 {
			if n == 0 {
				return nil
			}
			return newError(CodeInvalidLength, -1, "dimensions %v do not match %d elements", dims, n)
		}
	}
	p := int64(1)
	for _, d := range dims {
		p *= int64(d)
		if p > int64(n) {
			break
		}
	}
	if p != int64(n) {
		return newError(CodeInvalidLength, -1, "dimensions %v do not match %d elements", dims, n)
	}
	return nil
}

// Type returns the built-in type of the value or of each array element.
func (v Variant) Type() TypeID { return v.typ }

// IsArray reports whether v holds an array (possibly null or empty).
func (v Variant) IsArray() bool { return v.array }

// IsNull reports whether v is the null Variant.
func (v Variant) IsNull() bool { return v.typ == TypeNull }

// Value returns the held scalar or slice; nil for the null Variant.
func (v Variant) Value() any { return v.value }

// ArrayDimensions returns the matrix dimensions, or nil for scalars and
// one-dimensional arrays.
func (v Variant) ArrayDimensions() []int32 { return v.dims }

// Equal reports deep equality of type, shape and value.
func (v Variant) Equal(o Variant) bool {
	if v.typ != o.typ || v.array != o.array || !reflect.DeepEqual(v.dims, o.dims) {
		return false
	}
	// NodeIDs compare by value: a null and an empty opaque identifier are
	// the same node.
	switch a := v.value.(type) {
	case NodeID:
		b, ok := o.value.(NodeID)
		return ok && a.Equal(b)
	case ExpandedNodeID:
		b, ok := o.value.(ExpandedNodeID)
		return ok && a.Equal(b)
	case []NodeID:
		b, ok := o.value.([]NodeID)
		return ok && (a == nil) == (b == nil) && slices.EqualFunc(a, b, NodeID.Equal)
	case []ExpandedNodeID:
		b, ok := o.value.([]ExpandedNodeID)
		return ok && (a == nil) == (b == nil) && slices.EqualFunc(a, b, ExpandedNodeID.Equal)
	case []Variant:
		b, ok := o.value.([]Variant)
		return ok && (a == nil) == (b == nil) && slices.EqualFunc(a, b, Variant.Equal)
	}
	return reflect.DeepEqual(v.value, o.value)
}

func (v Variant) String() string {
	switch {
	case v.IsNull():
		return "Null"
	case v.array && len(v.dims) > 0:
		return fmt.Sprintf("%s%v%v", v.typ, v.dims, v.value)
	case v.array:
		return fmt.Sprintf("[]%s%v", v.typ, v.value)
	}
	return fmt.Sprintf("%s(%v)", v.typ, v.value)
}

func (v Variant) mask() byte {
	m := byte(v.typ)
	if v.array {
		m |= variantIsArray
		if len(v.dims) > 0 {
			m |= variantHasDims
		}
	}
	return m
}

// ByteLen returns the exact encoded size of v.
func (v Variant) ByteLen(ctx *Context) int {
	if v.IsNull() {
		return 1
	}
	if !v.array {
		return 1 + valueLen(ctx, v.typ, v.value)
	}
	n := 1 + arrayLen(ctx, v.typ, v.value)
	if len(v.dims) > 0 {
		n += 4 + 4*len(v.dims)
	}
	return n
}

// EncodeBinary writes the mask byte followed by the payload.
func (v Variant) EncodeBinary(e *Encoder) error {
	if v.IsNull() {
		return e.WriteByte(0)
	}
	if !v.typ.Valid() {
		return encodeError("invalid variant type id %d", v.typ)
	}
	if !v.array {
		if v.typ == TypeVariant {
			return encodeError("a scalar variant cannot hold a variant")
		}
		if err := e.WriteByte(v.mask()); err != nil {
			return err
		}
		return encodeValue(e, v.typ, v.value)
	}
	if err := checkDimensions(v.dims, sliceLen(v.value)); err != nil {
		return err
	}
	if err := e.WriteByte(v.mask()); err != nil {
		return err
	}
	if err := encodeArrayValue(e, v.typ, v.value); err != nil {
		return err
	}
	if len(v.dims) > 0 {
		return EncodeArray(e, v.dims, e.WriteInt32)
	}
	return nil
}

// DecodeVariant reads a Variant. Unknown type ids, a scalar variant of
// type Variant and dimension flags without an array are InvalidDiscriminant.
func DecodeVariant(d *Decoder) (Variant, error) {
	m, err := d.ReadByte()
	if err != nil {
		return Variant{}, err
	}
	if m == 0 {
		return Variant{}, nil
	}
	t := TypeID(m & variantTypeMask)
	array := m&variantIsArray != 0
	hasDims := m&variantHasDims != 0
	switch {
	case !t.Valid():
		return Variant{}, d.fail(CodeInvalidDiscriminant, "unknown variant type id %d (mask 0x%02x)", t, m)
	case hasDims && !array:
		return Variant{}, d.fail(CodeInvalidDiscriminant, "variant mask 0x%02x has dimensions without array", m)
	case t == TypeVariant && !array:
		return Variant{}, d.fail(CodeInvalidDiscriminant, "scalar variant of type Variant")
	}
	if !array {
		val, err := decodeValue(d, t)
		if err != nil {
			return Variant{}, err
		}
		return Variant{typ: t, value: val}, nil
	}
	val, err := decodeArrayValue(d, t)
	if err != nil {
		return Variant{}, err
	}
	out := Variant{typ: t, array: true, value: val}
	if !hasDims {
		return out, nil
	}
	dims, err := DecodeArray(d, d.ReadInt32)
	if err != nil {
		return Variant{}, err
	}
	if err := checkDimensions(dims, sliceLen(val)); err != nil {
		if e, ok := AsError(err); ok {
			e.Offset = d.offset()
		}
		return Variant{}, err
	}
	if len(dims) > 0 {
		out.dims = dims
	}
	return out, nil
}

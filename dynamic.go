package uatypes

import (
	"fmt"
	"strconv"
)

// StructureKind selects how a structure's fields are laid out.
type StructureKind int

const (
	// StructurePlain encodes every field in order.
	StructurePlain StructureKind = iota
	// StructureWithOptionalFields prefixes a UInt32 mask; bit n is set
	// when the n-th optional field is present.
	StructureWithOptionalFields
	// StructureUnion prefixes a UInt32 switch selecting one field (1-based,
	// 0 for none).
	StructureUnion
)

func (k StructureKind) String() string {
	switch k {
	case StructurePlain:
		return "Structure"
	case StructureWithOptionalFields:
		return "StructureWithOptionalFields"
	case StructureUnion:
		return "Union"
	}
	return "StructureKind(" + strconv.Itoa(int(k)) + ")"
}

// StructureField is one field of a StructureDefinition. Exactly one of Type
// and Structure is set: a built-in type, or a nested structure encoded
// inline.
type StructureField struct {
	Name       string
	Type       TypeID
	Structure  *StructureDefinition
	ValueRank  int32 // -1 scalar, 1 one-dimensional array
	IsOptional bool
}

// IsArray reports whether the field holds an array.
func (f StructureField) IsArray() bool { return f.ValueRank >= 0 }

// StructureDefinition describes a structured data type at run time, as
// loaded from a nodeset or built by hand.
type StructureDefinition struct {
	Name       string
	DataTypeID ExpandedNodeID
	EncodingID ExpandedNodeID
	Kind       StructureKind
	Fields     []StructureField
}

// Validate checks field types, names and the kind-specific rules, and
// rejects definitions that contain themselves inline.
func (def *StructureDefinition) Validate() error {
	return def.validate(map[*StructureDefinition]bool{})
}

func (def *StructureDefinition) validate(active map[*StructureDefinition]bool) error {
	if active[def] {
		return newError(CodeUnsupportedConstruct, -1, "structure %s contains itself", def.Name)
	}
	active[def] = true
	defer delete(active, def)
	seen := map[string]bool{}
	optional := 0
	for i, f := range def.Fields {
		switch {
		case f.Name == "":
			return newError(CodeInvalidValue, -1, "structure %s field %d has no name", def.Name, i)
		case seen[f.Name]:
			return newError(CodeInvalidValue, -1, "structure %s has duplicate field %s", def.Name, f.Name)
		case f.Structure == nil && !f.Type.Valid():
			return newError(CodeInvalidValue, -1, "structure %s field %s has no type", def.Name, f.Name)
		case f.Structure != nil && f.Type != TypeNull:
			return newError(CodeInvalidValue, -1, "structure %s field %s has both a built-in and a structure type", def.Name, f.Name)
		case f.IsOptional && def.Kind != StructureWithOptionalFields:
			return newError(CodeInvalidValue, -1, "structure %s field %s is optional in a %s", def.Name, f.Name, def.Kind)
		case f.ValueRank != -1 && f.ValueRank != 1:
			return newError(CodeUnsupportedConstruct, -1, "structure %s field %s has value rank %d", def.Name, f.Name, f.ValueRank)
		}
		seen[f.Name] = true
		if f.IsOptional {
			optional++
		}
		if f.Structure != nil {
			if err := f.Structure.validate(active); err != nil {
				return err
			}
		}
	}
	if optional > 32 {
		return newError(CodeUnsupportedConstruct, -1, "structure %s has %d optional fields", def.Name, optional)
	}
	return nil
}

// DynamicStructure is a value of a StructureDefinition. Values holds one
// entry per field: the Go value NewVariant uses for built-in fields (a
// slice for arrays), *DynamicStructure or []*DynamicStructure for nested
// structures, and nil for an absent optional field.
type DynamicStructure struct {
	Definition *StructureDefinition
	Values     []any
	Switch     uint32 // unions only
}

// NewDynamicStructure returns a value with every field at its zero value
// and every optional field absent.
func NewDynamicStructure(def *StructureDefinition) *DynamicStructure {
	s := &DynamicStructure{Definition: def, Values: make([]any, len(def.Fields))}
	for i, f := range def.Fields {
		if f.IsOptional || def.Kind == StructureUnion {
			continue
		}
		s.Values[i] = zeroFieldValue(f)
	}
	return s
}

func zeroFieldValue(f StructureField) any {
	switch {
	case f.Structure != nil && f.IsArray():
		return []*DynamicStructure(nil)
	case f.Structure != nil:
		return NewDynamicStructure(f.Structure)
	case f.IsArray():
		return nilSlice(f.Type)
	case f.Type == TypeDiagnosticInfo:
		return NewDiagnosticInfo()
	}
	v, _ := zeroScalar(f.Type)
	return v
}

func zeroScalar(t TypeID) (any, bool) {
	switch t {
	case TypeBoolean:
		return false, true
	case TypeSByte:
		return int8(0), true
	case TypeByte:
		return byte(0), true
	case TypeInt16:
		return int16(0), true
	case TypeUInt16:
		return uint16(0), true
	case TypeInt32:
		return int32(0), true
	case TypeUInt32:
		return uint32(0), true
	case TypeInt64:
		return int64(0), true
	case TypeUInt64:
		return uint64(0), true
	case TypeFloat:
		return float32(0), true
	case TypeDouble:
		return float64(0), true
	case TypeString:
		return NullString, true
	case TypeDateTime:
		return DateTime(0), true
	case TypeGuid:
		return Guid{}, true
	case TypeByteString:
		return ByteString(nil), true
	case TypeXmlElement:
		return XmlElement{}, true
	case TypeNodeID:
		return NodeID{}, true
	case TypeExpandedNodeID:
		return ExpandedNodeID{}, true
	case TypeStatusCode:
		return StatusGood, true
	case TypeQualifiedName:
		return QualifiedName{}, true
	case TypeLocalizedText:
		return LocalizedText{}, true
	case TypeExtensionObject:
		return ExtensionObject{}, true
	case TypeDataValue:
		return DataValue{}, true
	case TypeVariant:
		return Variant{}, true
	case TypeDiagnosticInfo:
		return NewDiagnosticInfo(), true
	}
	return nil, false
}

// Field returns the value of the named field.
func (s *DynamicStructure) Field(name string) (any, bool) {
	for i, f := range s.Definition.Fields {
		if f.Name == name {
			return s.Values[i], true
		}
	}
	return nil, false
}

// Set assigns the named field. For unions it also selects the field.
func (s *DynamicStructure) Set(name string, v any) error {
	for i, f := range s.Definition.Fields {
		if f.Name != name {
			continue
		}
		if s.Definition.Kind == StructureUnion {
			for k := range s.Values {
				s.Values[k] = nil
			}
			s.Switch = uint32(i + 1)
		}
		s.Values[i] = v
		return nil
	}
	return newError(CodeInvalidValue, -1, "structure %s has no field %s", s.Definition.Name, name)
}

// EncodingID returns the definition's binary encoding id.
func (s *DynamicStructure) EncodingID() ExpandedNodeID { return s.Definition.EncodingID }

// ByteLen returns the encoded size.
func (s *DynamicStructure) ByteLen(ctx *Context) int { return EncodedLen(ctx, s) }

func (s *DynamicStructure) optionalMask() uint32 {
	var m uint32
	bit := 0
	for i, f := range s.Definition.Fields {
		if !f.IsOptional {
			continue
		}
		if s.Values[i] != nil {
			m |= 1 << bit
		}
		bit++
	}
	return m
}

// EncodeBinary writes the structure body.
func (s *DynamicStructure) EncodeBinary(e *Encoder) error {
	def := s.Definition
	if len(s.Values) != len(def.Fields) {
		return encodeError("structure %s has %d values for %d fields", def.Name, len(s.Values), len(def.Fields))
	}
	switch def.Kind {
	case StructureUnion:
		if s.Switch > uint32(len(def.Fields)) {
			return encodeError("union %s switch %d out of range", def.Name, s.Switch)
		}
		if err := e.WriteUInt32(s.Switch); err != nil {
			return err
		}
		if s.Switch == 0 {
			return nil
		}
		i := s.Switch - 1
		return encodeField(e, def.Fields[i], s.Values[i])
	case StructureWithOptionalFields:
		if err := e.WriteUInt32(s.optionalMask()); err != nil {
			return err
		}
	}
	for i, f := range def.Fields {
		if f.IsOptional && s.Values[i] == nil {
			continue
		}
		if err := encodeField(e, f, s.Values[i]); err != nil {
			return fmt.Errorf("%s.%s: %w", def.Name, f.Name, err)
		}
	}
	return nil
}

func encodeField(e *Encoder, f StructureField, v any) error {
	if f.Structure == nil {
		if f.IsArray() {
			return encodeArrayValue(e, f.Type, v)
		}
		return encodeValue(e, f.Type, v)
	}
	if f.IsArray() {
		items, ok := v.([]*DynamicStructure)
		if !ok {
			return encodeError("field %s holds %T, want []*DynamicStructure", f.Name, v)
		}
		return EncodeArray(e, items, func(it *DynamicStructure) error { return it.EncodeBinary(e) })
	}
	nested, ok := v.(*DynamicStructure)
	if !ok || nested == nil {
		return encodeError("field %s holds %T, want *DynamicStructure", f.Name, v)
	}
	return nested.EncodeBinary(e)
}

func (def *StructureDefinition) decode(d *Decoder) (*DynamicStructure, error) {
	s := &DynamicStructure{Definition: def, Values: make([]any, len(def.Fields))}
	switch def.Kind {
	case StructureUnion:
		sw, err := d.ReadUInt32()
		if err != nil {
			return nil, err
		}
		if sw > uint32(len(def.Fields)) {
			return nil, d.fail(CodeInvalidDiscriminant, "union %s switch %d out of range", def.Name, sw)
		}
		s.Switch = sw
		if sw > 0 {
			if s.Values[sw-1], err = decodeField(d, def.Fields[sw-1]); err != nil {
				return nil, err
			}
		}
		return s, nil
	case StructureWithOptionalFields:
		mask, err := d.ReadUInt32()
		if err != nil {
			return nil, err
		}
		bit := 0
		for i, f := range def.Fields {
			if !f.IsOptional {
				continue
			}
			if mask&(1<<bit) == 0 {
				s.Values[i] = absent{}
			}
			bit++
		}
		if mask>>bit != 0 {
			return nil, d.fail(CodeInvalidDiscriminant, "structure %s mask 0x%x sets undefined fields", def.Name, mask)
		}
	}
	for i, f := range def.Fields {
		if _, skip := s.Values[i].(absent); skip {
			s.Values[i] = nil
			continue
		}
		v, err := decodeField(d, f)
		if err != nil {
			return nil, err
		}
		s.Values[i] = v
	}
	return s, nil
}

// absent marks optional fields missing from the mask during decoding.
type absent struct{}

func decodeField(d *Decoder, f StructureField) (any, error) {
	if f.Structure == nil {
		if f.IsArray() {
			return decodeArrayValue(d, f.Type)
		}
		return decodeValue(d, f.Type)
	}
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()
	if f.IsArray() {
		return DecodeArray(d, func() (*DynamicStructure, error) { return f.Structure.decode(d) })
	}
	return f.Structure.decode(d)
}

// EncodeJSON returns the body object. Unions use {"SwitchField", "Value"}.
func (s *DynamicStructure) EncodeJSON(ctx *Context) (map[string]any, error) {
	def := s.Definition
	if def.Kind == StructureUnion {
		m := map[string]any{"SwitchField": int64(s.Switch)}
		if s.Switch > 0 && int(s.Switch) <= len(def.Fields) {
			v, err := fieldJSON(ctx, def.Fields[s.Switch-1], s.Values[s.Switch-1])
			if err != nil {
				return nil, err
			}
			m["Value"] = v
		}
		return m, nil
	}
	m := make(map[string]any, len(def.Fields))
	for i, f := range def.Fields {
		if f.IsOptional && s.Values[i] == nil {
			continue
		}
		v, err := fieldJSON(ctx, f, s.Values[i])
		if err != nil {
			return nil, err
		}
		m[f.Name] = v
	}
	return m, nil
}

func fieldJSON(ctx *Context, f StructureField, v any) (any, error) {
	if f.Structure == nil {
		if f.IsArray() {
			return EncodeJSONArray(ctx, f.Type, v)
		}
		return EncodeJSONValue(ctx, f.Type, v)
	}
	if f.IsArray() {
		items, ok := v.([]*DynamicStructure)
		if !ok {
			return nil, encodeError("field %s holds %T, want []*DynamicStructure", f.Name, v)
		}
		if items == nil {
			return nil, nil
		}
		out := make([]any, len(items))
		for i, it := range items {
			m, err := it.EncodeJSON(ctx)
			if err != nil {
				return nil, err
			}
			out[i] = m
		}
		return out, nil
	}
	nested, ok := v.(*DynamicStructure)
	if !ok || nested == nil {
		return nil, encodeError("field %s holds %T, want *DynamicStructure", f.Name, v)
	}
	return nested.EncodeJSON(ctx)
}

func (def *StructureDefinition) decodeJSON(d *jsonDecoder, body map[string]any, path string) (*DynamicStructure, error) {
	s := &DynamicStructure{Definition: def, Values: make([]any, len(def.Fields))}
	if def.Kind == StructureUnion {
		sw, err := d.uint(body["SwitchField"], 32, path+"/SwitchField")
		if err != nil {
			return nil, err
		}
		if sw > uint64(len(def.Fields)) {
			e := jsonFail(path+"/SwitchField", "union %s switch %d out of range", def.Name, sw)
			e.Code = CodeInvalidDiscriminant
			return nil, e
		}
		s.Switch = uint32(sw)
		if sw > 0 {
			if s.Values[sw-1], err = fieldFromJSON(d, def.Fields[sw-1], body["Value"], path+"/Value"); err != nil {
				return nil, err
			}
		}
		return s, nil
	}
	for i, f := range def.Fields {
		raw, ok := body[f.Name]
		if f.IsOptional && !ok {
			continue
		}
		v, err := fieldFromJSON(d, f, raw, path+"/"+f.Name)
		if err != nil {
			return nil, err
		}
		s.Values[i] = v
	}
	return s, nil
}

func fieldFromJSON(d *jsonDecoder, f StructureField, raw any, path string) (any, error) {
	if f.Structure == nil {
		if f.IsArray() {
			return d.array(f.Type, raw, path)
		}
		if raw == nil {
			if v, ok := zeroScalar(f.Type); ok {
				return v, nil
			}
		}
		return d.value(f.Type, raw, path)
	}
	if err := d.enter(path); err != nil {
		return nil, err
	}
	defer d.leave()
	if !f.IsArray() {
		m, err := d.object(raw, path)
		if err != nil {
			return nil, err
		}
		return f.Structure.decodeJSON(d, m, path)
	}
	if raw == nil {
		return []*DynamicStructure(nil), nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, jsonFail(path, "expected an array, got %T", raw)
	}
	if len(items) > d.lim.MaxArrayLength {
		e := newError(CodeLimitExceeded, -1, "array length %d exceeds max %d", len(items), d.lim.MaxArrayLength)
		e.Path = jsonPath(path)
		return nil, e
	}
	out := make([]*DynamicStructure, len(items))
	for i, it := range items {
		p := path + "/" + strconv.Itoa(i)
		m, err := d.object(it, p)
		if err != nil {
			return nil, err
		}
		if out[i], err = f.Structure.decodeJSON(d, m, p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// TypeLoader returns the loader decoding values of def.
func (def *StructureDefinition) TypeLoader() TypeLoader {
	return TypeLoader{
		Name:       def.Name,
		EncodingID: def.EncodingID,
		Decode: func(d *Decoder) (Structure, error) {
			return def.decode(d)
		},
		DecodeJSON: func(ctx *Context, body map[string]any) (Structure, error) {
			return def.decodeJSON(newJSONDecoder(ctx), body, "")
		},
	}
}

// DynamicTypes validates defs and returns their loaders as a group.
func DynamicTypes(defs ...*StructureDefinition) (TypeLoaderGroup, error) {
	out := make(TypeLoaders, 0, len(defs))
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		out = append(out, def.TypeLoader())
	}
	return out, nil
}

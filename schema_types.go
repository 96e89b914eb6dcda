package uatypes

// Data type descriptions: the wire form of the type model a server
// publishes in DataTypeDefinition attributes and DataTypeSchemaHeader
// based dictionaries.

// StructureFieldData is one field of a StructureDefinitionData.
type StructureFieldData struct {
	Name            String
	Description     LocalizedText
	DataType        NodeID
	ValueRank       int32
	ArrayDimensions []uint32
	MaxStringLength uint32
	IsOptional      bool
}

func (f StructureFieldData) encode(e *Encoder) error {
	return firstError(
		func() error { return e.WriteString(f.Name) },
		func() error { return e.WriteLocalizedText(f.Description) },
		func() error { return e.WriteNodeID(f.DataType) },
		func() error { return e.WriteInt32(f.ValueRank) },
		func() error { return EncodeArray(e, f.ArrayDimensions, e.WriteUInt32) },
		func() error { return e.WriteUInt32(f.MaxStringLength) },
		func() error { return e.WriteBoolean(f.IsOptional) },
	)
}

func readStructureField(d *Decoder) (StructureFieldData, error) {
	var f StructureFieldData
	var err error
	if f.Name, err = d.ReadString(); err != nil {
		return f, err
	}
	if f.Description, err = d.ReadLocalizedText(); err != nil {
		return f, err
	}
	if f.DataType, err = d.ReadNodeID(); err != nil {
		return f, err
	}
	if f.ValueRank, err = d.ReadInt32(); err != nil {
		return f, err
	}
	if f.ArrayDimensions, err = DecodeArray(d, d.ReadUInt32); err != nil {
		return f, err
	}
	if f.MaxStringLength, err = d.ReadUInt32(); err != nil {
		return f, err
	}
	f.IsOptional, err = d.ReadBoolean()
	return f, err
}

func (f StructureFieldData) jsonBody(ctx *Context) (map[string]any, error) {
	w := newJSONWriter(ctx)
	w.field("Name", TypeString, f.Name)
	w.field("Description", TypeLocalizedText, f.Description)
	w.field("DataType", TypeNodeID, f.DataType)
	w.field("ValueRank", TypeInt32, f.ValueRank)
	w.array("ArrayDimensions", TypeUInt32, f.ArrayDimensions)
	w.field("MaxStringLength", TypeUInt32, f.MaxStringLength)
	w.field("IsOptional", TypeBoolean, f.IsOptional)
	return w.result()
}

func readStructureFieldJSON(r *jsonReader) StructureFieldData {
	return StructureFieldData{
		Name:            jsonGet[String](r, "Name", TypeString),
		Description:     jsonGet[LocalizedText](r, "Description", TypeLocalizedText),
		DataType:        jsonGet[NodeID](r, "DataType", TypeNodeID),
		ValueRank:       jsonGet[int32](r, "ValueRank", TypeInt32),
		ArrayDimensions: jsonGetArray[uint32](r, "ArrayDimensions", TypeUInt32),
		MaxStringLength: jsonGet[uint32](r, "MaxStringLength", TypeUInt32),
		IsOptional:      jsonGet[bool](r, "IsOptional", TypeBoolean),
	}
}

// StructureDefinitionData is the encoded definition of a structured data
// type.
type StructureDefinitionData struct {
	DefaultEncodingID NodeID
	BaseDataType      NodeID
	StructureType     StructureKind
	Fields            []StructureFieldData
}

func (*StructureDefinitionData) EncodingID() ExpandedNodeID { return NewNumericExpandedNodeID("", 122) }
func (s *StructureDefinitionData) ByteLen(ctx *Context) int  { return EncodedLen(ctx, s) }

func (s *StructureDefinitionData) EncodeBinary(e *Encoder) error {
	return firstError(
		func() error { return e.WriteNodeID(s.DefaultEncodingID) },
		func() error { return e.WriteNodeID(s.BaseDataType) },
		func() error { return e.WriteInt32(int32(s.StructureType)) },
		func() error { return EncodeArray(e, s.Fields, func(f StructureFieldData) error { return f.encode(e) }) },
	)
}

func readStructureDefinition(d *Decoder) (StructureDefinitionData, error) {
	var s StructureDefinitionData
	var err error
	if s.DefaultEncodingID, err = d.ReadNodeID(); err != nil {
		return s, err
	}
	if s.BaseDataType, err = d.ReadNodeID(); err != nil {
		return s, err
	}
	kind, err := d.ReadInt32()
	if err != nil {
		return s, err
	}
	s.StructureType = StructureKind(kind)
	s.Fields, err = DecodeArray(d, func() (StructureFieldData, error) { return readStructureField(d) })
	return s, err
}

func decodeStructureDefinition(d *Decoder) (Structure, error) {
	s, err := readStructureDefinition(d)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *StructureDefinitionData) EncodeJSON(ctx *Context) (map[string]any, error) {
	w := newJSONWriter(ctx)
	w.field("DefaultEncodingId", TypeNodeID, s.DefaultEncodingID)
	w.field("BaseDataType", TypeNodeID, s.BaseDataType)
	w.field("StructureType", TypeInt32, int32(s.StructureType))
	jsonObjects(w, "Fields", s.Fields, func(f StructureFieldData) (map[string]any, error) { return f.jsonBody(ctx) })
	return w.result()
}

func readStructureDefinitionJSON(r *jsonReader) StructureDefinitionData {
	return StructureDefinitionData{
		DefaultEncodingID: jsonGet[NodeID](r, "DefaultEncodingId", TypeNodeID),
		BaseDataType:      jsonGet[NodeID](r, "BaseDataType", TypeNodeID),
		StructureType:     StructureKind(jsonGet[int32](r, "StructureType", TypeInt32)),
		Fields:            jsonGetObjects(r, "Fields", readStructureFieldJSON),
	}
}

func decodeStructureDefinitionJSON(ctx *Context, body map[string]any) (Structure, error) {
	r := newJSONReader(ctx, body)
	s := readStructureDefinitionJSON(r)
	return &s, r.err
}

// EnumField is one named value of an EnumDefinitionData.
type EnumField struct {
	Value       int64
	DisplayName LocalizedText
	Description LocalizedText
	Name        String
}

func (f EnumField) encode(e *Encoder) error {
	return firstError(
		func() error { return e.WriteInt64(f.Value) },
		func() error { return e.WriteLocalizedText(f.DisplayName) },
		func() error { return e.WriteLocalizedText(f.Description) },
		func() error { return e.WriteString(f.Name) },
	)
}

func readEnumField(d *Decoder) (EnumField, error) {
	var f EnumField
	var err error
	if f.Value, err = d.ReadInt64(); err != nil {
		return f, err
	}
	if f.DisplayName, err = d.ReadLocalizedText(); err != nil {
		return f, err
	}
	if f.Description, err = d.ReadLocalizedText(); err != nil {
		return f, err
	}
	f.Name, err = d.ReadString()
	return f, err
}

func (f EnumField) jsonBody(ctx *Context) (map[string]any, error) {
	w := newJSONWriter(ctx)
	w.field("Value", TypeInt64, f.Value)
	w.field("DisplayName", TypeLocalizedText, f.DisplayName)
	w.field("Description", TypeLocalizedText, f.Description)
	w.field("Name", TypeString, f.Name)
	return w.result()
}

func readEnumFieldJSON(r *jsonReader) EnumField {
	return EnumField{
		Value:       jsonGet[int64](r, "Value", TypeInt64),
		DisplayName: jsonGet[LocalizedText](r, "DisplayName", TypeLocalizedText),
		Description: jsonGet[LocalizedText](r, "Description", TypeLocalizedText),
		Name:        jsonGet[String](r, "Name", TypeString),
	}
}

// EnumDefinitionData is the encoded definition of an enumeration.
type EnumDefinitionData struct {
	Fields []EnumField
}

func (*EnumDefinitionData) EncodingID() ExpandedNodeID { return NewNumericExpandedNodeID("", 123) }
func (s *EnumDefinitionData) ByteLen(ctx *Context) int  { return EncodedLen(ctx, s) }

func (s *EnumDefinitionData) EncodeBinary(e *Encoder) error {
	return EncodeArray(e, s.Fields, func(f EnumField) error { return f.encode(e) })
}

func readEnumDefinition(d *Decoder) (EnumDefinitionData, error) {
	fields, err := DecodeArray(d, func() (EnumField, error) { return readEnumField(d) })
	return EnumDefinitionData{Fields: fields}, err
}

func decodeEnumDefinition(d *Decoder) (Structure, error) {
	s, err := readEnumDefinition(d)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *EnumDefinitionData) EncodeJSON(ctx *Context) (map[string]any, error) {
	w := newJSONWriter(ctx)
	jsonObjects(w, "Fields", s.Fields, func(f EnumField) (map[string]any, error) { return f.jsonBody(ctx) })
	return w.result()
}

func readEnumDefinitionJSON(r *jsonReader) EnumDefinitionData {
	return EnumDefinitionData{Fields: jsonGetObjects(r, "Fields", readEnumFieldJSON)}
}

func decodeEnumDefinitionJSON(ctx *Context, body map[string]any) (Structure, error) {
	r := newJSONReader(ctx, body)
	s := readEnumDefinitionJSON(r)
	return &s, r.err
}

// StructureDescription names a structured data type and carries its
// definition.
type StructureDescription struct {
	DataTypeID          NodeID
	Name                QualifiedName
	StructureDefinition StructureDefinitionData
}

func (*StructureDescription) EncodingID() ExpandedNodeID { return NewNumericExpandedNodeID("", 126) }
func (s *StructureDescription) ByteLen(ctx *Context) int  { return EncodedLen(ctx, s) }

func (s *StructureDescription) EncodeBinary(e *Encoder) error {
	return firstError(
		func() error { return e.WriteNodeID(s.DataTypeID) },
		func() error { return e.WriteQualifiedName(s.Name) },
		func() error { return s.StructureDefinition.EncodeBinary(e) },
	)
}

func readStructureDescription(d *Decoder) (StructureDescription, error) {
	var s StructureDescription
	var err error
	if s.DataTypeID, err = d.ReadNodeID(); err != nil {
		return s, err
	}
	if s.Name, err = d.ReadQualifiedName(); err != nil {
		return s, err
	}
	s.StructureDefinition, err = readStructureDefinition(d)
	return s, err
}

func decodeStructureDescription(d *Decoder) (Structure, error) {
	s, err := readStructureDescription(d)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *StructureDescription) EncodeJSON(ctx *Context) (map[string]any, error) {
	def, err := s.StructureDefinition.EncodeJSON(ctx)
	if err != nil {
		return nil, err
	}
	w := newJSONWriter(ctx)
	w.field("DataTypeId", TypeNodeID, s.DataTypeID)
	w.field("Name", TypeQualifiedName, s.Name)
	w.m["StructureDefinition"] = def
	return w.result()
}

func readStructureDescriptionJSON(r *jsonReader) StructureDescription {
	return StructureDescription{
		DataTypeID:          jsonGet[NodeID](r, "DataTypeId", TypeNodeID),
		Name:                jsonGet[QualifiedName](r, "Name", TypeQualifiedName),
		StructureDefinition: jsonGetObject(r, "StructureDefinition", readStructureDefinitionJSON),
	}
}

func decodeStructureDescriptionJSON(ctx *Context, body map[string]any) (Structure, error) {
	r := newJSONReader(ctx, body)
	s := readStructureDescriptionJSON(r)
	return &s, r.err
}

// EnumDescription names an enumeration and carries its definition.
type EnumDescription struct {
	DataTypeID     NodeID
	Name           QualifiedName
	EnumDefinition EnumDefinitionData
	BuiltInType    byte
}

func (*EnumDescription) EncodingID() ExpandedNodeID { return NewNumericExpandedNodeID("", 127) }
func (s *EnumDescription) ByteLen(ctx *Context) int  { return EncodedLen(ctx, s) }

func (s *EnumDescription) EncodeBinary(e *Encoder) error {
	return firstError(
		func() error { return e.WriteNodeID(s.DataTypeID) },
		func() error { return e.WriteQualifiedName(s.Name) },
		func() error { return s.EnumDefinition.EncodeBinary(e) },
		func() error { return e.WriteByte(s.BuiltInType) },
	)
}

func readEnumDescription(d *Decoder) (EnumDescription, error) {
	var s EnumDescription
	var err error
	if s.DataTypeID, err = d.ReadNodeID(); err != nil {
		return s, err
	}
	if s.Name, err = d.ReadQualifiedName(); err != nil {
		return s, err
	}
	if s.EnumDefinition, err = readEnumDefinition(d); err != nil {
		return s, err
	}
	s.BuiltInType, err = d.ReadByte()
	return s, err
}

func decodeEnumDescription(d *Decoder) (Structure, error) {
	s, err := readEnumDescription(d)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *EnumDescription) EncodeJSON(ctx *Context) (map[string]any, error) {
	def, err := s.EnumDefinition.EncodeJSON(ctx)
	if err != nil {
		return nil, err
	}
	w := newJSONWriter(ctx)
	w.field("DataTypeId", TypeNodeID, s.DataTypeID)
	w.field("Name", TypeQualifiedName, s.Name)
	w.m["EnumDefinition"] = def
	w.field("BuiltInType", TypeByte, s.BuiltInType)
	return w.result()
}

func readEnumDescriptionJSON(r *jsonReader) EnumDescription {
	return EnumDescription{
		DataTypeID:     jsonGet[NodeID](r, "DataTypeId", TypeNodeID),
		Name:           jsonGet[QualifiedName](r, "Name", TypeQualifiedName),
		EnumDefinition: jsonGetObject(r, "EnumDefinition", readEnumDefinitionJSON),
		BuiltInType:    jsonGet[byte](r, "BuiltInType", TypeByte),
	}
}

func decodeEnumDescriptionJSON(ctx *Context, body map[string]any) (Structure, error) {
	r := newJSONReader(ctx, body)
	s := readEnumDescriptionJSON(r)
	return &s, r.err
}

// SimpleTypeDescription names a data type derived from a built-in type.
type SimpleTypeDescription struct {
	DataTypeID   NodeID
	Name         QualifiedName
	BaseDataType NodeID
	BuiltInType  byte
}

func (*SimpleTypeDescription) EncodingID() ExpandedNodeID {
	return NewNumericExpandedNodeID("", 15421)
}

func (s *SimpleTypeDescription) ByteLen(ctx *Context) int { return EncodedLen(ctx, s) }

func (s *SimpleTypeDescription) EncodeBinary(e *Encoder) error {
	return firstError(
		func() error { return e.WriteNodeID(s.DataTypeID) },
		func() error { return e.WriteQualifiedName(s.Name) },
		func() error { return e.WriteNodeID(s.BaseDataType) },
		func() error { return e.WriteByte(s.BuiltInType) },
	)
}

func readSimpleTypeDescription(d *Decoder) (SimpleTypeDescription, error) {
	var s SimpleTypeDescription
	var err error
	if s.DataTypeID, err = d.ReadNodeID(); err != nil {
		return s, err
	}
	if s.Name, err = d.ReadQualifiedName(); err != nil {
		return s, err
	}
	if s.BaseDataType, err = d.ReadNodeID(); err != nil {
		return s, err
	}
	s.BuiltInType, err = d.ReadByte()
	return s, err
}

func decodeSimpleTypeDescription(d *Decoder) (Structure, error) {
	s, err := readSimpleTypeDescription(d)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *SimpleTypeDescription) EncodeJSON(ctx *Context) (map[string]any, error) {
	w := newJSONWriter(ctx)
	w.field("DataTypeId", TypeNodeID, s.DataTypeID)
	w.field("Name", TypeQualifiedName, s.Name)
	w.field("BaseDataType", TypeNodeID, s.BaseDataType)
	w.field("BuiltInType", TypeByte, s.BuiltInType)
	return w.result()
}

func readSimpleTypeDescriptionJSON(r *jsonReader) SimpleTypeDescription {
	return SimpleTypeDescription{
		DataTypeID:   jsonGet[NodeID](r, "DataTypeId", TypeNodeID),
		Name:         jsonGet[QualifiedName](r, "Name", TypeQualifiedName),
		BaseDataType: jsonGet[NodeID](r, "BaseDataType", TypeNodeID),
		BuiltInType:  jsonGet[byte](r, "BuiltInType", TypeByte),
	}
}

func decodeSimpleTypeDescriptionJSON(ctx *Context, body map[string]any) (Structure, error) {
	r := newJSONReader(ctx, body)
	s := readSimpleTypeDescriptionJSON(r)
	return &s, r.err
}

// DataTypeSchemaHeader collects the type descriptions of a data set or
// dictionary together with the namespaces they refer to.
type DataTypeSchemaHeader struct {
	Namespaces         []String
	StructureDataTypes []StructureDescription
	EnumDataTypes      []EnumDescription
	SimpleDataTypes    []SimpleTypeDescription
}

func (*DataTypeSchemaHeader) EncodingID() ExpandedNodeID {
	return NewNumericExpandedNodeID("", 15676)
}

func (h *DataTypeSchemaHeader) ByteLen(ctx *Context) int { return EncodedLen(ctx, h) }

func (h *DataTypeSchemaHeader) EncodeBinary(e *Encoder) error {
	return firstError(
		func() error { return EncodeArray(e, h.Namespaces, e.WriteString) },
		func() error {
			return EncodeArray(e, h.StructureDataTypes, func(s StructureDescription) error { return s.EncodeBinary(e) })
		},
		func() error {
			return EncodeArray(e, h.EnumDataTypes, func(s EnumDescription) error { return s.EncodeBinary(e) })
		},
		func() error {
			return EncodeArray(e, h.SimpleDataTypes, func(s SimpleTypeDescription) error { return s.EncodeBinary(e) })
		},
	)
}

func decodeDataTypeSchemaHeader(d *Decoder) (Structure, error) {
	h := &DataTypeSchemaHeader{}
	var err error
	if h.Namespaces, err = DecodeArray(d, d.ReadString); err != nil {
		return nil, err
	}
	if h.StructureDataTypes, err = DecodeArray(d, func() (StructureDescription, error) { return readStructureDescription(d) }); err != nil {
		return nil, err
	}
	if h.EnumDataTypes, err = DecodeArray(d, func() (EnumDescription, error) { return readEnumDescription(d) }); err != nil {
		return nil, err
	}
	if h.SimpleDataTypes, err = DecodeArray(d, func() (SimpleTypeDescription, error) { return readSimpleTypeDescription(d) }); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *DataTypeSchemaHeader) EncodeJSON(ctx *Context) (map[string]any, error) {
	w := newJSONWriter(ctx)
	w.array("Namespaces", TypeString, h.Namespaces)
	jsonObjects(w, "StructureDataTypes", h.StructureDataTypes, func(s StructureDescription) (map[string]any, error) { return s.EncodeJSON(ctx) })
	jsonObjects(w, "EnumDataTypes", h.EnumDataTypes, func(s EnumDescription) (map[string]any, error) { return s.EncodeJSON(ctx) })
	jsonObjects(w, "SimpleDataTypes", h.SimpleDataTypes, func(s SimpleTypeDescription) (map[string]any, error) { return s.EncodeJSON(ctx) })
	return w.result()
}

func decodeDataTypeSchemaHeaderJSON(ctx *Context, body map[string]any) (Structure, error) {
	r := newJSONReader(ctx, body)
	h := &DataTypeSchemaHeader{
		Namespaces:         jsonGetArray[String](r, "Namespaces", TypeString),
		StructureDataTypes: jsonGetObjects(r, "StructureDataTypes", readStructureDescriptionJSON),
		EnumDataTypes:      jsonGetObjects(r, "EnumDataTypes", readEnumDescriptionJSON),
		SimpleDataTypes:    jsonGetObjects(r, "SimpleDataTypes", readSimpleTypeDescriptionJSON),
	}
	return h, r.err
}

package uatypes

import "fmt"

// Wire sizes, shared by ByteLen implementations.

func stringLen(s String) int {
	if !s.Valid {
		return 4
	}
	return 4 + len(s.Value)
}

func byteStringLen(b ByteString) int { return 4 + len(b) }

func nodeIDLen(n NodeID) int {
	switch nodeIDEncoding(n) {
	case nodeIDTwoByte:
		return 2
	case nodeIDFourByte:
		return 4
	case nodeIDNumeric:
		return 7
	case nodeIDString:
		return 3 + 4 + len(n.Str)
	case nodeIDGuid:
		return 3 + 16
	default:
		return 3 + byteStringLen(n.Opaque)
	}
}

func expandedNodeIDLen(e ExpandedNodeID) int {
	n := nodeIDLen(e.NodeID)
	if e.NamespaceURI != "" {
		n += 4 + len(e.NamespaceURI)
	}
	if e.ServerIndex != 0 {
		n += 4
	}
	return n
}

func qualifiedNameLen(q QualifiedName) int { return 2 + stringLen(q.Name) }

func localizedTextLen(l LocalizedText) int {
	n := 1
	if l.Locale.Valid {
		n += stringLen(l.Locale)
	}
	if l.Text.Valid {
		n += stringLen(l.Text)
	}
	return n
}

func dataValueLen(ctx *Context, dv DataValue) int {
	m := dv.mask()
	n := 1
	if m&dataValueHasValue != 0 {
		n += dv.Value.ByteLen(ctx)
	}
	if m&dataValueHasStatus != 0 {
		n += 4
	}
	if m&dataValueHasSourceTimestamp != 0 {
		n += 8
	}
	if m&dataValueHasSourcePicoseconds != 0 {
		n += 2
	}
	if m&dataValueHasServerTimestamp != 0 {
		n += 8
	}
	if m&dataValueHasServerPicoseconds != 0 {
		n += 2
	}
	return n
}

func diagnosticInfoLen(di DiagnosticInfo) int {
	m := di.mask()
	n := 1
	for _, bit := range []byte{diagHasSymbolicID, diagHasNamespaceURI, diagHasLocale, diagHasLocalizedText, diagHasInnerStatus} {
		if m&bit != 0 {
			n += 4
		}
	}
	if m&diagHasAdditionalInfo != 0 {
		n += stringLen(di.AdditionalInfo)
	}
	if m&diagHasInnerDiag != 0 {
		n += diagnosticInfoLen(*di.InnerDiagnosticInfo)
	}
	return n
}

// valueLen returns the encoded size of a built-in value of type t held in v
// (a scalar of the Go type listed for t in NewVariant).
func valueLen(ctx *Context, t TypeID, v any) int {
	if n := t.fixedSize(); n > 0 {
		return n
	}
	switch x := v.(type) {
	case String:
		return stringLen(x)
	case XmlElement:
		return stringLen(String(x))
	case ByteString:
		return byteStringLen(x)
	case NodeID:
		return nodeIDLen(x)
	case ExpandedNodeID:
		return expandedNodeIDLen(x)
	case QualifiedName:
		return qualifiedNameLen(x)
	case LocalizedText:
		return localizedTextLen(x)
	case ExtensionObject:
		return x.ByteLen(ctx)
	case DataValue:
		return dataValueLen(ctx, x)
	case Variant:
		return x.ByteLen(ctx)
	case DiagnosticInfo:
		return diagnosticInfoLen(x)
	}
	return 0
}

// arrayLen returns the encoded size of a typed slice including the count.
func arrayLen(ctx *Context, t TypeID, v any) int {
	n := 4
	if fs := t.fixedSize(); fs > 0 {
		return n + fs*sliceLen(v)
	}
	switch a := v.(type) {
	case []String:
		for _, s := range a {
			n += stringLen(s)
		}
	case []XmlElement:
		for _, s := range a {
			n += stringLen(String(s))
		}
	case []ByteString:
		for _, b := range a {
			n += byteStringLen(b)
		}
	case []NodeID:
		for _, x := range a {
			n += nodeIDLen(x)
		}
	case []ExpandedNodeID:
		for _, x := range a {
			n += expandedNodeIDLen(x)
		}
	case []QualifiedName:
		for _, x := range a {
			n += qualifiedNameLen(x)
		}
	case []LocalizedText:
		for _, x := range a {
			n += localizedTextLen(x)
		}
	case []ExtensionObject:
		for _, x := range a {
			n += x.ByteLen(ctx)
		}
	case []DataValue:
		for _, x := range a {
			n += dataValueLen(ctx, x)
		}
	case []Variant:
		for _, x := range a {
			n += x.ByteLen(ctx)
		}
	case []DiagnosticInfo:
		for _, x := range a {
			n += diagnosticInfoLen(x)
		}
	}
	return n
}

func sliceLen(v any) int {
	switch a := v.(type) {
	case []bool:
		return len(a)
	case []int8:
		return len(a)
	case []byte:
		return len(a)
	case []int16:
		return len(a)
	case []uint16:
		return len(a)
	case []int32:
		return len(a)
	case []uint32:
		return len(a)
	case []int64:
		return len(a)
	case []uint64:
		return len(a)
	case []float32:
		return len(a)
	case []float64:
		return len(a)
	case []String:
		return len(a)
	case []DateTime:
		return len(a)
	case []Guid:
		return len(a)
	case []ByteString:
		return len(a)
	case []XmlElement:
		return len(a)
	case []NodeID:
		return len(a)
	case []ExpandedNodeID:
		return len(a)
	case []StatusCode:
		return len(a)
	case []QualifiedName:
		return len(a)
	case []LocalizedText:
		return len(a)
	case []ExtensionObject:
		return len(a)
	case []DataValue:
		return len(a)
	case []Variant:
		return len(a)
	case []DiagnosticInfo:
		return len(a)
	}
	return 0
}

// isNilSlice reports whether v is a nil slice of one of the element types.
func isNilSlice(v any) bool {
	switch a := v.(type) {
	case []bool:
		return a == nil
	case []int8:
		return a == nil
	case []byte:
		return a == nil
	case []int16:
		return a == nil
	case []uint16:
		return a == nil
	case []int32:
		return a == nil
	case []uint32:
		return a == nil
	case []int64:
		return a == nil
	case []uint64:
		return a == nil
	case []float32:
		return a == nil
	case []float64:
		return a == nil
	case []String:
		return a == nil
	case []DateTime:
		return a == nil
	case []Guid:
		return a == nil
	case []ByteString:
		return a == nil
	case []XmlElement:
		return a == nil
	case []NodeID:
		return a == nil
	case []ExpandedNodeID:
		return a == nil
	case []StatusCode:
		return a == nil
	case []QualifiedName:
		return a == nil
	case []LocalizedText:
		return a == nil
	case []ExtensionObject:
		return a == nil
	case []DataValue:
		return a == nil
	case []Variant:
		return a == nil
	case []DiagnosticInfo:
		return a == nil
	}
	return false
}

// encodeValue writes a scalar built-in value.
func encodeValue(e *Encoder, t TypeID, v any) error {
	if vt, _ := typeOfValue(v); vt != t {
		return encodeError("value of Go type %T cannot be encoded as %s", v, t)
	}
	switch x := v.(type) {
	case bool:
		return e.WriteBoolean(x)
	case int8:
		return e.WriteSByte(x)
	case byte:
		return e.WriteByte(x)
	case int16:
		return e.WriteInt16(x)
	case uint16:
		return e.WriteUInt16(x)
	case int32:
		return e.WriteInt32(x)
	case uint32:
		return e.WriteUInt32(x)
	case int64:
		return e.WriteInt64(x)
	case uint64:
		return e.WriteUInt64(x)
	case float32:
		return e.WriteFloat(x)
	case float64:
		return e.WriteDouble(x)
	case String:
		return e.WriteString(x)
	case DateTime:
		return e.WriteDateTime(x)
	case Guid:
		return e.WriteGuid(x)
	case ByteString:
		return e.WriteByteString(x)
	case XmlElement:
		return e.WriteXmlElement(x)
	case NodeID:
		return e.WriteNodeID(x)
	case ExpandedNodeID:
		return e.WriteExpandedNodeID(x)
	case StatusCode:
		return e.WriteStatusCode(x)
	case QualifiedName:
		return e.WriteQualifiedName(x)
	case LocalizedText:
		return e.WriteLocalizedText(x)
	case ExtensionObject:
		return x.EncodeBinary(e)
	case DataValue:
		return e.WriteDataValue(x)
	case Variant:
		return x.EncodeBinary(e)
	case DiagnosticInfo:
		return e.WriteDiagnosticInfo(x)
	}
	return encodeError("value of Go type %T cannot be encoded as %s", v, t)
}

// encodeArrayValue writes a typed slice with its count prefix.
func encodeArrayValue(e *Encoder, t TypeID, v any) error {
	if vt, _ := typeOfSlice(v); vt != t {
		return encodeError("value of Go type %T cannot be encoded as %s array", v, t)
	}
	switch a := v.(type) {
	case []bool:
		return EncodeArray(e, a, e.WriteBoolean)
	case []int8:
		return EncodeArray(e, a, e.WriteSByte)
	case []byte:
		return EncodeArray(e, a, e.WriteByte)
	case []int16:
		return EncodeArray(e, a, e.WriteInt16)
	case []uint16:
		return EncodeArray(e, a, e.WriteUInt16)
	case []int32:
		return EncodeArray(e, a, e.WriteInt32)
	case []uint32:
		return EncodeArray(e, a, e.WriteUInt32)
	case []int64:
		return EncodeArray(e, a, e.WriteInt64)
	case []uint64:
		return EncodeArray(e, a, e.WriteUInt64)
	case []float32:
		return EncodeArray(e, a, e.WriteFloat)
	case []float64:
		return EncodeArray(e, a, e.WriteDouble)
	case []String:
		return EncodeArray(e, a, e.WriteString)
	case []DateTime:
		return EncodeArray(e, a, e.WriteDateTime)
	case []Guid:
		return EncodeArray(e, a, e.WriteGuid)
	case []ByteString:
		return EncodeArray(e, a, e.WriteByteString)
	case []XmlElement:
		return EncodeArray(e, a, e.WriteXmlElement)
	case []NodeID:
		return EncodeArray(e, a, e.WriteNodeID)
	case []ExpandedNodeID:
		return EncodeArray(e, a, e.WriteExpandedNodeID)
	case []StatusCode:
		return EncodeArray(e, a, e.WriteStatusCode)
	case []QualifiedName:
		return EncodeArray(e, a, e.WriteQualifiedName)
	case []LocalizedText:
		return EncodeArray(e, a, e.WriteLocalizedText)
	case []ExtensionObject:
		return EncodeArray(e, a, e.WriteExtensionObject)
	case []DataValue:
		return EncodeArray(e, a, e.WriteDataValue)
	case []Variant:
		return EncodeArray(e, a, e.WriteVariant)
	case []DiagnosticInfo:
		return EncodeArray(e, a, e.WriteDiagnosticInfo)
	}
	return encodeError("value of Go type %T cannot be encoded as %s array", v, t)
}

// decodeValue reads one scalar of type t. Nested structural types count
// against the recursion depth.
func decodeValue(d *Decoder, t TypeID) (any, error) {
	switch t {
	case TypeBoolean:
		return d.ReadBoolean()
	case TypeSByte:
		return d.ReadSByte()
	case TypeByte:
		return d.ReadByte()
	case TypeInt16:
		return d.ReadInt16()
	case TypeUInt16:
		return d.ReadUInt16()
	case TypeInt32:
		return d.ReadInt32()
	case TypeUInt32:
		return d.ReadUInt32()
	case TypeInt64:
		return d.ReadInt64()
	case TypeUInt64:
		return d.ReadUInt64()
	case TypeFloat:
		return d.ReadFloat()
	case TypeDouble:
		return d.ReadDouble()
	case TypeString:
		return d.ReadString()
	case TypeDateTime:
		return d.ReadDateTime()
	case TypeGuid:
		return d.ReadGuid()
	case TypeByteString:
		return d.ReadByteString()
	case TypeXmlElement:
		return d.ReadXmlElement()
	case TypeNodeID:
		return d.ReadNodeID()
	case TypeExpandedNodeID:
		return d.ReadExpandedNodeID()
	case TypeStatusCode:
		return d.ReadStatusCode()
	case TypeQualifiedName:
		return d.ReadQualifiedName()
	case TypeLocalizedText:
		return d.ReadLocalizedText()
	case TypeExtensionObject:
		return d.ReadExtensionObject()
	case TypeDataValue:
		return nested(d, d.ReadDataValue)
	case TypeVariant:
		return nested(d, d.ReadVariant)
	case TypeDiagnosticInfo:
		return d.ReadDiagnosticInfo()
	}
	return nil, d.fail(CodeInvalidDiscriminant, "unknown built-in type id %d", t)
}

func nested[T any](d *Decoder, read func() (T, error)) (T, error) {
	if err := d.enter(); err != nil {
		var zero T
		return zero, err
	}
	defer d.leave()
	return read()
}

// minWireSize is the smallest encoding of one value of type t.
func minWireSize(t TypeID) int64 {
	if n := t.fixedSize(); n > 0 {
		return int64(n)
	}
	switch t {
	case TypeString, TypeByteString, TypeXmlElement:
		return 4
	case TypeNodeID, TypeExpandedNodeID:
		return 2
	case TypeQualifiedName:
		return 6
	case TypeExtensionObject:
		return 3
	}
	return 1
}

// decodeArrayValue reads a count-prefixed array of type t into the typed
// slice NewArrayVariant accepts.
func decodeArrayValue(d *Decoder, t TypeID) (any, error) {
	if !t.Valid() {
		return nil, d.fail(CodeInvalidDiscriminant, "unknown built-in type id %d", t)
	}
	n, err := d.readLength("array", d.limits.MaxArrayLength, minWireSize(t))
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nilSlice(t), nil
	}
	switch t {
	case TypeBoolean:
		return decodeElements(d, n, d.ReadBoolean)
	case TypeSByte:
		return decodeElements(d, n, d.ReadSByte)
	case TypeByte:
		b, err := d.readBytes(n)
		return []byte(b), err
	case TypeInt16:
		return decodeElements(d, n, d.ReadInt16)
	case TypeUInt16:
		return decodeElements(d, n, d.ReadUInt16)
	case TypeInt32:
		return decodeElements(d, n, d.ReadInt32)
	case TypeUInt32:
		return decodeElements(d, n, d.ReadUInt32)
	case TypeInt64:
		return decodeElements(d, n, d.ReadInt64)
	case TypeUInt64:
		return decodeElements(d, n, d.ReadUInt64)
	case TypeFloat:
		return decodeElements(d, n, d.ReadFloat)
	case TypeDouble:
		return decodeElements(d, n, d.ReadDouble)
	case TypeString:
		return decodeElements(d, n, d.ReadString)
	case TypeDateTime:
		return decodeElements(d, n, d.ReadDateTime)
	case TypeGuid:
		return decodeElements(d, n, d.ReadGuid)
	case TypeByteString:
		return decodeElements(d, n, d.ReadByteString)
	case TypeXmlElement:
		return decodeElements(d, n, d.ReadXmlElement)
	case TypeNodeID:
		return decodeElements(d, n, d.ReadNodeID)
	case TypeExpandedNodeID:
		return decodeElements(d, n, d.ReadExpandedNodeID)
	case TypeStatusCode:
		return decodeElements(d, n, d.ReadStatusCode)
	case TypeQualifiedName:
		return decodeElements(d, n, d.ReadQualifiedName)
	case TypeLocalizedText:
		return decodeElements(d, n, d.ReadLocalizedText)
	case TypeExtensionObject:
		return decodeElements(d, n, d.ReadExtensionObject)
	case TypeDataValue:
		return decodeElements(d, n, func() (DataValue, error) { return nested(d, d.ReadDataValue) })
	case TypeVariant:
		return decodeElements(d, n, func() (Variant, error) { return nested(d, d.ReadVariant) })
	default:
		return decodeElements(d, n, d.ReadDiagnosticInfo)
	}
}

// nilSlice returns the typed nil slice for t.
func nilSlice(t TypeID) any {
	switch t {
	case TypeBoolean:
		return []bool(nil)
	case TypeSByte:
		return []int8(nil)
	case TypeByte:
		return []byte(nil)
	case TypeInt16:
		return []int16(nil)
	case TypeUInt16:
		return []uint16(nil)
	case TypeInt32:
		return []int32(nil)
	case TypeUInt32:
		return []uint32(nil)
	case TypeInt64:
		return []int64(nil)
	case TypeUInt64:
		return []uint64(nil)
	case TypeFloat:
		return []float32(nil)
	case TypeDouble:
		return []float64(nil)
	case TypeString:
		return []String(nil)
	case TypeDateTime:
		return []DateTime(nil)
	case TypeGuid:
		return []Guid(nil)
	case TypeByteString:
		return []ByteString(nil)
	case TypeXmlElement:
		return []XmlElement(nil)
	case TypeNodeID:
		return []NodeID(nil)
	case TypeExpandedNodeID:
		return []ExpandedNodeID(nil)
	case TypeStatusCode:
		return []StatusCode(nil)
	case TypeQualifiedName:
		return []QualifiedName(nil)
	case TypeLocalizedText:
		return []LocalizedText(nil)
	case TypeExtensionObject:
		return []ExtensionObject(nil)
	case TypeDataValue:
		return []DataValue(nil)
	case TypeVariant:
		return []Variant(nil)
	case TypeDiagnosticInfo:
		return []DiagnosticInfo(nil)
	}
	panic(fmt.Sprintf("uatypes: no slice type for %s", t))
}

// typeOfValue maps a Go scalar to its built-in type id.
func typeOfValue(v any) (TypeID, bool) {
	switch v.(type) {
	case bool:
		return TypeBoolean, true
	case int8:
		return TypeSByte, true
	case byte:
		return TypeByte, true
	case int16:
		return TypeInt16, true
	case uint16:
		return TypeUInt16, true
	case int32:
		return TypeInt32, true
	case uint32:
		return TypeUInt32, true
	case int64:
		return TypeInt64, true
	case uint64:
		return TypeUInt64, true
	case float32:
		return TypeFloat, true
	case float64:
		return TypeDouble, true
	case String, string:
		return TypeString, true
	case DateTime:
		return TypeDateTime, true
	case Guid:
		return TypeGuid, true
	case ByteString:
		return TypeByteString, true
	case XmlElement:
		return TypeXmlElement, true
	case NodeID:
		return TypeNodeID, true
	case ExpandedNodeID:
		return TypeExpandedNodeID, true
	case StatusCode:
		return TypeStatusCode, true
	case QualifiedName:
		return TypeQualifiedName, true
	case LocalizedText:
		return TypeLocalizedText, true
	case ExtensionObject:
		return TypeExtensionObject, true
	case DataValue:
		return TypeDataValue, true
	case Variant:
		return TypeVariant, true
	case DiagnosticInfo:
		return TypeDiagnosticInfo, true
	}
	return TypeNull, false
}

// typeOfSlice maps a Go slice to its element built-in type id.
func typeOfSlice(v any) (TypeID, bool) {
	switch v.(type) {
	case []bool:
		return TypeBoolean, true
	case []int8:
		return TypeSByte, true
	case []byte:
		return TypeByte, true
	case []int16:
		return TypeInt16, true
	case []uint16:
		return TypeUInt16, true
	case []int32:
		return TypeInt32, true
	case []uint32:
		return TypeUInt32, true
	case []int64:
		return TypeInt64, true
	case []uint64:
		return TypeUInt64, true
	case []float32:
		return TypeFloat, true
	case []float64:
		return TypeDouble, true
	case []String:
		return TypeString, true
	case []DateTime:
		return TypeDateTime, true
	case []Guid:
		return TypeGuid, true
	case []ByteString:
		return TypeByteString, true
	case []XmlElement:
		return TypeXmlElement, true
	case []NodeID:
		return TypeNodeID, true
	case []ExpandedNodeID:
		return TypeExpandedNodeID, true
	case []StatusCode:
		return TypeStatusCode, true
	case []QualifiedName:
		return TypeQualifiedName, true
	case []LocalizedText:
		return TypeLocalizedText, true
	case []ExtensionObject:
		return TypeExtensionObject, true
	case []DataValue:
		return TypeDataValue, true
	case []Variant:
		return TypeVariant, true
	case []DiagnosticInfo:
		return TypeDiagnosticInfo, true
	}
	return TypeNull, false
}

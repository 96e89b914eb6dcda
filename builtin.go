package uatypes

import "strconv"

// TypeID identifies one of the OPC-UA built-in types. The set is closed:
// ids 1 through 25 are defined by the standard and nothing else is valid
// on the wire.
type TypeID byte

const (
	TypeNull TypeID = iota
	TypeBoolean
	TypeSByte
	TypeByte
	TypeInt16
	TypeUInt16
	TypeInt32
	TypeUInt32
	TypeInt64
	TypeUInt64
	TypeFloat
	TypeDouble
	TypeString
	TypeDateTime
	TypeGuid
	TypeByteString
	TypeXmlElement
	TypeNodeID
	TypeExpandedNodeID
	TypeStatusCode
	TypeQualifiedName
	TypeLocalizedText
	TypeExtensionObject
	TypeDataValue
	TypeVariant
	TypeDiagnosticInfo

	maxTypeID = TypeDiagnosticInfo
)

var typeNames = [...]string{
	TypeNull:            "Null",
	TypeBoolean:         "Boolean",
	TypeSByte:           "SByte",
	TypeByte:            "Byte",
	TypeInt16:           "Int16",
	TypeUInt16:          "UInt16",
	TypeInt32:           "Int32",
	TypeUInt32:          "UInt32",
	TypeInt64:           "Int64",
	TypeUInt64:          "UInt64",
	TypeFloat:           "Float",
	TypeDouble:          "Double",
	TypeString:          "String",
	TypeDateTime:        "DateTime",
	TypeGuid:            "Guid",
	TypeByteString:      "ByteString",
	TypeXmlElement:      "XmlElement",
	TypeNodeID:          "NodeId",
	TypeExpandedNodeID:  "ExpandedNodeId",
	TypeStatusCode:      "StatusCode",
	TypeQualifiedName:   "QualifiedName",
	TypeLocalizedText:   "LocalizedText",
	TypeExtensionObject: "ExtensionObject",
	TypeDataValue:       "DataValue",
	TypeVariant:         "Variant",
	TypeDiagnosticInfo:  "DiagnosticInfo",
}

// Valid reports whether t is a defined built-in type (Null excluded).
func (t TypeID) Valid() bool { return t > TypeNull && t <= maxTypeID }

func (t TypeID) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "TypeID(" + strconv.Itoa(int(t)) + ")"
}

// TypeIDByName returns the built-in type with the given standard name
// (e.g. "Int32", "LocalizedText").
func TypeIDByName(name string) (TypeID, bool) {
	for i, n := range typeNames {
		if i > 0 && n == name {
			return TypeID(i), true
		}
	}
	return TypeNull, false
}

// DataTypeNodeID returns the namespace-0 DataType node of a built-in type.
// Built-in type ids equal their DataType node ids.
func (t TypeID) DataTypeNodeID() NodeID { return NewNumericNodeID(0, uint32(t)) }

// fixedSize returns the encoded size of fixed-width built-ins, or 0.
func (t TypeID) fixedSize() int {
	switch t {
	case TypeBoolean, TypeSByte, TypeByte:
		return 1
	case TypeInt16, TypeUInt16:
		return 2
	case TypeInt32, TypeUInt32, TypeFloat, TypeStatusCode:
		return 4
	case TypeInt64, TypeUInt64, TypeDouble, TypeDateTime:
		return 8
	case TypeGuid:
		return 16
	}
	return 0
}

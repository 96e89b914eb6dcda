package uatypes

// String is a nullable OPC-UA string. The zero value is the null string,
// which is distinct from the empty string: null encodes as length -1,
// empty as length 0.
type String struct {
	Value string
	Valid bool // Valid is true if Value is not null
}

// NewString returns a non-null String.
func NewString(s string) String { return String{Value: s, Valid: true} }

// NullString is the null string.
var NullString = String{}

// IsNull reports whether s is the null string.
func (s String) IsNull() bool { return !s.Valid }

func (s String) String() string { return s.Value }

// XmlElement is an XML fragment carried as a nullable string.
type XmlElement String

// NewXmlElement returns a non-null XmlElement.
func NewXmlElement(s string) XmlElement { return XmlElement{Value: s, Valid: true} }

// ByteString is a nullable byte sequence; nil is the null byte string.
type ByteString []byte

// IsNull reports whether b is the null byte string.
func (b ByteString) IsNull() bool { return b == nil }

// Strings converts Go strings to non-null Strings.
func Strings(ss ...string) []String {
	out := make([]String, len(ss))
	for i, s := range ss {
		out[i] = NewString(s)
	}
	return out
}

package uatypes

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

// BinaryEncoder is implemented by every value that has an OPC-UA binary
// form. ByteLen must return exactly the number of bytes EncodeBinary
// writes, without writing anything.
type BinaryEncoder interface {
	ByteLen(ctx *Context) int
	EncodeBinary(e *Encoder) error
}

// Encoder writes OPC-UA binary values to a sequential byte sink.
type Encoder struct {
	w   io.Writer
	ctx *Context
	n   int64
	buf [16]byte
}

// NewEncoder returns an Encoder writing to w. ctx must not be nil.
func NewEncoder(w io.Writer, ctx *Context) *Encoder {
	return &Encoder{w: w, ctx: ctx}
}

// Context returns the encoding context.
func (e *Encoder) Context() *Context { return e.ctx }

// Written returns the number of bytes written so far.
func (e *Encoder) Written() int64 { return e.n }

// Marshal encodes v into a buffer pre-sized from v.ByteLen.
func Marshal(ctx *Context, v BinaryEncoder) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(v.ByteLen(ctx))
	if err := v.EncodeBinary(NewEncoder(&buf, ctx)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Encoder) write(p []byte) error {
	n, err := e.w.Write(p)
	e.n += int64(n)
	if err != nil {
		return &Error{Code: CodeEncodingFailed, Offset: e.n, Message: "write failed", Cause: err}
	}
	return nil
}

// WriteBoolean writes a boolean as one byte.
func (e *Encoder) WriteBoolean(v bool) error {
	if v {
		return e.WriteByte(1)
	}
	return e.WriteByte(0)
}

// WriteByte writes one byte.
func (e *Encoder) WriteByte(v byte) error {
	e.buf[0] = v
	return e.write(e.buf[:1])
}

// WriteSByte writes a signed byte.
func (e *Encoder) WriteSByte(v int8) error { return e.WriteByte(byte(v)) }

// WriteUInt16 writes a little-endian uint16.
func (e *Encoder) WriteUInt16(v uint16) error {
	binary.LittleEndian.PutUint16(e.buf[:2], v)
	return e.write(e.buf[:2])
}

// WriteInt16 writes a little-endian int16.
func (e *Encoder) WriteInt16(v int16) error { return e.WriteUInt16(uint16(v)) }

// WriteUInt32 writes a little-endian uint32.
func (e *Encoder) WriteUInt32(v uint32) error {
	binary.LittleEndian.PutUint32(e.buf[:4], v)
	return e.write(e.buf[:4])
}

// WriteInt32 writes a little-endian int32.
func (e *Encoder) WriteInt32(v int32) error { return e.WriteUInt32(uint32(v)) }

// WriteUInt64 writes a little-endian uint64.
func (e *Encoder) WriteUInt64(v uint64) error {
	binary.LittleEndian.PutUint64(e.buf[:8], v)
	return e.write(e.buf[:8])
}

// WriteInt64 writes a little-endian int64.
func (e *Encoder) WriteInt64(v int64) error { return e.WriteUInt64(uint64(v)) }

// WriteFloat writes an IEEE 754 float32.
func (e *Encoder) WriteFloat(v float32) error { return e.WriteUInt32(math.Float32bits(v)) }

// WriteDouble writes an IEEE 754 float64.
func (e *Encoder) WriteDouble(v float64) error { return e.WriteUInt64(math.Float64bits(v)) }

func (e *Encoder) writeLength(n int) error {
	if n > math.MaxInt32 {
		return encodeError("length %d does not fit the int32 length prefix", n)
	}
	return e.WriteInt32(int32(n))
}

// WriteString writes a length-prefixed string; null writes length -1.
func (e *Encoder) WriteString(v String) error {
	if !v.Valid {
		return e.WriteInt32(-1)
	}
	if err := e.writeLength(len(v.Value)); err != nil {
		return err
	}
	return e.write([]byte(v.Value))
}

// WriteXmlElement writes an XML element with string encoding.
func (e *Encoder) WriteXmlElement(v XmlElement) error { return e.WriteString(String(v)) }

// WriteByteString writes a length-prefixed byte string; nil writes -1.
func (e *Encoder) WriteByteString(v ByteString) error {
	if v == nil {
		return e.WriteInt32(-1)
	}
	if err := e.writeLength(len(v)); err != nil {
		return err
	}
	return e.write(v)
}

// WriteDateTime writes the tick count.
func (e *Encoder) WriteDateTime(v DateTime) error { return e.WriteInt64(int64(v)) }

// WriteGuid writes the mixed-endian guid form.
func (e *Encoder) WriteGuid(v Guid) error {
	b := v.wireBytes()
	return e.write(b[:])
}

// WriteStatusCode writes a status code.
func (e *Encoder) WriteStatusCode(v StatusCode) error { return e.WriteUInt32(uint32(v)) }

// NodeId encoding bytes.
const (
	nodeIDTwoByte  byte = 0x00
	nodeIDFourByte byte = 0x01
	nodeIDNumeric  byte = 0x02
	nodeIDString   byte = 0x03
	nodeIDGuid     byte = 0x04
	nodeIDOpaque   byte = 0x05

	expandedHasServerIndex  byte = 0x40
	expandedHasNamespaceURI byte = 0x80
)

func nodeIDEncoding(n NodeID) byte {
	switch n.Type {
	case IDTypeString:
		return nodeIDString
	case IDTypeGuid:
		return nodeIDGuid
	case IDTypeOpaque:
		return nodeIDOpaque
	}
	switch {
	case n.Namespace == 0 && n.Numeric <= 0xff:
		return nodeIDTwoByte
	case n.Namespace <= 0xff && n.Numeric <= 0xffff:
		return nodeIDFourByte
	default:
		return nodeIDNumeric
	}
}

func (e *Encoder) writeNodeID(n NodeID, flags byte) error {
	enc := nodeIDEncoding(n)
	if err := e.WriteByte(enc | flags); err != nil {
		return err
	}
	switch enc {
	case nodeIDTwoByte:
		return e.WriteByte(byte(n.Numeric))
	case nodeIDFourByte:
		if err := e.WriteByte(byte(n.Namespace)); err != nil {
			return err
		}
		return e.WriteUInt16(uint16(n.Numeric))
	}
	if err := e.WriteUInt16(n.Namespace); err != nil {
		return err
	}
	switch enc {
	case nodeIDNumeric:
		return e.WriteUInt32(n.Numeric)
	case nodeIDString:
		return e.WriteString(NewString(n.Str))
	case nodeIDGuid:
		return e.WriteGuid(n.Guid)
	default:
		return e.WriteByteString(n.Opaque)
	}
}

// WriteNodeID writes the most compact NodeId form.
func (e *Encoder) WriteNodeID(n NodeID) error {
	if n.Type > IDTypeOpaque {
		return encodeError("invalid node id type %d", n.Type)
	}
	return e.writeNodeID(n, 0)
}

// WriteExpandedNodeID writes an ExpandedNodeId, carrying the namespace URI
// and server index when present.
func (e *Encoder) WriteExpandedNodeID(v ExpandedNodeID) error {
	if v.NodeID.Type > IDTypeOpaque {
		return encodeError("invalid node id type %d", v.NodeID.Type)
	}
	var flags byte
	if v.NamespaceURI != "" {
		flags |= expandedHasNamespaceURI
	}
	if v.ServerIndex != 0 {
		flags |= expandedHasServerIndex
	}
	if err := e.writeNodeID(v.NodeID, flags); err != nil {
		return err
	}
	if v.NamespaceURI != "" {
		if err := e.WriteString(NewString(v.NamespaceURI)); err != nil {
			return err
		}
	}
	if v.ServerIndex != 0 {
		return e.WriteUInt32(v.ServerIndex)
	}
	return nil
}

// WriteQualifiedName writes a QualifiedName.
func (e *Encoder) WriteQualifiedName(v QualifiedName) error {
	if err := e.WriteUInt16(v.NamespaceIndex); err != nil {
		return err
	}
	return e.WriteString(v.Name)
}

// WriteLocalizedText writes a LocalizedText with its presence mask.
func (e *Encoder) WriteLocalizedText(v LocalizedText) error {
	if err := e.WriteByte(v.mask()); err != nil {
		return err
	}
	if v.Locale.Valid {
		if err := e.WriteString(v.Locale); err != nil {
			return err
		}
	}
	if v.Text.Valid {
		return e.WriteString(v.Text)
	}
	return nil
}

// WriteDataValue writes a DataValue, omitting zero fields.
func (e *Encoder) WriteDataValue(v DataValue) error {
	m := v.mask()
	if err := e.WriteByte(m); err != nil {
		return err
	}
	if m&dataValueHasValue != 0 {
		if err := v.Value.EncodeBinary(e); err != nil {
			return err
		}
	}
	if m&dataValueHasStatus != 0 {
		if err := e.WriteStatusCode(v.Status); err != nil {
			return err
		}
	}
	if m&dataValueHasSourceTimestamp != 0 {
		if err := e.WriteDateTime(v.SourceTimestamp); err != nil {
			return err
		}
	}
	if m&dataValueHasSourcePicoseconds != 0 {
		if err := e.WriteUInt16(v.SourcePicoseconds); err != nil {
			return err
		}
	}
	if m&dataValueHasServerTimestamp != 0 {
		if err := e.WriteDateTime(v.ServerTimestamp); err != nil {
			return err
		}
	}
	if m&dataValueHasServerPicoseconds != 0 {
		return e.WriteUInt16(v.ServerPicoseconds)
	}
	return nil
}

// WriteDiagnosticInfo writes a DiagnosticInfo and its inner chain.
func (e *Encoder) WriteDiagnosticInfo(v DiagnosticInfo) error {
	m := v.mask()
	if err := e.WriteByte(m); err != nil {
		return err
	}
	for _, f := range []struct {
		bit byte
		val int32
	}{
		{diagHasSymbolicID, v.SymbolicID},
		{diagHasNamespaceURI, v.NamespaceURI},
		{diagHasLocale, v.Locale},
		{diagHasLocalizedText, v.LocalizedText},
	} {
		if m&f.bit != 0 {
			if err := e.WriteInt32(f.val); err != nil {
				return err
			}
		}
	}
	if m&diagHasAdditionalInfo != 0 {
		if err := e.WriteString(v.AdditionalInfo); err != nil {
			return err
		}
	}
	if m&diagHasInnerStatus != 0 {
		if err := e.WriteStatusCode(v.InnerStatusCode); err != nil {
			return err
		}
	}
	if m&diagHasInnerDiag != 0 {
		return e.WriteDiagnosticInfo(*v.InnerDiagnosticInfo)
	}
	return nil
}

// WriteVariant writes a Variant.
func (e *Encoder) WriteVariant(v Variant) error { return v.EncodeBinary(e) }

// WriteExtensionObject writes an ExtensionObject.
func (e *Encoder) WriteExtensionObject(v ExtensionObject) error { return v.EncodeBinary(e) }

// EncodeArray writes items with an int32 count prefix. A nil slice is the
// null array (count -1); an empty non-nil slice has count 0.
func EncodeArray[T any](e *Encoder, items []T, write func(T) error) error {
	if items == nil {
		return e.WriteInt32(-1)
	}
	if err := e.writeLength(len(items)); err != nil {
		return err
	}
	for _, it := range items {
		if err := write(it); err != nil {
			return err
		}
	}
	return nil
}

package uatypes

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// Decoder reads OPC-UA binary values from a sequential byte source. Every
// declared length is checked against the context limits and the remaining
// message budget before anything is allocated. A Decoder is not safe for
// concurrent use; the Context it reads from is.
type Decoder struct {
	r      io.Reader
	ctx    *Context
	limits DecodingLimits
	n      int64 // bytes consumed
	budget int64 // bytes this decoder may consume in total
	depth  int
	base   int64 // offset of this decoder's first byte in the outer stream
	buf    [16]byte
}

// NewDecoder returns a Decoder reading from r. The total number of bytes it
// will consume is bounded by MaxMessageSize.
func NewDecoder(r io.Reader, ctx *Context) *Decoder {
	lim := ctx.EffectiveLimits()
	return &Decoder{r: r, ctx: ctx, limits: lim, budget: int64(lim.MaxMessageSize)}
}

// sub returns a decoder over an already-read payload that shares depth
// accounting and error offsets with d.
func (d *Decoder) sub(payload []byte) *Decoder {
	return &Decoder{
		r:      bytes.NewReader(payload),
		ctx:    d.ctx,
		limits: d.limits,
		budget: int64(len(payload)),
		depth:  d.depth,
		base:   d.base + d.n - int64(len(payload)),
	}
}

// Context returns the encoding context.
func (d *Decoder) Context() *Context { return d.ctx }

// Consumed returns the number of bytes read so far.
func (d *Decoder) Consumed() int64 { return d.n }

// Remaining returns how many more bytes the message budget allows.
func (d *Decoder) Remaining() int64 { return d.budget - d.n }

func (d *Decoder) offset() int64 { return d.base + d.n }

func (d *Decoder) fail(code string, format string, args ...any) error {
	return newError(code, d.offset(), format, args...)
}

func (d *Decoder) readFull(p []byte) error {
	if int64(len(p)) > d.Remaining() {
		return d.fail(CodeLimitExceeded, "message exceeds max size %d", d.budget)
	}
	n, err := io.ReadFull(d.r, p)
	d.n += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return d.fail(CodeEndOfStream, "need %d bytes, got %d", len(p), n)
		}
		return &Error{Code: CodeEndOfStream, Offset: d.offset(), Message: "read failed", Cause: err}
	}
	return nil
}

// enter increments the nesting depth; callers must pair it with leave.
func (d *Decoder) enter() error {
	if d.depth >= d.limits.MaxRecursionDepth {
		return d.fail(CodeLimitExceeded, "nesting exceeds max depth %d", d.limits.MaxRecursionDepth)
	}
	d.depth++
	return nil
}

func (d *Decoder) leave() { d.depth-- }

// readLength reads an int32 length prefix. -1 is returned as is; other
// negative values are InvalidLength. minElem is the smallest possible wire
// size of one element and lets the remaining budget reject impossible
// counts before allocation.
func (d *Decoder) readLength(what string, max int, minElem int64) (int, error) {
	v, err := d.ReadInt32()
	if err != nil {
		return 0, err
	}
	if v == -1 {
		return -1, nil
	}
	if v < -1 {
		return 0, d.fail(CodeInvalidLength, "negative %s length %d", what, v)
	}
	if int(v) > max {
		return 0, d.fail(CodeLimitExceeded, "%s length %d exceeds max %d", what, v, max)
	}
	if int64(v)*minElem > d.Remaining() {
		return 0, d.fail(CodeLimitExceeded, "%s length %d exceeds remaining message size %d", what, v, d.Remaining())
	}
	return int(v), nil
}

// readBytes reads exactly n bytes. Large reads grow the buffer as data
// arrives so a lying length prefix on a short stream cannot force a big
// allocation.
func (d *Decoder) readBytes(n int) ([]byte, error) {
	const step = 64 << 10
	if n <= step {
		b := make([]byte, n)
		if err := d.readFull(b); err != nil {
			return nil, err
		}
		return b, nil
	}
	b := make([]byte, 0, step)
	for len(b) < n {
		k := min(n-len(b), step)
		start := len(b)
		b = append(b, make([]byte, k)...)
		if err := d.readFull(b[start:]); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// ReadBoolean reads one byte; any non-zero value is true.
func (d *Decoder) ReadBoolean() (bool, error) {
	b, err := d.ReadByte()
	return b != 0, err
}

// ReadByte reads one byte.
func (d *Decoder) ReadByte() (byte, error) {
	if err := d.readFull(d.buf[:1]); err != nil {
		return 0, err
	}
	return d.buf[0], nil
}

// ReadSByte reads a signed byte.
func (d *Decoder) ReadSByte() (int8, error) {
	b, err := d.ReadByte()
	return int8(b), err
}

// ReadUInt16 reads a little-endian uint16.
func (d *Decoder) ReadUInt16() (uint16, error) {
	if err := d.readFull(d.buf[:2]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(d.buf[:2]), nil
}

// ReadInt16 reads a little-endian int16.
func (d *Decoder) ReadInt16() (int16, error) {
	v, err := d.ReadUInt16()
	return int16(v), err
}

// ReadUInt32 reads a little-endian uint32.
func (d *Decoder) ReadUInt32() (uint32, error) {
	if err := d.readFull(d.buf[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(d.buf[:4]), nil
}

// ReadInt32 reads a little-endian int32.
func (d *Decoder) ReadInt32() (int32, error) {
	v, err := d.ReadUInt32()
	return int32(v), err
}

// ReadUInt64 reads a little-endian uint64.
func (d *Decoder) ReadUInt64() (uint64, error) {
	if err := d.readFull(d.buf[:8]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(d.buf[:8]), nil
}

// ReadInt64 reads a little-endian int64.
func (d *Decoder) ReadInt64() (int64, error) {
	v, err := d.ReadUInt64()
	return int64(v), err
}

// ReadFloat reads an IEEE 754 float32.
func (d *Decoder) ReadFloat() (float32, error) {
	v, err := d.ReadUInt32()
	return math.Float32frombits(v), err
}

// ReadDouble reads an IEEE 754 float64.
func (d *Decoder) ReadDouble() (float64, error) {
	v, err := d.ReadUInt64()
	return math.Float64frombits(v), err
}

// ReadString reads a length-prefixed string; length -1 is the null string.
func (d *Decoder) ReadString() (String, error) {
	n, err := d.readLength("string", d.limits.MaxStringLength, 1)
	if err != nil || n < 0 {
		return NullString, err
	}
	b, err := d.readBytes(n)
	if err != nil {
		return NullString, err
	}
	return NewString(string(b)), nil
}

// ReadXmlElement reads an XML element.
func (d *Decoder) ReadXmlElement() (XmlElement, error) {
	s, err := d.ReadString()
	return XmlElement(s), err
}

// ReadByteString reads a length-prefixed byte string; -1 returns nil.
func (d *Decoder) ReadByteString() (ByteString, error) {
	n, err := d.readLength("byte string", d.limits.MaxByteStringLength, 1)
	if err != nil || n < 0 {
		return nil, err
	}
	return d.readBytes(n)
}

// ReadDateTime reads a tick count.
func (d *Decoder) ReadDateTime() (DateTime, error) {
	v, err := d.ReadInt64()
	return DateTime(v), err
}

// ReadGuid reads a mixed-endian guid.
func (d *Decoder) ReadGuid() (Guid, error) {
	if err := d.readFull(d.buf[:16]); err != nil {
		return Guid{}, err
	}
	return guidFromWire(d.buf[:16]), nil
}

// ReadStatusCode reads a status code.
func (d *Decoder) ReadStatusCode() (StatusCode, error) {
	v, err := d.ReadUInt32()
	return StatusCode(v), err
}

func (d *Decoder) readNodeIDBody(enc byte) (NodeID, error) {
	var n NodeID
	switch enc {
	case nodeIDTwoByte:
		b, err := d.ReadByte()
		return NewNumericNodeID(0, uint32(b)), err
	case nodeIDFourByte:
		ns, err := d.ReadByte()
		if err != nil {
			return n, err
		}
		id, err := d.ReadUInt16()
		return NewNumericNodeID(uint16(ns), uint32(id)), err
	case nodeIDNumeric, nodeIDString, nodeIDGuid, nodeIDOpaque:
	default:
		return n, d.fail(CodeInvalidDiscriminant, "unknown node id encoding 0x%02x", enc)
	}
	ns, err := d.ReadUInt16()
	if err != nil {
		return n, err
	}
	switch enc {
	case nodeIDNumeric:
		id, err := d.ReadUInt32()
		return NewNumericNodeID(ns, id), err
	case nodeIDString:
		s, err := d.ReadString()
		return NewStringNodeID(ns, s.Value), err
	case nodeIDGuid:
		g, err := d.ReadGuid()
		return NewGuidNodeID(ns, g), err
	default:
		b, err := d.ReadByteString()
		return NewOpaqueNodeID(ns, b), err
	}
}

// ReadNodeID reads a NodeId in any of its encodings.
func (d *Decoder) ReadNodeID() (NodeID, error) {
	enc, err := d.ReadByte()
	if err != nil {
		return NodeID{}, err
	}
	if enc&(expandedHasNamespaceURI|expandedHasServerIndex) != 0 {
		return NodeID{}, d.fail(CodeInvalidDiscriminant, "expanded node id flags 0x%02x in node id", enc)
	}
	return d.readNodeIDBody(enc)
}

// ReadExpandedNodeID reads an ExpandedNodeId.
func (d *Decoder) ReadExpandedNodeID() (ExpandedNodeID, error) {
	var out ExpandedNodeID
	enc, err := d.ReadByte()
	if err != nil {
		return out, err
	}
	if out.NodeID, err = d.readNodeIDBody(enc &^ (expandedHasNamespaceURI | expandedHasServerIndex)); err != nil {
		return out, err
	}
	if enc&expandedHasNamespaceURI != 0 {
		uri, err := d.ReadString()
		if err != nil {
			return out, err
		}
		out.NamespaceURI = uri.Value
	}
	if enc&expandedHasServerIndex != 0 {
		if out.ServerIndex, err = d.ReadUInt32(); err != nil {
			return out, err
		}
	}
	return out, nil
}

// ReadQualifiedName reads a QualifiedName.
func (d *Decoder) ReadQualifiedName() (QualifiedName, error) {
	var q QualifiedName
	var err error
	if q.NamespaceIndex, err = d.ReadUInt16(); err != nil {
		return q, err
	}
	q.Name, err = d.ReadString()
	return q, err
}

// ReadLocalizedText reads a LocalizedText.
func (d *Decoder) ReadLocalizedText() (LocalizedText, error) {
	var l LocalizedText
	m, err := d.ReadByte()
	if err != nil {
		return l, err
	}
	if m&^(localizedTextHasLocale|localizedTextHasText) != 0 {
		return l, d.fail(CodeInvalidDiscriminant, "localized text mask 0x%02x", m)
	}
	if m&localizedTextHasLocale != 0 {
		if l.Locale, err = d.ReadString(); err != nil {
			return l, err
		}
	}
	if m&localizedTextHasText != 0 {
		if l.Text, err = d.ReadString(); err != nil {
			return l, err
		}
	}
	return l, nil
}

// ReadDataValue reads a DataValue.
func (d *Decoder) ReadDataValue() (DataValue, error) {
	var dv DataValue
	m, err := d.ReadByte()
	if err != nil {
		return dv, err
	}
	if m&0xC0 != 0 {
		return dv, d.fail(CodeInvalidDiscriminant, "data value mask 0x%02x", m)
	}
	if m&dataValueHasValue != 0 {
		if dv.Value, err = d.ReadVariant(); err != nil {
			return dv, err
		}
	}
	if m&dataValueHasStatus != 0 {
		if dv.Status, err = d.ReadStatusCode(); err != nil {
			return dv, err
		}
	}
	if m&dataValueHasSourceTimestamp != 0 {
		if dv.SourceTimestamp, err = d.ReadDateTime(); err != nil {
			return dv, err
		}
	}
	if m&dataValueHasSourcePicoseconds != 0 {
		if dv.SourcePicoseconds, err = d.ReadUInt16(); err != nil {
			return dv, err
		}
	}
	if m&dataValueHasServerTimestamp != 0 {
		if dv.ServerTimestamp, err = d.ReadDateTime(); err != nil {
			return dv, err
		}
	}
	if m&dataValueHasServerPicoseconds != 0 {
		if dv.ServerPicoseconds, err = d.ReadUInt16(); err != nil {
			return dv, err
		}
	}
	return dv, nil
}

// ReadDiagnosticInfo reads a DiagnosticInfo. The inner chain counts
// against MaxRecursionDepth.
func (d *Decoder) ReadDiagnosticInfo() (DiagnosticInfo, error) {
	di := NewDiagnosticInfo()
	m, err := d.ReadByte()
	if err != nil {
		return di, err
	}
	if m&0x80 != 0 {
		return di, d.fail(CodeInvalidDiscriminant, "diagnostic info mask 0x%02x", m)
	}
	for _, f := range []struct {
		bit byte
		dst *int32
	}{
		{diagHasSymbolicID, &di.SymbolicID},
		{diagHasNamespaceURI, &di.NamespaceURI},
		{diagHasLocale, &di.Locale},
		{diagHasLocalizedText, &di.LocalizedText},
	} {
		if m&f.bit != 0 {
			if *f.dst, err = d.ReadInt32(); err != nil {
				return di, err
			}
		}
	}
	if m&diagHasAdditionalInfo != 0 {
		if di.AdditionalInfo, err = d.ReadString(); err != nil {
			return di, err
		}
	}
	if m&diagHasInnerStatus != 0 {
		if di.InnerStatusCode, err = d.ReadStatusCode(); err != nil {
			return di, err
		}
	}
	if m&diagHasInnerDiag != 0 {
		if err := d.enter(); err != nil {
			return di, err
		}
		inner, err := d.ReadDiagnosticInfo()
		d.leave()
		if err != nil {
			return di, err
		}
		di.InnerDiagnosticInfo = &inner
	}
	return di, nil
}

// ReadVariant reads a Variant.
func (d *Decoder) ReadVariant() (Variant, error) { return DecodeVariant(d) }

// ReadExtensionObject reads an ExtensionObject.
func (d *Decoder) ReadExtensionObject() (ExtensionObject, error) { return DecodeExtensionObject(d) }

// DecodeArray reads an int32 count then that many elements. Count -1
// returns a nil slice, 0 an empty non-nil slice. The count is checked
// against MaxArrayLength before anything is allocated.
func DecodeArray[T any](d *Decoder, read func() (T, error)) ([]T, error) {
	n, err := d.readLength("array", d.limits.MaxArrayLength, 1)
	if err != nil || n < 0 {
		return nil, err
	}
	return decodeElements(d, n, read)
}

// decodeElements reads n elements, growing the slice as elements arrive.
func decodeElements[T any](d *Decoder, n int, read func() (T, error)) ([]T, error) {
	out := make([]T, 0, min(n, 1024))
	for range n {
		v, err := read()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// UnmarshalVariant decodes one Variant from data. Trailing bytes are an
// error.
func UnmarshalVariant(ctx *Context, data []byte) (Variant, error) {
	return unmarshalAll(ctx, data, DecodeVariant)
}

// UnmarshalExtensionObject decodes one ExtensionObject from data.
func UnmarshalExtensionObject(ctx *Context, data []byte) (ExtensionObject, error) {
	return unmarshalAll(ctx, data, DecodeExtensionObject)
}

// UnmarshalDataValue decodes one DataValue from data.
func UnmarshalDataValue(ctx *Context, data []byte) (DataValue, error) {
	return unmarshalAll(ctx, data, (*Decoder).ReadDataValue)
}

func unmarshalAll[T any](ctx *Context, data []byte, decode func(*Decoder) (T, error)) (T, error) {
	d := NewDecoder(bytes.NewReader(data), ctx)
	v, err := decode(d)
	if err != nil {
		var zero T
		return zero, err
	}
	if d.n != int64(len(data)) {
		var zero T
		return zero, d.fail(CodeInvalidLength, "%d trailing bytes", int64(len(data))-d.n)
	}
	return v, nil
}

package uatypes

import "errors"

// BodyEncoding is the extension object body format tag.
type BodyEncoding byte

const (
	BodyNone   BodyEncoding = 0
	BodyBinary BodyEncoding = 1
	BodyXML    BodyEncoding = 2
)

func (b BodyEncoding) String() string {
	switch b {
	case BodyNone:
		return "None"
	case BodyBinary:
		return "Binary"
	case BodyXML:
		return "XML"
	}
	return "BodyEncoding(?)"
}

// ExtensionObject carries a structured value by encoding identity.
//
// The body is in exactly one of these states:
//   - Value != nil: decoded by a registered type loader (binary format).
//   - Encoding is BodyBinary or BodyXML and Value is nil: Raw holds the
//     payload verbatim, as read from the wire.
//   - Encoding is BodyNone: no body.
type ExtensionObject struct {
	TypeID   ExpandedNodeID
	Encoding BodyEncoding
	Raw      []byte
	Value    Structure
}

// NewExtensionObject wraps a structure for binary encoding.
func NewExtensionObject(v Structure) ExtensionObject {
	return ExtensionObject{TypeID: v.EncodingID(), Encoding: BodyBinary, Value: v}
}

// NewRawExtensionObject wraps an already encoded body.
func NewRawExtensionObject(id ExpandedNodeID, enc BodyEncoding, body []byte) ExtensionObject {
	return ExtensionObject{TypeID: id, Encoding: enc, Raw: body}
}

// IsDecoded reports whether the body was produced by a type loader.
func (x ExtensionObject) IsDecoded() bool { return x.Value != nil }

// IsNull reports whether x has neither identity nor body.
func (x ExtensionObject) IsNull() bool {
	return x.TypeID.IsNull() && x.Encoding == BodyNone && x.Value == nil
}

// wireTypeID returns the NodeId written before the body.
func (x ExtensionObject) wireTypeID(ctx *Context) (NodeID, error) {
	if x.TypeID.ServerIndex != 0 {
		return NodeID{}, encodeError("extension object type id %s refers to another server", x.TypeID)
	}
	return ctx.resolveExpanded(x.TypeID)
}

func (x ExtensionObject) bodyLen(ctx *Context) int {
	switch {
	case x.Value != nil:
		return x.Value.ByteLen(ctx)
	case x.Encoding == BodyNone:
		return 0
	}
	return len(x.Raw)
}

// ByteLen returns the exact encoded size of x.
func (x ExtensionObject) ByteLen(ctx *Context) int {
	id, err := x.wireTypeID(ctx)
	if err != nil {
		id = x.TypeID.NodeID
	}
	n := nodeIDLen(id) + 1
	if x.Value != nil || x.Encoding != BodyNone {
		n += 4 + x.bodyLen(ctx)
	}
	return n
}

// EncodeBinary writes the identity, the format tag and the length-prefixed
// body. A decoded body is produced by the structure's own encoder.
func (x ExtensionObject) EncodeBinary(e *Encoder) error {
	id, err := x.wireTypeID(e.ctx)
	if err != nil {
		return err
	}
	if err := e.WriteNodeID(id); err != nil {
		return err
	}
	if x.Value != nil {
		if err := e.WriteByte(byte(BodyBinary)); err != nil {
			return err
		}
		n := x.Value.ByteLen(e.ctx)
		if err := e.writeLength(n); err != nil {
			return err
		}
		start := e.n
		if err := x.Value.EncodeBinary(e); err != nil {
			return err
		}
		if got := e.n - start; got != int64(n) {
			return encodeError("%s body wrote %d bytes, ByteLen reported %d", x.TypeID, got, n)
		}
		return nil
	}
	switch x.Encoding {
	case BodyNone:
		return e.WriteByte(byte(BodyNone))
	case BodyBinary, BodyXML:
		if err := e.WriteByte(byte(x.Encoding)); err != nil {
			return err
		}
		return e.WriteByteString(x.Raw)
	}
	return encodeError("invalid extension object body encoding %d", x.Encoding)
}

// DecodeExtensionObject reads an ExtensionObject. A binary body whose
// identity is registered is handed to the loader, which must consume it
// exactly; failures of the loader are returned, never downgraded to a raw
// body. Anything else keeps the payload verbatim.
func DecodeExtensionObject(d *Decoder) (ExtensionObject, error) {
	var x ExtensionObject
	id, err := d.ReadNodeID()
	if err != nil {
		return x, err
	}
	x.TypeID = NewExpandedNodeID(id)
	tag, err := d.ReadByte()
	if err != nil {
		return x, err
	}
	x.Encoding = BodyEncoding(tag)
	switch x.Encoding {
	case BodyNone:
		return x, nil
	case BodyBinary, BodyXML:
	default:
		return ExtensionObject{}, d.fail(CodeInvalidDiscriminant, "unknown extension object body encoding %d", tag)
	}
	n, err := d.readLength("extension object body", d.limits.MaxMessageSize, 1)
	if err != nil {
		return ExtensionObject{}, err
	}
	if n < 0 {
		return x, nil
	}
	payload, err := d.readBytes(n)
	if err != nil {
		return ExtensionObject{}, err
	}
	if x.Encoding == BodyBinary {
		if loader, ok := d.ctx.registry.Resolve(d.ctx, id); ok {
			v, err := decodeBody(d, loader, payload)
			if err != nil {
				return ExtensionObject{}, err
			}
			return ExtensionObject{TypeID: loader.EncodingID, Encoding: BodyBinary, Value: v}, nil
		}
	}
	x.Raw = payload
	return x, nil
}

func decodeBody(d *Decoder, loader TypeLoader, payload []byte) (Structure, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()
	sub := d.sub(payload)
	v, err := loader.Decode(sub)
	if err != nil {
		var ue *Error
		if errors.As(err, &ue) {
			return nil, err
		}
		return nil, &Error{Code: CodeUnresolvedType, Offset: sub.offset(), Message: "type " + loader.Name + " failed to decode", Cause: err}
	}
	if v == nil {
		return nil, sub.fail(CodeUnresolvedType, "type %s decoded to nil", loader.Name)
	}
	if sub.n != int64(len(payload)) {
		return nil, sub.fail(CodeUnresolvedType, "type %s consumed %d of %d body bytes", loader.Name, sub.n, len(payload))
	}
	return v, nil
}

// decodeDetachedBody runs a loader over a binary body that did not come
// from a binary stream, such as a base64 body in a JSON document.
func decodeDetachedBody(ctx *Context, depth int, loader TypeLoader, payload []byte) (Structure, error) {
	parent := &Decoder{
		ctx:    ctx,
		limits: ctx.EffectiveLimits(),
		depth:  depth,
		n:      int64(len(payload)),
		budget: int64(len(payload)),
	}
	return decodeBody(parent, loader, payload)
}

package uatypes

import (
	"encoding/base64"
	"math"
	"strconv"

	"github.com/reoring/uatypes/internal/engine"
)

// JSON mapping of the built-in types. Encoding produces a value tree of
// map[string]any, []any, string, bool, numbers and nil that go-json
// marshals directly; decoding accepts the tree produced by the JSON
// reader (numbers as engine.Number) as well as plain Go numbers.

func jsonFail(path, format string, args ...any) *Error {
	e := newError(CodeInvalidValue, -1, format, args...)
	e.Path = jsonPath(path)
	return e
}

func jsonPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

func encodeFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return f
}

func jsonString(s String) any {
	if !s.Valid {
		return nil
	}
	return s.Value
}

func jsonByteString(b []byte) any {
	if b == nil {
		return nil
	}
	return base64.StdEncoding.EncodeToString(b)
}

// EncodeJSONValue maps a scalar built-in value of type t to its JSON tree
// form.
func EncodeJSONValue(ctx *Context, t TypeID, v any) (any, error) {
	if vt, _ := typeOfValue(v); vt != t {
		return nil, encodeError("value of Go type %T cannot be encoded as %s", v, t)
	}
	switch x := v.(type) {
	case bool:
		return x, nil
	case int8:
		return int64(x), nil
	case byte:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return encodeFloat(float64(x)), nil
	case float64:
		return encodeFloat(x), nil
	case String:
		return jsonString(x), nil
	case DateTime:
		return x.String(), nil
	case Guid:
		return x.String(), nil
	case ByteString:
		return jsonByteString(x), nil
	case XmlElement:
		return jsonString(String(x)), nil
	case NodeID:
		return x.String(), nil
	case ExpandedNodeID:
		return x.String(), nil
	case StatusCode:
		return int64(x), nil
	case QualifiedName:
		m := map[string]any{}
		if x.Name.Valid {
			m["Name"] = x.Name.Value
		}
		if x.NamespaceIndex != 0 {
			m["Uri"] = int64(x.NamespaceIndex)
		}
		return m, nil
	case LocalizedText:
		m := map[string]any{}
		if x.Locale.Valid {
			m["Locale"] = x.Locale.Value
		}
		if x.Text.Valid {
			m["Text"] = x.Text.Value
		}
		return m, nil
	case ExtensionObject:
		return encodeExtensionObjectJSON(ctx, x)
	case DataValue:
		return encodeDataValueJSON(ctx, x)
	case Variant:
		return encodeVariantJSON(ctx, x)
	case DiagnosticInfo:
		return encodeDiagnosticInfoJSON(x), nil
	}
	return nil, encodeError("value of Go type %T has no JSON form", v)
}

// EncodeJSONArray maps a typed slice to a JSON array; nil maps to null.
func EncodeJSONArray(ctx *Context, t TypeID, v any) (any, error) {
	if vt, _ := typeOfSlice(v); vt != t {
		return nil, encodeError("value of Go type %T cannot be encoded as %s array", v, t)
	}
	if isNilSlice(v) {
		return nil, nil
	}
	out := make([]any, 0, sliceLen(v))
	var err error
	each(v, func(elem any) bool {
		var ev any
		if ev, err = EncodeJSONValue(ctx, t, elem); err != nil {
			return false
		}
		out = append(out, ev)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// each calls fn for every element of a typed slice until fn returns false.
func each(v any, fn func(any) bool) {
	switch a := v.(type) {
	case []bool:
		eachOf(a, fn)
	case []int8:
		eachOf(a, fn)
	case []byte:
		eachOf(a, fn)
	case []int16:
		eachOf(a, fn)
	case []uint16:
		eachOf(a, fn)
	case []int32:
		eachOf(a, fn)
	case []uint32:
		eachOf(a, fn)
	case []int64:
		eachOf(a, fn)
	case []uint64:
		eachOf(a, fn)
	case []float32:
		eachOf(a, fn)
	case []float64:
		eachOf(a, fn)
	case []String:
		eachOf(a, fn)
	case []DateTime:
		eachOf(a, fn)
	case []Guid:
		eachOf(a, fn)
	case []ByteString:
		eachOf(a, fn)
	case []XmlElement:
		eachOf(a, fn)
	case []NodeID:
		eachOf(a, fn)
	case []ExpandedNodeID:
		eachOf(a, fn)
	case []StatusCode:
		eachOf(a, fn)
	case []QualifiedName:
		eachOf(a, fn)
	case []LocalizedText:
		eachOf(a, fn)
	case []ExtensionObject:
		eachOf(a, fn)
	case []DataValue:
		eachOf(a, fn)
	case []Variant:
		eachOf(a, fn)
	case []DiagnosticInfo:
		eachOf(a, fn)
	}
}

func eachOf[T any](a []T, fn func(any) bool) {
	for _, x := range a {
		if !fn(x) {
			return
		}
	}
}

func encodeVariantJSON(ctx *Context, v Variant) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	m := map[string]any{"Type": int64(v.typ)}
	var body any
	var err error
	if v.array {
		body, err = EncodeJSONArray(ctx, v.typ, v.value)
		if body == nil && err == nil {
			m["Array"] = true
		}
	} else {
		if v.typ == TypeVariant {
			return nil, encodeError("a scalar variant cannot hold a variant")
		}
		body, err = EncodeJSONValue(ctx, v.typ, v.value)
	}
	if err != nil {
		return nil, err
	}
	m["Body"] = body
	if len(v.dims) > 0 {
		dims := make([]any, len(v.dims))
		for i, d := range v.dims {
			dims[i] = int64(d)
		}
		m["Dimensions"] = dims
	}
	return m, nil
}

func encodeExtensionObjectJSON(ctx *Context, x ExtensionObject) (any, error) {
	if x.IsNull() {
		return nil, nil
	}
	m := map[string]any{"TypeId": x.TypeID.String()}
	if x.Value != nil {
		if js, ok := x.Value.(JSONStructure); ok {
			body, err := js.EncodeJSON(ctx)
			if err != nil {
				return nil, err
			}
			m["Body"] = body
			return m, nil
		}
		raw, err := Marshal(ctx, x.Value)
		if err != nil {
			return nil, err
		}
		m["Encoding"] = int64(BodyBinary)
		m["Body"] = base64.StdEncoding.EncodeToString(raw)
		return m, nil
	}
	switch x.Encoding {
	case BodyNone:
	case BodyBinary:
		m["Encoding"] = int64(BodyBinary)
		m["Body"] = jsonByteString(x.Raw)
	case BodyXML:
		m["Encoding"] = int64(BodyXML)
		if x.Raw != nil {
			m["Body"] = string(x.Raw)
		} else {
			m["Body"] = nil
		}
	default:
		return nil, encodeError("invalid extension object body encoding %d", x.Encoding)
	}
	return m, nil
}

func encodeDataValueJSON(ctx *Context, dv DataValue) (any, error) {
	m := map[string]any{}
	if !dv.Value.IsNull() {
		v, err := encodeVariantJSON(ctx, dv.Value)
		if err != nil {
			return nil, err
		}
		m["Value"] = v
	}
	if dv.Status != StatusGood {
		m["Status"] = int64(dv.Status)
	}
	if dv.SourceTimestamp != 0 {
		m["SourceTimestamp"] = dv.SourceTimestamp.String()
	}
	if dv.SourcePicoseconds != 0 {
		m["SourcePicoseconds"] = int64(dv.SourcePicoseconds)
	}
	if dv.ServerTimestamp != 0 {
		m["ServerTimestamp"] = dv.ServerTimestamp.String()
	}
	if dv.ServerPicoseconds != 0 {
		m["ServerPicoseconds"] = int64(dv.ServerPicoseconds)
	}
	return m, nil
}

func encodeDiagnosticInfoJSON(di DiagnosticInfo) map[string]any {
	m := map[string]any{}
	for _, f := range []struct {
		name string
		val  int32
	}{
		{"SymbolicId", di.SymbolicID},
		{"NamespaceUri", di.NamespaceURI},
		{"Locale", di.Locale},
		{"LocalizedText", di.LocalizedText},
	} {
		if f.val != -1 {
			m[f.name] = int64(f.val)
		}
	}
	if di.AdditionalInfo.Valid {
		m["AdditionalInfo"] = di.AdditionalInfo.Value
	}
	if di.InnerStatusCode != StatusGood {
		m["InnerStatusCode"] = int64(di.InnerStatusCode)
	}
	if di.InnerDiagnosticInfo != nil {
		m["InnerDiagnosticInfo"] = encodeDiagnosticInfoJSON(*di.InnerDiagnosticInfo)
	}
	return m
}

// jsonDecoder carries the context and the current depth while mapping a
// value tree back to built-in values.
type jsonDecoder struct {
	ctx   *Context
	lim   DecodingLimits
	depth int
}

func newJSONDecoder(ctx *Context) *jsonDecoder {
	return &jsonDecoder{ctx: ctx, lim: ctx.EffectiveLimits()}
}

func (d *jsonDecoder) enter(path string) error {
	if d.depth >= d.lim.MaxRecursionDepth {
		e := newError(CodeLimitExceeded, -1, "nesting exceeds max depth %d", d.lim.MaxRecursionDepth)
		e.Path = jsonPath(path)
		return e
	}
	d.depth++
	return nil
}

func (d *jsonDecoder) leave() { d.depth-- }

// DecodeJSONValue maps a JSON tree value back to a scalar of type t.
func DecodeJSONValue(ctx *Context, t TypeID, raw any) (any, error) {
	return newJSONDecoder(ctx).value(t, raw, "")
}

// DecodeJSONArray maps a JSON array (or null) back to a typed slice.
func DecodeJSONArray(ctx *Context, t TypeID, raw any) (any, error) {
	return newJSONDecoder(ctx).array(t, raw, "")
}

func numberText(raw any) (string, bool) {
	switch x := raw.(type) {
	case engine.Number:
		return string(x), true
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	}
	return "", false
}

func (d *jsonDecoder) int(raw any, bits int, path string) (int64, error) {
	s, ok := numberText(raw)
	if !ok {
		return 0, jsonFail(path, "expected a number, got %T", raw)
	}
	v, err := strconv.ParseInt(s, 10, bits)
	if err != nil {
		return 0, jsonFail(path, "invalid %d-bit integer %q", bits, s)
	}
	return v, nil
}

func (d *jsonDecoder) uint(raw any, bits int, path string) (uint64, error) {
	s, ok := numberText(raw)
	if !ok {
		return 0, jsonFail(path, "expected a number, got %T", raw)
	}
	v, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		return 0, jsonFail(path, "invalid unsigned %d-bit integer %q", bits, s)
	}
	return v, nil
}

func (d *jsonDecoder) float(raw any, bits int, path string) (float64, error) {
	s, ok := numberText(raw)
	if !ok {
		return 0, jsonFail(path, "expected a number, got %T", raw)
	}
	switch s {
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}
	v, err := strconv.ParseFloat(s, bits)
	if err != nil {
		return 0, jsonFail(path, "invalid float %q", s)
	}
	return v, nil
}

func (d *jsonDecoder) str(raw any, path string) (String, error) {
	switch x := raw.(type) {
	case nil:
		return NullString, nil
	case string:
		if len(x) > d.lim.MaxStringLength {
			e := newError(CodeLimitExceeded, -1, "string length %d exceeds max %d", len(x), d.lim.MaxStringLength)
			e.Path = jsonPath(path)
			return NullString, e
		}
		return NewString(x), nil
	}
	return NullString, jsonFail(path, "expected a string, got %T", raw)
}

func (d *jsonDecoder) text(raw any, path string) (string, error) {
	s, err := d.str(raw, path)
	if err != nil {
		return "", err
	}
	if !s.Valid {
		return "", jsonFail(path, "expected a string, got null")
	}
	return s.Value, nil
}

func (d *jsonDecoder) bytes(raw any, path string) (ByteString, error) {
	if raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, jsonFail(path, "expected a base64 string, got %T", raw)
	}
	if base64.StdEncoding.DecodedLen(len(s)) > d.lim.MaxByteStringLength+2 {
		e := newError(CodeLimitExceeded, -1, "byte string exceeds max %d", d.lim.MaxByteStringLength)
		e.Path = jsonPath(path)
		return nil, e
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, jsonFail(path, "invalid base64")
	}
	if len(b) > d.lim.MaxByteStringLength {
		e := newError(CodeLimitExceeded, -1, "byte string length %d exceeds max %d", len(b), d.lim.MaxByteStringLength)
		e.Path = jsonPath(path)
		return nil, e
	}
	return ByteString(b), nil
}

func (d *jsonDecoder) object(raw any, path string) (map[string]any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, jsonFail(path, "expected an object, got %T", raw)
	}
	return m, nil
}

func (d *jsonDecoder) value(t TypeID, raw any, path string) (any, error) {
	switch t {
	case TypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, jsonFail(path, "expected a boolean, got %T", raw)
		}
		return b, nil
	case TypeSByte:
		v, err := d.int(raw, 8, path)
		return int8(v), err
	case TypeByte:
		v, err := d.uint(raw, 8, path)
		return byte(v), err
	case TypeInt16:
		v, err := d.int(raw, 16, path)
		return int16(v), err
	case TypeUInt16:
		v, err := d.uint(raw, 16, path)
		return uint16(v), err
	case TypeInt32:
		v, err := d.int(raw, 32, path)
		return int32(v), err
	case TypeUInt32:
		v, err := d.uint(raw, 32, path)
		return uint32(v), err
	case TypeInt64:
		return d.int(raw, 64, path)
	case TypeUInt64:
		return d.uint(raw, 64, path)
	case TypeFloat:
		v, err := d.float(raw, 32, path)
		return float32(v), err
	case TypeDouble:
		return d.float(raw, 64, path)
	case TypeString:
		return d.str(raw, path)
	case TypeXmlElement:
		s, err := d.str(raw, path)
		return XmlElement(s), err
	case TypeDateTime:
		s, err := d.text(raw, path)
		if err != nil {
			return DateTime(0), err
		}
		v, err := ParseDateTime(s)
		if err != nil {
			err.(*Error).Path = jsonPath(path)
		}
		return v, err
	case TypeGuid:
		s, err := d.text(raw, path)
		if err != nil {
			return Guid{}, err
		}
		g, err := ParseGuid(s)
		if err != nil {
			err.(*Error).Path = jsonPath(path)
		}
		return g, err
	case TypeByteString:
		return d.bytes(raw, path)
	case TypeNodeID:
		s, err := d.text(raw, path)
		if err != nil {
			return NodeID{}, err
		}
		n, err := ParseNodeID(s)
		if err != nil {
			err.(*Error).Path = jsonPath(path)
		}
		return n, err
	case TypeExpandedNodeID:
		s, err := d.text(raw, path)
		if err != nil {
			return ExpandedNodeID{}, err
		}
		n, err := ParseExpandedNodeID(s)
		if err != nil {
			err.(*Error).Path = jsonPath(path)
		}
		return n, err
	case TypeStatusCode:
		v, err := d.uint(raw, 32, path)
		return StatusCode(v), err
	case TypeQualifiedName:
		return d.qualifiedName(raw, path)
	case TypeLocalizedText:
		return d.localizedText(raw, path)
	case TypeExtensionObject:
		return d.extensionObject(raw, path)
	case TypeDataValue:
		if err := d.enter(path); err != nil {
			return DataValue{}, err
		}
		defer d.leave()
		return d.dataValue(raw, path)
	case TypeVariant:
		if err := d.enter(path); err != nil {
			return Variant{}, err
		}
		defer d.leave()
		return d.variant(raw, path)
	case TypeDiagnosticInfo:
		return d.diagnosticInfo(raw, path)
	}
	return nil, jsonFail(path, "unknown built-in type id %d", t)
}

func (d *jsonDecoder) array(t TypeID, raw any, path string) (any, error) {
	if !t.Valid() {
		return nil, jsonFail(path, "unknown built-in type id %d", t)
	}
	if raw == nil {
		return nilSlice(t), nil
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
	switch t {
	case TypeBoolean:
		return jsonElements[bool](d, t, items, path)
	case TypeSByte:
		return jsonElements[int8](d, t, items, path)
	case TypeByte:
		return jsonElements[byte](d, t, items, path)
	case TypeInt16:
		return jsonElements[int16](d, t, items, path)
	case TypeUInt16:
		return jsonElements[uint16](d, t, items, path)
	case TypeInt32:
		return jsonElements[int32](d, t, items, path)
	case TypeUInt32:
		return jsonElements[uint32](d, t, items, path)
	case TypeInt64:
		return jsonElements[int64](d, t, items, path)
	case TypeUInt64:
		return jsonElements[uint64](d, t, items, path)
	case TypeFloat:
		return jsonElements[float32](d, t, items, path)
	case TypeDouble:
		return jsonElements[float64](d, t, items, path)
	case TypeString:
		return jsonElements[String](d, t, items, path)
	case TypeDateTime:
		return jsonElements[DateTime](d, t, items, path)
	case TypeGuid:
		return jsonElements[Guid](d, t, items, path)
	case TypeByteString:
		return jsonElements[ByteString](d, t, items, path)
	case TypeXmlElement:
		return jsonElements[XmlElement](d, t, items, path)
	case TypeNodeID:
		return jsonElements[NodeID](d, t, items, path)
	case TypeExpandedNodeID:
		return jsonElements[ExpandedNodeID](d, t, items, path)
	case TypeStatusCode:
		return jsonElements[StatusCode](d, t, items, path)
	case TypeQualifiedName:
		return jsonElements[QualifiedName](d, t, items, path)
	case TypeLocalizedText:
		return jsonElements[LocalizedText](d, t, items, path)
	case TypeExtensionObject:
		return jsonElements[ExtensionObject](d, t, items, path)
	case TypeDataValue:
		return jsonElements[DataValue](d, t, items, path)
	case TypeVariant:
		return jsonElements[Variant](d, t, items, path)
	default:
		return jsonElements[DiagnosticInfo](d, t, items, path)
	}
}

func jsonElements[T any](d *jsonDecoder, t TypeID, items []any, path string) ([]T, error) {
	out := make([]T, len(items))
	for i, it := range items {
		v, err := d.value(t, it, path+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out[i] = v.(T)
	}
	return out, nil
}

func (d *jsonDecoder) qualifiedName(raw any, path string) (QualifiedName, error) {
	var q QualifiedName
	m, err := d.object(raw, path)
	if err != nil {
		return q, err
	}
	if q.Name, err = d.str(m["Name"], path+"/Name"); err != nil {
		return q, err
	}
	if u, ok := m["Uri"]; ok {
		ns, err := d.uint(u, 16, path+"/Uri")
		if err != nil {
			return q, err
		}
		q.NamespaceIndex = uint16(ns)
	}
	return q, nil
}

func (d *jsonDecoder) localizedText(raw any, path string) (LocalizedText, error) {
	var l LocalizedText
	m, err := d.object(raw, path)
	if err != nil {
		return l, err
	}
	if l.Locale, err = d.str(m["Locale"], path+"/Locale"); err != nil {
		return l, err
	}
	l.Text, err = d.str(m["Text"], path+"/Text")
	return l, err
}

func (d *jsonDecoder) variant(raw any, path string) (Variant, error) {
	if raw == nil {
		return Variant{}, nil
	}
	m, err := d.object(raw, path)
	if err != nil {
		return Variant{}, err
	}
	tn, err := d.uint(m["Type"], 8, path+"/Type")
	if err != nil {
		return Variant{}, err
	}
	t := TypeID(tn)
	if t == TypeNull {
		return Variant{}, nil
	}
	if !t.Valid() {
		e := jsonFail(path+"/Type", "unknown variant type id %d", tn)
		e.Code = CodeInvalidDiscriminant
		return Variant{}, e
	}
	body := m["Body"]
	_, isList := body.([]any)
	isArray := isList || m["Array"] == true
	if !isArray {
		if t == TypeVariant {
			e := jsonFail(path, "scalar variant of type Variant")
			e.Code = CodeInvalidDiscriminant
			return Variant{}, e
		}
		val, err := d.value(t, body, path+"/Body")
		if err != nil {
			return Variant{}, err
		}
		return Variant{typ: t, value: val}, nil
	}
	val, err := d.array(t, body, path+"/Body")
	if err != nil {
		return Variant{}, err
	}
	out := Variant{typ: t, array: true, value: val}
	if rawDims, ok := m["Dimensions"]; ok && rawDims != nil {
		dv, err := d.array(TypeInt32, rawDims, path+"/Dimensions")
		if err != nil {
			return Variant{}, err
		}
		dims := dv.([]int32)
		if err := checkDimensions(dims, sliceLen(val)); err != nil {
			err.(*Error).Path = jsonPath(path + "/Dimensions")
			return Variant{}, err
		}
		if len(dims) > 0 {
			out.dims = dims
		}
	}
	return out, nil
}

func (d *jsonDecoder) extensionObject(raw any, path string) (ExtensionObject, error) {
	var x ExtensionObject
	if raw == nil {
		return x, nil
	}
	m, err := d.object(raw, path)
	if err != nil {
		return x, err
	}
	if id, ok := m["TypeId"]; ok {
		v, err := d.value(TypeExpandedNodeID, id, path+"/TypeId")
		if err != nil {
			return x, err
		}
		x.TypeID = v.(ExpandedNodeID)
	}
	enc := int64(-1)
	if e, ok := m["Encoding"]; ok {
		if enc, err = d.int(e, 8, path+"/Encoding"); err != nil {
			return x, err
		}
	}
	body, hasBody := m["Body"]
	switch {
	case enc == -1 && !hasBody:
		return x, nil
	case enc == -1:
		obj, err := d.object(body, path+"/Body")
		if err != nil {
			return x, err
		}
		loader, ok := d.ctx.registry.ResolveExpanded(d.ctx, x.TypeID)
		if !ok || loader.DecodeJSON == nil {
			e := jsonFail(path+"/TypeId", "no JSON type loader for %s", x.TypeID)
			e.Code = CodeUnresolvedType
			return x, e
		}
		if err := d.enter(path); err != nil {
			return x, err
		}
		v, err := loader.DecodeJSON(d.ctx, obj)
		d.leave()
		if err != nil {
			if _, ok := AsError(err); ok {
				return x, err
			}
			e := jsonFail(path+"/Body", "type %s failed to decode", loader.Name)
			e.Code = CodeUnresolvedType
			e.Cause = err
			return x, e
		}
		return ExtensionObject{TypeID: loader.EncodingID, Encoding: BodyBinary, Value: v}, nil
	case enc == int64(BodyBinary):
		raw, err := d.bytes(body, path+"/Body")
		if err != nil {
			return x, err
		}
		x.Encoding = BodyBinary
		if raw == nil {
			return x, nil
		}
		if loader, ok := d.ctx.registry.ResolveExpanded(d.ctx, x.TypeID); ok {
			v, err := decodeDetachedBody(d.ctx, d.depth, loader, raw)
			if err != nil {
				return ExtensionObject{}, err
			}
			return ExtensionObject{TypeID: loader.EncodingID, Encoding: BodyBinary, Value: v}, nil
		}
		x.Raw = raw
		return x, nil
	case enc == int64(BodyXML):
		s, err := d.str(body, path+"/Body")
		if err != nil {
			return x, err
		}
		x.Encoding = BodyXML
		if s.Valid {
			x.Raw = []byte(s.Value)
		}
		return x, nil
	}
	e := jsonFail(path+"/Encoding", "unknown extension object body encoding %d", enc)
	e.Code = CodeInvalidDiscriminant
	return x, e
}

func (d *jsonDecoder) dataValue(raw any, path string) (DataValue, error) {
	var dv DataValue
	m, err := d.object(raw, path)
	if err != nil {
		return dv, err
	}
	if v, ok := m["Value"]; ok {
		if dv.Value, err = d.variant(v, path+"/Value"); err != nil {
			return dv, err
		}
	}
	if v, ok := m["Status"]; ok {
		s, err := d.uint(v, 32, path+"/Status")
		if err != nil {
			return dv, err
		}
		dv.Status = StatusCode(s)
	}
	for _, f := range []struct {
		name string
		dst  *DateTime
	}{{"SourceTimestamp", &dv.SourceTimestamp}, {"ServerTimestamp", &dv.ServerTimestamp}} {
		if v, ok := m[f.name]; ok {
			t, err := d.value(TypeDateTime, v, path+"/"+f.name)
			if err != nil {
				return dv, err
			}
			*f.dst = t.(DateTime)
		}
	}
	for _, f := range []struct {
		name string
		dst  *uint16
	}{{"SourcePicoseconds", &dv.SourcePicoseconds}, {"ServerPicoseconds", &dv.ServerPicoseconds}} {
		if v, ok := m[f.name]; ok {
			p, err := d.uint(v, 16, path+"/"+f.name)
			if err != nil {
				return dv, err
			}
			*f.dst = uint16(p)
		}
	}
	return dv, nil
}

func (d *jsonDecoder) diagnosticInfo(raw any, path string) (DiagnosticInfo, error) {
	di := NewDiagnosticInfo()
	m, err := d.object(raw, path)
	if err != nil {
		return di, err
	}
	for _, f := range []struct {
		name string
		dst  *int32
	}{
		{"SymbolicId", &di.SymbolicID},
		{"NamespaceUri", &di.NamespaceURI},
		{"Locale", &di.Locale},
		{"LocalizedText", &di.LocalizedText},
	} {
		if v, ok := m[f.name]; ok {
			n, err := d.int(v, 32, path+"/"+f.name)
			if err != nil {
				return di, err
			}
			*f.dst = int32(n)
		}
	}
	if di.AdditionalInfo, err = d.str(m["AdditionalInfo"], path+"/AdditionalInfo"); err != nil {
		return di, err
	}
	if v, ok := m["InnerStatusCode"]; ok {
		s, err := d.uint(v, 32, path+"/InnerStatusCode")
		if err != nil {
			return di, err
		}
		di.InnerStatusCode = StatusCode(s)
	}
	if v, ok := m["InnerDiagnosticInfo"]; ok && v != nil {
		if err := d.enter(path); err != nil {
			return di, err
		}
		inner, err := d.diagnosticInfo(v, path+"/InnerDiagnosticInfo")
		d.leave()
		if err != nil {
			return di, err
		}
		di.InnerDiagnosticInfo = &inner
	}
	return di, nil
}

// jsonWriter builds a structure body object field by field, keeping the
// first error.
type jsonWriter struct {
	ctx *Context
	m   map[string]any
	err error
}

func newJSONWriter(ctx *Context) *jsonWriter {
	return &jsonWriter{ctx: ctx, m: map[string]any{}}
}

func (w *jsonWriter) field(name string, t TypeID, v any) {
	if w.err != nil {
		return
	}
	jv, err := EncodeJSONValue(w.ctx, t, v)
	if err != nil {
		w.err = err
		return
	}
	if jv != nil {
		w.m[name] = jv
	}
}

func (w *jsonWriter) array(name string, t TypeID, v any) {
	if w.err != nil {
		return
	}
	jv, err := EncodeJSONArray(w.ctx, t, v)
	if err != nil {
		w.err = err
		return
	}
	if jv != nil {
		w.m[name] = jv
	}
}

func (w *jsonWriter) result() (map[string]any, error) { return w.m, w.err }

// jsonReader reads structure body fields, keeping the first error. Missing
// and null fields yield the zero value of the field type.
type jsonReader struct {
	d    *jsonDecoder
	m    map[string]any
	path string
	err  error
}

func newJSONReader(ctx *Context, body map[string]any) *jsonReader {
	return &jsonReader{d: newJSONDecoder(ctx), m: body}
}

func (r *jsonReader) object(name string) *jsonReader {
	raw, ok := r.m[name]
	if !ok || raw == nil || r.err != nil {
		return nil
	}
	m, err := r.d.object(raw, r.path+"/"+name)
	if err != nil {
		r.err = err
		return nil
	}
	return &jsonReader{d: r.d, m: m, path: r.path + "/" + name}
}

func jsonGet[T any](r *jsonReader, name string, t TypeID) T {
	var zero T
	raw, ok := r.m[name]
	if !ok || r.err != nil {
		return zero
	}
	if raw == nil && t != TypeVariant && t != TypeExtensionObject && t != TypeString && t != TypeByteString && t != TypeXmlElement {
		return zero
	}
	v, err := r.d.value(t, raw, r.path+"/"+name)
	if err != nil {
		r.err = err
		return zero
	}
	out, ok := v.(T)
	if !ok {
		r.err = jsonFail(r.path+"/"+name, "field holds %T", v)
		return zero
	}
	return out
}

func jsonGetArray[T any](r *jsonReader, name string, t TypeID) []T {
	raw, ok := r.m[name]
	if !ok || raw == nil || r.err != nil {
		return nil
	}
	v, err := r.d.array(t, raw, r.path+"/"+name)
	if err != nil {
		r.err = err
		return nil
	}
	out, ok := v.([]T)
	if !ok {
		r.err = jsonFail(r.path+"/"+name, "field holds %T", v)
		return nil
	}
	return out
}

// jsonObjects writes items as an array of nested structure bodies. A nil slice
// stays absent.
func jsonObjects[T any](w *jsonWriter, name string, items []T, body func(T) (map[string]any, error)) {
	if w.err != nil || items == nil {
		return
	}
	out := make([]any, 0, len(items))
	for _, it := range items {
		m, err := body(it)
		if err != nil {
			w.err = err
			return
		}
		out = append(out, m)
	}
	w.m[name] = out
}

// jsonGetObject reads one nested structure body with read.
func jsonGetObject[T any](r *jsonReader, name string, read func(*jsonReader) T) T {
	var zero T
	sub := r.object(name)
	if sub == nil {
		return zero
	}
	v := read(sub)
	if sub.err != nil {
		r.err = sub.err
		return zero
	}
	return v
}

// jsonGetObjects reads an array of nested structure bodies. Missing and
// null arrays yield nil.
func jsonGetObjects[T any](r *jsonReader, name string, read func(*jsonReader) T) []T {
	raw, ok := r.m[name]
	if !ok || raw == nil || r.err != nil {
		return nil
	}
	path := r.path + "/" + name
	list, ok := raw.([]any)
	if !ok {
		r.err = jsonFail(path, "expected an array")
		return nil
	}
	out := make([]T, 0, len(list))
	for i, item := range list {
		p := path + "/" + strconv.Itoa(i)
		m, err := r.d.object(item, p)
		if err != nil {
			r.err = err
			return nil
		}
		sub := &jsonReader{d: r.d, m: m, path: p}
		v := read(sub)
		if sub.err != nil {
			r.err = sub.err
			return nil
		}
		out = append(out, v)
	}
	return out
}

package nodeset

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"

	"github.com/reoring/uatypes"
)

// value converts a typed <uax:T> or <uax:ListOfT> element into a Variant.
func (l *loader) value(n *xmlNode, path string) (uatypes.Variant, error) {
	name := n.XMLName.Local
	path += "/" + name
	if elem, ok := strings.CutPrefix(name, "ListOf"); ok {
		t, ok := uatypes.TypeIDByName(elem)
		if !ok || !xmlType(t) {
			return uatypes.Variant{}, failf(uatypes.CodeUnsupportedConstruct, -1, path, "unsupported value element %s", name)
		}
		if limit := l.opt.Context.EffectiveLimits().MaxArrayLength; len(n.Children) > limit {
			return uatypes.Variant{}, failf(uatypes.CodeLimitExceeded, -1, path, "array length %d exceeds max %d", len(n.Children), limit)
		}
		arr, err := l.list(t, n.Children, path)
		if err != nil {
			return uatypes.Variant{}, err
		}
		return uatypes.NewArrayVariant(t, arr)
	}
	t, ok := uatypes.TypeIDByName(name)
	if !ok || !xmlType(t) {
		return uatypes.Variant{}, failf(uatypes.CodeUnsupportedConstruct, -1, path, "unsupported value element %s", name)
	}
	v, err := l.scalar(t, n, path)
	if err != nil {
		return uatypes.Variant{}, err
	}
	return uatypes.NewVariant(v)
}

// xmlType reports whether values of t can appear in a type-definition
// document. Variant, DataValue and DiagnosticInfo values are not
// supported.
func xmlType(t uatypes.TypeID) bool {
	switch t {
	case uatypes.TypeVariant, uatypes.TypeDataValue, uatypes.TypeDiagnosticInfo:
		return false
	}
	return t.Valid()
}

func (l *loader) list(t uatypes.TypeID, items []xmlNode, path string) (any, error) {
	switch t {
	case uatypes.TypeBoolean:
		return listOf[bool](l, t, items, path)
	case uatypes.TypeSByte:
		return listOf[int8](l, t, items, path)
	case uatypes.TypeByte:
		return listOf[byte](l, t, items, path)
	case uatypes.TypeInt16:
		return listOf[int16](l, t, items, path)
	case uatypes.TypeUInt16:
		return listOf[uint16](l, t, items, path)
	case uatypes.TypeInt32:
		return listOf[int32](l, t, items, path)
	case uatypes.TypeUInt32:
		return listOf[uint32](l, t, items, path)
	case uatypes.TypeInt64:
		return listOf[int64](l, t, items, path)
	case uatypes.TypeUInt64:
		return listOf[uint64](l, t, items, path)
	case uatypes.TypeFloat:
		return listOf[float32](l, t, items, path)
	case uatypes.TypeDouble:
		return listOf[float64](l, t, items, path)
	case uatypes.TypeString:
		return listOf[uatypes.String](l, t, items, path)
	case uatypes.TypeDateTime:
		return listOf[uatypes.DateTime](l, t, items, path)
	case uatypes.TypeGuid:
		return listOf[uatypes.Guid](l, t, items, path)
	case uatypes.TypeByteString:
		return listOf[uatypes.ByteString](l, t, items, path)
	case uatypes.TypeXmlElement:
		return listOf[uatypes.XmlElement](l, t, items, path)
	case uatypes.TypeNodeID:
		return listOf[uatypes.NodeID](l, t, items, path)
	case uatypes.TypeExpandedNodeID:
		return listOf[uatypes.ExpandedNodeID](l, t, items, path)
	case uatypes.TypeStatusCode:
		return listOf[uatypes.StatusCode](l, t, items, path)
	case uatypes.TypeQualifiedName:
		return listOf[uatypes.QualifiedName](l, t, items, path)
	case uatypes.TypeLocalizedText:
		return listOf[uatypes.LocalizedText](l, t, items, path)
	default:
		return listOf[uatypes.ExtensionObject](l, t, items, path)
	}
}

func listOf[T any](l *loader, t uatypes.TypeID, items []xmlNode, path string) ([]T, error) {
	out := make([]T, 0, len(items))
	for i := range items {
		p := path + "/" + strconv.Itoa(i)
		if got := items[i].XMLName.Local; got != t.String() {
			return nil, failf(uatypes.CodeInvalidValue, -1, p, "element %s in list of %s", got, t)
		}
		v, err := l.scalar(t, &items[i], p)
		if err != nil {
			return nil, err
		}
		out = append(out, v.(T))
	}
	return out, nil
}

func (l *loader) scalar(t uatypes.TypeID, n *xmlNode, path string) (any, error) {
	text := strings.TrimSpace(n.Content)
	bad := func(err error) (any, error) {
		return nil, &uatypes.Error{Code: uatypes.CodeInvalidValue, Offset: -1, Path: path,
			Message: "invalid " + t.String() + " " + strconv.Quote(text), Cause: err}
	}
	lim := l.opt.Context.EffectiveLimits()
	switch t {
	case uatypes.TypeBoolean:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return bad(err)
		}
		return v, nil
	case uatypes.TypeSByte:
		v, err := strconv.ParseInt(text, 10, 8)
		if err != nil {
			return bad(err)
		}
		return int8(v), nil
	case uatypes.TypeByte:
		v, err := strconv.ParseUint(text, 10, 8)
		if err != nil {
			return bad(err)
		}
		return byte(v), nil
	case uatypes.TypeInt16:
		v, err := strconv.ParseInt(text, 10, 16)
		if err != nil {
			return bad(err)
		}
		return int16(v), nil
	case uatypes.TypeUInt16:
		v, err := strconv.ParseUint(text, 10, 16)
		if err != nil {
			return bad(err)
		}
		return uint16(v), nil
	case uatypes.TypeInt32:
		v, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return bad(err)
		}
		return int32(v), nil
	case uatypes.TypeUInt32:
		v, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return bad(err)
		}
		return uint32(v), nil
	case uatypes.TypeInt64:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return bad(err)
		}
		return v, nil
	case uatypes.TypeUInt64:
		v, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return bad(err)
		}
		return v, nil
	case uatypes.TypeFloat:
		v, err := parseXMLFloat(text, 32)
		if err != nil {
			return bad(err)
		}
		return float32(v), nil
	case uatypes.TypeDouble:
		v, err := parseXMLFloat(text, 64)
		if err != nil {
			return bad(err)
		}
		return v, nil
	case uatypes.TypeString:
		if len(n.Content) > lim.MaxStringLength {
			return nil, failf(uatypes.CodeLimitExceeded, -1, path, "string length %d exceeds max %d", len(n.Content), lim.MaxStringLength)
		}
		return uatypes.NewString(n.Content), nil
	case uatypes.TypeXmlElement:
		if len(n.Inner) > lim.MaxStringLength {
			return nil, failf(uatypes.CodeLimitExceeded, -1, path, "xml element length %d exceeds max %d", len(n.Inner), lim.MaxStringLength)
		}
		return uatypes.NewXmlElement(strings.TrimSpace(string(n.Inner))), nil
	case uatypes.TypeDateTime:
		v, err := uatypes.ParseDateTime(text)
		if err != nil {
			return bad(err)
		}
		return v, nil
	case uatypes.TypeGuid:
		s := text
		if c := n.child("String"); c != nil {
			s = strings.TrimSpace(c.Content)
		}
		g, err := uatypes.ParseGuid(s)
		if err != nil {
			return bad(err)
		}
		return g, nil
	case uatypes.TypeByteString:
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(text), ""))
		if err != nil {
			return bad(err)
		}
		if len(b) > lim.MaxByteStringLength {
			return nil, failf(uatypes.CodeLimitExceeded, -1, path, "byte string length %d exceeds max %d", len(b), lim.MaxByteStringLength)
		}
		return uatypes.ByteString(b), nil
	case uatypes.TypeNodeID:
		id, err := l.identifier(n, path)
		if err != nil {
			return nil, err
		}
		if id.NamespaceURI == "" {
			return id.NodeID, nil
		}
		return nil, failf(uatypes.CodeInvalidValue, -1, path, "namespace %q is not in the context namespace table", id.NamespaceURI)
	case uatypes.TypeExpandedNodeID:
		return l.identifier(n, path)
	case uatypes.TypeStatusCode:
		c := n.child("Code")
		if c == nil {
			return uatypes.StatusGood, nil
		}
		text = strings.TrimSpace(c.Content)
		v, err := strconv.ParseUint(text, 0, 32)
		if err != nil {
			return bad(err)
		}
		return uatypes.StatusCode(v), nil
	case uatypes.TypeQualifiedName:
		var q uatypes.QualifiedName
		if c := n.child("NamespaceIndex"); c != nil {
			text = strings.TrimSpace(c.Content)
			ns, err := strconv.ParseUint(text, 10, 16)
			if err != nil {
				return bad(err)
			}
			if q.NamespaceIndex, err = l.localIndex(uint16(ns), path); err != nil {
				return nil, err
			}
		}
		if c := n.child("Name"); c != nil {
			q.Name = uatypes.NewString(c.Content)
		}
		return q, nil
	case uatypes.TypeLocalizedText:
		var lt uatypes.LocalizedText
		if c := n.child("Locale"); c != nil {
			lt.Locale = uatypes.NewString(c.Content)
		}
		if c := n.child("Text"); c != nil {
			lt.Text = uatypes.NewString(c.Content)
		}
		return lt, nil
	case uatypes.TypeExtensionObject:
		return l.extensionObject(n, path)
	}
	return nil, failf(uatypes.CodeUnsupportedConstruct, -1, path, "unsupported value type %s", t)
}

// identifier reads the <Identifier> child of a NodeId value.
func (l *loader) identifier(n *xmlNode, path string) (uatypes.ExpandedNodeID, error) {
	c := n.child("Identifier")
	if c == nil {
		return uatypes.ExpandedNodeID{}, nil
	}
	return l.nodeID(c.Content, path+"/Identifier")
}

// extensionObject keeps the XML body verbatim.
func (l *loader) extensionObject(n *xmlNode, path string) (uatypes.ExtensionObject, error) {
	var x uatypes.ExtensionObject
	if c := n.child("TypeId"); c != nil {
		id, err := l.identifier(c, path+"/TypeId")
		if err != nil {
			return x, err
		}
		x.TypeID = id
	}
	body := n.child("Body")
	if body == nil {
		return x, nil
	}
	raw := []byte(strings.TrimSpace(string(body.Inner)))
	if limit := l.opt.Context.EffectiveLimits().MaxMessageSize; len(raw) > limit {
		return x, failf(uatypes.CodeLimitExceeded, -1, path+"/Body", "body length %d exceeds max %d", len(raw), limit)
	}
	return uatypes.NewRawExtensionObject(x.TypeID, uatypes.BodyXML, raw), nil
}

func parseXMLFloat(s string, bits int) (float64, error) {
	switch s {
	case "INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	case "NaN":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, bits)
}

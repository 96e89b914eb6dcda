package uatypes

import (
	"bytes"
	"encoding/base64"
	"strconv"
	"strings"
)

// IDType is the identifier kind of a NodeID.
type IDType byte

const (
	IDTypeNumeric IDType = iota
	IDTypeString
	IDTypeGuid
	IDTypeOpaque
)

// NodeID identifies a node within a namespace. Exactly one identifier
// field is meaningful, selected by Type.
type NodeID struct {
	Namespace uint16
	Type      IDType
	Numeric   uint32
	Str       string
	Guid      Guid
	Opaque    ByteString
}

// NewNumericNodeID returns a numeric NodeID.
func NewNumericNodeID(ns uint16, id uint32) NodeID {
	return NodeID{Namespace: ns, Type: IDTypeNumeric, Numeric: id}
}

// NewStringNodeID returns a string NodeID.
func NewStringNodeID(ns uint16, id string) NodeID {
	return NodeID{Namespace: ns, Type: IDTypeString, Str: id}
}

// NewGuidNodeID returns a guid NodeID.
func NewGuidNodeID(ns uint16, id Guid) NodeID {
	return NodeID{Namespace: ns, Type: IDTypeGuid, Guid: id}
}

// NewOpaqueNodeID returns an opaque NodeID.
func NewOpaqueNodeID(ns uint16, id []byte) NodeID {
	return NodeID{Namespace: ns, Type: IDTypeOpaque, Opaque: id}
}

// IsNull reports whether n is the null NodeID (ns=0;i=0).
func (n NodeID) IsNull() bool {
	return n.Namespace == 0 && n.Type == IDTypeNumeric && n.Numeric == 0
}

// Equal compares two NodeIDs by value.
func (n NodeID) Equal(o NodeID) bool {
	if n.Namespace != o.Namespace || n.Type != o.Type {
		return false
	}
	switch n.Type {
	case IDTypeNumeric:
		return n.Numeric == o.Numeric
	case IDTypeString:
		return n.Str == o.Str
	case IDTypeGuid:
		return n.Guid == o.Guid
	default:
		return bytes.Equal(n.Opaque, o.Opaque)
	}
}

// identifier returns the "i=5" part of the text form.
func (n NodeID) identifier() string {
	switch n.Type {
	case IDTypeString:
		return "s=" + n.Str
	case IDTypeGuid:
		return "g=" + n.Guid.String()
	case IDTypeOpaque:
		return "b=" + base64.StdEncoding.EncodeToString(n.Opaque)
	default:
		return "i=" + strconv.FormatUint(uint64(n.Numeric), 10)
	}
}

// String returns the standard text form, e.g. "ns=2;s=Pump" or "i=85".
func (n NodeID) String() string {
	if n.Namespace == 0 {
		return n.identifier()
	}
	return "ns=" + strconv.Itoa(int(n.Namespace)) + ";" + n.identifier()
}

// ParseNodeID parses the text form produced by String.
func ParseNodeID(s string) (NodeID, error) {
	e, err := ParseExpandedNodeID(s)
	if err != nil {
		return NodeID{}, err
	}
	if e.NamespaceURI != "" || e.ServerIndex != 0 {
		return NodeID{}, newError(CodeInvalidValue, -1, "node id %q carries a namespace uri or server index", s)
	}
	return e.NodeID, nil
}

// MustParseNodeID is ParseNodeID that panics on error.
func MustParseNodeID(s string) NodeID {
	n, err := ParseNodeID(s)
	if err != nil {
		panic(err)
	}
	return n
}

// ExpandedNodeID is a NodeID that may name its namespace by URI and live
// on another server.
type ExpandedNodeID struct {
	NodeID       NodeID
	NamespaceURI string
	ServerIndex  uint32
}

// NewExpandedNodeID wraps a local NodeID.
func NewExpandedNodeID(n NodeID) ExpandedNodeID { return ExpandedNodeID{NodeID: n} }

// NewNumericExpandedNodeID returns a numeric id in the namespace named by uri.
// An empty uri means namespace 0.
func NewNumericExpandedNodeID(uri string, id uint32) ExpandedNodeID {
	return ExpandedNodeID{NodeID: NewNumericNodeID(0, id), NamespaceURI: uri}
}

// NewStringExpandedNodeID returns a string id in the namespace named by uri.
func NewStringExpandedNodeID(uri string, id string) ExpandedNodeID {
	return ExpandedNodeID{NodeID: NewStringNodeID(0, id), NamespaceURI: uri}
}

// Equal compares two ExpandedNodeIDs by value.
func (e ExpandedNodeID) Equal(o ExpandedNodeID) bool {
	return e.NamespaceURI == o.NamespaceURI && e.ServerIndex == o.ServerIndex && e.NodeID.Equal(o.NodeID)
}

// IsNull reports whether e is the null id.
func (e ExpandedNodeID) IsNull() bool {
	return e.NamespaceURI == "" && e.ServerIndex == 0 && e.NodeID.IsNull()
}

func (e ExpandedNodeID) String() string {
	var b strings.Builder
	if e.ServerIndex != 0 {
		b.WriteString("svr=")
		b.WriteString(strconv.FormatUint(uint64(e.ServerIndex), 10))
		b.WriteByte(';')
	}
	if e.NamespaceURI != "" {
		b.WriteString("nsu=")
		b.WriteString(escapeNamespaceURI(e.NamespaceURI))
		b.WriteByte(';')
		b.WriteString(e.NodeID.identifier())
		return b.String()
	}
	b.WriteString(e.NodeID.String())
	return b.String()
}

// key is the canonical lookup form used by the registry.
func (e ExpandedNodeID) key() string {
	if e.NamespaceURI == OPCUANamespaceURI {
		n := e.NodeID
		n.Namespace = 0
		return n.String()
	}
	return e.String()
}

var nsuEscaper = strings.NewReplacer("%", "%25", ";", "%3B")
var nsuUnescaper = strings.NewReplacer("%3B", ";", "%3b", ";", "%25", "%")

func escapeNamespaceURI(s string) string   { return nsuEscaper.Replace(s) }
func unescapeNamespaceURI(s string) string { return nsuUnescaper.Replace(s) }

// ParseExpandedNodeID parses "svr=1;nsu=urn:x;s=Id", "ns=2;i=5", "i=5" and
// the other identifier forms.
func ParseExpandedNodeID(s string) (ExpandedNodeID, error) {
	var out ExpandedNodeID
	rest := strings.TrimSpace(s)
	bad := func(msg string) (ExpandedNodeID, error) {
		return ExpandedNodeID{}, newError(CodeInvalidValue, -1, "invalid node id %q: %s", s, msg)
	}
	if strings.HasPrefix(rest, "svr=") {
		i := strings.IndexByte(rest, ';')
		if i < 0 {
			return bad("missing identifier")
		}
		v, err := strconv.ParseUint(rest[4:i], 10, 32)
		if err != nil {
			return bad("server index")
		}
		out.ServerIndex = uint32(v)
		rest = rest[i+1:]
	}
	switch {
	case strings.HasPrefix(rest, "nsu="):
		i := strings.IndexByte(rest, ';')
		if i < 0 {
			return bad("missing identifier")
		}
		out.NamespaceURI = unescapeNamespaceURI(rest[4:i])
		rest = rest[i+1:]
	case strings.HasPrefix(rest, "ns="):
		i := strings.IndexByte(rest, ';')
		if i < 0 {
			return bad("missing identifier")
		}
		v, err := strconv.ParseUint(rest[3:i], 10, 16)
		if err != nil {
			return bad("namespace index")
		}
		out.NodeID.Namespace = uint16(v)
		rest = rest[i+1:]
	}
	if len(rest) < 2 || rest[1] != '=' {
		return bad("missing identifier type")
	}
	body := rest[2:]
	switch rest[0] {
	case 'i':
		v, err := strconv.ParseUint(body, 10, 32)
		if err != nil {
			return bad("numeric identifier")
		}
		out.NodeID.Type = IDTypeNumeric
		out.NodeID.Numeric = uint32(v)
	case 's':
		out.NodeID.Type = IDTypeString
		out.NodeID.Str = body
	case 'g':
		g, err := ParseGuid(body)
		if err != nil {
			return bad("guid identifier")
		}
		out.NodeID.Type = IDTypeGuid
		out.NodeID.Guid = g
	case 'b':
		raw, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return bad("opaque identifier")
		}
		if raw == nil {
			raw = []byte{}
		}
		out.NodeID.Type = IDTypeOpaque
		out.NodeID.Opaque = raw
	default:
		return bad("unknown identifier type")
	}
	return out, nil
}

// MustParseExpandedNodeID is ParseExpandedNodeID that panics on error.
func MustParseExpandedNodeID(s string) ExpandedNodeID {
	e, err := ParseExpandedNodeID(s)
	if err != nil {
		panic(err)
	}
	return e
}

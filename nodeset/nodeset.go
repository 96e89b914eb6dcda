// Package nodeset loads the static type-definition subset of OPC-UA
// NodeSet2 XML documents: namespace and model declarations, aliases, data
// types with their structure definitions, encoding objects and variables
// with typed values. There is no write path.
//
// Elements outside that subset fail with uatypes.CodeUnsupportedConstruct
// unless LoadOptions.Lenient is set, in which case they are logged and
// listed in NodeSet.Skipped.
package nodeset

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/reoring/uatypes"
)

// DefaultMaxDocumentSize bounds the (decompressed) document read by Load.
const DefaultMaxDocumentSize = 64 << 20

// LoadOptions configures Load. Zero values select defaults.
type LoadOptions struct {
	// Context supplies limits and the namespace table node ids are
	// remapped into. Nil selects uatypes.DefaultContext().
	Context *uatypes.Context
	// Lenient skips unsupported elements instead of failing.
	Lenient bool
	// Logger overrides the context's logger.
	Logger *slog.Logger
	// MaxDocumentSize bounds the bytes read. Zero selects
	// DefaultMaxDocumentSize.
	MaxDocumentSize int64
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.Context == nil {
		o.Context = uatypes.DefaultContext()
	}
	if o.Logger == nil {
		o.Logger = o.Context.Logger()
	}
	if o.MaxDocumentSize <= 0 {
		o.MaxDocumentSize = DefaultMaxDocumentSize
	}
	return o
}

// Model is a <Model> declaration.
type Model struct {
	URI             string
	Version         string
	PublicationDate time.Time
	RequiredModels  []string
}

// Node holds the attributes shared by all loaded nodes.
type Node struct {
	NodeID      uatypes.ExpandedNodeID
	BrowseName  uatypes.QualifiedName
	DisplayName string
}

// Field is one <Field> of a data type definition. Enumeration fields carry
// Value and no DataType.
type Field struct {
	Name       string
	DataType   uatypes.ExpandedNodeID
	ValueRank  int32
	IsOptional bool
	Value      int64
}

// Definition is the <Definition> of a data type.
type Definition struct {
	Name        string
	IsUnion     bool
	IsOptionSet bool
	Fields      []Field
}

// DataType is a <UADataType> node.
type DataType struct {
	Node
	IsAbstract bool
	SuperType  uatypes.ExpandedNodeID
	// BinaryEncoding is the "Default Binary" encoding object, null when
	// the document declares none.
	BinaryEncoding uatypes.ExpandedNodeID
	Definition     *Definition
}

// Object is a <UAObject> node; in type-definition documents these are
// mostly encoding objects.
type Object struct {
	Node
	TypeDefinition uatypes.ExpandedNodeID
	// EncodingOf is the data type this object encodes, if any.
	EncodingOf uatypes.ExpandedNodeID
}

// Variable is a <UAVariable> or <UAVariableType> node.
type Variable struct {
	Node
	IsType    bool
	DataType  uatypes.ExpandedNodeID
	ValueRank int32
	Value     uatypes.Variant
}

// Skip records an element passed over in lenient mode.
type Skip struct {
	Element string
	NodeID  string
	Offset  int64
	Reason  string
}

// NodeSet is a loaded document.
type NodeSet struct {
	NamespaceURIs []string
	ServerURIs    []string
	Models        []Model
	Aliases       map[string]string
	DataTypes     []DataType
	Objects       []Object
	Variables     []Variable
	Skipped       []Skip
	// Digest is the BLAKE3-256 digest of the document bytes.
	Digest [32]byte

	ctx     *uatypes.Context
	lenient bool
	logger  *slog.Logger
}

// DataType returns the data type with the given node id.
func (n *NodeSet) DataType(id uatypes.ExpandedNodeID) (*DataType, bool) {
	for i := range n.DataTypes {
		if n.DataTypes[i].NodeID.Equal(id) {
			return &n.DataTypes[i], true
		}
	}
	return nil, false
}

// Variable returns the variable with the given browse name.
func (n *NodeSet) Variable(browseName string) (*Variable, bool) {
	for i := range n.Variables {
		if n.Variables[i].BrowseName.Name.Value == browseName {
			return &n.Variables[i], true
		}
	}
	return nil, false
}

// boundedReader fails once more than max bytes are read.
type boundedReader struct {
	r    io.Reader
	left int64
	max  int64
}

func (b *boundedReader) Read(p []byte) (int, error) {
	if b.left <= 0 {
		var one [1]byte
		n, err := b.r.Read(one[:])
		if n > 0 {
			return 0, &uatypes.Error{Code: uatypes.CodeLimitExceeded, Offset: b.max,
				Message: fmt.Sprintf("document exceeds %d bytes", b.max)}
		}
		return 0, err
	}
	if int64(len(p)) > b.left {
		p = p[:b.left]
	}
	n, err := b.r.Read(p)
	b.left -= int64(n)
	return n, err
}

// loader collects raw elements; conversion runs after the whole document
// is read so that namespace and alias declarations apply everywhere.
type loader struct {
	opt       LoadOptions
	dec       *xml.Decoder
	set       *NodeSet
	dataTypes []xmlDataType
	objects   []xmlObject
	variables []rawVariable
	docNS     []string
}

type rawVariable struct {
	xmlVariable
	isType bool
	offset int64
}

func failf(code string, offset int64, path, format string, args ...any) *uatypes.Error {
	return &uatypes.Error{Code: code, Offset: offset, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Load reads one UANodeSet document from r.
func Load(r io.Reader, opt LoadOptions) (*NodeSet, error) {
	opt = opt.withDefaults()
	h := blake3.New()
	in := io.TeeReader(&boundedReader{r: r, left: opt.MaxDocumentSize, max: opt.MaxDocumentSize}, h)
	l := &loader{
		opt: opt,
		dec: xml.NewDecoder(in),
		set: &NodeSet{
			Aliases: map[string]string{},
			ctx:     opt.Context,
			lenient: opt.Lenient,
			logger:  opt.Logger,
		},
	}
	if err := l.document(); err != nil {
		return nil, err
	}
	// Hash everything up to EOF, trailing whitespace included.
	if _, err := io.Copy(io.Discard, in); err != nil {
		return nil, l.wrap(err)
	}
	copy(l.set.Digest[:], h.Sum(nil))
	if err := l.finish(); err != nil {
		return nil, err
	}
	opt.Logger.Debug("nodeset loaded",
		"namespaces", len(l.set.NamespaceURIs),
		"data_types", len(l.set.DataTypes),
		"variables", len(l.set.Variables),
		"skipped", len(l.set.Skipped))
	return l.set, nil
}

func (l *loader) wrap(err error) error {
	var ue *uatypes.Error
	if errors.As(err, &ue) {
		return err
	}
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return &uatypes.Error{Code: uatypes.CodeInvalidValue, Offset: l.dec.InputOffset(),
			Message: fmt.Sprintf("xml syntax error on line %d", se.Line), Cause: err}
	}
	return &uatypes.Error{Code: uatypes.CodeInvalidValue, Offset: l.dec.InputOffset(), Message: "xml", Cause: err}
}

func (l *loader) document() error {
	root, err := l.start()
	if err != nil {
		return err
	}
	if root.Name.Local != "UANodeSet" {
		return failf(uatypes.CodeUnsupportedConstruct, l.dec.InputOffset(), root.Name.Local,
			"root element %s is not UANodeSet", root.Name.Local)
	}
	for {
		tok, err := l.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return failf(uatypes.CodeEndOfStream, l.dec.InputOffset(), "UANodeSet", "document ends inside UANodeSet")
			}
			return l.wrap(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := l.element(t); err != nil {
				return err
			}
		case xml.EndElement:
			return l.trailer()
		}
	}
}

// start returns the root element, skipping the prolog.
func (l *loader) start() (xml.StartElement, error) {
	for {
		tok, err := l.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return xml.StartElement{}, failf(uatypes.CodeEndOfStream, l.dec.InputOffset(), "", "empty document")
			}
			return xml.StartElement{}, l.wrap(err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

// trailer rejects elements after the root.
func (l *loader) trailer() error {
	for {
		tok, err := l.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return l.wrap(err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			return failf(uatypes.CodeInvalidValue, l.dec.InputOffset(), se.Name.Local, "element after UANodeSet")
		}
	}
}

func (l *loader) element(se xml.StartElement) error {
	offset := l.dec.InputOffset()
	decode := func(v any) error {
		if err := l.dec.DecodeElement(v, &se); err != nil {
			return l.wrap(err)
		}
		return nil
	}
	switch se.Name.Local {
	case "NamespaceUris":
		var x xmlURIList
		if err := decode(&x); err != nil {
			return err
		}
		l.set.NamespaceURIs = append(l.set.NamespaceURIs, x.URIs...)
	case "ServerUris":
		var x xmlURIList
		if err := decode(&x); err != nil {
			return err
		}
		l.set.ServerURIs = append(l.set.ServerURIs, x.URIs...)
	case "Models":
		var x xmlModels
		if err := decode(&x); err != nil {
			return err
		}
		for _, m := range x.Models {
			model := Model{URI: m.ModelURI, Version: m.Version}
			if m.PublicationDate != "" {
				t, err := time.Parse(time.RFC3339, m.PublicationDate)
				if err != nil {
					return failf(uatypes.CodeInvalidValue, offset, "Models/Model", "invalid PublicationDate %q", m.PublicationDate)
				}
				model.PublicationDate = t
			}
			for _, req := range m.RequiredModels {
				model.RequiredModels = append(model.RequiredModels, req.ModelURI)
			}
			l.set.Models = append(l.set.Models, model)
		}
	case "Aliases":
		var x xmlAliases
		if err := decode(&x); err != nil {
			return err
		}
		for _, a := range x.Aliases {
			l.set.Aliases[a.Alias] = strings.TrimSpace(a.NodeID)
		}
	case "UADataType":
		var x xmlDataType
		if err := decode(&x); err != nil {
			return err
		}
		l.dataTypes = append(l.dataTypes, x)
	case "UAObject":
		var x xmlObject
		if err := decode(&x); err != nil {
			return err
		}
		l.objects = append(l.objects, x)
	case "UAVariable", "UAVariableType":
		var x xmlVariable
		if err := decode(&x); err != nil {
			return err
		}
		l.variables = append(l.variables, rawVariable{xmlVariable: x, isType: se.Name.Local == "UAVariableType", offset: offset})
	default:
		nodeID := attr(se, "NodeId")
		err := failf(uatypes.CodeUnsupportedConstruct, offset, se.Name.Local, "unsupported element %s", se.Name.Local)
		if !l.opt.Lenient {
			return err
		}
		if err := l.dec.Skip(); err != nil {
			return l.wrap(err)
		}
		l.skip(Skip{Element: se.Name.Local, NodeID: nodeID, Offset: offset, Reason: "unsupported element"})
	}
	return nil
}

func (l *loader) skip(s Skip) {
	l.opt.Logger.Warn("nodeset construct skipped",
		"element", s.Element, "node_id", s.NodeID, "offset", s.Offset, "reason", s.Reason)
	l.set.Skipped = append(l.set.Skipped, s)
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// finish converts the collected elements: namespace remapping, alias
// resolution, encoding links and typed values.
func (l *loader) finish() error {
	l.docNS = append([]string{uatypes.OPCUANamespaceURI}, l.set.NamespaceURIs...)
	for _, x := range l.dataTypes {
		dt, err := l.dataType(x)
		if err != nil {
			return err
		}
		l.set.DataTypes = append(l.set.DataTypes, dt)
	}
	for _, x := range l.objects {
		obj, err := l.object(x)
		if err != nil {
			return err
		}
		l.set.Objects = append(l.set.Objects, obj)
	}
	l.linkEncodings()
	for _, x := range l.variables {
		v, err := l.variable(x)
		if err != nil {
			if !l.opt.Lenient || !errors.Is(err, uatypes.ErrUnsupportedConstruct) {
				return err
			}
			l.skip(Skip{Element: elementName(x.isType), NodeID: x.NodeID, Offset: x.offset, Reason: err.Error()})
		}
		l.set.Variables = append(l.set.Variables, v)
	}
	return nil
}

func elementName(isType bool) string {
	if isType {
		return "UAVariableType"
	}
	return "UAVariable"
}

// nodeID resolves an alias or node id string and remaps its namespace:
// into the context's table when the URI is present there, otherwise to the
// namespace URI form.
func (l *loader) nodeID(s, path string) (uatypes.ExpandedNodeID, error) {
	s = strings.TrimSpace(s)
	if target, ok := l.set.Aliases[s]; ok {
		s = target
	}
	id, err := uatypes.ParseExpandedNodeID(s)
	if err != nil {
		return uatypes.ExpandedNodeID{}, failf(uatypes.CodeInvalidValue, -1, path, "invalid node id %q", s)
	}
	if id.NamespaceURI != "" || id.NodeID.Namespace == 0 {
		return id, nil
	}
	uri, err := l.namespace(id.NodeID.Namespace, path)
	if err != nil {
		return uatypes.ExpandedNodeID{}, err
	}
	return l.remap(id.NodeID, uri), nil
}

func (l *loader) namespace(idx uint16, path string) (string, error) {
	if int(idx) >= len(l.docNS) {
		return "", failf(uatypes.CodeInvalidValue, -1, path, "namespace index %d is not declared in NamespaceUris", idx)
	}
	return l.docNS[idx], nil
}

func (l *loader) remap(n uatypes.NodeID, uri string) uatypes.ExpandedNodeID {
	if idx, ok := l.opt.Context.Namespaces().Index(uri); ok {
		n.Namespace = idx
		return uatypes.NewExpandedNodeID(n)
	}
	n.Namespace = 0
	return uatypes.ExpandedNodeID{NodeID: n, NamespaceURI: uri}
}

// localIndex maps a document namespace index to the context's table.
func (l *loader) localIndex(idx uint16, path string) (uint16, error) {
	uri, err := l.namespace(idx, path)
	if err != nil {
		return 0, err
	}
	out, ok := l.opt.Context.Namespaces().Index(uri)
	if !ok {
		return 0, failf(uatypes.CodeInvalidValue, -1, path, "namespace %q is not in the context namespace table", uri)
	}
	return out, nil
}

func (l *loader) browseName(s, path string) (uatypes.QualifiedName, error) {
	q := uatypes.ParseQualifiedName(s)
	if q.NamespaceIndex == 0 {
		return q, nil
	}
	uri, err := l.namespace(q.NamespaceIndex, path)
	if err != nil {
		return q, err
	}
	if idx, ok := l.opt.Context.Namespaces().Index(uri); ok {
		q.NamespaceIndex = idx
	}
	return q, nil
}

func (l *loader) node(x xmlNodeBase, element string) (Node, error) {
	path := element + "[" + x.NodeID + "]"
	id, err := l.nodeID(x.NodeID, path)
	if err != nil {
		return Node{}, err
	}
	bn, err := l.browseName(x.BrowseName, path)
	if err != nil {
		return Node{}, err
	}
	return Node{NodeID: id, BrowseName: bn, DisplayName: x.displayName()}, nil
}

func (l *loader) dataType(x xmlDataType) (DataType, error) {
	path := "UADataType[" + x.NodeID + "]"
	n, err := l.node(x.xmlNodeBase, "UADataType")
	if err != nil {
		return DataType{}, err
	}
	dt := DataType{Node: n, IsAbstract: x.IsAbstract}
	for _, ref := range x.References {
		if ref.ReferenceType == "HasSubtype" && !ref.forward() {
			if dt.SuperType, err = l.nodeID(ref.Target, path); err != nil {
				return DataType{}, err
			}
		}
	}
	if x.Definition == nil {
		return dt, nil
	}
	def := &Definition{Name: x.Definition.Name, IsUnion: x.Definition.IsUnion, IsOptionSet: x.Definition.IsOptionSet}
	for _, f := range x.Definition.Fields {
		field := Field{Name: f.Name, ValueRank: -1, IsOptional: f.IsOptional}
		fpath := path + "/Field[" + f.Name + "]"
		if f.DataType != "" {
			if field.DataType, err = l.nodeID(f.DataType, fpath); err != nil {
				return DataType{}, err
			}
		} else if f.Value == "" {
			// Structure fields without a DataType are BaseDataType.
			field.DataType = uatypes.NewExpandedNodeID(uatypes.NewNumericNodeID(0, 24))
		}
		if f.ValueRank != "" {
			vr, err := strconv.ParseInt(f.ValueRank, 10, 32)
			if err != nil {
				return DataType{}, failf(uatypes.CodeInvalidValue, -1, fpath, "invalid ValueRank %q", f.ValueRank)
			}
			field.ValueRank = int32(vr)
		}
		if f.Value != "" {
			v, err := strconv.ParseInt(f.Value, 10, 64)
			if err != nil {
				return DataType{}, failf(uatypes.CodeInvalidValue, -1, fpath, "invalid Value %q", f.Value)
			}
			field.Value = v
		}
		def.Fields = append(def.Fields, field)
	}
	dt.Definition = def
	return dt, nil
}

func (l *loader) object(x xmlObject) (Object, error) {
	path := "UAObject[" + x.NodeID + "]"
	n, err := l.node(x.xmlNodeBase, "UAObject")
	if err != nil {
		return Object{}, err
	}
	obj := Object{Node: n}
	for _, ref := range x.References {
		switch {
		case ref.ReferenceType == "HasTypeDefinition" && ref.forward():
			obj.TypeDefinition, err = l.nodeID(ref.Target, path)
		case ref.ReferenceType == "HasEncoding" && !ref.forward():
			obj.EncodingOf, err = l.nodeID(ref.Target, path)
		}
		if err != nil {
			return Object{}, err
		}
	}
	return obj, nil
}

// linkEncodings sets DataType.BinaryEncoding from HasEncoding references
// in either direction.
func (l *loader) linkEncodings() {
	binary := map[string]*Object{}
	for i := range l.set.Objects {
		obj := &l.set.Objects[i]
		if obj.BrowseName.Name.Value == "Default Binary" {
			binary[obj.NodeID.String()] = obj
		}
	}
	for i := range l.set.DataTypes {
		dt := &l.set.DataTypes[i]
		for _, obj := range binary {
			if obj.EncodingOf.Equal(dt.NodeID) {
				dt.BinaryEncoding = obj.NodeID
			}
		}
	}
	for i, x := range l.dataTypes {
		dt := &l.set.DataTypes[i]
		for _, ref := range x.References {
			if ref.ReferenceType != "HasEncoding" || !ref.forward() {
				continue
			}
			id, err := l.nodeID(ref.Target, "")
			if err != nil {
				continue
			}
			if obj, ok := binary[id.String()]; ok {
				dt.BinaryEncoding = obj.NodeID
			}
		}
	}
}

func (l *loader) variable(x rawVariable) (Variable, error) {
	element := elementName(x.isType)
	path := element + "[" + x.NodeID + "]"
	n, err := l.node(x.xmlNodeBase, element)
	if err != nil {
		return Variable{}, err
	}
	v := Variable{Node: n, IsType: x.isType, ValueRank: -1}
	if x.DataType != "" {
		if v.DataType, err = l.nodeID(x.DataType, path); err != nil {
			return Variable{}, err
		}
	}
	if x.ValueRank != "" {
		vr, err := strconv.ParseInt(x.ValueRank, 10, 32)
		if err != nil {
			return Variable{}, failf(uatypes.CodeInvalidValue, x.offset, path, "invalid ValueRank %q", x.ValueRank)
		}
		v.ValueRank = int32(vr)
	}
	if x.Value == nil {
		return v, nil
	}
	elems := x.Value.Children
	switch len(elems) {
	case 0:
		return v, nil
	case 1:
	default:
		return v, failf(uatypes.CodeInvalidValue, x.offset, path+"/Value", "value holds %d elements", len(elems))
	}
	val, err := l.value(&elems[0], path+"/Value")
	if err != nil {
		if e, ok := uatypes.AsError(err); ok && e.Offset < 0 {
			e.Offset = x.offset
		}
		return v, err
	}
	v.Value = val
	return v, nil
}

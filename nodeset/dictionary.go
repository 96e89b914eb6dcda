package nodeset

import (
	"fmt"
	"sort"

	"github.com/reoring/uatypes"
)

// Enumeration is an enumerated data type. Its values encode as Int32.
type Enumeration struct {
	Name       string
	DataTypeID uatypes.ExpandedNodeID
	Values     map[int64]string
}

// DataTypeDictionary holds the structures and enumerations of a NodeSet
// as run-time definitions. It is a uatypes.TypeLoaderGroup contributing a
// loader for every concrete structure with a binary encoding.
type DataTypeDictionary struct {
	Structures   []*uatypes.StructureDefinition
	Enumerations []Enumeration

	byName  map[string]*uatypes.StructureDefinition
	loaders []uatypes.TypeLoader
}

// TypeLoaders implements uatypes.TypeLoaderGroup.
func (d *DataTypeDictionary) TypeLoaders() []uatypes.TypeLoader { return d.loaders }

// Lookup returns the structure with the given name.
func (d *DataTypeDictionary) Lookup(name string) (*uatypes.StructureDefinition, bool) {
	def, ok := d.byName[name]
	return def, ok
}

// ns0 simple data types (subtypes of built-ins) that commonly appear as
// structure field types.
var simpleTypes = map[uint32]uatypes.TypeID{
	26:    uatypes.TypeVariant, // Number
	27:    uatypes.TypeVariant, // Integer
	28:    uatypes.TypeVariant, // UInteger
	24:    uatypes.TypeVariant, // BaseDataType
	22:    uatypes.TypeExtensionObject,
	29:    uatypes.TypeInt32, // Enumeration
	30:    uatypes.TypeByteString,
	288:   uatypes.TypeUInt32, // IntegerId
	289:   uatypes.TypeUInt32, // Counter
	290:   uatypes.TypeDouble, // Duration
	291:   uatypes.TypeString, // NumericRange
	292:   uatypes.TypeString, // Time
	293:   uatypes.TypeDateTime,
	294:   uatypes.TypeDateTime, // UtcTime
	295:   uatypes.TypeString,   // LocaleId
	311:   uatypes.TypeByteString,
	388:   uatypes.TypeNodeID,
	12877: uatypes.TypeString,
	12878: uatypes.TypeString,
	12879: uatypes.TypeString,
	12880: uatypes.TypeString,
	12881: uatypes.TypeString,
}

var enumerationID = uatypes.NewExpandedNodeID(uatypes.NewNumericNodeID(0, 29))

// fieldType is the resolved encoding of a field's data type.
type fieldType struct {
	builtin   uatypes.TypeID
	structure *uatypes.StructureDefinition
	err       error
}

type dictBuilder struct {
	byID     map[string]*DataType
	defs     map[string]*uatypes.StructureDefinition
	resolved map[string]fieldType
	active   map[string]bool
	enums    map[string]bool
}

// Dictionary converts the document's structure and enumeration
// definitions. Structures whose fields cannot be encoded (unknown
// namespace-0 structures, multi-dimensional fields, inline cycles) fail
// with CodeUnsupportedConstruct; in lenient mode they are skipped, along
// with every structure embedding them.
func (n *NodeSet) Dictionary() (*DataTypeDictionary, error) {
	b := &dictBuilder{
		byID:     map[string]*DataType{},
		defs:     map[string]*uatypes.StructureDefinition{},
		resolved: map[string]fieldType{},
		active:   map[string]bool{},
		enums:    map[string]bool{},
	}
	for i := range n.DataTypes {
		dt := &n.DataTypes[i]
		b.byID[dt.NodeID.String()] = dt
	}
	out := &DataTypeDictionary{byName: map[string]*uatypes.StructureDefinition{}}
	for i := range n.DataTypes {
		dt := &n.DataTypes[i]
		if dt.Definition == nil || dt.Definition.IsOptionSet {
			continue
		}
		if b.isEnumeration(dt) {
			b.enums[dt.NodeID.String()] = true
			e := Enumeration{Name: dt.BrowseName.Name.Value, DataTypeID: dt.NodeID, Values: map[int64]string{}}
			for _, f := range dt.Definition.Fields {
				e.Values[f.Value] = f.Name
			}
			out.Enumerations = append(out.Enumerations, e)
			continue
		}
		b.defs[dt.NodeID.String()] = &uatypes.StructureDefinition{
			Name:       dt.BrowseName.Name.Value,
			DataTypeID: dt.NodeID,
			EncodingID: dt.BinaryEncoding,
		}
	}
	failed := map[*uatypes.StructureDefinition]error{}
	for i := range n.DataTypes {
		dt := &n.DataTypes[i]
		def, ok := b.defs[dt.NodeID.String()]
		if !ok {
			continue
		}
		if err := b.fill(dt, def); err != nil {
			failed[def] = err
		}
	}
	// A structure embedding a failed one fails too.
	for changed := true; changed; {
		changed = false
		for _, def := range b.defs {
			if failed[def] != nil {
				continue
			}
			for _, f := range def.Fields {
				if f.Structure != nil && failed[f.Structure] != nil {
					failed[def] = fmt.Errorf("field %s: %w", f.Name, failed[f.Structure])
					changed = true
					break
				}
			}
		}
	}
	for i := range n.DataTypes {
		dt := &n.DataTypes[i]
		def, ok := b.defs[dt.NodeID.String()]
		if !ok {
			continue
		}
		err := failed[def]
		if err == nil {
			err = def.Validate()
		}
		if err != nil {
			if !n.lenient {
				return nil, &uatypes.Error{Code: uatypes.CodeUnsupportedConstruct, Offset: -1,
					Path: "UADataType[" + dt.NodeID.String() + "]", Message: "structure " + def.Name, Cause: err}
			}
			n.logger.Warn("nodeset structure skipped", "name", def.Name, "node_id", dt.NodeID.String(), "err", err)
			n.Skipped = append(n.Skipped, Skip{Element: "UADataType", NodeID: dt.NodeID.String(), Offset: -1, Reason: err.Error()})
			continue
		}
		out.Structures = append(out.Structures, def)
		out.byName[def.Name] = def
		if !dt.IsAbstract && !def.EncodingID.IsNull() {
			out.loaders = append(out.loaders, def.TypeLoader())
		}
	}
	sort.Slice(out.Enumerations, func(i, j int) bool { return out.Enumerations[i].Name < out.Enumerations[j].Name })
	n.logger.Debug("nodeset dictionary built",
		"structures", len(out.Structures),
		"enumerations", len(out.Enumerations),
		"type_loaders", len(out.loaders))
	return out, nil
}

// isEnumeration follows the supertype chain to Enumeration (i=29).
func (b *dictBuilder) isEnumeration(dt *DataType) bool {
	seen := map[string]bool{}
	for dt != nil && !seen[dt.NodeID.String()] {
		seen[dt.NodeID.String()] = true
		if dt.SuperType.Equal(enumerationID) {
			return true
		}
		dt = b.byID[dt.SuperType.String()]
	}
	return false
}

func (b *dictBuilder) fill(dt *DataType, def *uatypes.StructureDefinition) error {
	switch {
	case dt.Definition.IsUnion:
		def.Kind = uatypes.StructureUnion
	default:
		for _, f := range dt.Definition.Fields {
			if f.IsOptional {
				def.Kind = uatypes.StructureWithOptionalFields
			}
		}
	}
	for _, f := range dt.Definition.Fields {
		switch f.ValueRank {
		case -1, 1:
		default:
			return fmt.Errorf("field %s has value rank %d", f.Name, f.ValueRank)
		}
		ft := b.resolve(f.DataType)
		if ft.err != nil {
			return fmt.Errorf("field %s: %w", f.Name, ft.err)
		}
		def.Fields = append(def.Fields, uatypes.StructureField{
			Name:       f.Name,
			Type:       ft.builtin,
			Structure:  ft.structure,
			ValueRank:  f.ValueRank,
			IsOptional: f.IsOptional && !dt.Definition.IsUnion,
		})
	}
	return nil
}

// resolve maps a field data type onto a built-in type or an inline
// structure.
func (b *dictBuilder) resolve(id uatypes.ExpandedNodeID) fieldType {
	key := id.String()
	if ft, ok := b.resolved[key]; ok {
		return ft
	}
	if b.active[key] {
		return fieldType{err: fmt.Errorf("data type %s derives from itself", key)}
	}
	b.active[key] = true
	defer delete(b.active, key)
	ft := b.lookup(id)
	b.resolved[key] = ft
	return ft
}

func (b *dictBuilder) lookup(id uatypes.ExpandedNodeID) fieldType {
	key := id.String()
	if def, ok := b.defs[key]; ok {
		if dt := b.byID[key]; dt != nil && dt.IsAbstract {
			return fieldType{builtin: uatypes.TypeExtensionObject}
		}
		return fieldType{structure: def}
	}
	if b.enums[key] {
		return fieldType{builtin: uatypes.TypeInt32}
	}
	if id.NamespaceURI == "" && id.ServerIndex == 0 && id.NodeID.Namespace == 0 && id.NodeID.Type == uatypes.IDTypeNumeric {
		n := id.NodeID.Numeric
		if n > 0 && n <= uint32(uatypes.TypeDiagnosticInfo) {
			return fieldType{builtin: uatypes.TypeID(n)}
		}
		if t, ok := simpleTypes[n]; ok {
			return fieldType{builtin: t}
		}
	}
	if dt, ok := b.byID[key]; ok {
		if dt.SuperType.IsNull() {
			return fieldType{err: fmt.Errorf("data type %s has no supertype", key)}
		}
		// Subtypes without a definition of their own encode like their
		// supertype.
		return b.resolve(dt.SuperType)
	}
	return fieldType{err: fmt.Errorf("data type %s is unknown", key)}
}

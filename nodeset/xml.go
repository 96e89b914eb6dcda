package nodeset

import "encoding/xml"

// Element model of the supported UANodeSet subset. Unknown children of
// supported elements (Description, Category, Documentation, ...) are
// ignored by encoding/xml; unknown top-level elements are handled by the
// loader.

type xmlURIList struct {
	URIs []string `xml:"Uri"`
}

type xmlModel struct {
	ModelURI        string `xml:"ModelUri,attr"`
	Version         string `xml:"Version,attr"`
	PublicationDate string `xml:"PublicationDate,attr"`
	RequiredModels  []struct {
		ModelURI string `xml:"ModelUri,attr"`
		Version  string `xml:"Version,attr"`
	} `xml:"RequiredModel"`
}

type xmlModels struct {
	Models []xmlModel `xml:"Model"`
}

type xmlAliases struct {
	Aliases []struct {
		Alias  string `xml:"Alias,attr"`
		NodeID string `xml:",chardata"`
	} `xml:"Alias"`
}

type xmlReference struct {
	ReferenceType string `xml:"ReferenceType,attr"`
	IsForward     string `xml:"IsForward,attr"`
	Target        string `xml:",chardata"`
}

func (r xmlReference) forward() bool { return r.IsForward != "false" }

type xmlText struct {
	Locale string `xml:"Locale,attr"`
	Text   string `xml:",chardata"`
}

type xmlNodeBase struct {
	NodeID       string         `xml:"NodeId,attr"`
	BrowseName   string         `xml:"BrowseName,attr"`
	SymbolicName string         `xml:"SymbolicName,attr"`
	DisplayName  []xmlText      `xml:"DisplayName"`
	Description  []xmlText      `xml:"Description"`
	References   []xmlReference `xml:"References>Reference"`
}

func (n xmlNodeBase) displayName() string {
	if len(n.DisplayName) > 0 {
		return n.DisplayName[0].Text
	}
	return ""
}

type xmlField struct {
	Name        string    `xml:"Name,attr"`
	DataType    string    `xml:"DataType,attr"`
	ValueRank   string    `xml:"ValueRank,attr"`
	IsOptional  bool      `xml:"IsOptional,attr"`
	Value       string    `xml:"Value,attr"`
	Description []xmlText `xml:"Description"`
}

type xmlDefinition struct {
	Name        string     `xml:"Name,attr"`
	IsUnion     bool       `xml:"IsUnion,attr"`
	IsOptionSet bool       `xml:"IsOptionSet,attr"`
	Fields      []xmlField `xml:"Field"`
}

type xmlDataType struct {
	xmlNodeBase
	IsAbstract bool           `xml:"IsAbstract,attr"`
	Definition *xmlDefinition `xml:"Definition"`
}

type xmlObject struct {
	xmlNodeBase
}

type xmlVariable struct {
	xmlNodeBase
	DataType        string   `xml:"DataType,attr"`
	ValueRank       string   `xml:"ValueRank,attr"`
	ArrayDimensions string   `xml:"ArrayDimensions,attr"`
	ParentNodeID    string   `xml:"ParentNodeId,attr"`
	Value           *xmlNode `xml:"Value"`
}

// xmlNode is a generic element used for typed values.
type xmlNode struct {
	XMLName  xml.Name
	Content  string    `xml:",chardata"`
	Inner    []byte    `xml:",innerxml"`
	Children []xmlNode `xml:",any"`
}

func (n *xmlNode) child(local string) *xmlNode {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			return &n.Children[i]
		}
	}
	return nil
}

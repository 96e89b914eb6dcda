package uatypes

// OPCUANamespaceURI is the URI of namespace index 0.
const OPCUANamespaceURI = "http://opcfoundation.org/UA/"

// NamespaceTable is an immutable ordered list of namespace URIs. The index
// of a URI is the namespace index used on the wire. Index 0 is always
// OPCUANamespaceURI.
type NamespaceTable struct {
	uris  []string
	index map[string]uint16
}

// NewNamespaceTable builds a table from uris. OPCUANamespaceURI is
// prepended unless uris already starts with it; duplicates keep the first
// index.
func NewNamespaceTable(uris ...string) *NamespaceTable {
	list := make([]string, 0, len(uris)+1)
	list = append(list, OPCUANamespaceURI)
	for i, u := range uris {
		if i == 0 && u == OPCUANamespaceURI {
			continue
		}
		list = append(list, u)
	}
	t := &NamespaceTable{uris: list, index: make(map[string]uint16, len(list))}
	for i, u := range list {
		if i > 0xffff {
			break
		}
		if _, dup := t.index[u]; !dup {
			t.index[u] = uint16(i)
		}
	}
	return t
}

// Len returns the number of namespaces including namespace 0.
func (t *NamespaceTable) Len() int { return len(t.uris) }

// URI returns the URI at index i.
func (t *NamespaceTable) URI(i uint16) (string, bool) {
	if int(i) >= len(t.uris) {
		return "", false
	}
	return t.uris[i], true
}

// Index returns the namespace index of uri.
func (t *NamespaceTable) Index(uri string) (uint16, bool) {
	i, ok := t.index[uri]
	return i, ok
}

// URIs returns a copy of the table contents.
func (t *NamespaceTable) URIs() []string {
	out := make([]string, len(t.uris))
	copy(out, t.uris)
	return out
}

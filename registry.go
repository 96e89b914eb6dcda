package uatypes

import "sort"

// DecodeFunc reconstructs a structure from a binary body. d is bounded to
// the body bytes and must be consumed exactly.
type DecodeFunc func(d *Decoder) (Structure, error)

// JSONDecodeFunc reconstructs a structure from a JSON body object.
type JSONDecodeFunc func(ctx *Context, body map[string]any) (Structure, error)

// TypeLoader binds an encoding identity to the functions that decode it.
type TypeLoader struct {
	Name       string
	EncodingID ExpandedNodeID
	Decode     DecodeFunc
	DecodeJSON JSONDecodeFunc // optional
}

// TypeLoaderGroup is a sub-registry contributed by one feature: the base
// types, a loaded nodeset, user-defined structures.
type TypeLoaderGroup interface {
	TypeLoaders() []TypeLoader
}

// TypeLoaders is a ready-made TypeLoaderGroup.
type TypeLoaders []TypeLoader

func (l TypeLoaders) TypeLoaders() []TypeLoader { return l }

// Registry maps encoding identities to type loaders. It is built once by
// NewRegistry and read-only afterwards, so lookups need no locking.
type Registry struct {
	byKey map[string]TypeLoader
	names []string
}

// NewRegistry composes groups into a registry. Registering the same
// identity twice fails with CodeDuplicateType. Identities are compared in
// the form they were registered in; Check compares them under a namespace
// table.
func NewRegistry(groups ...TypeLoaderGroup) (*Registry, error) {
	r := &Registry{byKey: map[string]TypeLoader{}}
	for _, g := range groups {
		if g == nil {
			continue
		}
		for _, l := range g.TypeLoaders() {
			if err := r.add(l); err != nil {
				return nil, err
			}
		}
	}
	sort.Strings(r.names)
	return r, nil
}

// MustRegistry is NewRegistry that panics on error. Use it for registries
// built at program start.
func MustRegistry(groups ...TypeLoaderGroup) *Registry {
	r, err := NewRegistry(groups...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) add(l TypeLoader) error {
	switch {
	case l.Decode == nil:
		return newError(CodeInvalidValue, -1, "type loader %q has no decode function", l.Name)
	case l.EncodingID.IsNull():
		return newError(CodeInvalidValue, -1, "type loader %q has a null encoding id", l.Name)
	case l.EncodingID.ServerIndex != 0:
		return newError(CodeInvalidValue, -1, "type loader %q encoding id %s has a server index", l.Name, l.EncodingID)
	}
	k := l.EncodingID.key()
	if prev, ok := r.byKey[k]; ok {
		return newError(CodeDuplicateType, -1, "encoding id %s registered by %q and %q", l.EncodingID, prev.Name, l.Name)
	}
	r.byKey[k] = l
	r.names = append(r.names, l.Name)
	return nil
}

// Check reports CodeDuplicateType when two loaders name the same node once
// URIs are mapped through ns, for example ns=2;i=5 and nsu=<uri of 2>;i=5.
// Resolve would otherwise pick one of them silently.
func (r *Registry) Check(ns *NamespaceTable) error {
	keys := make([]string, 0, len(r.byKey))
	for k := range r.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	seen := make(map[string]TypeLoader, len(keys))
	for _, k := range keys {
		l := r.byKey[k]
		id := l.EncodingID
		if id.NamespaceURI != "" {
			if idx, ok := ns.Index(id.NamespaceURI); ok {
				id = ExpandedNodeID{NodeID: id.NodeID}
				id.NodeID.Namespace = idx
			}
		}
		ck := id.key()
		if prev, ok := seen[ck]; ok {
			return newError(CodeDuplicateType, -1, "%q and %q both register %s", prev.Name, l.Name, id)
		}
		seen[ck] = l
	}
	return nil
}

// Len returns the number of registered loaders.
func (r *Registry) Len() int { return len(r.byKey) }

// Names returns the loader names in sorted order.
func (r *Registry) Names() []string { return append([]string(nil), r.names...) }

// Resolve finds the loader for a wire NodeId. Loaders registered by
// namespace URI are matched through the context's namespace table. A miss
// is not an error.
func (r *Registry) Resolve(ctx *Context, id NodeID) (TypeLoader, bool) {
	return r.ResolveExpanded(ctx, NewExpandedNodeID(id))
}

// ResolveExpanded is Resolve for ids that may carry a namespace URI.
func (r *Registry) ResolveExpanded(ctx *Context, id ExpandedNodeID) (TypeLoader, bool) {
	if l, ok := r.byKey[id.key()]; ok {
		return l, true
	}
	if id.NamespaceURI != "" {
		idx, ok := ctx.namespaces.Index(id.NamespaceURI)
		if !ok {
			return TypeLoader{}, false
		}
		n := id.NodeID
		n.Namespace = idx
		l, ok := r.byKey[NewExpandedNodeID(n).key()]
		return l, ok
	}
	if id.NodeID.Namespace == 0 {
		return TypeLoader{}, false
	}
	uri, ok := ctx.namespaces.URI(id.NodeID.Namespace)
	if !ok {
		return TypeLoader{}, false
	}
	n := id.NodeID
	n.Namespace = 0
	l, ok := r.byKey[ExpandedNodeID{NodeID: n, NamespaceURI: uri}.key()]
	return l, ok
}

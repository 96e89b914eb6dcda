package uatypes

import (
	"io"
	"log/slog"
	"sync"
)

// ContextOptions configures NewContext. Zero values select defaults.
type ContextOptions struct {
	// Limits bounds decoding. The zero value selects DefaultDecodingLimits.
	Limits *DecodingLimits
	// Namespaces lists namespace URIs starting at index 1 (index 0 is
	// always the OPC-UA namespace).
	Namespaces []string
	// Registry resolves extension object payloads. Nil selects a registry
	// holding StandardTypes only.
	Registry *Registry
	// Logger receives debug output. Nil discards.
	Logger *slog.Logger
}

// Context is the shared, read-only encoding context passed to every
// encode and decode call. It is safe for concurrent use by any number of
// goroutines; nothing in it changes after NewContext returns.
type Context struct {
	limits     DecodingLimits
	effective  DecodingLimits
	namespaces *NamespaceTable
	registry   *Registry
	logger     *slog.Logger
}

// NewContext builds a Context from opt.
func NewContext(opt ContextOptions) *Context {
	limits := DefaultDecodingLimits()
	if opt.Limits != nil {
		limits = *opt.Limits
	}
	reg := opt.Registry
	if reg == nil {
		reg = MustRegistry(StandardTypes())
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Context{
		limits:     limits,
		effective:  limits.Effective(),
		namespaces: NewNamespaceTable(opt.Namespaces...),
		registry:   reg,
		logger:     logger,
	}
	if err := reg.Check(c.namespaces); err != nil {
		logger.Warn("type registry has aliased encodings", "error", err)
	}
	logger.Debug("encoding context ready",
		"namespaces", c.namespaces.Len(),
		"type_loaders", reg.Len(),
		"max_message_size", c.effective.MaxMessageSize,
		"max_array_length", c.effective.MaxArrayLength)
	return c
}

// DefaultContext returns a process-wide context with default limits, an
// empty namespace table, and the standard type registry.
var DefaultContext = sync.OnceValue(func() *Context {
	return NewContext(ContextOptions{})
})

// Limits returns the limits as configured.
func (c *Context) Limits() DecodingLimits { return c.limits }

// EffectiveLimits returns the limits with zero fields replaced by the hard
// ceilings; decoders enforce these.
func (c *Context) EffectiveLimits() DecodingLimits { return c.effective }

// Namespaces returns the namespace table.
func (c *Context) Namespaces() *NamespaceTable { return c.namespaces }

// Registry returns the type loader registry.
func (c *Context) Registry() *Registry { return c.registry }

// Logger returns the context logger.
func (c *Context) Logger() *slog.Logger { return c.logger }

// resolveExpanded converts an expanded node id into the wire NodeID using
// the namespace table.
func (c *Context) resolveExpanded(id ExpandedNodeID) (NodeID, error) {
	if id.NamespaceURI == "" {
		return id.NodeID, nil
	}
	idx, ok := c.namespaces.Index(id.NamespaceURI)
	if !ok {
		return NodeID{}, encodeError("namespace %q is not in the namespace table", id.NamespaceURI)
	}
	n := id.NodeID
	n.Namespace = idx
	return n, nil
}

// Package uatypes encodes and decodes the OPC-UA built-in types.
//
// It provides:
//
//   - Value types for all 25 built-in types (NodeID, Variant, DataValue, ...)
//   - A binary codec (Encoder/Decoder) that enforces DecodingLimits on every
//     length, element count and nesting level read from the wire
//   - ExtensionObject bodies decoded through a Registry of type loaders,
//     with unknown types carried verbatim
//   - The JSON mapping of the same values, read through a streaming
//     tokenizer with duplicate-key/depth/size enforcement
//   - Structures described at run time (StructureDefinition), as loaded
//     from NodeSet2 documents by the nodeset package
//
// Design policy:
//   - A Context is built once (limits, namespace table, registry, logger)
//     and shared read-only between goroutines.
//   - Every failure is an *Error carrying a Code; use errors.Is with the
//     Err* sentinels or AsError to inspect it.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	ctx, err := uatypes.NewContext(uatypes.ContextOptions{
//		Limits:     &limits,
//		Namespaces: []string{"urn:example:plant"},
//	})
//	wire, err := uatypes.Marshal(ctx, uatypes.MustVariant(int32(42)))
//	v, err := uatypes.UnmarshalVariant(ctx, wire)
//
//	doc, err := uatypes.MarshalJSON(ctx, v)
package uatypes

package uatypes

// Structure is a value that can travel inside an ExtensionObject. Besides
// its binary codec it exposes the stable encoding identity it is
// registered under. Structures are compared with reflect.DeepEqual and
// must be safe to share between goroutines once built.
type Structure interface {
	BinaryEncoder
	EncodingID() ExpandedNodeID
}

// JSONStructure is a Structure with a JSON body form. EncodeJSON returns
// the body object; values inside it come from EncodeJSONValue or are plain
// JSON scalars.
type JSONStructure interface {
	Structure
	EncodeJSON(ctx *Context) (map[string]any, error)
}

// countWriter counts bytes and discards them.
type countWriter int

func (c *countWriter) Write(p []byte) (int, error) {
	*c += countWriter(len(p))
	return len(p), nil
}

// EncodedLen returns the binary size of v by encoding it into a counter.
// Structures without a cheaper closed form use it for ByteLen. Encoding
// errors yield the bytes written up to the failure.
func EncodedLen(ctx *Context, v BinaryEncoder) int {
	var c countWriter
	_ = v.EncodeBinary(NewEncoder(&c, ctx))
	return int(c)
}

package uatypes

import (
	"bytes"
	"errors"
	"io"

	j "github.com/goccy/go-json"

	"github.com/reoring/uatypes/internal/engine"
)

// MarshalJSON encodes a built-in value (Variant, ExtensionObject,
// DataValue or any scalar listed in NewVariant) as a JSON document.
func MarshalJSON(ctx *Context, v any) ([]byte, error) {
	t, ok := typeOfValue(v)
	if !ok {
		return nil, encodeError("Go type %T has no JSON form", v)
	}
	if s, isString := v.(string); isString {
		v = NewString(s)
	}
	tree, err := EncodeJSONValue(ctx, t, v)
	if err != nil {
		return nil, err
	}
	out, err := j.Marshal(tree)
	if err != nil {
		return nil, &Error{Code: CodeEncodingFailed, Offset: -1, Message: "json marshal", Cause: err}
	}
	return out, nil
}

// jsonEnforceOptions derives tokenizer limits from the decoding limits.
// Nesting depth allows a few JSON levels per structural level (variant
// object, body array, extension object body).
func jsonEnforceOptions(lim DecodingLimits) engine.EnforceOptions {
	return engine.EnforceOptions{
		OnDuplicate: engine.DupError,
		MaxDepth:    3*lim.MaxRecursionDepth + 8,
		MaxBytes:    int64(lim.MaxMessageSize),
		// Key and value strings; byte strings are bounded after base64
		// decoding.
		MaxStringLength: max(lim.MaxStringLength, base64Len(lim.MaxByteStringLength)),
		MaxArrayLength:  lim.MaxArrayLength,
	}
}

func base64Len(n int) int {
	if n > (HardMaxLength/4)*3 {
		return HardMaxLength
	}
	return (n + 2) / 3 * 4
}

// DecodeJSON reads one JSON document from r and maps it to a value of
// built-in type t.
func DecodeJSON(ctx *Context, r io.Reader, t TypeID) (any, error) {
	tree, err := engine.Decode(r, jsonEnforceOptions(ctx.EffectiveLimits()))
	if err != nil {
		return nil, fromEngineError(err)
	}
	return DecodeJSONValue(ctx, t, tree)
}

func fromEngineError(err error) error {
	var ie engine.IssueError
	if !errors.As(err, &ie) {
		return &Error{Code: CodeInvalidValue, Offset: -1, Message: "json", Cause: err}
	}
	code := CodeInvalidValue
	if ie.Code == engine.CodeLimitExceeded {
		code = CodeLimitExceeded
	}
	return &Error{Code: code, Offset: -1, Path: ie.Path, Message: ie.Message}
}

func unmarshalJSON[T any](ctx *Context, data []byte, t TypeID) (T, error) {
	v, err := DecodeJSON(ctx, bytes.NewReader(data), t)
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// UnmarshalJSONVariant decodes a Variant from a JSON document.
func UnmarshalJSONVariant(ctx *Context, data []byte) (Variant, error) {
	return unmarshalJSON[Variant](ctx, data, TypeVariant)
}

// UnmarshalJSONExtensionObject decodes an ExtensionObject from a JSON
// document.
func UnmarshalJSONExtensionObject(ctx *Context, data []byte) (ExtensionObject, error) {
	return unmarshalJSON[ExtensionObject](ctx, data, TypeExtensionObject)
}

// UnmarshalJSONDataValue decodes a DataValue from a JSON document.
func UnmarshalJSONDataValue(ctx *Context, data []byte) (DataValue, error) {
	return unmarshalJSON[DataValue](ctx, data, TypeDataValue)
}

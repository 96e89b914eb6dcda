package uatypes_test

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/reoring/uatypes"
)

func TestJSON_VariantShape(t *testing.T) {
	ctx := uatypes.DefaultContext()
	cases := []struct {
		v    uatypes.Variant
		want string
	}{
		{uatypes.MustVariant(int32(123)), `{"Body":123,"Type":6}`},
		{uatypes.MustVariant(int64(-5)), `{"Body":"-5","Type":8}`},
		{uatypes.MustVariant("pump"), `{"Body":"pump","Type":12}`},
		{uatypes.MustVariant([]bool{true, false}), `{"Body":[true,false],"Type":1}`},
		{uatypes.MustVariant(math.Inf(1)), `{"Body":"Infinity","Type":11}`},
		{uatypes.Variant{}, `null`},
	}
	for _, tc := range cases {
		out, err := uatypes.MarshalJSON(ctx, tc.v)
		if err != nil {
			t.Fatalf("%s: %v", tc.v, err)
		}
		if string(out) != tc.want {
			t.Fatalf("%s: got %s want %s", tc.v, out, tc.want)
		}
	}
}

func TestJSON_VariantRoundTrip(t *testing.T) {
	ctx := uatypes.DefaultContext()
	nullArray, _ := uatypes.NewArrayVariant(uatypes.TypeString, nil)
	matrix, err := uatypes.NewMatrixVariant([]float64{1, 2, 3, 4}, []int32{2, 2})
	if err != nil {
		t.Fatal(err)
	}
	variants := []uatypes.Variant{
		uatypes.MustVariant(true),
		uatypes.MustVariant(int8(-1)),
		uatypes.MustVariant(uint64(math.MaxUint64)),
		uatypes.MustVariant(float32(0.25)),
		uatypes.MustVariant(uatypes.NullString),
		uatypes.MustVariant(""),
		uatypes.MustVariant(uatypes.DateTime(133000000000000001)),
		uatypes.MustVariant(uatypes.MustParseGuid("72962b91-fa75-4ae6-8d28-b404dc7daf63")),
		uatypes.MustVariant(uatypes.ByteString{0, 1, 2}),
		uatypes.MustVariant(uatypes.NewXmlElement("<a/>")),
		uatypes.MustVariant(uatypes.NewStringNodeID(2, "Pump")),
		uatypes.MustVariant(uatypes.NewOpaqueNodeID(5, nil)),
		uatypes.MustVariant([]uatypes.NodeID{uatypes.NewOpaqueNodeID(5, []byte{}), uatypes.NewOpaqueNodeID(1, []byte{9})}),
		uatypes.MustVariant(uatypes.NewNumericExpandedNodeID("urn:x", 7)),
		uatypes.MustVariant(uatypes.StatusBadNodeIDUnknown),
		uatypes.MustVariant(uatypes.NewQualifiedName(3, "Flow")),
		uatypes.MustVariant(uatypes.LocalizedText{Locale: uatypes.NewString("de"), Text: uatypes.NewString("Pumpe")}),
		uatypes.MustVariant(uatypes.DataValue{Value: uatypes.MustVariant(int16(4)), Status: uatypes.StatusUncertain, SourceTimestamp: 133000000000000000}),
		uatypes.MustVariant([]string{"a", "b"}),
		uatypes.MustVariant([]uatypes.Variant{uatypes.MustVariant(int32(1)), uatypes.MustVariant("x")}),
		uatypes.MustVariant([]int32{}),
		nullArray,
		matrix,
	}
	for _, v := range variants {
		out, err := uatypes.MarshalJSON(ctx, v)
		if err != nil {
			t.Fatalf("%s: %v", v, err)
		}
		got, err := uatypes.UnmarshalJSONVariant(ctx, out)
		if err != nil {
			t.Fatalf("%s (%s): %v", v, out, err)
		}
		if !got.Equal(v) {
			t.Fatalf("round trip %s:\n got  %s\n want %s", out, got, v)
		}
	}
}

func TestJSON_NaN(t *testing.T) {
	ctx := uatypes.DefaultContext()
	v, err := uatypes.UnmarshalJSONVariant(ctx, []byte(`{"Type":11,"Body":"NaN"}`))
	if err != nil {
		t.Fatal(err)
	}
	if f, ok := v.Value().(float64); !ok || !math.IsNaN(f) {
		t.Fatalf("got %s", v)
	}
}

func TestJSON_DuplicateKeysRejected(t *testing.T) {
	_, err := uatypes.UnmarshalJSONVariant(uatypes.DefaultContext(), []byte(`{"Type":6,"Body":1,"Body":2}`))
	if !errors.Is(err, uatypes.ErrInvalidValue) {
		t.Fatalf("expected InvalidValue, got %v", err)
	}
	e, _ := uatypes.AsError(err)
	if e == nil || e.Path != "/Body" {
		t.Fatalf("path = %+v", e)
	}
}

func TestJSON_Limits(t *testing.T) {
	ctx := uatypes.NewContext(uatypes.ContextOptions{Limits: &uatypes.DecodingLimits{MaxArrayLength: 2, MaxStringLength: 8}})
	if _, err := uatypes.UnmarshalJSONVariant(ctx, []byte(`{"Type":6,"Body":[1,2,3]}`)); !errors.Is(err, uatypes.ErrLimitExceeded) {
		t.Fatalf("array: expected LimitExceeded, got %v", err)
	}
	if _, err := uatypes.UnmarshalJSONVariant(ctx, []byte(`{"Type":12,"Body":"0123456789"}`)); !errors.Is(err, uatypes.ErrLimitExceeded) {
		t.Fatalf("string: expected LimitExceeded, got %v", err)
	}
	deep := uatypes.NewContext(uatypes.ContextOptions{Limits: &uatypes.DecodingLimits{MaxRecursionDepth: 2}})
	doc := `{"Type":24,"Body":[{"Type":24,"Body":[{"Type":24,"Body":[{"Type":6,"Body":1}]}]}]}`
	if _, err := uatypes.UnmarshalJSONVariant(deep, []byte(doc)); !errors.Is(err, uatypes.ErrLimitExceeded) {
		t.Fatalf("depth: expected LimitExceeded, got %v", err)
	}
}

type repeatByte byte

func (b repeatByte) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(b)
	}
	return len(p), nil
}

type countReader struct {
	r io.Reader
	n int64
}

func (c *countReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func TestDecodeJSON_MessageSizeBoundsReads(t *testing.T) {
	ctx := uatypes.NewContext(uatypes.ContextOptions{Limits: &uatypes.DecodingLimits{MaxMessageSize: 1000}})
	in := &countReader{r: io.MultiReader(
		strings.NewReader(`{"Type":12,"Body":"`),
		io.LimitReader(repeatByte('a'), 20<<20),
		strings.NewReader(`"}`),
	)}
	_, err := uatypes.DecodeJSON(ctx, in, uatypes.TypeVariant)
	if !errors.Is(err, uatypes.ErrLimitExceeded) {
		t.Fatalf("expected LimitExceeded, got %v", err)
	}
	if in.n > 1001 {
		t.Fatalf("read %d bytes of an oversized document", in.n)
	}

	small := `{"Type":6,"Body":1}`
	exact := uatypes.NewContext(uatypes.ContextOptions{Limits: &uatypes.DecodingLimits{MaxMessageSize: len(small)}})
	if _, err := uatypes.DecodeJSON(exact, strings.NewReader(small), uatypes.TypeVariant); err != nil {
		t.Fatalf("document at the size limit rejected: %v", err)
	}
}

func TestJSON_InvalidDocuments(t *testing.T) {
	ctx := uatypes.DefaultContext()
	for name, doc := range map[string]string{
		"bad type":         `{"Type":99,"Body":1}`,
		"scalar variant":   `{"Type":24,"Body":{"Type":6,"Body":1}}`,
		"dims mismatch":    `{"Type":6,"Body":[1,2,3],"Dimensions":[2,2]}`,
		"out of range":     `{"Type":2,"Body":300}`,
		"wrong body kind":  `{"Type":12,"Body":5}`,
		"trailing garbage": `{"Type":6,"Body":1} x`,
		"not json":         `{`,
	} {
		if _, err := uatypes.UnmarshalJSONVariant(ctx, []byte(doc)); err == nil {
			t.Fatalf("%s: expected an error", name)
		} else if _, ok := uatypes.AsError(err); !ok {
			t.Fatalf("%s: error %v is not a *uatypes.Error", name, err)
		}
	}
}

func TestJSON_ExtensionObject(t *testing.T) {
	ctx := pumpContext(t, pumpLoader)
	x := uatypes.NewExtensionObject(&pumpStatus{Speed: 900, Name: uatypes.NewString("P-7")})
	out, err := uatypes.MarshalJSON(ctx, x)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"TypeId":"nsu=urn:test:pumps;i=5001"`) {
		t.Fatalf("unexpected document %s", out)
	}
	got, err := uatypes.UnmarshalJSONExtensionObject(ctx, out)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := got.Value.(*pumpStatus)
	if !ok || p.Speed != 900 || p.Name.Value != "P-7" {
		t.Fatalf("decoded %#v", got.Value)
	}

	// An object body needs a JSON loader.
	without := pumpContext(t)
	if _, err := uatypes.UnmarshalJSONExtensionObject(without, out); !errors.Is(err, uatypes.ErrUnresolvedType) {
		t.Fatalf("expected UnresolvedType, got %v", err)
	}
}

func TestJSON_ExtensionObjectBinaryBody(t *testing.T) {
	with := pumpContext(t, pumpLoader)
	without := pumpContext(t)
	raw := uatypes.NewRawExtensionObject(uatypes.NewNumericExpandedNodeID(pumpNS, 5001), uatypes.BodyBinary, []byte{3, 0, 0, 0, 1, 0, 0, 0, 'z'})
	out, err := uatypes.MarshalJSON(without, raw)
	if err != nil {
		t.Fatal(err)
	}
	kept, err := uatypes.UnmarshalJSONExtensionObject(without, out)
	if err != nil {
		t.Fatal(err)
	}
	if kept.IsDecoded() || string(kept.Raw) != string(raw.Raw) {
		t.Fatalf("raw body not preserved: %+v", kept)
	}
	decoded, err := uatypes.UnmarshalJSONExtensionObject(with, out)
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := decoded.Value.(*pumpStatus); !ok || p.Speed != 3 || p.Name.Value != "z" {
		t.Fatalf("binary body not decoded: %#v", decoded.Value)
	}
}

func TestJSON_StandardStructure(t *testing.T) {
	ctx := uatypes.DefaultContext()
	x := uatypes.NewExtensionObject(&uatypes.Range{Low: -1, High: 100})
	out, err := uatypes.MarshalJSON(ctx, x)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"Body":{"High":100,"Low":-1},"TypeId":"i=886"}` {
		t.Fatalf("got %s", out)
	}
	got, err := uatypes.UnmarshalJSONExtensionObject(ctx, out)
	if err != nil {
		t.Fatal(err)
	}
	if r, ok := got.Value.(*uatypes.Range); !ok || *r != (uatypes.Range{Low: -1, High: 100}) {
		t.Fatalf("decoded %#v", got.Value)
	}
}

func TestJSON_DataValue(t *testing.T) {
	ctx := uatypes.DefaultContext()
	dv := uatypes.DataValue{Value: uatypes.MustVariant(2.5), ServerTimestamp: 133000000000000000, ServerPicoseconds: 10}
	out, err := uatypes.MarshalJSON(ctx, dv)
	if err != nil {
		t.Fatal(err)
	}
	got, err := uatypes.UnmarshalJSONDataValue(ctx, out)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Value.Equal(dv.Value) || got.ServerTimestamp != dv.ServerTimestamp || got.ServerPicoseconds != 10 {
		t.Fatalf("decoded %+v from %s", got, out)
	}
}

func TestJSON_DateTimeClamped(t *testing.T) {
	ctx := uatypes.DefaultContext()
	out, err := uatypes.MarshalJSON(ctx, uatypes.MustVariant(uatypes.DateTime(-5)))
	if err != nil {
		t.Fatal(err)
	}
	got, err := uatypes.UnmarshalJSONVariant(ctx, out)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(uatypes.MustVariant(uatypes.DateTime(0))) {
		t.Fatalf("%s decoded as %s", out, got)
	}
}

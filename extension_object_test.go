package uatypes_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/reoring/uatypes"
)

const pumpNS = "urn:test:pumps"

// pumpStatus is a hand-written structure registered under nsu=urn:test:pumps;i=5001.
type pumpStatus struct {
	Speed int32
	Name  uatypes.String
}

func (*pumpStatus) EncodingID() uatypes.ExpandedNodeID {
	return uatypes.NewNumericExpandedNodeID(pumpNS, 5001)
}

func (p *pumpStatus) ByteLen(ctx *uatypes.Context) int { return uatypes.EncodedLen(ctx, p) }

func (p *pumpStatus) EncodeBinary(e *uatypes.Encoder) error {
	if err := e.WriteInt32(p.Speed); err != nil {
		return err
	}
	return e.WriteString(p.Name)
}

func (p *pumpStatus) EncodeJSON(ctx *uatypes.Context) (map[string]any, error) {
	return map[string]any{"Speed": int64(p.Speed), "Name": p.Name.Value}, nil
}

func decodePumpStatus(d *uatypes.Decoder) (uatypes.Structure, error) {
	p := &pumpStatus{}
	var err error
	if p.Speed, err = d.ReadInt32(); err != nil {
		return nil, err
	}
	if p.Name, err = d.ReadString(); err != nil {
		return nil, err
	}
	return p, nil
}

func decodePumpStatusJSON(ctx *uatypes.Context, body map[string]any) (uatypes.Structure, error) {
	speed, err := uatypes.DecodeJSONValue(ctx, uatypes.TypeInt32, body["Speed"])
	if err != nil {
		return nil, err
	}
	name, err := uatypes.DecodeJSONValue(ctx, uatypes.TypeString, body["Name"])
	if err != nil {
		return nil, err
	}
	return &pumpStatus{Speed: speed.(int32), Name: name.(uatypes.String)}, nil
}

var pumpLoader = uatypes.TypeLoader{
	Name:       "PumpStatus",
	EncodingID: uatypes.NewNumericExpandedNodeID(pumpNS, 5001),
	Decode:     decodePumpStatus,
	DecodeJSON: decodePumpStatusJSON,
}

func pumpContext(t *testing.T, loaders ...uatypes.TypeLoader) *uatypes.Context {
	t.Helper()
	reg, err := uatypes.NewRegistry(uatypes.StandardTypes(), uatypes.TypeLoaders(loaders))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return uatypes.NewContext(uatypes.ContextOptions{Namespaces: []string{pumpNS}, Registry: reg})
}

func TestExtensionObject_RegisteredAndUnknown(t *testing.T) {
	withType := pumpContext(t, pumpLoader)
	without := pumpContext(t)

	orig := &pumpStatus{Speed: 1450, Name: uatypes.NewString("P-101")}
	x := uatypes.NewExtensionObject(orig)
	wire, err := uatypes.Marshal(withType, x)
	if err != nil {
		t.Fatal(err)
	}
	if x.ByteLen(withType) != len(wire) {
		t.Fatalf("ByteLen %d, encoded %d", x.ByteLen(withType), len(wire))
	}

	decoded, err := uatypes.UnmarshalExtensionObject(withType, wire)
	if err != nil {
		t.Fatal(err)
	}
	if !decoded.IsDecoded() {
		t.Fatalf("expected a decoded body, got raw % x", decoded.Raw)
	}
	got, ok := decoded.Value.(*pumpStatus)
	if !ok || *got != *orig {
		t.Fatalf("decoded %#v", decoded.Value)
	}
	if !decoded.TypeID.Equal(orig.EncodingID()) {
		t.Fatalf("type id = %s", decoded.TypeID)
	}

	raw, err := uatypes.UnmarshalExtensionObject(without, wire)
	if err != nil {
		t.Fatal(err)
	}
	if raw.IsDecoded() || raw.Encoding != uatypes.BodyBinary {
		t.Fatalf("expected a raw binary body, got %+v", raw)
	}
	body, err := uatypes.Marshal(withType, orig)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(raw.Raw, body) {
		t.Fatalf("raw body % x, want % x", raw.Raw, body)
	}
	again, err := uatypes.Marshal(without, raw)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(again, wire) {
		t.Fatalf("raw re-encode differs:\n got  % x\n want % x", again, wire)
	}
}

func TestExtensionObject_LoaderErrorPropagates(t *testing.T) {
	failing := pumpLoader
	failing.Decode = func(d *uatypes.Decoder) (uatypes.Structure, error) {
		return nil, errors.New("bad pump")
	}
	ctx := pumpContext(t, failing)
	wire, err := uatypes.Marshal(ctx, uatypes.NewExtensionObject(&pumpStatus{Speed: 1, Name: uatypes.NewString("x")}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uatypes.UnmarshalExtensionObject(ctx, wire); !errors.Is(err, uatypes.ErrUnresolvedType) {
		t.Fatalf("expected UnresolvedType, got %v", err)
	}

	codeErr := pumpLoader
	codeErr.Decode = func(d *uatypes.Decoder) (uatypes.Structure, error) {
		return nil, &uatypes.Error{Code: uatypes.CodeInvalidValue, Message: "speed out of range"}
	}
	ctx = pumpContext(t, codeErr)
	if _, err := uatypes.UnmarshalExtensionObject(ctx, wire); !errors.Is(err, uatypes.ErrInvalidValue) {
		t.Fatalf("expected the loader's InvalidValue, got %v", err)
	}
}

func TestExtensionObject_PartialBodyRejected(t *testing.T) {
	partial := pumpLoader
	partial.Decode = func(d *uatypes.Decoder) (uatypes.Structure, error) {
		speed, err := d.ReadInt32()
		if err != nil {
			return nil, err
		}
		return &pumpStatus{Speed: speed}, nil
	}
	ctx := pumpContext(t, partial)
	wire, err := uatypes.Marshal(ctx, uatypes.NewExtensionObject(&pumpStatus{Speed: 1, Name: uatypes.NewString("abc")}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uatypes.UnmarshalExtensionObject(ctx, wire); !errors.Is(err, uatypes.ErrUnresolvedType) {
		t.Fatalf("expected UnresolvedType, got %v", err)
	}
}

func TestExtensionObject_LoaderCannotReadPastBody(t *testing.T) {
	greedy := pumpLoader
	greedy.Decode = func(d *uatypes.Decoder) (uatypes.Structure, error) {
		if _, err := d.ReadInt64(); err != nil {
			return nil, err
		}
		return &pumpStatus{}, nil
	}
	ctx := pumpContext(t, greedy)
	// Four byte body followed by bytes the loader must not see.
	x := uatypes.NewRawExtensionObject(uatypes.NewNumericExpandedNodeID(pumpNS, 5001), uatypes.BodyBinary, []byte{1, 2, 3, 4})
	wire, err := uatypes.Marshal(ctx, uatypes.MustVariant([]uatypes.ExtensionObject{x, x}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uatypes.UnmarshalVariant(ctx, wire); !errors.Is(err, uatypes.ErrLimitExceeded) {
		t.Fatalf("expected the body bound to stop the loader, got %v", err)
	}
}

func TestExtensionObject_XMLAndEmptyBodies(t *testing.T) {
	ctx := pumpContext(t, pumpLoader)
	id := uatypes.NewNumericExpandedNodeID(pumpNS, 5001)
	for _, x := range []uatypes.ExtensionObject{
		uatypes.NewRawExtensionObject(id, uatypes.BodyXML, []byte("<PumpStatus><Speed>3</Speed></PumpStatus>")),
		uatypes.NewRawExtensionObject(id, uatypes.BodyNone, nil),
		{},
	} {
		wire, err := uatypes.Marshal(ctx, x)
		if err != nil {
			t.Fatal(err)
		}
		got, err := uatypes.UnmarshalExtensionObject(ctx, wire)
		if err != nil {
			t.Fatal(err)
		}
		if got.IsDecoded() || got.Encoding != x.Encoding || !bytes.Equal(got.Raw, x.Raw) {
			t.Fatalf("got %+v want %+v", got, x)
		}
	}
}

func TestExtensionObject_InvalidEncodingTag(t *testing.T) {
	if _, err := uatypes.UnmarshalExtensionObject(uatypes.DefaultContext(), []byte{0x00, 0x01, 0x03}); !errors.Is(err, uatypes.ErrInvalidDiscriminant) {
		t.Fatalf("expected InvalidDiscriminant, got %v", err)
	}
}

func TestExtensionObject_BodyBoundedByMessageSize(t *testing.T) {
	ctx := uatypes.NewContext(uatypes.ContextOptions{Limits: &uatypes.DecodingLimits{MaxMessageSize: 32}})
	wire := []byte{0x00, 0x01, 0x01, 0x00, 0x10, 0x00, 0x00}
	if _, err := uatypes.UnmarshalExtensionObject(ctx, wire); !errors.Is(err, uatypes.ErrLimitExceeded) {
		t.Fatalf("expected LimitExceeded, got %v", err)
	}
}

func TestExtensionObject_UnmappedNamespaceURI(t *testing.T) {
	x := uatypes.NewRawExtensionObject(uatypes.NewNumericExpandedNodeID("urn:unknown", 1), uatypes.BodyBinary, []byte{1})
	if _, err := uatypes.Marshal(uatypes.DefaultContext(), x); !errors.Is(err, uatypes.ErrEncodingFailed) {
		t.Fatalf("expected EncodingFailed, got %v", err)
	}
}

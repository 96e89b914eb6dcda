package uatypes_test

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/reoring/uatypes"
)

const dynNS = "urn:test:dyn"

func dynDefinitions() (reading, station, limits, setpoint *uatypes.StructureDefinition) {
	reading = &uatypes.StructureDefinition{
		Name:       "Reading",
		EncodingID: uatypes.NewNumericExpandedNodeID(dynNS, 101),
		Fields: []uatypes.StructureField{
			{Name: "Sensor", Type: uatypes.TypeString, ValueRank: -1},
			{Name: "Values", Type: uatypes.TypeDouble, ValueRank: 1},
		},
	}
	station = &uatypes.StructureDefinition{
		Name:       "Station",
		EncodingID: uatypes.NewNumericExpandedNodeID(dynNS, 102),
		Fields: []uatypes.StructureField{
			{Name: "ID", Type: uatypes.TypeNodeID, ValueRank: -1},
			{Name: "Latest", Structure: reading, ValueRank: -1},
			{Name: "History", Structure: reading, ValueRank: 1},
		},
	}
	limits = &uatypes.StructureDefinition{
		Name:       "Limits",
		EncodingID: uatypes.NewNumericExpandedNodeID(dynNS, 103),
		Kind:       uatypes.StructureWithOptionalFields,
		Fields: []uatypes.StructureField{
			{Name: "Min", Type: uatypes.TypeDouble, ValueRank: -1, IsOptional: true},
			{Name: "Max", Type: uatypes.TypeDouble, ValueRank: -1, IsOptional: true},
			{Name: "Unit", Type: uatypes.TypeString, ValueRank: -1},
		},
	}
	setpoint = &uatypes.StructureDefinition{
		Name:       "Setpoint",
		EncodingID: uatypes.NewNumericExpandedNodeID(dynNS, 104),
		Kind:       uatypes.StructureUnion,
		Fields: []uatypes.StructureField{
			{Name: "Raw", Type: uatypes.TypeInt32, ValueRank: -1},
			{Name: "Scaled", Type: uatypes.TypeDouble, ValueRank: -1},
		},
	}
	return reading, station, limits, setpoint
}

func dynContext(t *testing.T) *uatypes.Context {
	t.Helper()
	reading, station, limits, setpoint := dynDefinitions()
	group, err := uatypes.DynamicTypes(reading, station, limits, setpoint)
	if err != nil {
		t.Fatalf("DynamicTypes: %v", err)
	}
	reg, err := uatypes.NewRegistry(uatypes.StandardTypes(), group)
	if err != nil {
		t.Fatal(err)
	}
	return uatypes.NewContext(uatypes.ContextOptions{Namespaces: []string{dynNS}, Registry: reg})
}

func mustSet(t *testing.T, s *uatypes.DynamicStructure, name string, v any) {
	t.Helper()
	if err := s.Set(name, v); err != nil {
		t.Fatalf("Set(%s): %v", name, err)
	}
}

func decodeDynamic(t *testing.T, ctx *uatypes.Context, s *uatypes.DynamicStructure) *uatypes.DynamicStructure {
	t.Helper()
	wire, err := uatypes.Marshal(ctx, uatypes.NewExtensionObject(s))
	if err != nil {
		t.Fatalf("encode %s: %v", s.Definition.Name, err)
	}
	x, err := uatypes.UnmarshalExtensionObject(ctx, wire)
	if err != nil {
		t.Fatalf("decode %s: %v", s.Definition.Name, err)
	}
	got, ok := x.Value.(*uatypes.DynamicStructure)
	if !ok {
		t.Fatalf("decoded body is %T", x.Value)
	}
	return got
}

func TestDynamicStructure_NestedRoundTrip(t *testing.T) {
	ctx := dynContext(t)
	reading, station, _, _ := dynDefinitions()
	r1 := uatypes.NewDynamicStructure(reading)
	mustSet(t, r1, "Sensor", uatypes.NewString("TT-01"))
	mustSet(t, r1, "Values", []float64{20.5, 21})
	r2 := uatypes.NewDynamicStructure(reading)
	mustSet(t, r2, "Values", []float64{})

	s := uatypes.NewDynamicStructure(station)
	mustSet(t, s, "ID", uatypes.NewStringNodeID(1, "ST-9"))
	mustSet(t, s, "Latest", r1)
	mustSet(t, s, "History", []*uatypes.DynamicStructure{r1, r2})

	got := decodeDynamic(t, ctx, s)
	if !reflect.DeepEqual(got.Values, s.Values) {
		t.Fatalf("round trip:\n got  %#v\n want %#v", got.Values, s.Values)
	}
	if got.Definition.Name != "Station" {
		t.Fatalf("definition = %s", got.Definition.Name)
	}
	latest, _ := got.Field("Latest")
	sensor, _ := latest.(*uatypes.DynamicStructure).Field("Sensor")
	if sensor != uatypes.NewString("TT-01") {
		t.Fatalf("Latest.Sensor = %v", sensor)
	}
}

func TestDynamicStructure_OptionalFields(t *testing.T) {
	ctx := dynContext(t)
	_, _, limits, _ := dynDefinitions()
	s := uatypes.NewDynamicStructure(limits)
	mustSet(t, s, "Max", 80.0)
	mustSet(t, s, "Unit", uatypes.NewString("bar"))

	body, err := uatypes.Marshal(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(body[:4], []byte{0x02, 0, 0, 0}) {
		t.Fatalf("mask = % x", body[:4])
	}
	if len(body) != 4+8+4+3 {
		t.Fatalf("body is %d bytes", len(body))
	}
	got := decodeDynamic(t, ctx, s)
	if !reflect.DeepEqual(got.Values, s.Values) {
		t.Fatalf("round trip:\n got  %#v\n want %#v", got.Values, s.Values)
	}
	if v, _ := got.Field("Min"); v != nil {
		t.Fatalf("absent field decoded as %v", v)
	}

	// Bit 2 names an optional field that does not exist.
	bad := append([]byte{0x06, 0, 0, 0}, body[4:]...)
	x := uatypes.NewRawExtensionObject(limits.EncodingID, uatypes.BodyBinary, bad)
	wire, err := uatypes.Marshal(ctx, x)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uatypes.UnmarshalExtensionObject(ctx, wire); !errors.Is(err, uatypes.ErrInvalidDiscriminant) {
		t.Fatalf("expected InvalidDiscriminant, got %v", err)
	}
}

func TestDynamicStructure_Union(t *testing.T) {
	ctx := dynContext(t)
	_, _, _, setpoint := dynDefinitions()
	s := uatypes.NewDynamicStructure(setpoint)
	mustSet(t, s, "Raw", int32(7))
	mustSet(t, s, "Scaled", 2.5)
	if s.Switch != 2 {
		t.Fatalf("switch = %d", s.Switch)
	}
	if v, _ := s.Field("Raw"); v != nil {
		t.Fatalf("selecting Scaled must clear Raw, got %v", v)
	}
	body, err := uatypes.Marshal(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(body) != 12 || body[0] != 2 {
		t.Fatalf("body % x", body)
	}
	got := decodeDynamic(t, ctx, s)
	if got.Switch != 2 || !reflect.DeepEqual(got.Values, s.Values) {
		t.Fatalf("decoded switch %d values %#v", got.Switch, got.Values)
	}

	empty := uatypes.NewDynamicStructure(setpoint)
	if got := decodeDynamic(t, ctx, empty); got.Switch != 0 {
		t.Fatalf("empty union decoded with switch %d", got.Switch)
	}

	x := uatypes.NewRawExtensionObject(setpoint.EncodingID, uatypes.BodyBinary, []byte{3, 0, 0, 0})
	wire, err := uatypes.Marshal(ctx, x)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uatypes.UnmarshalExtensionObject(ctx, wire); !errors.Is(err, uatypes.ErrInvalidDiscriminant) {
		t.Fatalf("expected InvalidDiscriminant, got %v", err)
	}
}

func TestDynamicStructure_JSON(t *testing.T) {
	ctx := dynContext(t)
	reading, station, limits, setpoint := dynDefinitions()
	r := uatypes.NewDynamicStructure(reading)
	mustSet(t, r, "Sensor", uatypes.NewString("PT-3"))
	mustSet(t, r, "Values", []float64{1, 2})
	st := uatypes.NewDynamicStructure(station)
	mustSet(t, st, "ID", uatypes.NewNumericNodeID(2, 40))
	mustSet(t, st, "Latest", r)
	mustSet(t, st, "History", []*uatypes.DynamicStructure{r})
	lim := uatypes.NewDynamicStructure(limits)
	mustSet(t, lim, "Min", -1.0)
	sp := uatypes.NewDynamicStructure(setpoint)
	mustSet(t, sp, "Raw", int32(12))

	for _, s := range []*uatypes.DynamicStructure{r, st, lim, sp} {
		out, err := uatypes.MarshalJSON(ctx, uatypes.NewExtensionObject(s))
		if err != nil {
			t.Fatalf("%s: %v", s.Definition.Name, err)
		}
		x, err := uatypes.UnmarshalJSONExtensionObject(ctx, out)
		if err != nil {
			t.Fatalf("%s (%s): %v", s.Definition.Name, out, err)
		}
		got, ok := x.Value.(*uatypes.DynamicStructure)
		if !ok {
			t.Fatalf("%s: decoded %T", s.Definition.Name, x.Value)
		}
		if got.Switch != s.Switch || !reflect.DeepEqual(got.Values, s.Values) {
			t.Fatalf("%s via %s:\n got  %#v\n want %#v", s.Definition.Name, out, got.Values, s.Values)
		}
	}

	body, err := sp.EncodeJSON(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if body["SwitchField"] != int64(1) || body["Value"] != int64(12) {
		t.Fatalf("union body %v", body)
	}
}

func TestStructureDefinition_Validate(t *testing.T) {
	self := &uatypes.StructureDefinition{Name: "Loop"}
	self.Fields = []uatypes.StructureField{{Name: "Next", Structure: self, ValueRank: -1}}

	cases := []struct {
		name string
		def  *uatypes.StructureDefinition
		want error
	}{
		{"missing field name", &uatypes.StructureDefinition{Name: "A", Fields: []uatypes.StructureField{
			{Type: uatypes.TypeInt32, ValueRank: -1},
		}}, uatypes.ErrInvalidValue},
		{"duplicate field", &uatypes.StructureDefinition{Name: "A", Fields: []uatypes.StructureField{
			{Name: "X", Type: uatypes.TypeInt32, ValueRank: -1},
			{Name: "X", Type: uatypes.TypeInt32, ValueRank: -1},
		}}, uatypes.ErrInvalidValue},
		{"no type", &uatypes.StructureDefinition{Name: "A", Fields: []uatypes.StructureField{
			{Name: "X", ValueRank: -1},
		}}, uatypes.ErrInvalidValue},
		{"optional in plain", &uatypes.StructureDefinition{Name: "A", Fields: []uatypes.StructureField{
			{Name: "X", Type: uatypes.TypeInt32, ValueRank: -1, IsOptional: true},
		}}, uatypes.ErrInvalidValue},
		{"matrix field", &uatypes.StructureDefinition{Name: "A", Fields: []uatypes.StructureField{
			{Name: "X", Type: uatypes.TypeInt32, ValueRank: 2},
		}}, uatypes.ErrUnsupportedConstruct},
		{"self reference", self, uatypes.ErrUnsupportedConstruct},
	}
	for _, tc := range cases {
		if err := tc.def.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, err, tc.want)
		}
	}

	many := &uatypes.StructureDefinition{Name: "Wide", Kind: uatypes.StructureWithOptionalFields}
	for i := range 33 {
		many.Fields = append(many.Fields, uatypes.StructureField{
			Name: "F" + string(rune('A'+i%26)) + string(rune('a'+i/26)), Type: uatypes.TypeBoolean, ValueRank: -1, IsOptional: true,
		})
	}
	if err := many.Validate(); !errors.Is(err, uatypes.ErrUnsupportedConstruct) {
		t.Fatalf("33 optional fields: got %v", err)
	}
	if _, err := uatypes.DynamicTypes(self); !errors.Is(err, uatypes.ErrUnsupportedConstruct) {
		t.Fatalf("DynamicTypes accepted an invalid definition: %v", err)
	}
	reading, _, _, _ := dynDefinitions()
	if err := reading.Validate(); err != nil {
		t.Fatalf("valid definition rejected: %v", err)
	}
}

func TestDynamicStructure_SetUnknownField(t *testing.T) {
	reading, _, _, _ := dynDefinitions()
	s := uatypes.NewDynamicStructure(reading)
	if err := s.Set("Nope", 1); !errors.Is(err, uatypes.ErrInvalidValue) {
		t.Fatalf("expected InvalidValue, got %v", err)
	}
	if _, ok := s.Field("Nope"); ok {
		t.Fatalf("unknown field reported present")
	}
}

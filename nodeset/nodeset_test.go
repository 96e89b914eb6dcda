package nodeset_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/blake3"

	"github.com/reoring/uatypes"
	"github.com/reoring/uatypes/nodeset"
)

const plantXML = `<?xml version="1.0" encoding="utf-8"?>
<UANodeSet xmlns="http://opcfoundation.org/UA/2011/03/UANodeSet.xsd" xmlns:uax="http://opcfoundation.org/UA/2008/02/Types.xsd">
  <NamespaceUris>
    <Uri>urn:test:plant</Uri>
  </NamespaceUris>
  <Models>
    <Model ModelUri="urn:test:plant" Version="1.0.0" PublicationDate="2024-01-15T00:00:00Z">
      <RequiredModel ModelUri="http://opcfoundation.org/UA/" Version="1.05.02"/>
    </Model>
  </Models>
  <Aliases>
    <Alias Alias="Double">i=11</Alias>
    <Alias Alias="String">i=12</Alias>
  </Aliases>
  <UADataType NodeId="ns=1;i=3001" BrowseName="1:PumpMode">
    <DisplayName>PumpMode</DisplayName>
    <References>
      <Reference ReferenceType="HasSubtype" IsForward="false">i=29</Reference>
    </References>
    <Definition Name="1:PumpMode">
      <Field Name="Off" Value="0"/>
      <Field Name="Auto" Value="1"/>
    </Definition>
  </UADataType>
  <UADataType NodeId="ns=1;i=3002" BrowseName="1:PumpSettings">
    <DisplayName>PumpSettings</DisplayName>
    <References>
      <Reference ReferenceType="HasSubtype" IsForward="false">i=22</Reference>
      <Reference ReferenceType="HasEncoding">ns=1;i=5002</Reference>
    </References>
    <Definition Name="1:PumpSettings">
      <Field Name="Mode" DataType="ns=1;i=3001"/>
      <Field Name="Speed" DataType="Double"/>
      <Field Name="Tags" DataType="String" ValueRank="1"/>
    </Definition>
  </UADataType>
  <UAObject NodeId="ns=1;i=5002" BrowseName="Default Binary">
    <References>
      <Reference ReferenceType="HasEncoding" IsForward="false">ns=1;i=3002</Reference>
    </References>
  </UAObject>
  <UAVariable NodeId="ns=1;i=6001" BrowseName="1:MaxSpeed" DataType="Double">
    <Value><uax:Double>1450.5</uax:Double></Value>
  </UAVariable>
  <UAVariable NodeId="ns=1;i=6002" BrowseName="1:Names" DataType="String" ValueRank="1">
    <Value>
      <uax:ListOfString>
        <uax:String>inlet</uax:String>
        <uax:String>outlet</uax:String>
      </uax:ListOfString>
    </Value>
  </UAVariable>
</UANodeSet>
`

const methodXML = `<UANodeSet>
  <NamespaceUris><Uri>urn:test:plant</Uri></NamespaceUris>
  <UAMethod NodeId="ns=1;i=7001" BrowseName="1:Start"/>
  <UAVariable NodeId="ns=1;i=6003" BrowseName="1:Blob" DataType="i=24">
    <Value><uax:Variant xmlns:uax="http://opcfoundation.org/UA/2008/02/Types.xsd"/></Value>
  </UAVariable>
</UANodeSet>`

func plantContext() *uatypes.Context {
	return uatypes.NewContext(uatypes.ContextOptions{Namespaces: []string{"urn:other", "urn:test:plant"}})
}

func TestLoad_PlantDocument(t *testing.T) {
	set, err := nodeset.Load(strings.NewReader(plantXML), nodeset.LoadOptions{Context: plantContext()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(set.NamespaceURIs, []string{"urn:test:plant"}) {
		t.Fatalf("NamespaceURIs = %v", set.NamespaceURIs)
	}
	if len(set.Models) != 1 || set.Models[0].Version != "1.0.0" || set.Models[0].PublicationDate.Year() != 2024 {
		t.Fatalf("Models = %+v", set.Models)
	}
	if set.Digest != blake3.Sum256([]byte(plantXML)) {
		t.Fatalf("digest mismatch")
	}

	// ns=1 in the document is index 2 in the context.
	dt, ok := set.DataType(uatypes.NewExpandedNodeID(uatypes.NewNumericNodeID(2, 3002)))
	if !ok {
		t.Fatalf("PumpSettings not found in %+v", set.DataTypes)
	}
	if dt.BrowseName != uatypes.NewQualifiedName(2, "PumpSettings") || dt.DisplayName != "PumpSettings" {
		t.Fatalf("node = %+v", dt.Node)
	}
	if !dt.BinaryEncoding.Equal(uatypes.NewExpandedNodeID(uatypes.NewNumericNodeID(2, 5002))) {
		t.Fatalf("BinaryEncoding = %s", dt.BinaryEncoding)
	}
	if dt.Definition == nil || len(dt.Definition.Fields) != 3 || dt.Definition.Fields[2].ValueRank != 1 {
		t.Fatalf("Definition = %+v", dt.Definition)
	}
	if !dt.Definition.Fields[1].DataType.Equal(uatypes.NewExpandedNodeID(uatypes.NewNumericNodeID(0, 11))) {
		t.Fatalf("alias not resolved: %s", dt.Definition.Fields[1].DataType)
	}

	v, ok := set.Variable("MaxSpeed")
	if !ok || !v.Value.Equal(uatypes.MustVariant(1450.5)) {
		t.Fatalf("MaxSpeed = %+v", v)
	}
	names, ok := set.Variable("Names")
	if !ok || !names.Value.Equal(uatypes.MustVariant([]string{"inlet", "outlet"})) || names.ValueRank != 1 {
		t.Fatalf("Names = %+v", names)
	}
}

func TestLoad_UnmappedNamespaceUsesURI(t *testing.T) {
	set, err := nodeset.Load(strings.NewReader(plantXML), nodeset.LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	want := uatypes.NewNumericExpandedNodeID("urn:test:plant", 3002)
	if _, ok := set.DataType(want); !ok {
		t.Fatalf("data type %s not found", want)
	}
}

func TestLoad_StrictAndLenient(t *testing.T) {
	_, err := nodeset.Load(strings.NewReader(methodXML), nodeset.LoadOptions{})
	if !errors.Is(err, uatypes.ErrUnsupportedConstruct) {
		t.Fatalf("strict: expected UnsupportedConstruct, got %v", err)
	}
	e, _ := uatypes.AsError(err)
	if e == nil || e.Path != "UAMethod" || e.Offset <= 0 {
		t.Fatalf("error location = %+v", e)
	}

	set, err := nodeset.Load(strings.NewReader(methodXML), nodeset.LoadOptions{Lenient: true})
	if err != nil {
		t.Fatalf("lenient: %v", err)
	}
	if len(set.Skipped) != 2 || set.Skipped[0].Element != "UAMethod" || set.Skipped[1].Element != "UAVariable" {
		t.Fatalf("Skipped = %+v", set.Skipped)
	}
	if len(set.Variables) != 1 || !set.Variables[0].Value.IsNull() {
		t.Fatalf("Variables = %+v", set.Variables)
	}
}

func TestLoad_MalformedDocuments(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want error
	}{
		"truncated":           {`<UANodeSet><NamespaceUris>`, uatypes.ErrInvalidValue},
		"wrong root":          {`<Other/>`, uatypes.ErrUnsupportedConstruct},
		"empty":               {``, uatypes.ErrEndOfStream},
		"undeclared ns":       {`<UANodeSet><UAVariable NodeId="ns=4;i=1" BrowseName="X"/></UANodeSet>`, uatypes.ErrInvalidValue},
		"bad node id":         {`<UANodeSet><UAVariable NodeId="q=1" BrowseName="X"/></UANodeSet>`, uatypes.ErrInvalidValue},
		"bad value":           {`<UANodeSet><UAVariable NodeId="i=1" BrowseName="X"><Value><Int32>x</Int32></Value></UAVariable></UANodeSet>`, uatypes.ErrInvalidValue},
		"element after root":  {`<UANodeSet></UANodeSet><UANodeSet></UANodeSet>`, uatypes.ErrInvalidValue},
		"mismatched elements": {`<UANodeSet><Aliases></UANodeSet>`, uatypes.ErrInvalidValue},
	}
	for name, tc := range cases {
		_, err := nodeset.Load(strings.NewReader(tc.doc), nodeset.LoadOptions{})
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v want %v", name, err, tc.want)
		}
	}
}

func TestLoad_DocumentSizeLimit(t *testing.T) {
	_, err := nodeset.Load(strings.NewReader(plantXML), nodeset.LoadOptions{MaxDocumentSize: 128})
	if !errors.Is(err, uatypes.ErrLimitExceeded) {
		t.Fatalf("expected LimitExceeded, got %v", err)
	}
}

func TestLoad_ValueLimits(t *testing.T) {
	ctx := uatypes.NewContext(uatypes.ContextOptions{Limits: &uatypes.DecodingLimits{MaxArrayLength: 1}})
	_, err := nodeset.Load(strings.NewReader(plantXML), nodeset.LoadOptions{Context: ctx})
	if !errors.Is(err, uatypes.ErrLimitExceeded) {
		t.Fatalf("expected LimitExceeded, got %v", err)
	}
}

func writeCompressed(t *testing.T, path string, compress func(f *os.File) error) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := compress(f); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFile_Compressed(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plant.xml")
	if err := os.WriteFile(plain, []byte(plantXML), 0o644); err != nil {
		t.Fatal(err)
	}
	zst := filepath.Join(dir, "plant.xml.zst")
	writeCompressed(t, zst, func(f *os.File) error {
		zw, err := zstd.NewWriter(f)
		if err != nil {
			return err
		}
		if _, err := zw.Write([]byte(plantXML)); err != nil {
			return err
		}
		return zw.Close()
	})
	lz := filepath.Join(dir, "plant.xml.lz4")
	writeCompressed(t, lz, func(f *os.File) error {
		lw := lz4.NewWriter(f)
		if _, err := lw.Write([]byte(plantXML)); err != nil {
			return err
		}
		return lw.Close()
	})

	want := blake3.Sum256([]byte(plantXML))
	for _, path := range []string{plain, zst, lz} {
		set, err := nodeset.LoadFile(path, nodeset.LoadOptions{Context: plantContext()})
		if err != nil {
			t.Fatalf("%s: %v", filepath.Base(path), err)
		}
		if set.Digest != want || len(set.DataTypes) != 2 {
			t.Fatalf("%s: digest or content differs", filepath.Base(path))
		}
		uris, err := nodeset.NamespaceURIs(path)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(uris, []string{"urn:test:plant"}) {
			t.Fatalf("%s: NamespaceURIs = %v", filepath.Base(path), uris)
		}
	}
	if _, err := nodeset.LoadFile(filepath.Join(dir, "missing.xml"), nodeset.LoadOptions{}); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestDictionary_RoundTrip(t *testing.T) {
	ctx := plantContext()
	set, err := nodeset.Load(strings.NewReader(plantXML), nodeset.LoadOptions{Context: ctx})
	if err != nil {
		t.Fatal(err)
	}
	dict, err := set.Dictionary()
	if err != nil {
		t.Fatalf("Dictionary: %v", err)
	}
	if len(dict.Enumerations) != 1 || dict.Enumerations[0].Values[1] != "Auto" {
		t.Fatalf("Enumerations = %+v", dict.Enumerations)
	}
	def, ok := dict.Lookup("PumpSettings")
	if !ok {
		t.Fatalf("PumpSettings missing")
	}
	if def.Fields[0].Type != uatypes.TypeInt32 || def.Fields[1].Type != uatypes.TypeDouble || !def.Fields[2].IsArray() {
		t.Fatalf("fields = %+v", def.Fields)
	}

	reg, err := uatypes.NewRegistry(uatypes.StandardTypes(), dict)
	if err != nil {
		t.Fatal(err)
	}
	rctx := uatypes.NewContext(uatypes.ContextOptions{Namespaces: []string{"urn:other", "urn:test:plant"}, Registry: reg})
	s := uatypes.NewDynamicStructure(def)
	if err := s.Set("Mode", int32(1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("Speed", 1200.0); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("Tags", []uatypes.String{uatypes.NewString("north")}); err != nil {
		t.Fatal(err)
	}
	wire, err := uatypes.Marshal(rctx, uatypes.NewExtensionObject(s))
	if err != nil {
		t.Fatal(err)
	}
	x, err := uatypes.UnmarshalExtensionObject(rctx, wire)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := x.Value.(*uatypes.DynamicStructure)
	if !ok || !reflect.DeepEqual(got.Values, s.Values) {
		t.Fatalf("decoded %#v", x.Value)
	}
}

func TestDictionary_UnsupportedField(t *testing.T) {
	doc := `<UANodeSet>
  <NamespaceUris><Uri>urn:test:plant</Uri></NamespaceUris>
  <UADataType NodeId="ns=1;i=1" BrowseName="1:Grid">
    <References><Reference ReferenceType="HasSubtype" IsForward="false">i=22</Reference></References>
    <Definition Name="1:Grid"><Field Name="Cells" DataType="i=11" ValueRank="2"/></Definition>
  </UADataType>
</UANodeSet>`
	set, err := nodeset.Load(strings.NewReader(doc), nodeset.LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := set.Dictionary(); !errors.Is(err, uatypes.ErrUnsupportedConstruct) {
		t.Fatalf("expected UnsupportedConstruct, got %v", err)
	}

	lenient, err := nodeset.Load(strings.NewReader(doc), nodeset.LoadOptions{Lenient: true})
	if err != nil {
		t.Fatal(err)
	}
	dict, err := lenient.Dictionary()
	if err != nil {
		t.Fatal(err)
	}
	if len(dict.Structures) != 0 || len(lenient.Skipped) != 1 {
		t.Fatalf("structures %d, skipped %+v", len(dict.Structures), lenient.Skipped)
	}
}

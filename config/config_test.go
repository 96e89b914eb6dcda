package config_test

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/reoring/uatypes"
	"github.com/reoring/uatypes/config"
)

const pumpNodeSet = `<UANodeSet>
  <NamespaceUris><Uri>urn:test:pumps</Uri></NamespaceUris>
  <UADataType NodeId="ns=1;i=10" BrowseName="1:PumpState">
    <References>
      <Reference ReferenceType="HasSubtype" IsForward="false">i=22</Reference>
      <Reference ReferenceType="HasEncoding">ns=1;i=11</Reference>
    </References>
    <Definition Name="1:PumpState">
      <Field Name="Running" DataType="i=1"/>
      <Field Name="Speed" DataType="i=11"/>
    </Definition>
  </UADataType>
  <UAObject NodeId="ns=1;i=11" BrowseName="Default Binary"/>
</UANodeSet>`

func TestParse_YAML(t *testing.T) {
	c, err := config.Parse([]byte(`
limits:
  max_string_length: 1024
  max_recursion_depth: 4
namespaces:
  - urn:test:a
nodesets: [pumps.xml]
lenient_nodesets: true
`), config.FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if c.Limits.MaxStringLength != 1024 || c.Limits.MaxRecursionDepth != 4 {
		t.Fatalf("limits = %+v", c.Limits)
	}
	if c.Limits.MaxArrayLength != uatypes.DefaultMaxArrayLength {
		t.Fatalf("absent limit lost its default: %d", c.Limits.MaxArrayLength)
	}
	if !slices.Equal(c.Namespaces, []string{"urn:test:a"}) || !slices.Equal(c.NodeSets, []string{"pumps.xml"}) || !c.LenientNodeSets {
		t.Fatalf("config = %+v", c)
	}
}

func TestParse_JSONC(t *testing.T) {
	c, err := config.Parse([]byte(`{
  // tighter arrays for field devices
  "limits": {"max_array_length": 500,},
  "namespaces": ["urn:test:a", "urn:test:b"],
}`), config.FormatJSONC)
	if err != nil {
		t.Fatal(err)
	}
	if c.Limits.MaxArrayLength != 500 || len(c.Namespaces) != 2 {
		t.Fatalf("config = %+v", c)
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		data   string
		format config.Format
		want   string
	}{
		{"unknown yaml field", "limitz: {}\n", config.FormatYAML, "limitz"},
		{"unknown json field", `{"namespace": []}`, config.FormatJSONC, "namespace"},
		{"negative limit", "limits: {max_array_length: -1}\n", config.FormatYAML, "limits.max_array_length"},
		{"duplicate namespace", "namespaces: [urn:a, urn:a]\n", config.FormatYAML, "namespaces[1]"},
		{"reserved namespace", "namespaces: [\"http://opcfoundation.org/UA/\"]\n", config.FormatYAML, "namespaces[0]"},
		{"empty namespace", `{"namespaces": [""]}`, config.FormatJSONC, "namespaces[0]"},
		{"negative nodeset size", "max_nodeset_size: -5\n", config.FormatYAML, "max_nodeset_size"},
	}
	for _, tc := range cases {
		_, err := config.Parse([]byte(tc.data), tc.format)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %v does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestParse_EmptyYAMLIsDefault(t *testing.T) {
	c, err := config.Parse(nil, config.FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if c.Limits != uatypes.DefaultDecodingLimits() {
		t.Fatalf("limits = %+v", c.Limits)
	}
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]config.Format{
		"a.yaml": config.FormatYAML, "b.YML": config.FormatYAML, "c.json": config.FormatJSONC, "d.jsonc": config.FormatJSONC,
	} {
		got, err := config.FormatOf(path)
		if err != nil || got != want {
			t.Fatalf("FormatOf(%s) = %v, %v", path, got, err)
		}
	}
	if _, err := config.FormatOf("e.toml"); err == nil {
		t.Fatalf("expected an error for .toml")
	}
}

func TestLoadOrDefault_Env(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "uatypes.yaml")
	if err := os.WriteFile(path, []byte("namespaces: [urn:env]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvVar, path)
	c, err := config.LoadOrDefault("")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(c.Namespaces, []string{"urn:env"}) {
		t.Fatalf("namespaces = %v", c.Namespaces)
	}
	if got := config.Resolve("explicit.yaml"); got != "explicit.yaml" {
		t.Fatalf("Resolve = %q", got)
	}

	t.Setenv(config.EnvVar, "")
	c, err = config.LoadOrDefault("")
	if err != nil || len(c.Namespaces) != 0 {
		t.Fatalf("default = %+v, %v", c, err)
	}
}

func TestBuild_WithNodeSet(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pumps.xml"), []byte(pumpNodeSet), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "uatypes.yaml")
	cfg := "namespaces: [urn:test:a]\nnodesets: [pumps.xml]\nlimits: {max_array_length: 50}\n"
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := c.Build(nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if idx, ok := ctx.Namespaces().Index("urn:test:pumps"); !ok || idx != 2 {
		t.Fatalf("nodeset namespace index = %d, %v", idx, ok)
	}
	if ctx.Limits().MaxArrayLength != 50 {
		t.Fatalf("limits = %+v", ctx.Limits())
	}
	names := ctx.Registry().Names()
	if !slices.Contains(names, "PumpState") || !slices.Contains(names, "Range") {
		t.Fatalf("registry names = %v", names)
	}
}

func TestBuild_MissingNodeSet(t *testing.T) {
	c := config.Default()
	c.NodeSets = []string{filepath.Join(t.TempDir(), "absent.xml")}
	if _, err := c.Build(nil); err == nil {
		t.Fatalf("expected an error for a missing nodeset")
	}
}

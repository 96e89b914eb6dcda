package uatypes_test

import (
	"errors"
	"testing"

	"github.com/reoring/uatypes"
)

func TestRegistry_DuplicateType(t *testing.T) {
	dup := pumpLoader
	dup.Name = "PumpStatusCopy"
	_, err := uatypes.NewRegistry(uatypes.TypeLoaders{pumpLoader}, uatypes.TypeLoaders{dup})
	if !errors.Is(err, uatypes.ErrDuplicateType) {
		t.Fatalf("expected DuplicateType, got %v", err)
	}
	_, err = uatypes.NewRegistry(uatypes.StandardTypes(), uatypes.StandardTypes())
	if !errors.Is(err, uatypes.ErrDuplicateType) {
		t.Fatalf("expected DuplicateType for a repeated group, got %v", err)
	}
}

func TestRegistry_CheckAliasedIdentities(t *testing.T) {
	byIndex := pumpLoader
	byIndex.Name = "PumpStatusByIndex"
	byIndex.EncodingID = uatypes.NewExpandedNodeID(uatypes.NewNumericNodeID(2, 5001))
	reg, err := uatypes.NewRegistry(uatypes.TypeLoaders{pumpLoader, byIndex})
	if err != nil {
		t.Fatalf("distinct text forms must register: %v", err)
	}
	if err := reg.Check(uatypes.NewNamespaceTable("urn:other", pumpNS)); !errors.Is(err, uatypes.ErrDuplicateType) {
		t.Fatalf("expected DuplicateType with %s at index 2, got %v", pumpNS, err)
	}
	if err := reg.Check(uatypes.NewNamespaceTable(pumpNS)); err != nil {
		t.Fatalf("%s at index 1 does not alias ns=2: %v", pumpNS, err)
	}
	if err := uatypes.MustRegistry(uatypes.StandardTypes()).Check(uatypes.NewNamespaceTable()); err != nil {
		t.Fatalf("standard types: %v", err)
	}
}

func TestRegistry_InvalidLoader(t *testing.T) {
	noDecode := pumpLoader
	noDecode.Decode = nil
	if _, err := uatypes.NewRegistry(uatypes.TypeLoaders{noDecode}); !errors.Is(err, uatypes.ErrInvalidValue) {
		t.Fatalf("expected InvalidValue for a loader without Decode, got %v", err)
	}
	nullID := pumpLoader
	nullID.EncodingID = uatypes.ExpandedNodeID{}
	if _, err := uatypes.NewRegistry(uatypes.TypeLoaders{nullID}); !errors.Is(err, uatypes.ErrInvalidValue) {
		t.Fatalf("expected InvalidValue for a null encoding id, got %v", err)
	}
}

func TestRegistry_ResolveByURIAndIndex(t *testing.T) {
	reg := uatypes.MustRegistry(uatypes.TypeLoaders{pumpLoader})
	ctx := uatypes.NewContext(uatypes.ContextOptions{Namespaces: []string{"urn:other", pumpNS}, Registry: reg})

	if l, ok := reg.Resolve(ctx, uatypes.NewNumericNodeID(2, 5001)); !ok || l.Name != "PumpStatus" {
		t.Fatalf("ns=2;i=5001 did not resolve: %+v %v", l, ok)
	}
	if _, ok := reg.Resolve(ctx, uatypes.NewNumericNodeID(1, 5001)); ok {
		t.Fatalf("ns=1 is urn:other and must not resolve")
	}
	if _, ok := reg.ResolveExpanded(ctx, uatypes.NewNumericExpandedNodeID(pumpNS, 5001)); !ok {
		t.Fatalf("URI form did not resolve")
	}
	if _, ok := reg.Resolve(ctx, uatypes.NewNumericNodeID(9, 5001)); ok {
		t.Fatalf("index outside the namespace table resolved")
	}
}

func TestRegistry_NamespaceIndependence(t *testing.T) {
	// The same loader serves contexts that place its namespace at
	// different indexes.
	reg := uatypes.MustRegistry(uatypes.StandardTypes(), uatypes.TypeLoaders{pumpLoader})
	a := uatypes.NewContext(uatypes.ContextOptions{Namespaces: []string{pumpNS}, Registry: reg})
	b := uatypes.NewContext(uatypes.ContextOptions{Namespaces: []string{"urn:x", "urn:y", pumpNS}, Registry: reg})
	x := uatypes.NewExtensionObject(&pumpStatus{Speed: 7, Name: uatypes.NewString("q")})
	for _, ctx := range []*uatypes.Context{a, b} {
		wire, err := uatypes.Marshal(ctx, x)
		if err != nil {
			t.Fatal(err)
		}
		got, err := uatypes.UnmarshalExtensionObject(ctx, wire)
		if err != nil {
			t.Fatal(err)
		}
		if !got.IsDecoded() {
			t.Fatalf("namespace table %v: body not decoded", ctx.Namespaces().URIs())
		}
	}
}

func TestRegistry_StandardTypes(t *testing.T) {
	reg := uatypes.MustRegistry(uatypes.StandardTypes())
	if reg.Len() != len(uatypes.StandardTypes().TypeLoaders()) {
		t.Fatalf("Len = %d", reg.Len())
	}
	names := reg.Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
	ctx := uatypes.DefaultContext()
	if l, ok := reg.Resolve(ctx, uatypes.NewNumericNodeID(0, 886)); !ok || l.Name != "Range" {
		t.Fatalf("i=886 resolved to %+v, %v", l, ok)
	}
	if l, ok := reg.ResolveExpanded(ctx, uatypes.NewNumericExpandedNodeID(uatypes.OPCUANamespaceURI, 886)); !ok || l.Name != "Range" {
		t.Fatalf("ns0 URI form resolved to %+v, %v", l, ok)
	}
}

package uatypes_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/reoring/uatypes"
)

func TestDecodingLimits_Defaults(t *testing.T) {
	l := uatypes.DefaultDecodingLimits()
	if l.MaxChunkSize != 65535 || l.MaxChunkCount != 5 || l.MaxMessageSize != 65535*5 {
		t.Fatalf("unexpected chunk/message defaults: %+v", l)
	}
	if l.MaxStringLength != 65535 || l.MaxByteStringLength != 65535 || l.MaxArrayLength != 100000 {
		t.Fatalf("unexpected field defaults: %+v", l)
	}
}

func TestDecodingLimits_EffectiveFillsZeros(t *testing.T) {
	eff := uatypes.DecodingLimits{MaxStringLength: 10}.Effective()
	if eff.MaxStringLength != 10 {
		t.Fatalf("explicit limit lost: %d", eff.MaxStringLength)
	}
	if eff.MaxArrayLength != uatypes.HardMaxLength {
		t.Fatalf("zero array limit should become the ceiling, got %d", eff.MaxArrayLength)
	}
	if eff.MaxMessageSize != uatypes.HardMaxMessageSize {
		t.Fatalf("zero message limit should become the ceiling, got %d", eff.MaxMessageSize)
	}
	if eff.MaxRecursionDepth != uatypes.HardMaxRecursionDepth {
		t.Fatalf("zero depth should become the ceiling, got %d", eff.MaxRecursionDepth)
	}
	over := uatypes.DecodingLimits{MaxRecursionDepth: 1 << 20}.Effective()
	if over.MaxRecursionDepth != uatypes.HardMaxRecursionDepth {
		t.Fatalf("depth above the ceiling should be clamped, got %d", over.MaxRecursionDepth)
	}
}

func TestDecodingLimits_CheckChunk(t *testing.T) {
	l := uatypes.DefaultDecodingLimits()
	if err := l.CheckChunk(65535, 4); err != nil {
		t.Fatalf("chunk at the limits rejected: %v", err)
	}
	if err := l.CheckChunk(65536, 0); !errors.Is(err, uatypes.ErrLimitExceeded) {
		t.Fatalf("oversized chunk: got %v", err)
	}
	if err := l.CheckChunk(10, 5); !errors.Is(err, uatypes.ErrLimitExceeded) {
		t.Fatalf("sixth chunk: got %v", err)
	}
	if err := l.CheckChunk(-1, 0); !errors.Is(err, uatypes.ErrInvalidLength) {
		t.Fatalf("negative chunk: got %v", err)
	}
}

func TestContext_Defaults(t *testing.T) {
	ctx := uatypes.NewContext(uatypes.ContextOptions{Namespaces: []string{"urn:a", "urn:b"}})
	if ctx.Limits() != uatypes.DefaultDecodingLimits() {
		t.Fatalf("default limits not applied: %+v", ctx.Limits())
	}
	if ctx.Registry() == nil || ctx.Registry().Len() == 0 {
		t.Fatalf("default registry should hold the standard types")
	}
	if idx, ok := ctx.Namespaces().Index("urn:b"); !ok || idx != 2 {
		t.Fatalf("urn:b index = %d, %v", idx, ok)
	}
	if uri, ok := ctx.Namespaces().URI(0); !ok || uri != uatypes.OPCUANamespaceURI {
		t.Fatalf("namespace 0 = %q", uri)
	}
	if _, ok := ctx.Namespaces().URI(3); ok {
		t.Fatalf("index 3 should be out of range")
	}
	if uatypes.DefaultContext() != uatypes.DefaultContext() {
		t.Fatalf("DefaultContext should be shared")
	}
}

func TestContext_ConcurrentUse(t *testing.T) {
	ctx := uatypes.DefaultContext()
	values := []uatypes.Variant{
		uatypes.MustVariant(int32(7)),
		uatypes.MustVariant([]string{"a", "b"}),
		uatypes.MustVariant(uatypes.NewExtensionObject(&uatypes.Range{Low: 1, High: 2})),
		uatypes.MustVariant(uatypes.NewExtensionObject(&uatypes.EUInformation{UnitID: 4408652})),
	}
	var wg sync.WaitGroup
	for g := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				v := values[(g+i)%len(values)]
				wire, err := uatypes.Marshal(ctx, v)
				if err != nil {
					t.Errorf("marshal %s: %v", v, err)
					return
				}
				got, err := uatypes.UnmarshalVariant(ctx, wire)
				if err != nil || !got.Equal(v) {
					t.Errorf("binary %s: got %s, %v", v, got, err)
					return
				}
				doc, err := uatypes.MarshalJSON(ctx, v)
				if err != nil {
					t.Errorf("marshal json %s: %v", v, err)
					return
				}
				if got, err = uatypes.UnmarshalJSONVariant(ctx, doc); err != nil || !got.Equal(v) {
					t.Errorf("json %s: got %s, %v", doc, got, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

package nodeset

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/reoring/uatypes"
)

// open returns a reader over the decompressed contents of path. Files
// ending in .zst are zstd streams, files ending in .lz4 are lz4 frames.
func open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd %s: %w", path, err)
		}
		return &zstdFile{Decoder: zr, f: f}, nil
	case ".lz4":
		return &lz4File{Reader: lz4.NewReader(f), f: f}, nil
	}
	return f, nil
}

type zstdFile struct {
	*zstd.Decoder
	f *os.File
}

func (z *zstdFile) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

type lz4File struct {
	*lz4.Reader
	f *os.File
}

func (l *lz4File) Close() error { return l.f.Close() }

// LoadFile loads a NodeSet2 document from path, decompressing .zst and .lz4
// files transparently. MaxDocumentSize applies to the decompressed bytes.
func LoadFile(path string, opt LoadOptions) (*NodeSet, error) {
	rc, err := open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	set, err := Load(rc, opt)
	if err != nil {
		return nil, fmt.Errorf("nodeset %s: %w", path, err)
	}
	return set, nil
}

// NamespaceURIs reads only the <NamespaceUris> declaration of the document
// at path. Callers use it to size a context's namespace table before
// loading.
func NamespaceURIs(path string) ([]string, error) {
	rc, err := open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	dec := xml.NewDecoder(io.LimitReader(rc, DefaultMaxDocumentSize))
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, &uatypes.Error{Code: uatypes.CodeInvalidValue, Offset: dec.InputOffset(), Message: "xml", Cause: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth != 2 {
				continue
			}
			if t.Name.Local != "NamespaceUris" {
				// NamespaceUris precedes every node.
				if strings.HasPrefix(t.Name.Local, "UA") {
					return nil, nil
				}
				if err := dec.Skip(); err != nil {
					return nil, &uatypes.Error{Code: uatypes.CodeInvalidValue, Offset: dec.InputOffset(), Message: "xml", Cause: err}
				}
				depth--
				continue
			}
			var x xmlURIList
			if err := dec.DecodeElement(&x, &t); err != nil {
				return nil, &uatypes.Error{Code: uatypes.CodeInvalidValue, Offset: dec.InputOffset(), Message: "xml", Cause: err}
			}
			return x.URIs, nil
		case xml.EndElement:
			depth--
		}
	}
}

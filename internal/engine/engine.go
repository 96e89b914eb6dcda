// Package engine turns a JSON token stream into a generic value tree while
// enforcing size, depth and duplicate-key limits on the way.
package engine

import (
	"errors"
	"io"
	"strconv"
)

// Kind is the kind of a token.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token is one lexical token with the input offset it ended at.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource yields tokens until io.EOF.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// Number is a JSON number kept in its literal form so that 64-bit integers
// survive without a float round trip.
type Number string

// DecodeAny builds a value tree from src: map[string]any, []any, string,
// Number, bool or nil. The source must hold exactly one value.
func DecodeAny(src TokenSource) (any, error) {
	b := treeBuilder{src: src}
	tok, err := b.next("")
	if err != nil {
		return nil, err
	}
	v, err := b.value(tok, "")
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, parseError("/", "trailing data after document")
	}
	return v, nil
}

type treeBuilder struct {
	src TokenSource
}

// next reads a token inside the value at path. End of input there is a
// parse error rather than io.EOF.
func (b *treeBuilder) next(path string) (Token, error) {
	tok, err := b.src.NextToken()
	if errors.Is(err, io.EOF) {
		if path == "" {
			return Token{}, parseError("/", "empty document")
		}
		return Token{}, parseError(path, "document ends inside a value")
	}
	return tok, err
}

func (b *treeBuilder) value(tok Token, path string) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return b.object(path)
	case KindBeginArray:
		return b.array(path)
	case KindString:
		return tok.String, nil
	case KindNumber:
		return Number(tok.Number), nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	}
	return nil, parseError(normalizeIssuePath(path), "unexpected token at offset "+strconv.FormatInt(tok.Offset, 10))
}

func (b *treeBuilder) object(path string) (map[string]any, error) {
	m := make(map[string]any)
	for {
		tok, err := b.next(path)
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case KindEndObject:
			return m, nil
		case KindKey:
		default:
			return nil, parseError(normalizeIssuePath(path), "expected a key")
		}
		key := tok.String
		p := joinJSONPointer(path, key)
		vt, err := b.next(p)
		if err != nil {
			return nil, err
		}
		v, err := b.value(vt, p)
		if err != nil {
			return nil, err
		}
		m[key] = v
	}
}

func (b *treeBuilder) array(path string) ([]any, error) {
	arr := []any{}
	for {
		p := joinJSONPointer(path, strconv.Itoa(len(arr)))
		tok, err := b.next(p)
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := b.value(tok, p)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

package engine

import (
	"errors"
	"io"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"
)

// countingReader tracks how many bytes the decoder pulled from the input.
// With max > 0 it hands out at most max+1 bytes, so an oversized document
// is noticed without buffering the rest of it.
type countingReader struct {
	r   io.Reader
	n   int64
	max int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	if c.max > 0 {
		rem := c.max + 1 - c.n
		if rem <= 0 {
			return 0, io.EOF
		}
		if int64(len(p)) > rem {
			p = p[:rem]
		}
	}
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) overrun() bool { return c.max > 0 && c.n > c.max }

type gojsonFrame struct {
	kind         containerKind
	expectingKey bool
}

type gojsonSource struct {
	in    *countingReader
	dec   *j.Decoder
	stack []gojsonFrame
}

// NewGoJSONSource wraps r into a TokenSource backed by goccy/go-json.
// Location reports the bytes read from r.
func NewGoJSONSource(r io.Reader) TokenSource {
	return newGoJSONSource(r, 0)
}

// newGoJSONSource reads at most maxBytes+1 bytes from r when maxBytes > 0
// and reports anything beyond maxBytes as a limit issue.
func newGoJSONSource(r io.Reader, maxBytes int64) *gojsonSource {
	in := &countingReader{r: r, max: maxBytes}
	dec := j.NewDecoder(in)
	dec.UseNumber()
	return &gojsonSource{in: in, dec: dec}
}

func (s *gojsonSource) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

func (s *gojsonSource) NextToken() (Token, error) {
	tok, err := s.dec.Token()
	if s.in.overrun() {
		return Token{}, IssueError{SimpleIssue{Code: CodeLimitExceeded, Path: "/", Message: "document exceeds max size " + strconv.FormatInt(s.in.max, 10)}}
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Token{}, io.EOF
		}
		return Token{}, parseError("", err.Error())
	}
	off := s.in.n
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, gojsonFrame{kind: kindObject, expectingKey: true})
			return Token{Kind: KindBeginObject, Offset: off}, nil
		case '[':
			s.stack = append(s.stack, gojsonFrame{kind: kindArray})
			return Token{Kind: KindBeginArray, Offset: off}, nil
		case '}', ']':
			if n := len(s.stack); n > 0 {
				s.stack = s.stack[:n-1]
			}
			s.valueDone()
			if v == '}' {
				return Token{Kind: KindEndObject, Offset: off}, nil
			}
			return Token{Kind: KindEndArray, Offset: off}, nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				return Token{Kind: KindKey, String: v, Offset: off}, nil
			}
		}
		s.valueDone()
		return Token{Kind: KindString, String: v, Offset: off}, nil
	case bool:
		s.valueDone()
		return Token{Kind: KindBool, Bool: v, Offset: off}, nil
	case j.Number:
		s.valueDone()
		// The literal may alias the decoder's buffer.
		return Token{Kind: KindNumber, Number: strings.Clone(string(v)), Offset: off}, nil
	case float64:
		s.valueDone()
		return Token{Kind: KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: off}, nil
	case nil:
		s.valueDone()
		return Token{Kind: KindNull, Offset: off}, nil
	}
	return Token{}, parseError("", "unexpected token")
}

func (s *gojsonSource) Location() int64 { return s.in.n }

// Decode reads one JSON document from r into a value tree under opt.
func Decode(r io.Reader, opt EnforceOptions) (any, error) {
	return DecodeAny(WrapWithEnforcement(newGoJSONSource(r, opt.MaxBytes), opt))
}

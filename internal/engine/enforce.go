package engine

import (
	"strconv"
	"strings"
)

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupError
)

// Issue codes.
const (
	CodeParseError    = "parse_error"
	CodeLimitExceeded = "limit_exceeded"
	CodeDuplicateKey  = "duplicate_key"
)

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

func parseError(path, msg string) error {
	return IssueError{SimpleIssue{Code: CodeParseError, Path: path, Message: msg}}
}

// EnforceOptions controls runtime enforcement behavior. Zero disables a
// limit.
type EnforceOptions struct {
	OnDuplicate     DuplicateStrictness
	MaxDepth        int
	MaxBytes        int64
	MaxStringLength int
	MaxArrayLength  int
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	path         string
	nextIndex    int
	pendingKey   string
}

// WrapWithEnforcement returns a TokenSource that enforces duplicate key
// policy, nesting depth, consumed bytes, string length and array length.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingTokenSource) fail(code, path, msg string) (Token, error) {
	return Token{}, IssueError{SimpleIssue{Code: code, Path: normalizeIssuePath(path), Message: msg}}
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off > e.opt.MaxBytes {
			return e.fail(CodeLimitExceeded, "", "document exceeds max size "+strconv.FormatInt(e.opt.MaxBytes, 10))
		}
	}

	path := e.currentPathForToken(tok)
	if n := len(e.stack); n > 0 && e.opt.MaxArrayLength > 0 {
		if top := e.stack[n-1]; top.kind == kindArray && top.nextIndex > e.opt.MaxArrayLength {
			return e.fail(CodeLimitExceeded, path, "array length exceeds max "+strconv.Itoa(e.opt.MaxArrayLength))
		}
	}

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		if tok.Kind == KindBeginObject {
			e.stack = append(e.stack, frame{kind: kindObject, keys: make(map[string]struct{}), expectingKey: true, path: path})
		} else {
			e.stack = append(e.stack, frame{kind: kindArray, path: path})
		}
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return e.fail(CodeLimitExceeded, path, "nesting exceeds max depth "+strconv.Itoa(e.opt.MaxDepth))
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.valueDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				if e.opt.OnDuplicate == DupError {
					if _, ok := top.keys[tok.String]; ok {
						return e.fail(CodeDuplicateKey, path, "key '"+tok.String+"' duplicated")
					}
				}
				top.keys[tok.String] = struct{}{}
				top.expectingKey = false
				top.pendingKey = tok.String
			}
		}
		if err := e.checkString(tok.String, path); err != nil {
			return Token{}, err
		}
	case KindString:
		if err := e.checkString(tok.String, path); err != nil {
			return Token{}, err
		}
		e.valueDone()
	case KindNumber, KindBool, KindNull:
		e.valueDone()
	}
	return tok, nil
}

func (e *enforcingTokenSource) checkString(s, path string) error {
	if e.opt.MaxStringLength > 0 && len(s) > e.opt.MaxStringLength {
		_, err := e.fail(CodeLimitExceeded, path, "string length "+strconv.Itoa(len(s))+" exceeds max "+strconv.Itoa(e.opt.MaxStringLength))
		return err
	}
	return nil
}

func (e *enforcingTokenSource) valueDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
			top.pendingKey = ""
		}
	}
}

func (e *enforcingTokenSource) currentPathForToken(tok Token) string {
	if len(e.stack) == 0 {
		if tok.Kind == KindKey {
			return joinJSONPointer("", tok.String)
		}
		return ""
	}
	top := &e.stack[len(e.stack)-1]
	switch tok.Kind {
	case KindKey:
		return joinJSONPointer(top.path, tok.String)
	case KindBeginObject, KindBeginArray, KindString, KindNumber, KindBool, KindNull:
		if top.kind == kindArray {
			p := joinJSONPointer(top.path, strconv.Itoa(top.nextIndex))
			top.nextIndex++
			return p
		}
		if !top.expectingKey {
			return joinJSONPointer(top.path, top.pendingKey)
		}
	}
	return top.path
}

// Location returns the number of input bytes consumed so far.
func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }

func normalizeIssuePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinJSONPointer(base, token string) string {
	return base + "/" + jsonPointerEscaper.Replace(token)
}

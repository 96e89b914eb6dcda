package uatypes

import (
	"strconv"
	"strings"
)

// QualifiedName is a name qualified by a namespace index.
type QualifiedName struct {
	NamespaceIndex uint16
	Name           String
}

// NewQualifiedName returns a QualifiedName with a non-null name.
func NewQualifiedName(ns uint16, name string) QualifiedName {
	return QualifiedName{NamespaceIndex: ns, Name: NewString(name)}
}

// ParseQualifiedName parses "ns:Name" (the NodeSet2 BrowseName form) or a
// bare "Name" in namespace 0.
func ParseQualifiedName(s string) QualifiedName {
	if i := strings.IndexByte(s, ':'); i > 0 {
		if ns, err := strconv.ParseUint(s[:i], 10, 16); err == nil {
			return NewQualifiedName(uint16(ns), s[i+1:])
		}
	}
	return NewQualifiedName(0, s)
}

func (q QualifiedName) String() string {
	if q.NamespaceIndex == 0 {
		return q.Name.Value
	}
	return strconv.Itoa(int(q.NamespaceIndex)) + ":" + q.Name.Value
}

// LocalizedText is human readable text with an optional locale.
type LocalizedText struct {
	Locale String
	Text   String
}

// NewLocalizedText returns text with no locale.
func NewLocalizedText(text string) LocalizedText {
	return LocalizedText{Text: NewString(text)}
}

const (
	localizedTextHasLocale byte = 0x01
	localizedTextHasText   byte = 0x02
)

func (l LocalizedText) mask() byte {
	var m byte
	if l.Locale.Valid {
		m |= localizedTextHasLocale
	}
	if l.Text.Valid {
		m |= localizedTextHasText
	}
	return m
}

func (l LocalizedText) String() string {
	if l.Locale.Valid {
		return "(" + l.Locale.Value + ") " + l.Text.Value
	}
	return l.Text.Value
}

package uatypes

// DataValue is a Variant with quality and timestamps. A field left at its
// zero value is omitted from the encoding; decoding an omitted field yields
// the zero value again.
type DataValue struct {
	Value             Variant
	Status            StatusCode
	SourceTimestamp   DateTime
	SourcePicoseconds uint16
	ServerTimestamp   DateTime
	ServerPicoseconds uint16
}

// Data value encoding mask bits.
const (
	dataValueHasValue             byte = 0x01
	dataValueHasStatus            byte = 0x02
	dataValueHasSourceTimestamp   byte = 0x04
	dataValueHasServerTimestamp   byte = 0x08
	dataValueHasSourcePicoseconds byte = 0x10
	dataValueHasServerPicoseconds byte = 0x20
)

// NewDataValue returns a DataValue holding v with Good status.
func NewDataValue(v Variant) DataValue { return DataValue{Value: v} }

func (dv DataValue) mask() byte {
	var m byte
	if !dv.Value.IsNull() {
		m |= dataValueHasValue
	}
	if dv.Status != StatusGood {
		m |= dataValueHasStatus
	}
	if dv.SourceTimestamp != 0 {
		m |= dataValueHasSourceTimestamp
	}
	if dv.ServerTimestamp != 0 {
		m |= dataValueHasServerTimestamp
	}
	if dv.SourcePicoseconds != 0 {
		m |= dataValueHasSourcePicoseconds
	}
	if dv.ServerPicoseconds != 0 {
		m |= dataValueHasServerPicoseconds
	}
	return m
}

// DiagnosticInfo carries vendor diagnostics. Index fields use -1 for
// "not present"; NewDiagnosticInfo returns that state.
type DiagnosticInfo struct {
	SymbolicID          int32
	NamespaceURI        int32
	Locale              int32
	LocalizedText       int32
	AdditionalInfo      String
	InnerStatusCode     StatusCode
	InnerDiagnosticInfo *DiagnosticInfo
}

// Diagnostic info encoding mask bits.
const (
	diagHasSymbolicID     byte = 0x01
	diagHasNamespaceURI   byte = 0x02
	diagHasLocalizedText  byte = 0x04
	diagHasLocale         byte = 0x08
	diagHasAdditionalInfo byte = 0x10
	diagHasInnerStatus    byte = 0x20
	diagHasInnerDiag      byte = 0x40
)

// NewDiagnosticInfo returns an empty DiagnosticInfo.
func NewDiagnosticInfo() DiagnosticInfo {
	return DiagnosticInfo{SymbolicID: -1, NamespaceURI: -1, Locale: -1, LocalizedText: -1}
}

func (di DiagnosticInfo) mask() byte {
	var m byte
	if di.SymbolicID != -1 {
		m |= diagHasSymbolicID
	}
	if di.NamespaceURI != -1 {
		m |= diagHasNamespaceURI
	}
	if di.LocalizedText != -1 {
		m |= diagHasLocalizedText
	}
	if di.Locale != -1 {
		m |= diagHasLocale
	}
	if di.AdditionalInfo.Valid {
		m |= diagHasAdditionalInfo
	}
	if di.InnerStatusCode != StatusGood {
		m |= diagHasInnerStatus
	}
	if di.InnerDiagnosticInfo != nil {
		m |= diagHasInnerDiag
	}
	return m
}

// ByteLen returns the encoded size of dv.
func (dv DataValue) ByteLen(ctx *Context) int { return dataValueLen(ctx, dv) }

// EncodeBinary writes dv.
func (dv DataValue) EncodeBinary(e *Encoder) error { return e.WriteDataValue(dv) }

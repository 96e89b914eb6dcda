package uatypes

import "fmt"

// StatusCode is an OPC-UA status code. The top two bits carry severity.
type StatusCode uint32

const (
	StatusGood                      StatusCode = 0x00000000
	StatusUncertain                 StatusCode = 0x40000000
	StatusBad                       StatusCode = 0x80000000
	StatusBadUnexpectedError        StatusCode = 0x80010000
	StatusBadInternalError          StatusCode = 0x80020000
	StatusBadEncodingError          StatusCode = 0x80060000
	StatusBadDecodingError          StatusCode = 0x80070000
	StatusBadEncodingLimitsExceeded StatusCode = 0x80080000
	StatusBadTypeMismatch           StatusCode = 0x80740000
	StatusBadDataTypeIDUnknown      StatusCode = 0x80110000
	StatusBadNotSupported           StatusCode = 0x803D0000
	StatusBadNodeIDUnknown          StatusCode = 0x80340000
)

var statusNames = map[StatusCode]string{
	StatusGood:                      "Good",
	StatusUncertain:                 "Uncertain",
	StatusBad:                       "Bad",
	StatusBadUnexpectedError:        "BadUnexpectedError",
	StatusBadInternalError:          "BadInternalError",
	StatusBadEncodingError:          "BadEncodingError",
	StatusBadDecodingError:          "BadDecodingError",
	StatusBadEncodingLimitsExceeded: "BadEncodingLimitsExceeded",
	StatusBadTypeMismatch:           "BadTypeMismatch",
	StatusBadDataTypeIDUnknown:      "BadDataTypeIdUnknown",
	StatusBadNotSupported:           "BadNotSupported",
	StatusBadNodeIDUnknown:          "BadNodeIdUnknown",
}

// IsGood reports whether the severity bits are Good.
func (s StatusCode) IsGood() bool { return s&0xC0000000 == 0 }

// IsUncertain reports whether the severity bits are Uncertain.
func (s StatusCode) IsUncertain() bool { return s&0xC0000000 == 0x40000000 }

// IsBad reports whether the severity bits are Bad.
func (s StatusCode) IsBad() bool { return s&0x80000000 != 0 }

func (s StatusCode) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("StatusCode(0x%08X)", uint32(s))
}

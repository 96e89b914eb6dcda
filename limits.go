package uatypes

import "math"

// Default decoding limits. These match the defaults a stock OPC-UA stack
// negotiates in its Hello/Acknowledge exchange.
const (
	DefaultMaxChunkSize        = 65535
	DefaultMaxChunkCount       = 5
	DefaultMaxMessageSize      = DefaultMaxChunkSize * DefaultMaxChunkCount
	DefaultMaxStringLength     = 65535
	DefaultMaxByteStringLength = 65535
	DefaultMaxArrayLength      = 100000
	DefaultMaxRecursionDepth   = 10
)

// Hard ceilings applied when a limit is left at zero.
const (
	HardMaxMessageSize    = 1 << 30 // 1GiB
	HardMaxChunkSize      = 1 << 30
	HardMaxChunkCount     = 4096
	HardMaxLength         = math.MaxInt32
	HardMaxRecursionDepth = 100
)

// DecodingLimits bounds every dimension of untrusted input a decoder will
// accept. Zero in any field means "no explicit limit"; the hard ceiling
// for that field applies instead.
type DecodingLimits struct {
	MaxMessageSize      int `yaml:"max_message_size" json:"max_message_size"`
	MaxChunkSize        int `yaml:"max_chunk_size" json:"max_chunk_size"`
	MaxChunkCount       int `yaml:"max_chunk_count" json:"max_chunk_count"`
	MaxStringLength     int `yaml:"max_string_length" json:"max_string_length"`
	MaxByteStringLength int `yaml:"max_byte_string_length" json:"max_byte_string_length"`
	MaxArrayLength      int `yaml:"max_array_length" json:"max_array_length"`
	// MaxRecursionDepth bounds structural nesting (variants in variant
	// arrays, extension objects in structures, inner diagnostic infos).
	MaxRecursionDepth int `yaml:"max_recursion_depth" json:"max_recursion_depth"`
}

// DefaultDecodingLimits returns the stock limits.
func DefaultDecodingLimits() DecodingLimits {
	return DecodingLimits{
		MaxMessageSize:      DefaultMaxMessageSize,
		MaxChunkSize:        DefaultMaxChunkSize,
		MaxChunkCount:       DefaultMaxChunkCount,
		MaxStringLength:     DefaultMaxStringLength,
		MaxByteStringLength: DefaultMaxByteStringLength,
		MaxArrayLength:      DefaultMaxArrayLength,
		MaxRecursionDepth:   DefaultMaxRecursionDepth,
	}
}

// Effective returns l with every zero or negative field replaced by its
// hard ceiling, and every field clamped to that ceiling.
func (l DecodingLimits) Effective() DecodingLimits {
	return DecodingLimits{
		MaxMessageSize:      clampLimit(l.MaxMessageSize, HardMaxMessageSize),
		MaxChunkSize:        clampLimit(l.MaxChunkSize, HardMaxChunkSize),
		MaxChunkCount:       clampLimit(l.MaxChunkCount, HardMaxChunkCount),
		MaxStringLength:     clampLimit(l.MaxStringLength, HardMaxLength),
		MaxByteStringLength: clampLimit(l.MaxByteStringLength, HardMaxLength),
		MaxArrayLength:      clampLimit(l.MaxArrayLength, HardMaxLength),
		MaxRecursionDepth:   clampLimit(l.MaxRecursionDepth, HardMaxRecursionDepth),
	}
}

func clampLimit(v, ceiling int) int {
	if v <= 0 || v > ceiling {
		return ceiling
	}
	return v
}

// CheckChunk validates one transport chunk: its size against MaxChunkSize
// and its zero-based position in the message against MaxChunkCount. The
// codec itself never chunks; the transport layer calls this while
// reassembling a message.
func (l DecodingLimits) CheckChunk(size, index int) error {
	eff := l.Effective()
	if size < 0 {
		return newError(CodeInvalidLength, -1, "negative chunk size %d", size)
	}
	if size > eff.MaxChunkSize {
		return newError(CodeLimitExceeded, -1, "chunk size %d exceeds max %d", size, eff.MaxChunkSize)
	}
	if index >= eff.MaxChunkCount {
		return newError(CodeLimitExceeded, -1, "chunk %d exceeds max chunk count %d", index+1, eff.MaxChunkCount)
	}
	return nil
}

package decl

import (
	"fmt"
	"regexp"
	"strconv"
)

// BuiltinFlags carries rendering hints for a declaration, decoded from a
// 16-bit marker planted in builtin stub bodies. Unknown bits are kept.
type BuiltinFlags uint16

const (
	// FlagOperator marks modules that take a child block, so their call
	// snippets end with a space instead of a semicolon.
	FlagOperator BuiltinFlags = 1 << iota
	// FlagIgnoreParamName drops the "name = " prefix from parameter
	// placeholders in call snippets.
	FlagIgnoreParamName
)

// Marker shape: builtin_flags( + exactly 16 binary digits + ).
var flagMarker = regexp.MustCompile(`builtin_flags\(([01]{16})\)`)

// ParseBits decodes a 16-digit binary string, most significant bit first.
func ParseBits(s string) (BuiltinFlags, error) {
	if len(s) != 16 {
		return 0, fmt.Errorf("decl: flag bits %q: want 16 digits, got %d", s, len(s))
	}
	v, err := strconv.ParseUint(s, 2, 16)
	if err != nil {
		return 0, fmt.Errorf("decl: flag bits %q: %w", s, err)
	}
	return BuiltinFlags(v), nil
}

// ExtractFlags scans text for the first flag marker and decodes it. Text
// without a well-formed marker yields zero flags.
func ExtractFlags(text string) BuiltinFlags {
	m := flagMarker.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	// The pattern guarantees 16 binary digits, so this cannot fail.
	v, _ := strconv.ParseUint(m[1], 2, 16)
	return BuiltinFlags(v)
}

func (f BuiltinFlags) IsOperator() bool { return f&FlagOperator != 0 }

func (f BuiltinFlags) IgnoresParamName() bool { return f&FlagIgnoreParamName != 0 }

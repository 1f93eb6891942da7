// Package taxid canonicalises Brazilian tax identifiers (CPF/CNPJ) into the
// digit-only key every identity lookup is made with.
package taxid

import "strings"

// SentinelSystem is the reserved identifier of the system actor that absorbs
// sales whose salesperson cannot be resolved
const SentinelSystem = "00000000000"

// Normalize keeps only the ASCII decimal digits of raw, in order.
// "123.456.789-00" and "12345678900" both yield "12345678900"; text with no
// digits yields "".
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// IsCanonical reports whether id is non-empty and already digit-only
func IsCanonical(id string) bool {
	return id != "" && Normalize(id) == id
}

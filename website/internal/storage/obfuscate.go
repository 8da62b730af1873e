package storage

import (
	"fmt"
	"unicode/utf16"
)

// xorBytes applies key cyclically to data. Applying it twice restores data.
func xorBytes(data, key []byte) []byte {
	out := make([]byte, len(data))
	if len(key) == 0 {
		copy(out, data)
		return out
	}
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}

// Checksum is the 32-bit rolling hash h = h*31 + c over the UTF-16 code
// units of s, rendered as eight hex digits.
func Checksum(s string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(c)
	}
	return fmt.Sprintf("%08x", uint32(h))
}

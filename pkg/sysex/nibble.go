package sysex

import "errors"

// ErrOddLength reports a nibble run that cannot be decoded pairwise. A
// truncated name field is a contract violation and is surfaced rather than
// silently dropping the trailing byte.
var ErrOddLength = errors.New("sysex: nibble data has odd length")

// Nibblize encodes text as 7-bit-clean byte pairs, high byte first. Each
// 16-bit code unit c becomes (c>>8)&0x7F, c&0x7F. The mask loses the top bit
// of code units above 0x7FFF; device firmware expects exactly this encoding,
// so the loss is intentional.
func Nibblize(s string) []byte {
	runes := []rune(s)
	out := make([]byte, 0, len(runes)*2)
	for _, c := range runes {
		out = append(out, byte((c>>8)&0x7F), byte(c&0x7F))
	}
	return out
}

// Denibblize is the inverse of Nibblize, consuming bytes pairwise.
func Denibblize(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", ErrOddLength
	}
	runes := make([]rune, 0, len(b)/2)
	for i := 0; i < len(b); i += 2 {
		runes = append(runes, rune(b[i])<<8|rune(b[i+1]))
	}
	return string(runes), nil
}

package sysex

// Two checksum schemes are in use across the supported devices. The Solaris
// trails its bulk dump blocks with a 2's-complement-mod-128 byte so that
// payload plus checksum sums to zero; the Matrix 6 stores the plain masked
// sum of the decoded data bytes.

// ComplementChecksum computes the additive-complement checksum over payload.
func ComplementChecksum(payload []byte) byte {
	return byte((0x80 - (sum7(payload) & 0x7F)) & 0x7F)
}

// VerifyComplement reports whether payload and checksum sum to zero mod 128.
func VerifyComplement(payload []byte, checksum byte) bool {
	return (sum7(payload)+int(checksum))&0x7F == 0
}

// PlainChecksum computes the masked running sum over data.
func PlainChecksum(data []byte) byte {
	return byte(sum7(data) & 0x7F)
}

// VerifyPlain reports whether data sums to checksum mod 128.
func VerifyPlain(data []byte, checksum byte) bool {
	return byte(sum7(data)&0x7F) == checksum
}

func sum7(b []byte) int {
	s := 0
	for _, v := range b {
		s += int(v)
	}
	return s
}

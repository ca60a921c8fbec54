package sysex

import "testing"

func TestComplementChecksum(t *testing.T) {
	// Frame Start address 7E 7F 7F sums to 0x1FC; the complement is 0x04.
	payload := []byte{0x7E, 0x7F, 0x7F}
	if got := ComplementChecksum(payload); got != 0x04 {
		t.Errorf("ComplementChecksum = 0x%02X, want 0x04", got)
	}
	if !VerifyComplement(payload, 0x04) {
		t.Error("VerifyComplement rejected a valid checksum")
	}
	if VerifyComplement(payload, 0x05) {
		t.Error("VerifyComplement accepted an invalid checksum")
	}
}

func TestComplementChecksumZeroSum(t *testing.T) {
	// A payload summing to 0 mod 128 must still produce a 7-bit checksum.
	payload := []byte{0x40, 0x40}
	got := ComplementChecksum(payload)
	if got&0x80 != 0 {
		t.Errorf("ComplementChecksum = 0x%02X, not 7-bit clean", got)
	}
	if !VerifyComplement(payload, got) {
		t.Error("computed checksum does not verify")
	}
}

func TestPlainChecksum(t *testing.T) {
	data := []byte{0x01, 0x7F, 0x03}
	want := byte((0x01 + 0x7F + 0x03) & 0x7F)
	if got := PlainChecksum(data); got != want {
		t.Errorf("PlainChecksum = 0x%02X, want 0x%02X", got, want)
	}
	if !VerifyPlain(data, want) {
		t.Error("VerifyPlain rejected a valid checksum")
	}
	if VerifyPlain(data, want+1) {
		t.Error("VerifyPlain accepted an invalid checksum")
	}
}

func TestChecksumSymmetry(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x00},
		{0x7F, 0x7F, 0x7F, 0x7F},
		{0x12, 0x34, 0x56, 0x78, 0x0A},
	}

	for _, p := range payloads {
		if !VerifyComplement(p, ComplementChecksum(p)) {
			t.Errorf("complement scheme not symmetric for % X", p)
		}
		if !VerifyPlain(p, PlainChecksum(p)) {
			t.Errorf("plain scheme not symmetric for % X", p)
		}
	}
}

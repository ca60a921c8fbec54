package sysex

import (
	"bytes"
	"testing"
)

var bulkDumpTemplate = Template{
	Bytes(0xF0, 0x00, 0x12, 0x34),
	Field("device", 1),
	Bytes(0x10, 0x11),
	Field("address", 3),
}

func TestTemplateMatch(t *testing.T) {
	msg := []byte{0xF0, 0x00, 0x12, 0x34, 0x10, 0x10, 0x11, 0x20, 0x00, 0x00, 0x01, 0x02, 0xF7}

	fields, ok := bulkDumpTemplate.Match(msg)
	if !ok {
		t.Fatal("Match() = false, want true")
	}
	if fields.Byte("device") != 0x10 {
		t.Errorf("device = 0x%02X, want 0x10", fields.Byte("device"))
	}
	if !bytes.Equal(fields["address"], []byte{0x20, 0x00, 0x00}) {
		t.Errorf("address = % X, want 20 00 00", fields["address"])
	}
}

func TestTemplateNoMatch(t *testing.T) {
	tests := []struct {
		name string
		msg  []byte
	}{
		{"wrong opcode", []byte{0xF0, 0x00, 0x12, 0x34, 0x10, 0x10, 0x12, 0x20, 0x00, 0x00}},
		{"wrong manufacturer", []byte{0xF0, 0x00, 0x12, 0x35, 0x10, 0x10, 0x11, 0x20, 0x00, 0x00}},
		{"too short", []byte{0xF0, 0x00, 0x12, 0x34, 0x10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := bulkDumpTemplate.Match(tt.msg); ok {
				t.Error("Match() = true, want false")
			}
		})
	}
}

func TestTemplateIgnoresTrailingBytes(t *testing.T) {
	// Payload past the template length must not affect matching.
	msg := []byte{0xF0, 0x00, 0x12, 0x34, 0x7F, 0x10, 0x11, 0x17, 0x02, 0x00, 0xFF, 0xFF}
	fields, ok := bulkDumpTemplate.Match(msg)
	if !ok {
		t.Fatal("Match() = false, want true")
	}
	if fields.Byte("device") != 0x7F {
		t.Errorf("device = 0x%02X, want 0x7F", fields.Byte("device"))
	}
}

func TestTemplateLength(t *testing.T) {
	if got := bulkDumpTemplate.Length(); got != 10 {
		t.Errorf("Length() = %d, want 10", got)
	}
}

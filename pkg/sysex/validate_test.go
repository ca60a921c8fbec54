package sysex

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"valid message", []byte{0xF0, 0x00, 0x12, 0x34, 0xF7}, false},
		{"missing start", []byte{0x00, 0x12, 0xF7}, true},
		{"missing end", []byte{0xF0, 0x12, 0x34}, true},
		{"too short", []byte{0xF0}, true},
		{"high bit set in payload", []byte{0xF0, 0x82, 0xF7}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	// Bad framing on both ends plus a dirty payload byte: all three issues
	// must show up in the aggregated error.
	err := Validate([]byte{0x00, 0x85, 0x01})
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	msg := err.Error()
	for _, want := range []string{"start byte", "end byte", "7-bit"} {
		if !strings.Contains(msg, want) {
			t.Errorf("aggregated error %q missing %q", msg, want)
		}
	}
}

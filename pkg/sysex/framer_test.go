package sysex

import (
	"bytes"
	"testing"
)

func TestSplitSingleMessage(t *testing.T) {
	// Frame Start block of a Solaris edit buffer dump.
	msg := []byte{0xF0, 0x00, 0x12, 0x34, 0x10, 0x10, 0x11, 0x7E, 0x7F, 0x7F, 0x04, 0xF7}

	got := Split(msg)
	if len(got) != 1 {
		t.Fatalf("Split() yielded %d messages, want 1", len(got))
	}
	if !bytes.Equal(got[0].Data, msg) {
		t.Errorf("Split() message = % X, want % X", got[0].Data, msg)
	}
	if got[0].Start != 0 || got[0].End != len(msg) {
		t.Errorf("Split() span = [%d,%d), want [0,%d)", got[0].Start, got[0].End, len(msg))
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want [][]byte
	}{
		{
			name: "two messages",
			buf:  []byte{0xF0, 0x01, 0xF7, 0xF0, 0x02, 0xF7},
			want: [][]byte{{0xF0, 0x01, 0xF7}, {0xF0, 0x02, 0xF7}},
		},
		{
			name: "junk between messages is skipped",
			buf:  []byte{0x42, 0xF0, 0x01, 0xF7, 0x42, 0x42, 0xF0, 0x02, 0xF7, 0x42},
			want: [][]byte{{0xF0, 0x01, 0xF7}, {0xF0, 0x02, 0xF7}},
		},
		{
			name: "unterminated trailing message is dropped",
			buf:  []byte{0xF0, 0x01, 0xF7, 0xF0, 0x02},
			want: [][]byte{{0xF0, 0x01, 0xF7}},
		},
		{
			name: "end marker without start is ignored",
			buf:  []byte{0x01, 0xF7, 0xF0, 0x02, 0xF7},
			want: [][]byte{{0xF0, 0x02, 0xF7}},
		},
		{
			name: "restart on repeated start marker",
			buf:  []byte{0xF0, 0xF0, 0x01, 0xF7},
			want: [][]byte{{0xF0, 0x01, 0xF7}},
		},
		{
			name: "empty buffer",
			buf:  nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.buf)
			if len(got) != len(tt.want) {
				t.Fatalf("Split() yielded %d messages, want %d", len(got), len(tt.want))
			}
			for i, m := range got {
				if !bytes.Equal(m.Data, tt.want[i]) {
					t.Errorf("message %d = % X, want % X", i, m.Data, tt.want[i])
				}
				if !bytes.Equal(tt.buf[m.Start:m.End], tt.want[i]) {
					t.Errorf("message %d span [%d,%d) does not cover its bytes", i, m.Start, m.End)
				}
			}
		})
	}
}

func TestSplitReversed(t *testing.T) {
	buf := []byte{0xF0, 0x01, 0xF7, 0x55, 0xF0, 0x02, 0x03, 0xF7}

	got := SplitReversed(buf)
	if len(got) != 2 {
		t.Fatalf("SplitReversed() yielded %d messages, want 2", len(got))
	}
	if !bytes.Equal(got[0].Data, []byte{0xF0, 0x02, 0x03, 0xF7}) {
		t.Errorf("first reversed message = % X, want the trailing message", got[0].Data)
	}
	if got[0].Start != 4 || got[0].End != 8 {
		t.Errorf("first reversed span = [%d,%d), want [4,8)", got[0].Start, got[0].End)
	}
	if !bytes.Equal(got[1].Data, []byte{0xF0, 0x01, 0xF7}) {
		t.Errorf("second reversed message = % X, want the leading message", got[1].Data)
	}
}

func TestSplitReversedAgreesWithSplit(t *testing.T) {
	buf := []byte{0x00, 0xF0, 0x0A, 0xF7, 0xF0, 0x0B, 0xF7, 0x7F, 0xF0, 0x0C, 0xF7, 0xF0, 0x0D}

	fwd := Split(buf)
	rev := SplitReversed(buf)
	if len(fwd) != len(rev) {
		t.Fatalf("forward yielded %d messages, reverse %d", len(fwd), len(rev))
	}
	for i := range fwd {
		j := len(rev) - 1 - i
		if !bytes.Equal(fwd[i].Data, rev[j].Data) || fwd[i].Start != rev[j].Start {
			t.Errorf("message %d differs between directions", i)
		}
	}
}

// Package sysex implements the byte-level System Exclusive codec shared by
// all device adaptations: message framing, nibble encoding, declarative
// message matching and the two checksum schemes in use.
package sysex

// SysEx framing markers
const (
	Start = 0xF0
	End   = 0xF7
)

// Message is one framed SysEx message together with the offset range it
// occupies in the buffer it was split from. Data aliases the original buffer;
// callers that modify a dump must splice a new buffer instead.
type Message struct {
	Data  []byte
	Start int // offset of the 0xF0 byte
	End   int // offset one past the 0xF7 byte
}

// Split decomposes a buffer into its SysEx messages in natural order.
// A message runs from the most recent start marker to the next end marker,
// both inclusive. Bytes outside a marker pair are skipped, and a trailing
// message with no end marker is dropped. Malformed input never errors, it
// just yields fewer messages.
func Split(buf []byte) []Message {
	var out []Message
	start := -1
	for i, b := range buf {
		switch b {
		case Start:
			start = i
		case End:
			if start >= 0 {
				out = append(out, Message{Data: buf[start : i+1], Start: start, End: i + 1})
				start = -1
			}
		}
	}
	return out
}

// SplitReversed yields the same messages as Split but last-first, scanning
// from the end of the buffer. Bulk dumps terminate in a Frame End block, so
// classification can look at the final message without walking the whole
// dump. Spans are still expressed in forward buffer coordinates.
func SplitReversed(buf []byte) []Message {
	var out []Message
	end := -1
	for i := len(buf) - 1; i >= 0; i-- {
		switch buf[i] {
		case End:
			end = i
		case Start:
			if end >= 0 {
				out = append(out, Message{Data: buf[i : end+1], Start: i, End: end + 1})
				end = -1
			}
		}
	}
	return out
}

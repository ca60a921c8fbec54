package sysex

// Slot is one run of positions in a Template: either fixed bytes that a
// message must carry verbatim, or a named field whose bytes are captured
// without comparison (device ID, channel, address triple).
type Slot struct {
	fixed []byte
	name  string
	size  int
}

// Bytes is a run of fixed expected bytes.
func Bytes(vals ...byte) Slot {
	return Slot{fixed: vals}
}

// Field is a captured run of size bytes stored under name.
func Field(name string, size int) Slot {
	return Slot{name: name, size: size}
}

// Template describes the prefix of a message as a sequence of slots. The
// original adaptations compared whole messages after overwriting the
// "don't care" positions with expected values; a template makes the
// fixed/variable split explicit and leaves the message untouched.
type Template []Slot

// Length is the number of message bytes the template covers.
func (t Template) Length() int {
	n := 0
	for _, s := range t {
		if s.fixed != nil {
			n += len(s.fixed)
		} else {
			n += s.size
		}
	}
	return n
}

// Fields holds the captured byte runs of a successful match, keyed by the
// field names of the template.
type Fields map[string][]byte

// Byte returns the first byte of a captured field, or 0 if absent. Most
// fields (device ID, address bytes) are single bytes.
func (f Fields) Byte(name string) byte {
	if v, ok := f[name]; ok && len(v) > 0 {
		return v[0]
	}
	return 0
}

// Match walks the template across the start of msg. A fixed byte that
// differs means no-match, never an error; captured runs are copied out.
// Bytes beyond the template length are not inspected. Callers locate
// trailing payload (name bytes, checksum, terminator) by fixed offsets
// relative to the matched prefix.
func (t Template) Match(msg []byte) (Fields, bool) {
	if len(msg) < t.Length() {
		return nil, false
	}
	fields := Fields{}
	pos := 0
	for _, s := range t {
		if s.fixed != nil {
			for _, want := range s.fixed {
				if msg[pos] != want {
					return nil, false
				}
				pos++
			}
			continue
		}
		val := make([]byte, s.size)
		copy(val, msg[pos:pos+s.size])
		fields[s.name] = val
		pos += s.size
	}
	return fields, true
}

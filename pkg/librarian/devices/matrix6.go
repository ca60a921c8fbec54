package devices

import (
	"log"

	"github.com/james-see/synthlibrarian/pkg/librarian"
	"github.com/james-see/synthlibrarian/pkg/sysex"
)

// Oberheim Matrix 6/6R SysEx constants.
const (
	matrix6Manufacturer = 0x10 // Oberheim
	matrix6ModelID      = 0x06 // Matrix 6/6R

	matrix6SinglePatch = 0x01
	matrix6MasterData  = 0x03
	matrix6RequestData = 0x04
	matrix6QuickEdit   = 0x05

	// Patch names are 8 characters at the front of the denibbled data.
	matrix6NameChars = 8

	// Master parameter data is 236 bytes once denibbled.
	matrix6MasterLen = 236

	// The unit has no edit buffer; sends go to the highest program slot.
	matrix6EditSlot = 99
)

var (
	matrix6SinglePatchHeader = sysex.Template{
		sysex.Bytes(0xF0, matrix6Manufacturer, matrix6ModelID, matrix6SinglePatch),
	}
	matrix6MasterDataHeader = sysex.Template{
		sysex.Bytes(0xF0, matrix6Manufacturer, matrix6ModelID, matrix6MasterData),
	}
)

// Matrix6 adapts the Oberheim Matrix 6/6R. The unit only accepts SysEx in
// QuickEdit mode and loses that mode on any MIDI reset, so every outgoing
// message is prefixed with the QuickEdit command.
type Matrix6 struct{}

func NewMatrix6() *Matrix6 {
	return &Matrix6{}
}

func (m *Matrix6) Name() string {
	return "Matrix 6/6R"
}

func quickEditModeMessage() []byte {
	return []byte{0xF0, matrix6Manufacturer, matrix6ModelID, matrix6QuickEdit, 0xF7}
}

// denibble decodes the 4-bit data pairs starting at start, low nibble first,
// stopping before the trailing checksum and end marker. A checksum mismatch
// is logged and the decoded data returned anyway; slightly malformed dumps
// from real units are still worth reading.
func denibble(message []byte, start int) []byte {
	if len(message) < start+2 {
		return nil
	}
	out := make([]byte, 0, (len(message)-start-2)/2)
	for x := start; x < len(message)-2; x += 2 {
		out = append(out, message[x]|message[x+1]<<4)
	}
	expected := message[len(message)-2]
	if !sysex.VerifyPlain(out, expected) {
		log.Printf("matrix6: checksum mismatch, got %02x want %02x", sysex.PlainChecksum(out), expected)
	}
	return out
}

// nibbles re-encodes data bytes as 4-bit pairs, low nibble first.
func nibbles(data []byte) []byte {
	out := make([]byte, 0, len(data)*2)
	for _, b := range data {
		out = append(out, b&0x0F, b>>4)
	}
	return out
}

// ---- detection

// DeviceDetectMessage probes with a master data request; the reply carries
// the unit's MIDI channel.
func (m *Matrix6) DeviceDetectMessage(channel int) []byte {
	return append(quickEditModeMessage(),
		0xF0, matrix6Manufacturer, matrix6ModelID, matrix6RequestData, 3, 0, 0xF7)
}

func (m *Matrix6) ChannelFromDetectResponse(message []byte) (int, bool) {
	if _, ok := matrix6MasterDataHeader.Match(message); !ok {
		return -1, false
	}
	// The header is one byte longer than documented, with a data byte at
	// position 4; the master data starts at index 5.
	master := denibble(message, 5)
	if len(master) != matrix6MasterLen {
		log.Printf("matrix6: expected %d bytes of master data, got %d", matrix6MasterLen, len(master))
	}
	if len(master) < 12 {
		return -1, false
	}
	return int(master[11]), true
}

func (m *Matrix6) NeedsChannelSpecificDetection() bool {
	return false
}

func (m *Matrix6) DetectWaitMilliseconds() int {
	return 200
}

// ---- edit buffer

// EditBufferRequest has nothing real to ask for: the Matrix 6/6R, unlike the
// later Matrix 1000, has no edit buffer request. Send a message it likes.
func (m *Matrix6) EditBufferRequest(channel int) []byte {
	return quickEditModeMessage()
}

func (m *Matrix6) IsEditBufferDump(data []byte) bool {
	return false
}

func (m *Matrix6) IsPartOfEditBufferDump(message []byte) bool {
	return false
}

// ConvertToEditBuffer works around the missing edit buffer: the patch is
// written into the last program slot and a program change selecting that
// slot is appended.
func (m *Matrix6) ConvertToEditBuffer(channel int, message []byte) ([]byte, error) {
	if !m.IsSingleProgramDump(message) {
		return nil, librarian.ErrNotProgramDump
	}
	out := quickEditModeMessage()
	out = append(out, message[0:4]...)
	out = append(out, matrix6EditSlot)
	out = append(out, message[5:]...)
	out = append(out, programChangeMessage(channel, matrix6EditSlot)...)
	return out, nil
}

func programChangeMessage(channel, program int) []byte {
	// -1 is not a valid MIDI channel; emit nothing.
	if channel == -1 {
		return nil
	}
	return []byte{0xC0 | byte(channel&0x0F), byte(program)}
}

// ---- program dumps

func (m *Matrix6) ProgramDumpRequest(channel, program int) []byte {
	p := program % m.PatchesPerBank()
	return append(quickEditModeMessage(),
		0xF0, matrix6Manufacturer, matrix6ModelID, matrix6RequestData, 1, byte(p), 0xF7)
}

func (m *Matrix6) IsSingleProgramDump(message []byte) bool {
	_, ok := matrix6SinglePatchHeader.Match(message)
	return ok
}

// ---- names

// NameFromDump decodes the first 8 data bytes of a single patch dump. Stored
// characters are 6-bit; values below 32 sit in the upper ASCII block and are
// shifted up by 0x40.
func (m *Matrix6) NameFromDump(data []byte) string {
	if !m.IsSingleProgramDump(data) {
		return ""
	}
	patch := denibble(data, 5)
	if len(patch) < matrix6NameChars {
		return ""
	}
	name := make([]byte, matrix6NameChars)
	for i, b := range patch[:matrix6NameChars] {
		if b < 32 {
			b += 0x40
		}
		name[i] = b
	}
	return string(name)
}

// matrix6Char folds a character into the 6-bit form the unit stores:
// letters and symbols in 0x40..0x5F drop to 0x00..0x1F, 0x20..0x3F pass
// through, lowercase is uppercased first, anything else becomes a space.
func matrix6Char(c rune) byte {
	if c >= 0x60 && c < 0x80 {
		c -= 0x20
	}
	switch {
	case c >= 0x40 && c < 0x60:
		return byte(c - 0x40)
	case c >= 0x20 && c < 0x40:
		return byte(c)
	default:
		return 0x20
	}
}

// Rename rewrites the 8-character name at the front of the patch data and
// recomputes the plain checksum over the full decoded data.
func (m *Matrix6) Rename(data []byte, newName string) ([]byte, error) {
	if !m.IsSingleProgramDump(data) {
		return nil, librarian.ErrNotProgramDump
	}
	patch := denibble(data, 5)
	if len(patch) < matrix6NameChars {
		return nil, librarian.ErrNameNotFound
	}

	padded := []rune(newName)
	if len(padded) > matrix6NameChars {
		padded = padded[:matrix6NameChars]
	}
	for len(padded) < matrix6NameChars {
		padded = append(padded, ' ')
	}
	for i, c := range padded {
		patch[i] = matrix6Char(c)
	}

	checksum := sysex.PlainChecksum(patch)
	if !sysex.VerifyPlain(patch, checksum) {
		return nil, librarian.ErrChecksumWriteFailed
	}

	out := make([]byte, 0, len(data))
	out = append(out, data[:5]...)
	out = append(out, nibbles(patch)...)
	out = append(out, checksum, 0xF7)
	return out, nil
}

// ---- banks

func (m *Matrix6) NumberOfBanks() int {
	return 1
}

func (m *Matrix6) PatchesPerBank() int {
	return 100
}

func (m *Matrix6) BankDescriptors() []librarian.BankDescriptor {
	return []librarian.BankDescriptor{
		{Bank: 0, Name: "Internal", Size: 100, Type: "Patch"},
	}
}

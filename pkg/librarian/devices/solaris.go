// Package devices provides the concrete device adaptations.
package devices

import (
	"fmt"
	"log"
	"strings"

	"github.com/james-see/synthlibrarian/pkg/librarian"
	"github.com/james-see/synthlibrarian/pkg/sysex"
)

// John Bowen Solaris SysEx constants (Solaris SysEx spec v1.2.2).
const (
	solarisID          = 0x10
	solarisBulkRequest = 0x10
	solarisBulkDump    = 0x11
	solarisFrameStart  = 0x7E
	solarisFrameEnd    = 0x7F

	// Preset and part names are 20 characters, nibble-encoded to 40 bytes.
	solarisNameChars = 20

	// Address high bytes of the name blocks.
	solarisPresetNameAddr = 0x20
	solarisPartNameAddr   = 0x17
)

// Bulk dump block header: the address triple follows the opcode, then the
// payload, a complement checksum and the end marker. The checksum covers
// address plus payload.
var solarisBulkHeader = sysex.Template{
	sysex.Bytes(0xF0, 0x00, 0x12, 0x34),
	sysex.Field("device", 1),
	sysex.Bytes(solarisID, solarisBulkDump),
	sysex.Field("address", 3),
}

// Identity Reply per the General Information spec, with the Solaris
// manufacturer and family codes filled in.
var solarisIdentityReply = sysex.Template{
	sysex.Bytes(0xF0, 0x7E),
	sysex.Field("device", 1),
	sysex.Bytes(0x06, 0x02, 0x00, 0x12, 0x34, 0x10, 0x00, 0x01, 0x00),
	sysex.Field("version", 4),
	sysex.Bytes(0xF7),
}

const solarisBulkHeaderLen = 10 // through the address triple

// Solaris adapts the John Bowen Solaris. The unit has no program or bank
// dump capability in firmware, so only the edit buffer is supported.
type Solaris struct{}

func NewSolaris() *Solaris {
	return &Solaris{}
}

func (s *Solaris) Name() string {
	return "JB Solaris"
}

func (s *Solaris) SetupHelp() string {
	return `Settings on the Solaris unit: in the 'Midi' page, switch 'TxSysEx' and 'RxSysEx' on.
Capabilities: can send, receive, rename preset and rename parts in Edit Buffer mode only.

Caution: sending SysEx through the Solaris DIN connection works. On macOS,
sending through the Solaris USB connection can disconnect the Solaris USB
and may require replugging the cable or rebooting the unit.`
}

// ---- detection

func (s *Solaris) DeviceDetectMessage(channel int) []byte {
	// Universal Identity Request; the Solaris answers regardless of channel.
	return []byte{0xF0, 0x7E, 0x7F, 0x06, 0x01, 0xF7}
}

func (s *Solaris) ChannelFromDetectResponse(message []byte) (int, bool) {
	fields, ok := solarisIdentityReply.Match(message)
	if !ok || len(message) != solarisIdentityReply.Length() {
		return -1, false
	}
	v := fields["version"]
	log.Printf("solaris: id %d, OS v%d.%d.%d.%d", fields.Byte("device"), v[0], v[1], v[2], v[3])
	return 1, true
}

func (s *Solaris) NeedsChannelSpecificDetection() bool {
	return false
}

// ---- edit buffer

// EditBufferRequest asks for all blocks of the current preset: a bulk dump
// request at the Frame Start base address with bank and preset set to 0x7F.
// The reply is a Frame Start block, the preset blocks, then a Frame End.
func (s *Solaris) EditBufferRequest(channel int) []byte {
	return []byte{
		0xF0,
		0x00, 0x12, 0x34,
		0x7F, // device ID
		solarisID,
		solarisBulkRequest,
		solarisFrameStart, 0x7F, 0x7F,
		0xF7,
	}
}

var solarisBulkPrefix = sysex.Template{
	sysex.Bytes(0xF0, 0x00, 0x12, 0x34),
	sysex.Field("device", 1),
	sysex.Bytes(solarisID, solarisBulkDump),
}

func (s *Solaris) IsPartOfEditBufferDump(message []byte) bool {
	_, ok := solarisBulkPrefix.Match(message)
	return ok
}

var solarisFrameEndHeader = sysex.Template{
	sysex.Bytes(0xF0, 0x00, 0x12, 0x34),
	sysex.Field("device", 1),
	sysex.Bytes(solarisID, solarisBulkDump, solarisFrameEnd),
}

// IsEditBufferDump looks for the terminal Frame End block, scanning from the
// back so large dumps are not walked front to front. Only the last framed
// message is examined. The byte after the Frame End address ought to be the
// end marker; that is deliberately not checked, matching dumps the unit has
// been sending all along.
func (s *Solaris) IsEditBufferDump(data []byte) bool {
	msgs := sysex.SplitReversed(data)
	if len(msgs) == 0 {
		return false
	}
	_, ok := solarisFrameEndHeader.Match(msgs[0].Data)
	return ok
}

// ConvertToEditBuffer is the identity for the Solaris: a bulk dump is
// already addressed at the edit buffer.
func (s *Solaris) ConvertToEditBuffer(channel int, message []byte) ([]byte, error) {
	out := make([]byte, len(message))
	copy(out, message)
	return out, nil
}

// ---- names

// nameSpan is the absolute byte range of an encoded name within a dump.
// A start of -1 means the field is not present.
type nameSpan struct {
	start, end int
}

func (sp nameSpan) valid() bool {
	return sp.start >= 0
}

// findName locates the nibblized name block at the given address triple.
// The preset name lives at 0x20 00 00, part n at 0x17 n 00. A checksum
// mismatch is logged and decoding continues: units occasionally send
// slightly malformed dumps and the host prefers best-effort names.
func (s *Solaris) findName(data []byte, high, middle, low byte) (string, nameSpan) {
	for _, msg := range sysex.Split(data) {
		fields, ok := solarisBulkHeader.Match(msg.Data)
		if !ok {
			continue
		}
		addr := fields["address"]
		if addr[0] != high || addr[1] != middle || addr[2] != low {
			continue
		}
		if len(msg.Data) < solarisBulkHeaderLen+2*solarisNameChars+4 {
			continue
		}

		payload := msg.Data[7 : len(msg.Data)-2]
		checksum := msg.Data[len(msg.Data)-2]
		start := msg.Start + solarisBulkHeaderLen
		name, err := sysex.Denibblize(data[start : start+2*solarisNameChars])
		if err != nil {
			continue
		}
		if !sysex.VerifyComplement(payload, checksum) {
			log.Printf("solaris: bad checksum %02x for name %q", checksum, name)
		}
		return name, nameSpan{start, start + 2*solarisNameChars}
	}
	return "", nameSpan{-1, -1}
}

// rename splices a new name into the block found at sp. The block layout
// after the name is two category bytes, the checksum and the end marker;
// everything outside the name and checksum is preserved byte for byte.
func (s *Solaris) rename(data []byte, newName string, sp nameSpan, addr [3]byte) ([]byte, error) {
	padded := newName
	if len([]rune(padded)) > solarisNameChars {
		padded = string([]rune(padded)[:solarisNameChars])
	}
	padded = padded + strings.Repeat(" ", solarisNameChars-len([]rune(padded)))

	encoded := sysex.Nibblize(padded)

	if sp.end+2 > len(data) {
		return nil, librarian.ErrNameNotFound
	}
	categories := data[sp.end : sp.end+2]

	payload := make([]byte, 0, 3+len(encoded)+2)
	payload = append(payload, addr[:]...)
	payload = append(payload, encoded...)
	payload = append(payload, categories...)
	checksum := sysex.ComplementChecksum(payload)

	if !sysex.VerifyComplement(payload, checksum) {
		log.Printf("solaris: bad checksum %02x for new name %q", checksum, newName)
		return nil, librarian.ErrChecksumWriteFailed
	}

	// Skip the original category bytes and checksum; the end marker and
	// everything after come from the original buffer.
	out := make([]byte, 0, len(data))
	out = append(out, data[:sp.start]...)
	out = append(out, encoded...)
	out = append(out, categories...)
	out = append(out, checksum)
	out = append(out, data[sp.end+3:]...)
	return out, nil
}

func (s *Solaris) NameFromDump(data []byte) string {
	name, sp := s.findName(data, solarisPresetNameAddr, 0x00, 0x00)
	if !sp.valid() {
		return "unknown"
	}
	return strings.TrimSpace(name)
}

func (s *Solaris) Rename(data []byte, newName string) ([]byte, error) {
	_, sp := s.findName(data, solarisPresetNameAddr, 0x00, 0x00)
	if !sp.valid() {
		return nil, librarian.ErrNameNotFound
	}
	return s.rename(data, newName, sp, [3]byte{solarisPresetNameAddr, 0x00, 0x00})
}

func (s *Solaris) IsDefaultName(patchName string) bool {
	return patchName == "INIT"
}

// ---- layers

func (s *Solaris) LayerCount(data []byte) int {
	return 4
}

func (s *Solaris) LayerName(data []byte, layer int) string {
	name, sp := s.findName(data, solarisPartNameAddr, byte(layer), 0x00)
	if !sp.valid() {
		return "unknown"
	}
	return strings.TrimSpace(name)
}

func (s *Solaris) RenameLayer(data []byte, layer int, newName string) ([]byte, error) {
	_, sp := s.findName(data, solarisPartNameAddr, byte(layer), 0x00)
	if !sp.valid() {
		return nil, librarian.ErrNameNotFound
	}
	return s.rename(data, newName, sp, [3]byte{solarisPartNameAddr, byte(layer), 0x00})
}

// ---- categories

var solarisCategory1 = withUserCategories([]string{
	"None", "Arpeggio", "Bass", "Drum", "Effect", "Keyboard", "Lead", "Pad",
	"Sequence", "Texture", "Atmosphere", "Bells", "Mono", "Noise", "Organ",
	"Percussive", "Strings", "Synth", "Vocal",
})

var solarisCategory2 = withUserCategories([]string{
	"Acoustic", "Aggressive", "Big", "Bright", "Chord", "Classic", "Dark",
	"Electric", "Moody", "Soft", "Short", "Synthetic", "Upbeat", "Metallic",
	"Template",
})

func withUserCategories(base []string) []string {
	for i := 1; i <= 10; i++ {
		base = append(base, fmt.Sprintf("User %d", i))
	}
	return base
}

// StoredTags reads the two category bytes stored right after the preset name.
func (s *Solaris) StoredTags(data []byte) []string {
	_, sp := s.findName(data, solarisPresetNameAddr, 0x00, 0x00)
	if !sp.valid() || sp.end+2 > len(data) {
		return []string{""}
	}
	cat1, cat2 := int(data[sp.end]), int(data[sp.end+1])
	if cat1 >= len(solarisCategory1) || cat2 >= len(solarisCategory2) {
		return []string{""}
	}
	return []string{solarisCategory1[cat1], solarisCategory2[cat2]}
}

// ---- banks

func (s *Solaris) NumberOfBanks() int {
	return 128
}

func (s *Solaris) PatchesPerBank() int {
	return 128
}

// BankSelect uses MIDI CC 32, the bank select controller most synths honor.
func (s *Solaris) BankSelect(channel, bank int) []byte {
	return []byte{0xB0 | byte(channel&0x0F), 32, byte(bank)}
}

// BankDescriptors returns the official factory bank set.
func (s *Solaris) BankDescriptors() []librarian.BankDescriptor {
	return []librarian.BankDescriptor{
		{Bank: 0, Name: "John Bowen", Size: 62, Type: "Patch"},
		{Bank: 1, Name: "Marco Paris", Size: 128, Type: "Patch"},
		{Bank: 2, Name: "Carl Lofgren", Size: 91, Type: "Patch"},
		{Bank: 3, Name: "Scarr, Ader, Hummel, Kuchar, Keel", Size: 84, Type: "Patch"},
		{Bank: 4, Name: "Ken Elhardt", Size: 52, Type: "Patch"},
		{Bank: 5, Name: "Jimmy V.", Size: 41, Type: "Patch"},
		{Bank: 6, Name: "Robert Wittek", Size: 51, Type: "Patch"},
		{Bank: 7, Name: "Toby Emerson", Size: 128, Type: "Patch"},
		{Bank: 8, Name: "Christoph Eckert", Size: 95, Type: "Patch"},
		{Bank: 9, Name: "Francois Neumann-rystow", Size: 90, Type: "Patch"},
		{Bank: 10, Name: "", Size: 0, Type: "Patch"},
		{Bank: 11, Name: "Mike Johnson 1", Size: 128, Type: "Patch"},
		{Bank: 12, Name: "Mike Johnson 2", Size: 128, Type: "Patch"},
		{Bank: 13, Name: "Mike Johnson 3", Size: 128, Type: "Patch"},
		{Bank: 14, Name: "Wouter van Beek", Size: 72, Type: "Patch"},
		{Bank: 15, Name: "??", Size: 0, Type: "Patch"},
	}
}

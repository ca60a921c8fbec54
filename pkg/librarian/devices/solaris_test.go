package devices

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/james-see/synthlibrarian/pkg/librarian"
	"github.com/james-see/synthlibrarian/pkg/sysex"
)

// solarisBlock builds one bulk dump block the way the unit does: header,
// address, payload, complement checksum over address+payload, end marker.
func solarisBlock(device byte, addr [3]byte, payload []byte) []byte {
	body := append([]byte{}, addr[:]...)
	body = append(body, payload...)
	chk := sysex.ComplementChecksum(body)

	msg := []byte{0xF0, 0x00, 0x12, 0x34, device, 0x10, 0x11}
	msg = append(msg, body...)
	msg = append(msg, chk, 0xF7)
	return msg
}

func solarisNameBlock(addr [3]byte, name string, cat1, cat2 byte) []byte {
	for len(name) < 20 {
		name += " "
	}
	payload := append(sysex.Nibblize(name), cat1, cat2)
	return solarisBlock(0x10, addr, payload)
}

// initDump is an edit buffer dump of the factory INIT preset: Frame Start,
// four part name blocks, the preset name block (tagged Mono/Synthetic),
// Frame End.
func initDump() []byte {
	var dump []byte
	dump = append(dump, solarisBlock(0x10, [3]byte{0x7E, 0x7F, 0x7F}, nil)...)
	for i := 0; i < 4; i++ {
		dump = append(dump, solarisNameBlock([3]byte{0x17, byte(i), 0x00}, fmt.Sprintf("Part %d", i+1), 0, 0)...)
	}
	dump = append(dump, solarisNameBlock([3]byte{0x20, 0x00, 0x00}, "INIT", 12, 11)...)
	dump = append(dump, solarisBlock(0x10, [3]byte{0x7F, 0x00, 0x00}, nil)...)
	return dump
}

func TestSolarisNameFromDump(t *testing.T) {
	s := NewSolaris()
	if got := s.NameFromDump(initDump()); got != "INIT" {
		t.Errorf("NameFromDump = %q, want \"INIT\"", got)
	}
	if !s.IsDefaultName("INIT") {
		t.Error("IsDefaultName(\"INIT\") = false, want true")
	}
}

func TestSolarisRenameRoundTrip(t *testing.T) {
	s := NewSolaris()
	dump := initDump()

	// Renaming to the current name must reproduce the dump byte for byte.
	renamed, err := s.Rename(dump, "INIT")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if !bytes.Equal(dump, renamed) {
		t.Error("rename to the same name changed the dump")
	}
}

func TestSolarisRename(t *testing.T) {
	s := NewSolaris()
	dump := initDump()

	renamed, err := s.Rename(dump, "SolarisINIT")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if len(renamed) != len(dump) {
		t.Errorf("renamed dump length = %d, want %d", len(renamed), len(dump))
	}
	if bytes.Equal(dump, renamed) {
		t.Error("rename to a different name left the dump unchanged")
	}
	if got := s.NameFromDump(renamed); got != "SolarisINIT" {
		t.Errorf("NameFromDump after rename = %q, want \"SolarisINIT\"", got)
	}
	// The renamed dump must still be a valid edit buffer dump.
	if !s.IsEditBufferDump(renamed) {
		t.Error("renamed dump no longer classifies as edit buffer dump")
	}
}

func TestSolarisRenameTruncatesLongNames(t *testing.T) {
	s := NewSolaris()
	renamed, err := s.Rename(initDump(), "A name far too long for the field")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if got := s.NameFromDump(renamed); got != "A name far too long" {
		t.Errorf("NameFromDump = %q, want truncated 20-char name", got)
	}
}

func TestSolarisRenameNameNotFound(t *testing.T) {
	s := NewSolaris()
	if _, err := s.Rename([]byte{0xF0, 0x01, 0xF7}, "X"); !errors.Is(err, librarian.ErrNameNotFound) {
		t.Errorf("Rename on foreign data error = %v, want ErrNameNotFound", err)
	}
}

func TestSolarisLayerNames(t *testing.T) {
	s := NewSolaris()
	dump := initDump()

	if got := s.LayerCount(dump); got != 4 {
		t.Fatalf("LayerCount = %d, want 4", got)
	}
	for i := 0; i < 4; i++ {
		want := fmt.Sprintf("Part %d", i+1)
		if got := s.LayerName(dump, i); got != want {
			t.Errorf("LayerName(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestSolarisRenameLayerRoundTrip(t *testing.T) {
	s := NewSolaris()
	dump := initDump()

	same, err := s.RenameLayer(dump, 2, "Part 3")
	if err != nil {
		t.Fatalf("RenameLayer failed: %v", err)
	}
	if !bytes.Equal(dump, same) {
		t.Error("renaming layer to its current name changed the dump")
	}

	renamed, err := s.RenameLayer(dump, 2, "Sub Bass")
	if err != nil {
		t.Fatalf("RenameLayer failed: %v", err)
	}
	if got := s.LayerName(renamed, 2); got != "Sub Bass" {
		t.Errorf("LayerName(2) after rename = %q, want \"Sub Bass\"", got)
	}
	// The other layers and the preset name are untouched.
	if got := s.LayerName(renamed, 0); got != "Part 1" {
		t.Errorf("LayerName(0) = %q, want \"Part 1\"", got)
	}
	if got := s.NameFromDump(renamed); got != "INIT" {
		t.Errorf("NameFromDump = %q, want \"INIT\"", got)
	}
}

func TestSolarisStoredTags(t *testing.T) {
	s := NewSolaris()
	got := s.StoredTags(initDump())
	want := []string{"Mono", "Synthetic"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("StoredTags = %v, want %v", got, want)
	}
}

func TestSolarisChecksumLeniencyOnRead(t *testing.T) {
	s := NewSolaris()
	dump := initDump()

	// Corrupt the checksum byte of the preset name block. Extraction must
	// warn, not fail: slightly malformed dumps still get best-effort names.
	for _, msg := range sysex.Split(dump) {
		fields, ok := solarisBulkHeader.Match(msg.Data)
		if ok && fields["address"][0] == 0x20 {
			dump[msg.End-2] ^= 0x01
		}
	}
	if got := s.NameFromDump(dump); got != "INIT" {
		t.Errorf("NameFromDump with bad checksum = %q, want best-effort \"INIT\"", got)
	}
}

func TestSolarisIsPartOfEditBufferDump(t *testing.T) {
	s := NewSolaris()

	// Frame Start block echoed back during an edit buffer transfer.
	msg := []byte{0xF0, 0x00, 0x12, 0x34, 0x10, 0x10, 0x11, 0x7E, 0x7F, 0x7F, 0x04, 0xF7}
	if !s.IsPartOfEditBufferDump(msg) {
		t.Error("IsPartOfEditBufferDump = false for a bulk dump block")
	}

	wrong := append([]byte{}, msg...)
	wrong[6] = 0x12
	if s.IsPartOfEditBufferDump(wrong) {
		t.Error("IsPartOfEditBufferDump = true for a non-bulk opcode")
	}
}

func TestSolarisIsEditBufferDump(t *testing.T) {
	s := NewSolaris()

	if !s.IsEditBufferDump(initDump()) {
		t.Error("IsEditBufferDump = false for a complete dump")
	}

	// Without the trailing Frame End block it is not a finished dump.
	truncated := initDump()
	truncated = truncated[:len(truncated)-12]
	if s.IsEditBufferDump(truncated) {
		t.Error("IsEditBufferDump = true without a Frame End block")
	}

	if s.IsEditBufferDump(nil) {
		t.Error("IsEditBufferDump = true for empty data")
	}
}

func TestSolarisConvertToEditBuffer(t *testing.T) {
	s := NewSolaris()
	dump := initDump()

	out, err := s.ConvertToEditBuffer(1, dump)
	if err != nil {
		t.Fatalf("ConvertToEditBuffer failed: %v", err)
	}
	if !bytes.Equal(out, dump) {
		t.Error("ConvertToEditBuffer must pass a bulk dump through unchanged")
	}
	// The result must be a fresh buffer, not an alias.
	out[0] = 0x00
	if dump[0] != 0xF0 {
		t.Error("ConvertToEditBuffer aliases its input")
	}
}

func TestSolarisDetection(t *testing.T) {
	s := NewSolaris()

	detect := s.DeviceDetectMessage(0)
	want := []byte{0xF0, 0x7E, 0x7F, 0x06, 0x01, 0xF7}
	if !bytes.Equal(detect, want) {
		t.Errorf("DeviceDetectMessage = % X, want % X", detect, want)
	}
	if s.NeedsChannelSpecificDetection() {
		t.Error("NeedsChannelSpecificDetection = true, want false")
	}

	reply := []byte{
		0xF0, 0x7E, 0x03, 0x06, 0x02,
		0x00, 0x12, 0x34, // manufacturer
		0x10, 0x00, // family: Solaris
		0x01, 0x00, // member: keyboard
		0x01, 0x04, 0x02, 0x00, // OS revision
		0xF7,
	}
	ch, ok := s.ChannelFromDetectResponse(reply)
	if !ok || ch != 1 {
		t.Errorf("ChannelFromDetectResponse = (%d, %v), want (1, true)", ch, ok)
	}

	foreign := append([]byte{}, reply...)
	foreign[8] = 0x11
	if _, ok := s.ChannelFromDetectResponse(foreign); ok {
		t.Error("ChannelFromDetectResponse accepted a foreign family code")
	}
}

func TestSolarisBanks(t *testing.T) {
	s := NewSolaris()
	if s.NumberOfBanks() != 128 || s.PatchesPerBank() != 128 {
		t.Errorf("banks = %dx%d, want 128x128", s.NumberOfBanks(), s.PatchesPerBank())
	}
	descs := s.BankDescriptors()
	if len(descs) != 16 {
		t.Fatalf("BankDescriptors returned %d entries, want 16", len(descs))
	}
	if descs[0].Name != "John Bowen" || descs[0].Size != 62 {
		t.Errorf("bank 0 = %+v, want the John Bowen factory bank", descs[0])
	}

	sel := s.BankSelect(2, 5)
	if !bytes.Equal(sel, []byte{0xB2, 32, 5}) {
		t.Errorf("BankSelect(2, 5) = % X, want B2 20 05", sel)
	}
}

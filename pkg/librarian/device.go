// Package librarian defines the capability contract a device adaptation
// exposes to the editor/librarian host: detection, dump requests, dump
// classification, and patch-name handling. Adapters are stateless; every
// call is a pure request/response over the byte buffer it is given.
package librarian

import "errors"

// Sentinel errors shared by the adapters.
var (
	// ErrNotProgramDump is returned when a conversion is asked of a
	// message that is not a recognized single program dump.
	ErrNotProgramDump = errors.New("librarian: not a program dump, can't be converted")

	// ErrNameNotFound is returned by rename operations when the requested
	// name field is absent from the dump.
	ErrNameNotFound = errors.New("librarian: name field not found in dump")

	// ErrChecksumWriteFailed signals that a freshly computed checksum did
	// not verify. That points at an encoding defect, so the rewrite is
	// aborted instead of emitting a corrupted dump.
	ErrChecksumWriteFailed = errors.New("librarian: new checksum failed verification")
)

// BankDescriptor describes one bank of the device's patch memory. This is
// static configuration passed through to the host for browsing.
type BankDescriptor struct {
	Bank int    `json:"bank"`
	Name string `json:"name"`
	Size int    `json:"size"`
	Type string `json:"type"`
	ROM  bool   `json:"isROM"`
}

// Device is the contract every adaptation implements. Buffers are never
// mutated; operations that modify a dump return a new buffer.
type Device interface {
	// Name identifies the device family, e.g. "JB Solaris".
	Name() string

	// DeviceDetectMessage builds the message that makes the device reply
	// with something ChannelFromDetectResponse recognizes.
	DeviceDetectMessage(channel int) []byte

	// ChannelFromDetectResponse inspects a received message and, when it
	// is a valid detection reply, reports the device's MIDI channel.
	ChannelFromDetectResponse(message []byte) (int, bool)

	// NeedsChannelSpecificDetection reports whether the detect message
	// must be sent once per MIDI channel.
	NeedsChannelSpecificDetection() bool

	// EditBufferRequest builds the request for the device's edit buffer.
	EditBufferRequest(channel int) []byte

	// IsEditBufferDump reports whether data is a complete edit buffer
	// dump, possibly spanning several SysEx messages.
	IsEditBufferDump(data []byte) bool

	// IsPartOfEditBufferDump reports whether a single message belongs to
	// an edit buffer dump still being assembled.
	IsPartOfEditBufferDump(message []byte) bool

	// ConvertToEditBuffer turns a dump into the byte sequence that loads
	// it into the device's edit buffer.
	ConvertToEditBuffer(channel int, message []byte) ([]byte, error)

	// NameFromDump extracts the patch name, or a sentinel when absent.
	NameFromDump(data []byte) string

	// Rename returns a copy of data carrying newName, with checksums
	// recomputed and every byte outside the name field preserved.
	Rename(data []byte, newName string) ([]byte, error)

	NumberOfBanks() int
	PatchesPerBank() int
	BankDescriptors() []BankDescriptor
}

// ProgramDumper is implemented by devices that support single program dumps
// addressed by program number.
type ProgramDumper interface {
	ProgramDumpRequest(channel, program int) []byte
	IsSingleProgramDump(message []byte) bool
}

// Layered is implemented by devices whose patches carry independently named
// layers or parts.
type Layered interface {
	LayerCount(data []byte) int
	LayerName(data []byte, layer int) string
	RenameLayer(data []byte, layer int, newName string) ([]byte, error)
}

// Tagged is implemented by devices that store category tags inside the patch.
type Tagged interface {
	StoredTags(data []byte) []string
}

// DetectTimer lets a device recommend how long the host should wait for a
// detection reply before giving up.
type DetectTimer interface {
	DetectWaitMilliseconds() int
}

// BankSelector is implemented by devices reachable through a bank select
// controller message.
type BankSelector interface {
	BankSelect(channel, bank int) []byte
}

// DefaultNamer is implemented by devices with a well-known factory-init
// patch name.
type DefaultNamer interface {
	IsDefaultName(patchName string) bool
}

// SetupHelper provides human-readable setup instructions for the device.
type SetupHelper interface {
	SetupHelp() string
}

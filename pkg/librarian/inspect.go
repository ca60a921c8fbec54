package librarian

// DumpKind classifies a received buffer.
type DumpKind string

const (
	KindEditBuffer    DumpKind = "edit-buffer"
	KindSingleProgram DumpKind = "single-program"
	KindUnknown       DumpKind = "unknown"
)

// Classify reports what kind of dump data is for the given device.
func Classify(d Device, data []byte) DumpKind {
	if d.IsEditBufferDump(data) {
		return KindEditBuffer
	}
	if pd, ok := d.(ProgramDumper); ok && pd.IsSingleProgramDump(data) {
		return KindSingleProgram
	}
	return KindUnknown
}

// Identify finds the first candidate device that recognizes data as one of
// its dump forms.
func Identify(data []byte, candidates []Device) (Device, DumpKind, bool) {
	for _, d := range candidates {
		if kind := Classify(d, data); kind != KindUnknown {
			return d, kind, true
		}
	}
	return nil, KindUnknown, false
}

// Summary is the host-facing digest of a dump: everything the browser shows
// about a patch without understanding the device protocol itself.
type Summary struct {
	Device string   `json:"device"`
	Kind   DumpKind `json:"kind"`
	Name   string   `json:"name"`
	Layers []string `json:"layers,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// Inspect gathers the patch name and, where the device supports them, layer
// names and stored category tags.
func Inspect(d Device, data []byte) Summary {
	s := Summary{
		Device: d.Name(),
		Kind:   Classify(d, data),
		Name:   d.NameFromDump(data),
	}
	if ld, ok := d.(Layered); ok {
		n := ld.LayerCount(data)
		for i := 0; i < n; i++ {
			s.Layers = append(s.Layers, ld.LayerName(data, i))
		}
	}
	if td, ok := d.(Tagged); ok {
		s.Tags = td.StoredTags(data)
	}
	return s
}

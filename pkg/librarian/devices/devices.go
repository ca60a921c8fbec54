package devices

import (
	"strings"

	"github.com/james-see/synthlibrarian/pkg/librarian"
)

// All returns one instance of every supported device adaptation. Adapters
// are stateless, so sharing instances is fine.
func All() []librarian.Device {
	return []librarian.Device{
		NewSolaris(),
		NewMatrix6(),
	}
}

// ByName resolves a device by CLI/API identifier.
func ByName(name string) (librarian.Device, bool) {
	switch strings.ToLower(name) {
	case "solaris", "jb-solaris", "jbsolaris":
		return NewSolaris(), true
	case "matrix6", "matrix-6", "matrix6r":
		return NewMatrix6(), true
	}
	return nil, false
}

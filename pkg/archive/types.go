package archive

import (
	"fmt"

	"github.com/ttkb-oss/psy-k/pkg/object"
)

// Errors
var (
	ErrModuleNotFound  = &ArchiveError{"module not found"}
	ErrDuplicateModule = &ArchiveError{"duplicate module name"}
	ErrNotObject       = &ArchiveError{"payload is not an object module"}
	ErrNameTooLong     = &ArchiveError{"module name longer than 8 bytes"}
	ErrEmptyName       = &ArchiveError{"empty module name"}
)

// ArchiveError represents a library archive error.
type ArchiveError struct {
	Message string
}

func (e *ArchiveError) Error() string {
	return e.Message
}

// FormatError reports a malformed archive file.
type FormatError struct {
	Offset int
	Msg    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("archive: %s at offset %d", e.Msg, e.Offset)
}

// Entry is one module slot in a library: directory metadata plus the
// module's raw bytes. The payload stays opaque until Object is called, so
// listing a library never requires every member to decode.
type Entry struct {
	name    [8]byte
	created Timestamp
	exports [][]byte
	payload []byte

	module *object.Module
}

// Name returns the module name with the space padding removed.
func (e *Entry) Name() string {
	end := len(e.name)
	for end > 0 && e.name[end-1] == ' ' {
		end--
	}
	return string(e.name[:end])
}

// RawName returns the fixed-width directory name field.
func (e *Entry) RawName() [8]byte { return e.name }

// Created returns the entry's packed creation time.
func (e *Entry) Created() Timestamp { return e.created }

// Exports returns the directory's export names. A name whose first byte
// is NUL renders with a leading "*", matching the original librarian's
// listings.
func (e *Entry) Exports() []string {
	names := make([]string, 0, len(e.exports))
	for _, raw := range e.exports {
		if len(raw) > 0 && raw[0] == 0 {
			names = append(names, "*"+string(raw[1:]))
		} else {
			names = append(names, string(raw))
		}
	}
	return names
}

// Payload returns a copy of the entry's raw module bytes.
func (e *Entry) Payload() []byte {
	out := make([]byte, len(e.payload))
	copy(out, e.payload)
	return out
}

// Size returns the payload length in bytes.
func (e *Entry) Size() int { return len(e.payload) }

// Object parses the entry's payload as an object module. The result is
// cached until the payload changes.
func (e *Entry) Object() (*object.Module, error) {
	if e.module != nil {
		return e.module, nil
	}
	m, err := object.Parse(e.payload)
	if err != nil {
		return nil, err
	}
	e.module = m
	return m, nil
}

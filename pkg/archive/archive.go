// Package archive reads and writes module libraries: a "LIB" header
// followed by a directory-and-payload entry per module. Entries carry an
// 8-byte space-padded name, a packed creation time, and an export table so
// the linker can pick modules without decoding them.
package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ttkb-oss/psy-k/pkg/object"
)

// Magic identifies a library file.
var Magic = []byte("LIB")

// Version is the only library version this package reads and writes.
const Version uint8 = 1

// entryHeaderSize is the fixed part of an entry: name, created, offset,
// size.
const entryHeaderSize = 20

// Archive is an in-memory library. Mutations operate on the entry list;
// Serialize recomputes every directory offset and size, so archives with
// stale stored offsets are repaired on rewrite.
type Archive struct {
	version    uint8
	entries    []*Entry
	violations []string
}

// New returns an empty library.
func New() *Archive {
	return &Archive{version: Version}
}

// ModuleSource names one object module for Create.
type ModuleSource struct {
	Name    string
	Payload []byte
}

// Create builds a library from object modules in the given order, each
// stamped with the current time. The first module that fails to add
// aborts the build.
func Create(modules []ModuleSource) (*Archive, error) {
	a := New()
	for _, m := range modules {
		if err := a.Add(m.Name, m.Payload); err != nil {
			return nil, fmt.Errorf("module %q: %w", m.Name, err)
		}
	}
	return a, nil
}

// Parse decodes a library file.
func Parse(data []byte) (*Archive, error) {
	if len(data) < 4 {
		return nil, &FormatError{Offset: 0, Msg: "truncated header"}
	}
	if !bytes.Equal(data[:3], Magic) {
		return nil, &FormatError{Offset: 0, Msg: fmt.Sprintf("bad magic % x", data[:3])}
	}
	if data[3] != Version {
		return nil, &FormatError{Offset: 3, Msg: fmt.Sprintf("unsupported version %d", data[3])}
	}

	a := &Archive{version: data[3]}
	seen := make(map[string]bool)

	off := 4
	for off < len(data) {
		start := off
		if len(data)-off < entryHeaderSize {
			return nil, &FormatError{Offset: off, Msg: "truncated entry header"}
		}

		e := &Entry{}
		copy(e.name[:], data[off:off+8])
		e.created = Timestamp(binary.LittleEndian.Uint32(data[off+8:]))
		offset := binary.LittleEndian.Uint32(data[off+12:])
		size := binary.LittleEndian.Uint32(data[off+16:])
		off += entryHeaderSize

		// Export table, terminated by a zero-length name.
		for {
			if off >= len(data) {
				return nil, &FormatError{Offset: off, Msg: "truncated export table"}
			}
			n := int(data[off])
			off++
			if n == 0 {
				break
			}
			if len(data)-off < n {
				return nil, &FormatError{Offset: off, Msg: "truncated export name"}
			}
			name := make([]byte, n)
			copy(name, data[off:off+n])
			e.exports = append(e.exports, name)
			off += n
		}

		if int(offset) != off-start {
			a.violations = append(a.violations,
				fmt.Sprintf("module %q: stored offset %d, directory is %d bytes", e.Name(), offset, off-start))
		}
		if size < offset {
			return nil, &FormatError{Offset: start, Msg: fmt.Sprintf("module %q: size %d smaller than offset %d", e.Name(), size, offset)}
		}

		// The stored offset locates the payload even when it disagrees
		// with the directory bytes we just walked.
		payloadStart := start + int(offset)
		payloadEnd := start + int(size)
		if payloadStart > len(data) || payloadEnd > len(data) {
			return nil, &FormatError{Offset: start, Msg: fmt.Sprintf("module %q: entry extends past end of file", e.Name())}
		}
		// The entry must end past the directory bytes just walked, or the
		// scan cursor would stop advancing.
		if payloadEnd <= off {
			return nil, &FormatError{Offset: start, Msg: fmt.Sprintf("module %q: size %d ends inside its own directory", e.Name(), size)}
		}
		e.payload = make([]byte, payloadEnd-payloadStart)
		copy(e.payload, data[payloadStart:payloadEnd])
		off = payloadEnd

		if seen[e.Name()] {
			a.violations = append(a.violations, fmt.Sprintf("duplicate module %q", e.Name()))
		}
		seen[e.Name()] = true
		a.entries = append(a.entries, e)
	}

	return a, nil
}

// Serialize encodes the library. Directory offsets and sizes are computed
// from the current exports and payloads, never copied from the file the
// archive was parsed from.
func (a *Archive) Serialize() []byte {
	var buf []byte
	buf = append(buf, Magic...)
	buf = append(buf, a.version)

	for _, e := range a.entries {
		headerLen := entryHeaderSize + 1 // terminator
		for _, name := range e.exports {
			headerLen += 1 + len(name)
		}

		buf = append(buf, e.name[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(e.created))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(headerLen))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(headerLen+len(e.payload)))
		for _, name := range e.exports {
			buf = append(buf, uint8(len(name)))
			buf = append(buf, name...)
		}
		buf = append(buf, 0)
		buf = append(buf, e.payload...)
	}
	return buf
}

// Entries returns the modules in directory order.
func (a *Archive) Entries() []*Entry {
	out := make([]*Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Len returns the module count.
func (a *Archive) Len() int { return len(a.entries) }

// Violations lists directory oddities found while parsing: duplicate
// module names, stored offsets that disagree with the directory bytes.
// Legacy librarians produced both; the archive stays usable.
func (a *Archive) Violations() []string { return a.violations }

// Lookup returns the entry with the given name, or nil. Names compare
// after padding normalization, so "A56" finds "A56     ".
func (a *Archive) Lookup(name string) *Entry {
	want, err := normalizeName(name)
	if err != nil {
		return nil
	}
	for _, e := range a.entries {
		if e.name == want {
			return e
		}
	}
	return nil
}

// Extract returns a copy of the named module's bytes.
func (a *Archive) Extract(name string) ([]byte, error) {
	e := a.Lookup(name)
	if e == nil {
		return nil, ErrModuleNotFound
	}
	return e.Payload(), nil
}

// Add appends a module with the current time as its creation stamp.
func (a *Archive) Add(name string, payload []byte) error {
	return a.AddWithTimestamp(name, payload, TimestampFromTime(time.Now()))
}

// AddWithTimestamp appends a module. The payload must be an object module;
// its export table is scanned from the payload. The archive is unchanged
// on error.
func (a *Archive) AddWithTimestamp(name string, payload []byte, created Timestamp) error {
	raw, err := normalizeName(name)
	if err != nil {
		return err
	}
	for _, e := range a.entries {
		if e.name == raw {
			return ErrDuplicateModule
		}
	}

	exports, err := object.ScanExports(payload)
	if err != nil {
		return ErrNotObject
	}

	e := &Entry{name: raw, created: created}
	e.payload = make([]byte, len(payload))
	copy(e.payload, payload)
	for _, name := range exports {
		e.exports = append(e.exports, []byte(name))
	}
	a.entries = append(a.entries, e)
	return nil
}

// Update replaces the named module's payload in place, rescans its
// exports, and refreshes its creation stamp. The entry keeps its
// directory position.
func (a *Archive) Update(name string, payload []byte) error {
	return a.UpdateWithTimestamp(name, payload, TimestampFromTime(time.Now()))
}

// UpdateWithTimestamp is Update with an explicit creation stamp.
func (a *Archive) UpdateWithTimestamp(name string, payload []byte, created Timestamp) error {
	e := a.Lookup(name)
	if e == nil {
		return ErrModuleNotFound
	}

	exports, err := object.ScanExports(payload)
	if err != nil {
		return ErrNotObject
	}

	e.payload = make([]byte, len(payload))
	copy(e.payload, payload)
	e.exports = nil
	for _, name := range exports {
		e.exports = append(e.exports, []byte(name))
	}
	e.created = created
	e.module = nil
	return nil
}

// Delete removes the named module.
func (a *Archive) Delete(name string) error {
	want, err := normalizeName(name)
	if err != nil {
		return err
	}
	for i, e := range a.entries {
		if e.name == want {
			a.entries = append(a.entries[:i], a.entries[i+1:]...)
			return nil
		}
	}
	return ErrModuleNotFound
}

// normalizeName uppercases and space-pads a module name into its
// fixed-width directory form.
func normalizeName(name string) ([8]byte, error) {
	name = strings.TrimRight(name, " ")
	var raw [8]byte
	if name == "" {
		return raw, ErrEmptyName
	}
	if len(name) > 8 {
		return raw, ErrNameTooLong
	}
	for i := range raw {
		raw[i] = ' '
	}
	copy(raw[:], strings.ToUpper(name))
	return raw, nil
}

// ModuleNameFromPath derives a module name from a file path the way the
// original librarian did: the base name up to its first dot, uppercased
// and truncated to 8 bytes.
func ModuleNameFromPath(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	if len(base) > 8 {
		base = base[:8]
	}
	return strings.ToUpper(base)
}

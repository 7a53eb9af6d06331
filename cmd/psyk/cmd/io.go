package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ttkb-oss/psy-k/pkg/archive"
	"github.com/ttkb-oss/psy-k/pkg/object"
)

// readLibrary loads and parses a library file, reporting directory
// violations on stderr without failing.
func readLibrary(path string) (*archive.Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	a, err := archive.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, v := range a.Violations() {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", path, v)
	}
	return a, nil
}

// readObject loads a file and checks it is an object module before the
// archive takes ownership of the bytes.
func readObject(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 3 || !bytes.Equal(data[:3], object.Magic) {
		return nil, fmt.Errorf("%s: not an object module", path)
	}
	return data, nil
}

// writeLibrary serializes an archive over the file it came from.
func writeLibrary(path string, a *archive.Archive) error {
	return os.WriteFile(path, a.Serialize(), 0644)
}

// isLibrary reports whether data starts with the library magic.
func isLibrary(data []byte) bool {
	return len(data) >= 3 && bytes.Equal(data[:3], archive.Magic)
}

package archive

import (
	"fmt"
	"strings"
)

// Listing renders the directory the way the original librarian's /l
// option printed it: a header, a blank line, then one row per module with
// each export name followed by a space.
func (a *Archive) Listing() string {
	var b strings.Builder
	b.WriteString("Module     Date     Time   Externals defined\n\n")
	for _, e := range a.entries {
		var exports strings.Builder
		for _, name := range e.Exports() {
			exports.WriteString(name)
			exports.WriteByte(' ')
		}
		raw := e.RawName()
		fmt.Fprintf(&b, "%s %s %s\n", raw[:], e.created, exports.String())
	}
	return b.String()
}

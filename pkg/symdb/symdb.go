// Package symdb maintains a persistent index of exported symbols across
// libraries, so tooling can answer "which library defines InitCARD"
// without re-reading every archive. One key space maps symbol to
// (library, module); a second maps library to its own keys so a rebuild
// replaces exactly that library's contribution.
package symdb

import (
	"fmt"
	"sort"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ttkb-oss/psy-k/pkg/archive"
)

// Location is one definition site of a symbol.
type Location struct {
	Library string
	Module  string
}

// DB is a symbol index backed by a pebble store.
type DB struct {
	db *pebble.DB
}

// Open opens or creates the index at path.
func Open(path string) (*DB, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Key layout. Symbol and library names are length-prefixed because export
// names may contain any byte; module names are the 8-byte directory form
// trimmed, which never embeds a separator.
//
//	's' len(sym) sym len(lib) lib module  ->  build id
//	'l' len(lib) lib len(sym) sym module  ->  nil

func symKey(symbol, library, module string) []byte {
	key := make([]byte, 0, 3+len(symbol)+len(library)+len(module))
	key = append(key, 's', uint8(len(symbol)))
	key = append(key, symbol...)
	key = append(key, uint8(len(library)))
	key = append(key, library...)
	return append(key, module...)
}

func libKey(library, symbol, module string) []byte {
	key := make([]byte, 0, 3+len(symbol)+len(library)+len(module))
	key = append(key, 'l', uint8(len(library)))
	key = append(key, library...)
	key = append(key, uint8(len(symbol)))
	key = append(key, symbol...)
	return append(key, module...)
}

// prefixEnd returns the smallest key greater than every key with the
// given prefix.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// IndexArchive records every export of every module in a. Keys from a
// previous build of the same library are removed first, so deletions in
// the archive propagate. Each build writes a fresh ksuid as the symbol
// values, which doubles as a build marker for debugging.
func (d *DB) IndexArchive(library string, a *archive.Archive) error {
	if len(library) == 0 || len(library) > 255 {
		return fmt.Errorf("symdb: library name %q out of range", library)
	}

	batch := d.db.NewBatch()
	defer batch.Close()

	// Drop the library's previous contribution.
	prefix := libKey(library, "", "")[:2+len(library)]
	iter, err := d.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return err
	}
	for iter.First(); iter.Valid(); iter.Next() {
		key := iter.Key()
		rest := key[len(prefix):]
		if len(rest) < 1 {
			continue
		}
		n := int(rest[0])
		if len(rest) < 1+n {
			continue
		}
		symbol := string(rest[1 : 1+n])
		module := string(rest[1+n:])

		if err := batch.Delete(symKey(symbol, library, module), nil); err != nil {
			iter.Close()
			return err
		}
		if err := batch.Delete(append([]byte(nil), key...), nil); err != nil {
			iter.Close()
			return err
		}
	}
	if err := iter.Close(); err != nil {
		return err
	}

	build := ksuid.New()
	for _, e := range a.Entries() {
		for _, symbol := range e.Exports() {
			if err := batch.Set(symKey(symbol, library, e.Name()), build.Bytes(), nil); err != nil {
				return err
			}
			if err := batch.Set(libKey(library, symbol, e.Name()), nil, nil); err != nil {
				return err
			}
		}
	}

	return batch.Commit(pebble.NoSync)
}

// Remove drops a library from the index.
func (d *DB) Remove(library string) error {
	return d.IndexArchive(library, archive.New())
}

// Lookup returns every known definition site of symbol, ordered by
// library then module.
func (d *DB) Lookup(symbol string) ([]Location, error) {
	if len(symbol) > 255 {
		return nil, nil
	}

	prefix := symKey(symbol, "", "")[:2+len(symbol)]
	iter, err := d.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var locations []Location
	for iter.First(); iter.Valid(); iter.Next() {
		rest := iter.Key()[len(prefix):]
		if len(rest) < 1 {
			continue
		}
		n := int(rest[0])
		if len(rest) < 1+n {
			continue
		}
		locations = append(locations, Location{
			Library: string(rest[1 : 1+n]),
			Module:  string(rest[1+n:]),
		})
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	sort.Slice(locations, func(i, j int) bool {
		if locations[i].Library != locations[j].Library {
			return locations[i].Library < locations[j].Library
		}
		return locations[i].Module < locations[j].Module
	})
	return locations, nil
}

// psylib is a drop-in stand-in for PSYLIB.EXE, keeping its slash-option
// command line so existing build scripts keep working.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ttkb-oss/psy-k/pkg/archive"
)

const usage = `PSY-Q object module librarian

Usage:
  psylib /l <library.lib>
  psylib /x <library.lib> [module...]
  psylib /a <library.lib> <obj1> [obj2...]
  psylib /u <library.lib> <obj1> [obj2...]
  psylib /d <library.lib> <module1> [module2...]

Options:
  /l  list the modules in a library
  /x  extract modules as OBJ files
  /a  add OBJ files to a library, creating it if needed
  /u  update modules from OBJ files, adding new ones
  /d  delete modules from a library
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	option := args[0]
	rest := args[1:]

	switch option {
	case "/l":
		if len(rest) != 1 {
			return usageError()
		}
		return list(rest[0])
	case "/x":
		if len(rest) < 1 {
			return usageError()
		}
		return extract(rest[0], rest[1:])
	case "/a":
		if len(rest) < 2 {
			return usageError()
		}
		return add(rest[0], rest[1:])
	case "/u":
		if len(rest) < 2 {
			return usageError()
		}
		return update(rest[0], rest[1:])
	case "/d":
		if len(rest) < 2 {
			return usageError()
		}
		return remove(rest[0], rest[1:])
	}

	fmt.Fprintf(os.Stderr, "Invalid option: %s\n", option)
	fmt.Fprint(os.Stderr, usage)
	os.Exit(1)
	return nil
}

func usageError() error {
	fmt.Fprint(os.Stderr, usage)
	os.Exit(1)
	return nil
}

func readLibrary(path string) (*archive.Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	a, err := archive.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

func writeLibrary(path string, a *archive.Archive) error {
	return os.WriteFile(path, a.Serialize(), 0644)
}

func list(path string) error {
	a, err := readLibrary(path)
	if err != nil {
		return err
	}
	fmt.Print(a.Listing())
	return nil
}

func extract(path string, modules []string) error {
	a, err := readLibrary(path)
	if err != nil {
		return err
	}

	entries := a.Entries()
	if len(modules) > 0 {
		entries = nil
		for _, name := range modules {
			e := a.Lookup(name)
			if e == nil {
				return fmt.Errorf("%s: no module %q", path, name)
			}
			entries = append(entries, e)
		}
	}

	for _, e := range entries {
		filename := e.Name() + ".OBJ"
		if err := os.WriteFile(filename, e.Payload(), 0644); err != nil {
			return err
		}
		when := e.Created().Time()
		if err := os.Chtimes(filename, when, when); err != nil {
			return err
		}
		fmt.Printf("Extracted object file %s\n", filename)
	}
	return nil
}

// add appends modules. A missing library file is created, matching the
// original's behavior of building libraries with repeated /a calls.
func add(path string, objs []string) error {
	a, err := readLibrary(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		a = archive.New()
	}

	for _, objPath := range objs {
		if err := addModule(a, objPath); err != nil {
			return err
		}
	}
	return writeLibrary(path, a)
}

// update replaces modules in place, adding any that are not present yet.
func update(path string, objs []string) error {
	a, err := readLibrary(path)
	if err != nil {
		return err
	}

	for _, objPath := range objs {
		payload, err := os.ReadFile(objPath)
		if err != nil {
			return err
		}
		name := archive.ModuleNameFromPath(objPath)
		err = a.Update(name, payload)
		if err == archive.ErrModuleNotFound {
			err = a.Add(name, payload)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", objPath, err)
		}
		fmt.Printf("Updated module %s\n", name)
	}
	return writeLibrary(path, a)
}

func remove(path string, modules []string) error {
	a, err := readLibrary(path)
	if err != nil {
		return err
	}

	for _, name := range modules {
		if err := a.Delete(name); err != nil {
			return fmt.Errorf("%s: %q: %w", path, name, err)
		}
		fmt.Printf("Deleted module %s\n", name)
	}
	return writeLibrary(path, a)
}

func addModule(a *archive.Archive, objPath string) error {
	payload, err := os.ReadFile(objPath)
	if err != nil {
		return err
	}
	name := archive.ModuleNameFromPath(filepath.Base(objPath))
	if err := a.AddWithTimestamp(name, payload, modTimestamp(objPath)); err != nil {
		return fmt.Errorf("%s: %w", objPath, err)
	}
	fmt.Printf("Added module %s\n", name)
	return nil
}

// modTimestamp stamps an entry with the OBJ file's own modification time,
// the way the original recorded when the module was built rather than
// when it was archived.
func modTimestamp(path string) archive.Timestamp {
	info, err := os.Stat(path)
	if err != nil {
		return archive.TimestampFromTime(time.Now())
	}
	return archive.TimestampFromTime(info.ModTime())
}

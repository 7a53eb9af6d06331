package symdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttkb-oss/psy-k/pkg/archive"
	"github.com/ttkb-oss/psy-k/pkg/codec"
	"github.com/ttkb-oss/psy-k/pkg/object"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

func testArchive(t *testing.T, modules map[string][]string) *archive.Archive {
	t.Helper()

	a := archive.New()
	for name, exports := range modules {
		records := []codec.Record{
			codec.SetCPU{Type: codec.CPUMIPSR3K},
			codec.SectionDef{Section: 1, Group: 0, Align: 8, Name: ".text"},
			codec.SwitchSection{ID: 1},
			codec.Code{Data: []byte{0x00, 0x00, 0x00, 0x00}},
		}
		for i, sym := range exports {
			records = append(records, codec.XDEF{Number: uint16(i + 1), Section: 1, Offset: 0, Name: sym})
		}
		records = append(records, codec.End{})

		m, err := object.New(records)
		require.NoError(t, err)
		require.NoError(t, a.Add(name, m.Serialize()))
	}
	return a
}

func TestDB_IndexAndLookup(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.IndexArchive("libcard.lib", testArchive(t, map[string][]string{
		"A74":  {"InitCARD", "StartCARD"},
		"C112": {"_card_info"},
	})))
	require.NoError(t, db.IndexArchive("libsn.lib", testArchive(t, map[string][]string{
		"SN":   {"InitCARD"},
		"EXIT": {"exit"},
	})))

	locations, err := db.Lookup("InitCARD")
	require.NoError(t, err)
	assert.Equal(t, []Location{
		{Library: "libcard.lib", Module: "A74"},
		{Library: "libsn.lib", Module: "SN"},
	}, locations)

	locations, err = db.Lookup("exit")
	require.NoError(t, err)
	assert.Equal(t, []Location{{Library: "libsn.lib", Module: "EXIT"}}, locations)

	locations, err = db.Lookup("unknown_symbol")
	require.NoError(t, err)
	assert.Empty(t, locations)
}

func TestDB_ReindexReplacesLibrary(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.IndexArchive("libcard.lib", testArchive(t, map[string][]string{
		"A74": {"InitCARD", "StartCARD"},
	})))

	// StartCARD moved to another module, InitCARD went away.
	require.NoError(t, db.IndexArchive("libcard.lib", testArchive(t, map[string][]string{
		"B20": {"StartCARD"},
	})))

	locations, err := db.Lookup("InitCARD")
	require.NoError(t, err)
	assert.Empty(t, locations, "stale symbol survived reindex")

	locations, err = db.Lookup("StartCARD")
	require.NoError(t, err)
	assert.Equal(t, []Location{{Library: "libcard.lib", Module: "B20"}}, locations)
}

func TestDB_ReindexLeavesOtherLibrariesAlone(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.IndexArchive("liba.lib", testArchive(t, map[string][]string{
		"M1": {"shared"},
	})))
	require.NoError(t, db.IndexArchive("libb.lib", testArchive(t, map[string][]string{
		"M2": {"shared"},
	})))

	require.NoError(t, db.IndexArchive("liba.lib", testArchive(t, map[string][]string{})))

	locations, err := db.Lookup("shared")
	require.NoError(t, err)
	assert.Equal(t, []Location{{Library: "libb.lib", Module: "M2"}}, locations)
}

func TestDB_Remove(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.IndexArchive("libcard.lib", testArchive(t, map[string][]string{
		"A74": {"InitCARD"},
	})))
	require.NoError(t, db.Remove("libcard.lib"))

	locations, err := db.Lookup("InitCARD")
	require.NoError(t, err)
	assert.Empty(t, locations)
}

func TestDB_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	db, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, db.IndexArchive("libcard.lib", testArchive(t, map[string][]string{
		"A74": {"InitCARD"},
	})))
	require.NoError(t, db.Close())

	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()

	locations, err := db.Lookup("InitCARD")
	require.NoError(t, err)
	assert.Equal(t, []Location{{Library: "libcard.lib", Module: "A74"}}, locations)
}

func TestDB_IndexArchiveValidatesName(t *testing.T) {
	db := openTestDB(t)

	assert.Error(t, db.IndexArchive("", archive.New()))
}

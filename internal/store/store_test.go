package store

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/datahub/internal/catalog"
	"github.com/soltixdb/datahub/internal/datagen"
	"github.com/soltixdb/datahub/internal/records"
)

func smallConfig() datagen.Config {
	return datagen.Config{Seed: 3, FromYear: 2022, ToYear: 2023}
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c
}

func TestSnapshot_EncodeDecode(t *testing.T) {
	bundle, err := datagen.Generate(smallConfig())
	require.NoError(t, err)

	for _, algo := range []Algorithm{None, Snappy} {
		t.Run(algo.String(), func(t *testing.T) {
			snap := &Snapshot{Seed: 3, FromYear: 2022, ToYear: 2023, Bundle: bundle}
			data, err := EncodeSnapshot(snap, algo)
			require.NoError(t, err)
			assert.Equal(t, []byte("DHSN"), data[:4])
			assert.Equal(t, SnapshotVersion, data[4])
			assert.Equal(t, byte(algo), data[5])

			got, err := DecodeSnapshot(data)
			require.NoError(t, err)
			assert.Equal(t, uint64(3), got.Seed)
			assert.Equal(t, bundle.Counts(), got.Bundle.Counts())
			assert.Equal(t, bundle.Poverty, got.Bundle.Poverty)
		})
	}
}

func TestSnapshot_SnappyIsSmaller(t *testing.T) {
	bundle, err := datagen.Generate(smallConfig())
	require.NoError(t, err)
	snap := &Snapshot{Bundle: bundle}

	raw, err := EncodeSnapshot(snap, None)
	require.NoError(t, err)
	compressed, err := EncodeSnapshot(snap, Snappy)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(raw))
}

func TestDecodeSnapshot_Errors(t *testing.T) {
	good, err := EncodeSnapshot(&Snapshot{Bundle: &records.Bundle{}}, Snappy)
	require.NoError(t, err)

	wrongVersion := bytes.Clone(good)
	wrongVersion[4] = SnapshotVersion + 1
	_, err = DecodeSnapshot(wrongVersion)
	assert.ErrorIs(t, err, ErrSnapshotVersion)

	_, err = DecodeSnapshot([]byte("nope"))
	assert.ErrorIs(t, err, ErrSnapshotCorrupt)

	truncated := good[:len(good)-2]
	_, err = DecodeSnapshot(truncated)
	assert.ErrorIs(t, err, ErrSnapshotCorrupt)

	badAlgo := bytes.Clone(good)
	badAlgo[5] = 9
	_, err = DecodeSnapshot(badAlgo)
	assert.ErrorIs(t, err, ErrSnapshotCorrupt)
}

func TestDecodeSnapshot_LengthHeader(t *testing.T) {
	withHeader := func(rest ...byte) []byte {
		return append([]byte{'D', 'H', 'S', 'N', SnapshotVersion, byte(None)}, rest...)
	}

	// length varint cut short
	_, err := DecodeSnapshot(withHeader(0x80))
	assert.ErrorIs(t, err, ErrSnapshotCorrupt)

	// length larger than the payload that follows
	_, err = DecodeSnapshot(withHeader(0x05, '{', '}'))
	assert.ErrorIs(t, err, ErrSnapshotCorrupt)

	snap, err := DecodeSnapshot(withHeader(0x02, '{', '}'))
	require.NoError(t, err)
	assert.NotNil(t, snap.Bundle)
}

func TestParseAlgorithm(t *testing.T) {
	a, err := ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, Snappy, a)

	a, err = ParseAlgorithm("none")
	require.NoError(t, err)
	assert.Equal(t, None, a)

	_, err = ParseAlgorithm("zstd")
	assert.Error(t, err)
}

func TestOpen_GeneratesThenLoadsSnapshot(t *testing.T) {
	cat := testCatalog(t)
	path := filepath.Join(t.TempDir(), "data", "snapshot.bin")

	s, err := Open(cat, Options{Generator: smallConfig(), SnapshotPath: path, WriteSnapshot: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceGenerated, s.Info().Source)
	assert.Equal(t, 2*len(records.Provinces), s.Info().Rows[catalog.NutritionID])

	_, err = os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := Open(cat, Options{Generator: datagen.DefaultConfig(), SnapshotPath: path}, nil)
	require.NoError(t, err)
	info := loaded.Info()
	assert.Equal(t, SourceSnapshot, info.Source)
	assert.Equal(t, uint64(3), info.Seed)
	assert.Equal(t, 2022, info.FromYear)
	assert.Equal(t, s.Bundle().Nutrition, loaded.Bundle().Nutrition)
}

func TestOpen_CorruptSnapshotFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.bin")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	_, err := Open(testCatalog(t), Options{Generator: smallConfig(), SnapshotPath: path}, nil)
	assert.ErrorIs(t, err, ErrSnapshotCorrupt)
}

func TestStore_Table(t *testing.T) {
	bundle, err := datagen.Generate(smallConfig())
	require.NoError(t, err)
	s := New(testCatalog(t), bundle, Info{Source: SourceGenerated}, nil)

	tbl, err := s.Table(catalog.PovertyID)
	require.NoError(t, err)
	assert.Equal(t, "tahun", tbl.Columns[0])
	assert.Len(t, tbl.Rows, 2*len(records.Provinces)*3)
	assert.Len(t, tbl.Rows[0].Row(), len(tbl.Columns))

	_, err = s.Table("bps-x-001")
	assert.ErrorIs(t, err, catalog.ErrDatasetNotFound)

	s.Replace(nil, Info{Source: SourceGenerated})
	tbl, err = s.Table(catalog.PovertyID)
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows)
}

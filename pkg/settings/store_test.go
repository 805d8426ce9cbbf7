package settings

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimits() Limits {
	return Limits{FreqMin: 7000000, FreqMax: 7200000, StepCount: 5}
}

func testDefaults() Settings {
	return Settings{Frequency: 7100000, StepIndex: 2}
}

func newTestStore(t *testing.T) (*Store, *FileRegion) {
	t.Helper()
	region, err := OpenFileRegion(filepath.Join(t.TempDir(), "settings.bin"))
	require.NoError(t, err)
	t.Cleanup(func() { region.Close() })

	store, err := NewStore(region, testLimits(), testDefaults())
	require.NoError(t, err)
	return store, region
}

func TestNewStoreRejectsBadDefaults(t *testing.T) {
	region, err := OpenFileRegion(filepath.Join(t.TempDir(), "settings.bin"))
	require.NoError(t, err)
	defer region.Close()

	t.Run("Zero Step Count", func(t *testing.T) {
		_, err := NewStore(region, Limits{FreqMin: 1, FreqMax: 2}, testDefaults())
		assert.Error(t, err)
	})

	t.Run("Default Frequency Out Of Band", func(t *testing.T) {
		_, err := NewStore(region, testLimits(), Settings{Frequency: 100, StepIndex: 0})
		assert.Error(t, err)
	})

	t.Run("Default Step Index Out Of Range", func(t *testing.T) {
		_, err := NewStore(region, testLimits(), Settings{Frequency: 7100000, StepIndex: 5})
		assert.Error(t, err)
	})
}

func TestLoadEmptyRegionReturnsDefaults(t *testing.T) {
	store, _ := newTestStore(t)

	loaded, err := store.Load()
	assert.ErrorIs(t, err, ErrNoValidRecord)
	assert.Equal(t, testDefaults(), loaded)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cases := []Settings{
		{Frequency: 7000000, StepIndex: 0},
		{Frequency: 7123450, StepIndex: 3},
		{Frequency: 7200000, StepIndex: 4},
	}

	for _, want := range cases {
		t.Run(fmt.Sprintf("%d Hz", want.Frequency), func(t *testing.T) {
			store, _ := newTestStore(t)
			require.NoError(t, store.Save(want.Frequency, want.StepIndex))

			loaded, err := store.Load()
			require.NoError(t, err)
			assert.Equal(t, want, loaded)
		})
	}
}

func TestSaveOverwritesPreviousRecord(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Save(7050000, 1))
	require.NoError(t, store.Save(7150000, 4))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Settings{Frequency: 7150000, StepIndex: 4}, loaded)
}

func TestLoadRejectsInvalidRecords(t *testing.T) {
	writeRecord := func(t *testing.T, region *FileRegion, frequency uint32, stepIndex byte, magic uint16) {
		t.Helper()
		buf := make([]byte, RecordSize)
		binary.LittleEndian.PutUint32(buf[0:], frequency)
		buf[4] = stepIndex
		binary.LittleEndian.PutUint16(buf[5:], magic)
		_, err := region.WriteAt(buf, 0)
		require.NoError(t, err)
	}

	cases := []struct {
		name      string
		frequency uint32
		stepIndex byte
		magic     uint16
	}{
		{"Wrong Magic", 7100000, 2, 0xDEAD},
		{"Zero Magic", 7100000, 2, 0x0000},
		{"Zero Frequency", 0, 2, Magic},
		{"Frequency Below Band", 6999999, 2, Magic},
		{"Frequency Above Band", 7200001, 2, Magic},
		{"Step Index Past Table", 7100000, 5, Magic},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, region := newTestStore(t)
			writeRecord(t, region, tc.frequency, tc.stepIndex, tc.magic)

			loaded, err := store.Load()
			assert.ErrorIs(t, err, ErrNoValidRecord)
			assert.Equal(t, testDefaults(), loaded, "whole record discarded, defaults returned")
		})
	}
}

func TestRecordLayout(t *testing.T) {
	store, region := newTestStore(t)
	require.NoError(t, store.Save(7123456, 3))

	buf := make([]byte, RecordSize)
	_, err := region.ReadAt(buf, 0)
	require.NoError(t, err)

	// 4-byte little-endian frequency, 1-byte step index, 2-byte magic.
	assert.Equal(t, uint32(7123456), binary.LittleEndian.Uint32(buf[0:4]))
	assert.Equal(t, byte(3), buf[4])
	assert.Equal(t, uint16(Magic), binary.LittleEndian.Uint16(buf[5:7]))
}

func TestSaveRejectsUnencodableStepIndex(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.Save(7100000, 256))
	assert.Error(t, store.Save(7100000, -1))
}

func TestTruncatedRecordReturnsDefaults(t *testing.T) {
	store, region := newTestStore(t)

	// Fewer bytes than a full record, as after an interrupted first write.
	_, err := region.WriteAt([]byte{0x01, 0x02, 0x03}, 0)
	require.NoError(t, err)

	loaded, err := store.Load()
	assert.ErrorIs(t, err, ErrNoValidRecord)
	assert.Equal(t, testDefaults(), loaded)
}

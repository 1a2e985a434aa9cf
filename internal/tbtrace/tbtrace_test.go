package tbtrace

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/rangephy/internal/block"
	"github.com/danmuck/rangephy/internal/mcs"
)

func openTemp(t *testing.T) *Recorder {
	t.Helper()
	rec, err := Open(filepath.Join(t.TempDir(), "trace.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })
	return rec
}

func TestRecordAndList(t *testing.T) {
	rec := openTemp(t)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	rec.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}

	d := block.NewDescriptorWith(0,
		block.Control{SequenceNumber: 3, SubframeNumber: 11, LastInSubframe: true},
		block.Allocation{TargetUEID: 2, FirstRB: 0, NumRB: 1},
		block.DefaultMimo(),
		block.MCS{Modulation: mcs.QPSK, NumInfoBits: 64, NumCodedBits: 128},
	)
	d.MACData = make([]byte, 8)

	first, err := rec.Record(d)
	require.NoError(t, err)
	assert.Equal(t, uint64(448), first.RECapacity)
	assert.Equal(t, uint64(896), first.BitCapacity)
	assert.NotEmpty(t, first.ID)

	d.Control.SequenceNumber = 4
	d.Mimo = block.Mimo{Scheme: block.MimoMultiplexing, NumTxAntennas: 2}
	second, err := rec.Record(d)
	require.NoError(t, err)
	assert.Equal(t, uint64(896), second.RECapacity)

	entries, err := rec.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first, entries[0])
	assert.Equal(t, second, entries[1])
	assert.Equal(t, block.MimoMultiplexing, entries[1].Scheme)
	assert.Equal(t, 8, entries[1].MACLen)
	assert.Equal(t, block.DefaultSNR, entries[1].SNR)
}

func TestRecordRejectsInvalid(t *testing.T) {
	rec := openTemp(t)

	_, err := rec.Record(nil)
	require.ErrorIs(t, err, block.ErrNilDescriptor)

	d := block.NewDescriptor()
	d.NumerologyID = 42
	_, err = rec.Record(d)
	require.Error(t, err)

	entries, err := rec.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.sqlite3")
	rec, err := Open(path)
	require.NoError(t, err)
	_, err = rec.Record(block.NewDescriptor())
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	_, err = rec.Record(block.NewDescriptor())
	require.ErrorIs(t, err, ErrClosed)
	_, err = rec.List()
	require.ErrorIs(t, err, ErrClosed)
	require.NoError(t, rec.Close())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()
	entries, err := again.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, path, again.Path())
}

func TestConcurrentRecord(t *testing.T) {
	rec := openTemp(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(seq uint8) {
			defer wg.Done()
			d := block.NewDescriptor()
			d.Control.SequenceNumber = seq
			_, err := rec.Record(d)
			assert.NoError(t, err)
		}(uint8(i))
	}
	wg.Wait()

	entries, err := rec.List()
	require.NoError(t, err)
	assert.Len(t, entries, 8)
}

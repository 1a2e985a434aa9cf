package mcs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupTableEdges(t *testing.T) {
	e, err := Lookup(0)
	require.NoError(t, err)
	assert.Equal(t, QPSK, e.Modulation)
	assert.InDelta(t, 0.04167, e.CodeRate, 1e-6)

	e, err = Lookup(16)
	require.NoError(t, err)
	assert.Equal(t, QAM16, e.Modulation)

	e, err = Lookup(17)
	require.NoError(t, err)
	assert.Equal(t, QAM64, e.Modulation)

	e, err = Lookup(MaxIndex)
	require.NoError(t, err)
	assert.Equal(t, QAM256, e.Modulation)
	assert.InDelta(t, 0.95833, e.CodeRate, 1e-6)
}

func TestLookupOutOfRange(t *testing.T) {
	for _, idx := range []int{-1, 28, 1000} {
		_, err := Lookup(idx)
		assert.ErrorIs(t, err, ErrInvalidMCS, "index %d", idx)
	}
}

func TestTableIsConsistent(t *testing.T) {
	table := Table()
	require.Len(t, table, MaxIndex+1)
	for i, e := range table {
		assert.Equal(t, i, e.Index)
		assert.True(t, e.Modulation.Valid(), "mcs %d", i)
		assert.Greater(t, e.CodeRate, float32(0))
		assert.Less(t, e.CodeRate, float32(1))
		if i > 0 {
			assert.GreaterOrEqual(t, uint32(e.Modulation), uint32(table[i-1].Modulation), "modulation must not drop at mcs %d", i)
		}
	}
}

func TestSNRThresholdsIncreasing(t *testing.T) {
	th := SNRThresholds()
	require.Len(t, th, MaxIndex)
	for i := 1; i < len(th); i++ {
		assert.Greater(t, th[i], th[i-1])
	}
	th[0] = 100
	assert.Equal(t, float32(-6.1), SNRThresholds()[0], "copy must not alias the table")
}

func TestForSNR(t *testing.T) {
	cases := []struct {
		snr  float32
		want int
	}{
		{-20, 0},
		{-6.2, 0},
		{-6.1, 1},
		{-5, 1},
		{-3.6, 2},
		{0, 5},
		{1, 6},
		{12, 14},
		{12.5, 14},
		{28.6, 26},
		{28.7, 27},
		{50, 27},
		{float32(math.NaN()), 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ForSNR(tc.snr), "snr %v", tc.snr)
	}
}

func TestParseModulation(t *testing.T) {
	cases := map[string]Modulation{
		"qpsk":    QPSK,
		" QAM16 ": QAM16,
		"64qam":   QAM64,
		"8":       QAM256,
	}
	for raw, want := range cases {
		got, err := ParseModulation(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}
	_, err := ParseModulation("bpsk")
	assert.ErrorIs(t, err, ErrInvalidModulation)
	assert.Equal(t, "modulation(3)", Modulation(3).String())
	assert.False(t, Modulation(3).Valid())
}

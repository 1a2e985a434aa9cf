// Package mcs holds the modulation and coding scheme tables.
//
// The tables are a lookup aid for the scheduler. Nothing here adapts MCS over
// time; ForSNR is a pure mapping from one SNR sample to one index.
package mcs

import (
	"fmt"
	"strings"
)

// Modulation is a QAM order expressed in bits per symbol.
type Modulation uint32

const (
	QPSK   Modulation = 2
	QAM16  Modulation = 4
	QAM64  Modulation = 6
	QAM256 Modulation = 8
)

// Valid reports whether m is one of the supported orders.
func (m Modulation) Valid() bool {
	switch m {
	case QPSK, QAM16, QAM64, QAM256:
		return true
	}
	return false
}

// BitsPerSymbol is m as a plain integer.
func (m Modulation) BitsPerSymbol() uint64 {
	return uint64(m)
}

func (m Modulation) String() string {
	switch m {
	case QPSK:
		return "qpsk"
	case QAM16:
		return "qam16"
	case QAM64:
		return "qam64"
	case QAM256:
		return "qam256"
	default:
		return fmt.Sprintf("modulation(%d)", uint32(m))
	}
}

// ParseModulation accepts names ("qpsk", "16qam", "qam16", ...) or bit counts ("2", "4", ...).
func ParseModulation(raw string) (Modulation, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "qpsk", "2":
		return QPSK, nil
	case "qam16", "16qam", "16-qam", "4":
		return QAM16, nil
	case "qam64", "64qam", "64-qam", "6":
		return QAM64, nil
	case "qam256", "256qam", "256-qam", "8":
		return QAM256, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidModulation, raw)
	}
}

// Entry is one row of the MCS table.
type Entry struct {
	Index      int
	Modulation Modulation
	CodeRate   float32
}

// MaxIndex is the highest defined MCS.
const MaxIndex = 27

// MCS 0 is a filler that repeats MCS 1.
var modulations = [MaxIndex + 1]Modulation{
	QPSK, QPSK, QPSK, QPSK, QPSK, QPSK, QPSK, QPSK,
	QAM16, QAM16, QAM16, QAM16, QAM16, QAM16, QAM16, QAM16, QAM16,
	QAM64, QAM64, QAM64, QAM64, QAM64, QAM64,
	QAM256, QAM256, QAM256, QAM256, QAM256,
}

var codeRates = [MaxIndex + 1]float32{
	0.04167, 0.04167, 0.08333, 0.12500, 0.06250, 0.20833, 0.29167, 0.37500,
	0.20833, 0.25000, 0.29167, 0.37500, 0.45833, 0.54167, 0.62500, 0.75000, 0.83333,
	0.58333, 0.66667, 0.75000, 0.79167, 0.87500, 0.91667,
	0.75000, 0.83333, 0.87500, 0.91667, 0.95833,
}

// snrThresholds[j-1] is the lowest SNR (dB) at which MCS j is selected.
var snrThresholds = [MaxIndex]float32{
	-6.1, -3.6, -2.4, -1.3, -0.4, 1, 2.2, 6.6, 7.3, 7.9, 9,
	10.1, 11, 12, 13.5, 14.5, 15.9, 17.2, 18.6, 19.2, 20.7, 21.5, 25.6, 26.6, 27.2, 27.8, 28.7,
}

// Lookup returns the table row for index.
func Lookup(index int) (Entry, error) {
	if index < 0 || index > MaxIndex {
		return Entry{}, fmt.Errorf("%w: %d (valid 0-%d)", ErrInvalidMCS, index, MaxIndex)
	}
	return Entry{Index: index, Modulation: modulations[index], CodeRate: codeRates[index]}, nil
}

// Table returns every row in index order.
func Table() []Entry {
	out := make([]Entry, 0, MaxIndex+1)
	for i := 0; i <= MaxIndex; i++ {
		out = append(out, Entry{Index: i, Modulation: modulations[i], CodeRate: codeRates[i]})
	}
	return out
}

// SNRThresholds returns a copy of the SNR threshold table.
func SNRThresholds() []float32 {
	out := make([]float32, len(snrThresholds))
	copy(out, snrThresholds[:])
	return out
}

// ForSNR returns the largest MCS whose threshold is <= snr.
// The comparison is inclusive; an SNR below every threshold (or NaN) maps to MCS 0.
func ForSNR(snr float32) int {
	index := 0
	for j, threshold := range snrThresholds {
		if snr >= threshold {
			index = j + 1
			continue
		}
		break
	}
	return index
}

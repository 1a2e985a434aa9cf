package protocol

import (
	"io"

	"github.com/danmuck/rangephy/internal/block"
)

// EncodedLen is the exact wire size of d.
func EncodedLen(d *block.Descriptor) int {
	if d == nil {
		return 0
	}
	n := MinEncodedLen
	n += len(d.MACData) + len(d.CodedData) + len(d.ControlData)
	n += symbolLen * (len(d.Symbols) + len(d.MimoSymbols[0]) + len(d.MimoSymbols[1]))
	n += symbolLen * (len(d.ControlSymbols[0]) + len(d.ControlSymbols[1]))
	return n
}

// Marshal encodes d into a new buffer.
func Marshal(d *block.Descriptor) ([]byte, error) {
	if d == nil {
		return nil, block.ErrNilDescriptor
	}
	return AppendDescriptor(make([]byte, 0, EncodedLen(d)), d), nil
}

// Encode writes d to w using the descriptor wire format.
func Encode(w io.Writer, d *block.Descriptor) error {
	buf, err := Marshal(d)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// AppendDescriptor appends the encoding of a non-nil d to buf.
func AppendDescriptor(buf []byte, d *block.Descriptor) []byte {
	buf = appendU32(buf, d.NumerologyID)

	buf = appendU8(buf, d.Control.SequenceNumber)
	buf = appendU32(buf, d.Control.SubframeNumber)
	buf = appendBool(buf, d.Control.LastInSubframe)
	buf = appendBool(buf, d.Control.FirstInSubframe)

	buf = appendU8(buf, d.Allocation.TargetUEID)
	buf = appendU8(buf, d.Allocation.FirstRB)
	buf = appendU8(buf, d.Allocation.NumRB)

	buf = appendU32(buf, uint32(d.Mimo.Scheme))
	buf = appendU64(buf, d.Mimo.NumTxAntennas)
	buf = appendU64(buf, d.Mimo.PrecodingMatrix)

	buf = appendU32(buf, uint32(d.MCS.Modulation))
	buf = appendU64(buf, d.MCS.PowerOffset)
	buf = appendU64(buf, d.MCS.NumInfoBits)
	buf = appendU64(buf, d.MCS.NumCodedBits)

	buf = appendF32(buf, d.SNRAvg)
	buf = appendU8(buf, d.RankIndicator)

	buf = appendBytes(buf, d.MACData)
	buf = appendBytes(buf, d.CodedData)
	buf = appendSymbols(buf, d.Symbols)
	buf = appendSymbols(buf, d.MimoSymbols[0])
	buf = appendSymbols(buf, d.MimoSymbols[1])
	buf = appendBytes(buf, d.ControlData)
	buf = appendSymbols(buf, d.ControlSymbols[0])
	buf = appendSymbols(buf, d.ControlSymbols[1])
	return buf
}

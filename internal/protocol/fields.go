package protocol

import (
	"encoding/binary"
	"math"
)

func appendU8(buf []byte, v uint8) []byte {
	return append(buf, v)
}

func appendU32(buf []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(buf, v)
}

func appendU64(buf []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(buf, v)
}

func appendF32(buf []byte, v float32) []byte {
	return binary.BigEndian.AppendUint32(buf, math.Float32bits(v))
}

func appendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

func appendBytes(buf []byte, v []byte) []byte {
	buf = appendU64(buf, uint64(len(v)))
	return append(buf, v...)
}

func appendSymbols(buf []byte, v []complex64) []byte {
	buf = appendU64(buf, uint64(len(v)))
	for _, s := range v {
		buf = appendF32(buf, real(s))
		buf = appendF32(buf, imag(s))
	}
	return buf
}

func u32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

func u64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

func f32(b []byte) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(b))
}

func boolByte(b byte) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, ErrInvalidBool
	}
}

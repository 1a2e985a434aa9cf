package protocol

import (
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/rangephy/internal/block"
	"github.com/danmuck/rangephy/internal/mcs"
)

// source hands out the next n bytes of an encoded descriptor.
type source interface {
	next(n uint64) ([]byte, error)
	// section checks a length prefix before its bytes are requested.
	section(n uint64) error
}

type sliceSource struct {
	buf []byte
	off uint64
}

func (s *sliceSource) remaining() uint64 {
	return uint64(len(s.buf)) - s.off
}

func (s *sliceSource) next(n uint64) ([]byte, error) {
	if n > s.remaining() {
		return nil, ErrBufferUnderrun
	}
	out := s.buf[s.off : s.off+n]
	s.off += n
	return out, nil
}

func (s *sliceSource) section(n uint64) error {
	if n > s.remaining() {
		return ErrBufferUnderrun
	}
	return nil
}

type streamSource struct {
	r      io.Reader
	limits Limits
}

func (s *streamSource) next(n uint64) ([]byte, error) {
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := io.ReadFull(s.r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrBufferUnderrun
		}
		return nil, err
	}
	return buf, nil
}

func (s *streamSource) section(n uint64) error {
	if n > s.limits.MaxSectionBytes {
		return ErrPayloadTooLarge
	}
	return nil
}

// Unmarshal decodes one descriptor occupying all of b.
func Unmarshal(b []byte) (*block.Descriptor, error) {
	if len(b) < MinEncodedLen {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrBufferUnderrun, len(b), MinEncodedLen)
	}
	src := &sliceSource{buf: b}
	d, err := decodeFrom(src)
	if err != nil {
		return nil, err
	}
	if src.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d", ErrTrailingBytes, src.remaining())
	}
	return d, nil
}

// Decode reads one descriptor from r. Section lengths beyond limits are
// rejected before anything is allocated for them.
func Decode(r io.Reader, limits Limits) (*block.Descriptor, error) {
	return decodeFrom(&streamSource{r: r, limits: limits})
}

func decodeFrom(src source) (*block.Descriptor, error) {
	fixed, err := src.next(FixedFieldsLen)
	if err != nil {
		return nil, &FieldError{Field: "fixed", Err: err}
	}
	d, err := parseFixed(fixed)
	if err != nil {
		return nil, err
	}

	if d.MACData, err = readBytes(src, "mac_data"); err != nil {
		return nil, err
	}
	if d.CodedData, err = readBytes(src, "coded_data"); err != nil {
		return nil, err
	}
	if d.Symbols, err = readSymbols(src, "symbols"); err != nil {
		return nil, err
	}
	for i := range d.MimoSymbols {
		if d.MimoSymbols[i], err = readSymbols(src, fmt.Sprintf("mimo_symbols[%d]", i)); err != nil {
			return nil, err
		}
	}
	if d.ControlData, err = readBytes(src, "control_data"); err != nil {
		return nil, err
	}
	for i := range d.ControlSymbols {
		if d.ControlSymbols[i], err = readSymbols(src, fmt.Sprintf("control_symbols[%d]", i)); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func parseFixed(b []byte) (*block.Descriptor, error) {
	if len(b) != FixedFieldsLen {
		return nil, &FieldError{Field: "fixed", Err: ErrBufferUnderrun}
	}
	d := &block.Descriptor{}
	off := 0
	take := func(n int) []byte {
		out := b[off : off+n]
		off += n
		return out
	}

	d.NumerologyID = u32(take(numerologyLen))

	d.Control.SequenceNumber = take(sequenceLen)[0]
	d.Control.SubframeNumber = u32(take(subframeLen))
	last, err := boolByte(take(lastFlagLen)[0])
	if err != nil {
		return nil, &FieldError{Field: "last_in_subframe", Err: err}
	}
	first, err := boolByte(take(firstFlagLen)[0])
	if err != nil {
		return nil, &FieldError{Field: "first_in_subframe", Err: err}
	}
	d.Control.LastInSubframe = last
	d.Control.FirstInSubframe = first

	d.Allocation.TargetUEID = take(1)[0]
	d.Allocation.FirstRB = take(1)[0]
	d.Allocation.NumRB = take(1)[0]

	d.Mimo.Scheme = block.MimoScheme(u32(take(4)))
	d.Mimo.NumTxAntennas = u64(take(8))
	d.Mimo.PrecodingMatrix = u64(take(8))

	d.MCS.Modulation = mcs.Modulation(u32(take(4)))
	d.MCS.PowerOffset = u64(take(8))
	d.MCS.NumInfoBits = u64(take(8))
	d.MCS.NumCodedBits = u64(take(8))

	d.SNRAvg = f32(take(snrLen))
	d.RankIndicator = take(rankLen)[0]
	return d, nil
}

func readLength(src source, field string, unit uint64) (uint64, error) {
	prefix, err := src.next(lengthPrefixLen)
	if err != nil {
		return 0, &FieldError{Field: field, Err: err}
	}
	n := u64(prefix)
	if n > ^uint64(0)/unit {
		return 0, &FieldError{Field: field, Err: ErrPayloadTooLarge}
	}
	if err := src.section(n * unit); err != nil {
		return 0, &FieldError{Field: field, Err: err}
	}
	return n, nil
}

func readBytes(src source, field string) ([]byte, error) {
	n, err := readLength(src, field, 1)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	raw, err := src.next(n)
	if err != nil {
		return nil, &FieldError{Field: field, Err: err}
	}
	out := make([]byte, n)
	copy(out, raw)
	return out, nil
}

func readSymbols(src source, field string) ([]complex64, error) {
	n, err := readLength(src, field, symbolLen)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	raw, err := src.next(n * symbolLen)
	if err != nil {
		return nil, &FieldError{Field: field, Err: err}
	}
	out := make([]complex64, n)
	for i := range out {
		at := uint64(i) * symbolLen
		out[i] = complex(f32(raw[at:at+4]), f32(raw[at+4:at+8]))
	}
	return out, nil
}

// Package capacity derives how many resource elements, bits and bytes an
// allocation can carry, and sizes allocations for a target payload.
//
// Every function is pure. Overhead accounting:
//   - pilots are removed once per RB before scaling by the RB count;
//   - one DCI of NumDCIQAM REs is always reserved, plus one more for every full
//     group of 11 RBs beyond the first RB;
//   - spatial multiplexing multiplies the result by the antenna count.
package capacity

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/danmuck/rangephy/internal/block"
	"github.com/danmuck/rangephy/internal/mcs"
	"github.com/danmuck/rangephy/internal/numerology"
)

// ResourceElements returns the data RE capacity of alloc under numerology numID.
func ResourceElements(numID uint32, alloc block.Allocation, mimo block.Mimo) (uint64, error) {
	p, err := numerology.Lookup(numID)
	if err != nil {
		return 0, err
	}
	if err := alloc.Validate(); err != nil {
		return 0, err
	}
	if err := mimo.Validate(); err != nil {
		return 0, err
	}
	numRB := uint64(alloc.NumRB)
	if numRB == 0 {
		return 0, nil
	}

	total := p.DataREsPerRB() * numRB
	overhead := dciOverhead(p, numRB)
	if overhead >= total {
		return 0, nil
	}
	total -= overhead

	if mimo.Scheme == block.MimoMultiplexing {
		return mul(total, mimo.NumTxAntennas)
	}
	return total, nil
}

// dciOverhead is the control RE count reserved for an allocation of numRB > 0 RBs.
func dciOverhead(p numerology.Profile, numRB uint64) uint64 {
	dci := uint64(p.NumDCIQAM)
	return dci + dci*((numRB-1)/numerology.RBsPerDCI)
}

// Bits is ResourceElements scaled by the modulation order.
func Bits(numID uint32, alloc block.Allocation, mimo block.Mimo, mod mcs.Modulation) (uint64, error) {
	if !mod.Valid() {
		return 0, fmt.Errorf("%w: %d", mcs.ErrInvalidModulation, uint32(mod))
	}
	numRE, err := ResourceElements(numID, alloc, mimo)
	if err != nil {
		return 0, err
	}
	return mul(numRE, mod.BitsPerSymbol())
}

// BitsFromRE scales a precomputed RE count by the modulation order.
func BitsFromRE(numRE uint64, mod mcs.Modulation) (uint64, error) {
	if !mod.Valid() {
		return 0, fmt.Errorf("%w: %d", mcs.ErrInvalidModulation, uint32(mod))
	}
	return mul(numRE, mod.BitsPerSymbol())
}

// DescriptorResourceElements is ResourceElements for the descriptor's configuration.
func DescriptorResourceElements(d *block.Descriptor) (uint64, error) {
	if d == nil {
		return 0, block.ErrNilDescriptor
	}
	return ResourceElements(d.NumerologyID, d.Allocation, d.Mimo)
}

// DescriptorBits is Bits for the descriptor's configuration.
func DescriptorBits(d *block.Descriptor) (uint64, error) {
	if d == nil {
		return 0, block.ErrNilDescriptor
	}
	return Bits(d.NumerologyID, d.Allocation, d.Mimo, d.MCS.Modulation)
}

// NetBytes approximates the information bytes a descriptor can carry at coderate.
// Bits are truncated to whole bytes before the code rate is applied.
func NetBytes(coderate float32, d *block.Descriptor) (uint64, error) {
	if err := checkCodeRate(coderate); err != nil {
		return 0, err
	}
	numBits, err := DescriptorBits(d)
	if err != nil {
		return 0, err
	}
	return ApplyRate(numBits/8, coderate), nil
}

// NetBytesFor is NetBytes for an explicit configuration.
func NetBytesFor(numID uint32, alloc block.Allocation, mimo block.Mimo, mod mcs.Modulation, coderate float32) (uint64, error) {
	if err := checkCodeRate(coderate); err != nil {
		return 0, err
	}
	numBits, err := Bits(numID, alloc, mimo, mod)
	if err != nil {
		return 0, err
	}
	return ApplyRate(numBits/8, coderate), nil
}

// MaxInfoBits is the information bit capacity of an allocation at an MCS table index.
func MaxInfoBits(numID uint32, alloc block.Allocation, mimo block.Mimo, index int) (uint64, error) {
	entry, err := mcs.Lookup(index)
	if err != nil {
		return 0, err
	}
	numBits, err := Bits(numID, alloc, mimo, entry.Modulation)
	if err != nil {
		return 0, err
	}
	return ApplyRate(numBits, entry.CodeRate), nil
}

// Fits reports whether the descriptor's MAC payload fits its allocation at coderate.
func Fits(coderate float32, d *block.Descriptor) (bool, error) {
	netBytes, err := NetBytes(coderate, d)
	if err != nil {
		return false, err
	}
	return uint64(len(d.MACData)) <= netBytes, nil
}

// RequiredRBs returns the number of RBs needed to carry infoBits at targetCoderate.
//
// This is a single pass: recurring DCI overhead is estimated from the payload
// alone, so an allocation pushed across another 11-RB boundary by that overhead
// is not counted again. Callers needing exactness re-check the result with
// ResourceElements. infoBits of zero still needs one DCI, so the result is never 0.
func RequiredRBs(numID uint32, mimo block.Mimo, mod mcs.Modulation, targetCoderate float32, infoBits uint64) (uint64, error) {
	if err := checkCodeRate(targetCoderate); err != nil {
		return 0, err
	}
	p, err := numerology.Lookup(numID)
	if err != nil {
		return 0, err
	}
	single := block.Allocation{TargetUEID: block.BaseStation, FirstRB: 0, NumRB: 1}
	rbBits, err := Bits(numID, single, mimo, mod)
	if err != nil {
		return 0, err
	}

	order := mod.BitsPerSymbol()
	dci := uint64(p.NumDCIQAM)
	grossRBBits, carry := bits.Add64(rbBits, dci*order, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: per-rb bits %d plus dci", ErrOverflow, rbBits)
	}
	grossRBQAM := grossRBBits / order
	if grossRBQAM == 0 {
		return 0, fmt.Errorf("%w: zero per-rb capacity", ErrOverflow)
	}

	requiredBits := float32(math.Round(float64(float32(infoBits) / targetCoderate)))
	requiredQAMf := math.Round(float64(requiredBits / float32(order)))
	if requiredQAMf >= maxExactFloat {
		return 0, fmt.Errorf("%w: %d info bits at rate %v", ErrOverflow, infoBits, targetCoderate)
	}
	requiredQAM := uint64(requiredQAMf) + dci
	requiredQAM += ((requiredQAM - dci) / grossRBQAM) / numerology.RBsPerDCI * dci

	return uint64(math.Ceil(float64(float32(requiredQAM) / float32(grossRBQAM)))), nil
}

// Summary bundles the capacity figures of one descriptor.
type Summary struct {
	ResourceElements uint64 `json:"resource_elements"`
	Bits             uint64 `json:"bits"`
	NetBytes         uint64 `json:"net_bytes"`
}

// Summarize computes every capacity figure for d at coderate.
func Summarize(coderate float32, d *block.Descriptor) (Summary, error) {
	if err := checkCodeRate(coderate); err != nil {
		return Summary{}, err
	}
	numRE, err := DescriptorResourceElements(d)
	if err != nil {
		return Summary{}, err
	}
	numBits, err := BitsFromRE(numRE, d.MCS.Modulation)
	if err != nil {
		return Summary{}, err
	}
	return Summary{ResourceElements: numRE, Bits: numBits, NetBytes: ApplyRate(numBits/8, coderate)}, nil
}

// 2^53: above this a float64 no longer holds every integer.
const maxExactFloat = 1 << 53

func checkCodeRate(rate float32) error {
	if math.IsNaN(float64(rate)) || rate <= 0 || rate > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidCodeRate, rate)
	}
	return nil
}

// ApplyRate scales a bit or byte count n by a code rate, truncating.
func ApplyRate(n uint64, rate float32) uint64 {
	return uint64(float64(n) * float64(rate))
}

func mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, fmt.Errorf("%w: %d x %d", ErrOverflow, a, b)
	}
	return lo, nil
}

// Package numerology owns the OFDM parameter profiles selectable per deployment.
//
// Profiles are package-level constants. Lookup hands out copies, so callers can
// never mutate the catalog and concurrent reads need no locking.
package numerology

import (
	"fmt"
	"time"
)

// Resource grid constants shared by every numerology.
const (
	MaxRB     = 132 // resource blocks in the full band
	LastRB    = MaxRB - 1
	RBsPerDCI = 11 // one control allocation recurs every 11 RBs

	SampleRate  = 30.72e6 // samples per second
	RBBandwidth = 180.0e3 // Hz

	PolarMaxCodewordLen = 2048
	PolarCRCLen         = 16
)

// Profile describes the symbol and subcarrier structure of one numerology.
type Profile struct {
	ID                 uint32
	K                  uint32  // subcarriers
	M                  uint32  // subsymbols
	NCP                uint32  // cyclic prefix samples
	NCS                uint32  // cyclic suffix samples
	NW                 uint32  // windowing samples
	KOn                uint32  // active subcarriers
	KOff               uint32  // inactive subcarriers
	A                  float32 // roll-off factor
	SubcarriersPerRB   uint32
	SymbolsPerSubframe uint32
	PilotDT            uint32 // pilot spacing in time
	PilotDF            uint32 // pilot spacing in frequency
	NumPilotSC         uint32
	NumDCISC           uint32 // control subcarriers at the start of an allocation
	NumDCIQAM          uint32 // net control REs per DCI
}

var profiles = [...]Profile{
	{ID: 0, K: 16384, M: 4, NCP: 4352, NCS: 768, NW: 512, KOn: 12672, KOff: 3712, SubcarriersPerRB: 96, SymbolsPerSubframe: 2, PilotDT: 2, PilotDF: 4, NumPilotSC: 3168, NumDCISC: 32, NumDCIQAM: 224},
	{ID: 1, K: 8192, M: 4, NCP: 2176, NCS: 384, NW: 256, KOn: 6336, KOff: 1856, SubcarriersPerRB: 48, SymbolsPerSubframe: 4, PilotDT: 4, PilotDF: 4, NumPilotSC: 1584, NumDCISC: 16, NumDCIQAM: 240},
	{ID: 2, K: 4096, M: 4, NCP: 1088, NCS: 192, NW: 128, KOn: 3168, KOff: 928, SubcarriersPerRB: 24, SymbolsPerSubframe: 8, PilotDT: 4, PilotDF: 4, NumPilotSC: 792, NumDCISC: 8, NumDCIQAM: 240},
	{ID: 3, K: 2048, M: 4, NCP: 544, NCS: 96, NW: 64, KOn: 1584, KOff: 464, SubcarriersPerRB: 12, SymbolsPerSubframe: 16, PilotDT: 4, PilotDF: 4, NumPilotSC: 396, NumDCISC: 4, NumDCIQAM: 240},
	{ID: 4, K: 1024, M: 4, NCP: 272, NCS: 48, NW: 32, KOn: 792, KOff: 232, SubcarriersPerRB: 6, SymbolsPerSubframe: 32, PilotDT: 4, PilotDF: 3, NumPilotSC: 264, NumDCISC: 2, NumDCIQAM: 224},
	{ID: 5, K: 1024, M: 2, NCP: 136, NCS: 24, NW: 16, KOn: 792, KOff: 232, SubcarriersPerRB: 6, SymbolsPerSubframe: 64, PilotDT: 4, PilotDF: 6, NumPilotSC: 132, NumDCISC: 2, NumDCIQAM: 224},
}

// Count is the number of defined numerologies.
const Count = len(profiles)

// Lookup returns the profile for id.
func Lookup(id uint32) (Profile, error) {
	if id >= uint32(len(profiles)) {
		return Profile{}, fmt.Errorf("%w: %d (valid 0-%d)", ErrInvalidNumerologyID, id, len(profiles)-1)
	}
	return profiles[id], nil
}

// MustLookup is Lookup for ids known to be valid at compile time.
func MustLookup(id uint32) Profile {
	p, err := Lookup(id)
	if err != nil {
		panic(err)
	}
	return p
}

// IDs lists every valid numerology id in ascending order.
func IDs() []uint32 {
	out := make([]uint32, len(profiles))
	for i := range profiles {
		out[i] = uint32(i)
	}
	return out
}

// All returns a copy of every profile.
func All() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles[:])
	return out
}

// REsPerRB is the gross resource element count of one RB over a subframe.
func (p Profile) REsPerRB() uint64 {
	return uint64(p.SubcarriersPerRB) * uint64(p.M) * uint64(p.SymbolsPerSubframe)
}

// PilotREsPerRB is the number of REs per RB taken by pilots.
func (p Profile) PilotREsPerRB() uint64 {
	return p.REsPerRB() / (uint64(p.PilotDF) * uint64(p.PilotDT))
}

// DataREsPerRB is REsPerRB less pilot REs, before control overhead.
func (p Profile) DataREsPerRB() uint64 {
	return p.REsPerRB() - p.PilotREsPerRB()
}

// SubframeSamples is the number of time-domain samples in one subframe.
func (p Profile) SubframeSamples() uint64 {
	perSymbol := uint64(p.K)*uint64(p.M) + uint64(p.NCP) + uint64(p.NCS)
	return perSymbol * uint64(p.SymbolsPerSubframe)
}

// SubframeDuration is SubframeSamples at SampleRate.
func (p Profile) SubframeDuration() time.Duration {
	return time.Duration(float64(p.SubframeSamples()) / SampleRate * float64(time.Second))
}

// Package block defines the transport block descriptor the MAC hands to the PHY.
//
// A Descriptor is created once per transport block, filled in by the MAC side,
// encoded, and rebuilt once on the PHY side. It is owned by one goroutine at a
// time and carries no identity beyond that single exchange.
package block

import (
	"fmt"

	"github.com/danmuck/rangephy/internal/mcs"
	"github.com/danmuck/rangephy/internal/numerology"
)

// Target terminal ids.
const (
	AllTerminals uint8 = 0x0F
	BaseStation  uint8 = 0x00
)

// Defaults applied by the constructors.
const (
	DefaultSNR           float32 = 10
	DefaultRankIndicator uint8   = 10
)

// MimoScheme is the spatial transmission mode.
type MimoScheme uint32

const (
	MimoNone         MimoScheme = 0
	MimoDiversity    MimoScheme = 1
	MimoMultiplexing MimoScheme = 2
)

func (s MimoScheme) String() string {
	switch s {
	case MimoNone:
		return "none"
	case MimoDiversity:
		return "diversity"
	case MimoMultiplexing:
		return "multiplexing"
	default:
		return fmt.Sprintf("scheme(%d)", uint32(s))
	}
}

// ParseMimoScheme accepts the names produced by String.
func ParseMimoScheme(raw string) (MimoScheme, error) {
	switch raw {
	case "", "none", "siso":
		return MimoNone, nil
	case "diversity", "stbc":
		return MimoDiversity, nil
	case "multiplexing", "spatial-multiplexing", "sm":
		return MimoMultiplexing, nil
	default:
		return 0, fmt.Errorf("%w: unknown scheme %q", ErrInvalidMimo, raw)
	}
}

// Control is the MAC/PHY control section of a transport block.
type Control struct {
	SequenceNumber  uint8  `json:"sequence_number"`
	SubframeNumber  uint32 `json:"subframe_number"`
	LastInSubframe  bool   `json:"last_in_subframe"`
	FirstInSubframe bool   `json:"first_in_subframe"`
}

// NextSequence returns the sequence number following c, wrapping at 256.
func (c Control) NextSequence() uint8 {
	return c.SequenceNumber + 1
}

// Allocation is a contiguous resource block allocation for one terminal.
type Allocation struct {
	TargetUEID uint8 `json:"target_ue_id"`
	FirstRB    uint8 `json:"first_rb"`
	NumRB      uint8 `json:"num_rb"`
}

// DefaultAllocation spans the whole band and targets every terminal.
func DefaultAllocation() Allocation {
	return Allocation{TargetUEID: AllTerminals, FirstRB: 0, NumRB: numerology.MaxRB}
}

// Broadcast reports whether the allocation targets all terminals.
func (a Allocation) Broadcast() bool {
	return a.TargetUEID == AllTerminals
}

// Validate checks the allocation stays inside the band.
func (a Allocation) Validate() error {
	if int(a.NumRB) > numerology.MaxRB {
		return fmt.Errorf("%w: num_rb=%d exceeds %d", ErrInvalidAllocation, a.NumRB, numerology.MaxRB)
	}
	if int(a.FirstRB)+int(a.NumRB) > numerology.MaxRB {
		return fmt.Errorf("%w: first_rb=%d num_rb=%d exceeds %d", ErrInvalidAllocation, a.FirstRB, a.NumRB, numerology.MaxRB)
	}
	return nil
}

// Mimo is the antenna configuration.
type Mimo struct {
	Scheme          MimoScheme `json:"scheme"`
	NumTxAntennas   uint64     `json:"num_tx_antennas"`
	PrecodingMatrix uint64     `json:"precoding_matrix"`
}

// DefaultMimo is single antenna, no precoding.
func DefaultMimo() Mimo {
	return Mimo{Scheme: MimoNone, NumTxAntennas: 1}
}

// Streams is the number of independent spatial streams the scheme carries.
func (m Mimo) Streams() uint64 {
	if m.Scheme == MimoMultiplexing {
		return m.NumTxAntennas
	}
	return 1
}

func (m Mimo) Validate() error {
	switch m.Scheme {
	case MimoNone, MimoDiversity, MimoMultiplexing:
	default:
		return fmt.Errorf("%w: unknown scheme %d", ErrInvalidMimo, uint32(m.Scheme))
	}
	if m.Scheme != MimoNone && m.NumTxAntennas < 1 {
		return fmt.Errorf("%w: scheme %s needs at least one antenna", ErrInvalidMimo, m.Scheme)
	}
	return nil
}

// MCS is the modulation and coding section.
type MCS struct {
	Modulation   mcs.Modulation `json:"modulation"`
	PowerOffset  uint64         `json:"power_offset"`
	NumInfoBits  uint64         `json:"num_info_bits"`
	NumCodedBits uint64         `json:"num_coded_bits"`
}

func (m MCS) Validate() error {
	if !m.Modulation.Valid() {
		return fmt.Errorf("%w: %d", mcs.ErrInvalidModulation, uint32(m.Modulation))
	}
	return nil
}

// Descriptor is everything the PHY needs to transmit one transport block.
type Descriptor struct {
	NumerologyID  uint32     `json:"numerology"`
	Control       Control    `json:"control"`
	Allocation    Allocation `json:"allocation"`
	Mimo          Mimo       `json:"mimo"`
	MCS           MCS        `json:"mcs"`
	RankIndicator uint8      `json:"rank_indicator"`
	SNRAvg        float32    `json:"snr_avg"`

	MACData        []byte         `json:"mac_data"`
	CodedData      []byte         `json:"coded_data,omitempty"`
	Symbols        []complex64    `json:"-"`
	MimoSymbols    [2][]complex64 `json:"-"`
	ControlData    []byte         `json:"control_data,omitempty"`
	ControlSymbols [2][]complex64 `json:"-"`
}

// NewDescriptor returns an empty descriptor with lookup-table compatible SNR and rank defaults.
func NewDescriptor() *Descriptor {
	return &Descriptor{
		Allocation:    DefaultAllocation(),
		Mimo:          DefaultMimo(),
		MCS:           MCS{Modulation: mcs.QPSK},
		RankIndicator: DefaultRankIndicator,
		SNRAvg:        DefaultSNR,
	}
}

// NewDescriptorWith builds a descriptor from explicit configuration sections.
func NewDescriptorWith(numID uint32, ctl Control, alloc Allocation, mimo Mimo, mcsCfg MCS) *Descriptor {
	return &Descriptor{
		NumerologyID:  numID,
		Control:       ctl,
		Allocation:    alloc,
		Mimo:          mimo,
		MCS:           mcsCfg,
		RankIndicator: DefaultRankIndicator,
		SNRAvg:        DefaultSNR,
	}
}

// Profile resolves the descriptor's numerology.
func (d *Descriptor) Profile() (numerology.Profile, error) {
	return numerology.Lookup(d.NumerologyID)
}

// Validate checks every configuration section.
func (d *Descriptor) Validate() error {
	if d == nil {
		return ErrNilDescriptor
	}
	if _, err := d.Profile(); err != nil {
		return err
	}
	if err := d.Allocation.Validate(); err != nil {
		return err
	}
	if err := d.Mimo.Validate(); err != nil {
		return err
	}
	return d.MCS.Validate()
}

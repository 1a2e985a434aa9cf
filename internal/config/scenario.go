package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/danmuck/rangephy/internal/block"
	"github.com/danmuck/rangephy/internal/mcs"
	"github.com/danmuck/rangephy/internal/numerology"
)

// ScenarioConfig describes one transport block: the radio setup plus the
// size of the MAC payload to carry.
type ScenarioConfig struct {
	Name         string           `toml:"name"`
	Numerology   uint32           `toml:"numerology"`
	PayloadBytes int              `toml:"payload_bytes"`
	SNR          *float32         `toml:"snr"`
	Control      ControlConfig    `toml:"control"`
	Allocation   AllocationConfig `toml:"allocation"`
	Mimo         MimoConfig       `toml:"mimo"`
	MCS          MCSConfig        `toml:"mcs"`
}

type ControlConfig struct {
	Sequence uint8  `toml:"sequence"`
	Subframe uint32 `toml:"subframe"`
	First    bool   `toml:"first"`
	Last     bool   `toml:"last"`
}

type AllocationConfig struct {
	TargetUE *uint8 `toml:"target_ue"`
	FirstRB  uint8  `toml:"first_rb"`
	NumRB    *uint8 `toml:"num_rb"`
}

type MimoConfig struct {
	Scheme    string `toml:"scheme"`
	Antennas  uint64 `toml:"antennas"`
	Precoding uint64 `toml:"precoding"`
}

// MCSConfig picks modulation and code rate either by table index or explicitly.
// Index wins when both are set.
type MCSConfig struct {
	Index       *int    `toml:"index"`
	Modulation  string  `toml:"modulation"`
	CodeRate    float32 `toml:"coderate"`
	PowerOffset uint64  `toml:"power_offset"`
}

// Resolve returns the modulation and code rate the scenario selects.
func (c MCSConfig) Resolve() (mcs.Modulation, float32, error) {
	if c.Index != nil {
		entry, err := mcs.Lookup(*c.Index)
		if err != nil {
			return 0, 0, err
		}
		return entry.Modulation, entry.CodeRate, nil
	}
	mod, err := mcs.ParseModulation(c.Modulation)
	if err != nil {
		return 0, 0, err
	}
	return mod, c.CodeRate, nil
}

func LoadScenarioConfig(path string) (ScenarioConfig, error) {
	var cfg ScenarioConfig
	if err := loadToml(path, &cfg); err != nil {
		return ScenarioConfig{}, err
	}
	cfg.ApplyDefaults()
	if err := ValidateScenarioConfig(cfg); err != nil {
		return ScenarioConfig{}, err
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields with broadcast, full-band, single antenna QPSK at rate 1/2.
func (c *ScenarioConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "scenario"
	}
	if c.SNR == nil {
		snr := block.DefaultSNR
		c.SNR = &snr
	}
	if c.Allocation.TargetUE == nil {
		ue := block.AllTerminals
		c.Allocation.TargetUE = &ue
	}
	if c.Allocation.NumRB == nil {
		var n uint8
		if int(c.Allocation.FirstRB) < numerology.MaxRB {
			n = uint8(numerology.MaxRB) - c.Allocation.FirstRB
		}
		c.Allocation.NumRB = &n
	}
	if c.Mimo.Scheme == "" {
		c.Mimo.Scheme = block.MimoNone.String()
	}
	if c.Mimo.Antennas == 0 {
		c.Mimo.Antennas = 1
	}
	if c.MCS.Index == nil {
		if c.MCS.Modulation == "" {
			c.MCS.Modulation = mcs.QPSK.String()
		}
		if c.MCS.CodeRate == 0 {
			c.MCS.CodeRate = 0.5
		}
	}
}

func ValidateScenarioConfig(cfg ScenarioConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("scenario config missing name")
	}
	if _, err := numerology.Lookup(cfg.Numerology); err != nil {
		return fmt.Errorf("scenario %s: %w", cfg.Name, err)
	}
	if cfg.PayloadBytes < 0 {
		return fmt.Errorf("scenario %s: payload_bytes must be >= 0", cfg.Name)
	}
	if cfg.SNR != nil && math.IsNaN(float64(*cfg.SNR)) {
		return fmt.Errorf("scenario %s: snr is NaN", cfg.Name)
	}
	_, rate, err := cfg.MCS.Resolve()
	if err != nil {
		return fmt.Errorf("scenario %s: %w", cfg.Name, err)
	}
	if rate <= 0 || rate > 1 {
		return fmt.Errorf("scenario %s: coderate %v outside (0, 1]", cfg.Name, rate)
	}
	if _, err := block.ParseMimoScheme(cfg.Mimo.Scheme); err != nil {
		return fmt.Errorf("scenario %s: %w", cfg.Name, err)
	}
	if cfg.Allocation.NumRB != nil {
		alloc := block.Allocation{FirstRB: cfg.Allocation.FirstRB, NumRB: *cfg.Allocation.NumRB}
		if err := alloc.Validate(); err != nil {
			return fmt.Errorf("scenario %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// Descriptor builds the transport block the scenario describes, with a
// MAC payload of PayloadBytes and info/coded bit counts derived from it.
// The code rate is returned alongside since the descriptor does not carry it.
func (c ScenarioConfig) Descriptor() (*block.Descriptor, float32, error) {
	mod, rate, err := c.MCS.Resolve()
	if err != nil {
		return nil, 0, err
	}
	scheme, err := block.ParseMimoScheme(c.Mimo.Scheme)
	if err != nil {
		return nil, 0, err
	}
	alloc := block.DefaultAllocation()
	alloc.FirstRB = c.Allocation.FirstRB
	if c.Allocation.TargetUE != nil {
		alloc.TargetUEID = *c.Allocation.TargetUE
	}
	if c.Allocation.NumRB != nil {
		alloc.NumRB = *c.Allocation.NumRB
	}

	infoBits := uint64(c.PayloadBytes) * 8
	d := block.NewDescriptorWith(c.Numerology,
		block.Control{
			SequenceNumber:  c.Control.Sequence,
			SubframeNumber:  c.Control.Subframe,
			FirstInSubframe: c.Control.First,
			LastInSubframe:  c.Control.Last,
		},
		alloc,
		block.Mimo{Scheme: scheme, NumTxAntennas: c.Mimo.Antennas, PrecodingMatrix: c.Mimo.Precoding},
		block.MCS{
			Modulation:   mod,
			PowerOffset:  c.MCS.PowerOffset,
			NumInfoBits:  infoBits,
			NumCodedBits: uint64(math.Ceil(float64(infoBits) / float64(rate))),
		},
	)
	if c.SNR != nil {
		d.SNRAvg = *c.SNR
	}
	d.MACData = make([]byte, c.PayloadBytes)
	for i := range d.MACData {
		d.MACData[i] = byte(i)
	}
	if err := d.Validate(); err != nil {
		return nil, 0, err
	}
	return d, rate, nil
}

package protocol

// Field widths in wire order. Every multi-byte field is big-endian.
const (
	numerologyLen = 4

	sequenceLen   = 1
	subframeLen   = 4
	lastFlagLen   = 1
	firstFlagLen  = 1
	controlLen    = sequenceLen + subframeLen + lastFlagLen + firstFlagLen
	allocationLen = 3
	mimoLen       = 4 + 8 + 8
	mcsLen        = 4 + 8 + 8 + 8
	snrLen        = 4
	rankLen       = 1

	lengthPrefixLen = 8
	symbolLen       = 8 // f32 real, f32 imaginary

	// FixedFieldsLen covers numerology id through rank indicator.
	FixedFieldsLen = numerologyLen + controlLen + allocationLen + mimoLen + mcsLen + snrLen + rankLen

	// payloadSections is the number of length-prefixed sections after the fixed fields:
	// mac data, coded data, symbols, two mimo streams, control data, two control streams.
	payloadSections = 8

	// MinEncodedLen is the size of a descriptor with every section empty.
	MinEncodedLen = FixedFieldsLen + payloadSections*lengthPrefixLen
)

// Limits constrains decode memory use.
type Limits struct {
	MaxSectionBytes uint64
}

func DefaultLimits() Limits {
	return Limits{MaxSectionBytes: 8 * 1024 * 1024}
}

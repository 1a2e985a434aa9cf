// Package protocol owns the transport block wire contract.
//
// Ownership boundary:
// - fixed-width big-endian field primitives
// - descriptor encode/decode in fixed field order
// - length-prefixed payload sections
//
// Stream framing lives in protocol/frame; moving frames between MAC and PHY
// lives in protocol/link.
package protocol

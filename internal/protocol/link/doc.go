// Package link moves encoded transport blocks between the MAC and PHY sides.
//
// Ownership boundary:
// - Sender: validate, encode and frame descriptors onto a stream
// - Receiver: read frames and rebuild descriptors
// - Dial: connect to a PHY listener with backoff
//
// A descriptor changes owner when Send returns; the Receiver hands back a
// freshly allocated descriptor that shares no memory with the stream buffers.
package link

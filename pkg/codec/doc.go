// Package codec decodes and encodes the tagged record stream that forms the
// body of a PSY-Q object module.
//
// # Record Format
//
// A record is a one-byte tag followed by a tag-specific payload. All
// multi-byte fields are little-endian. Variable-length names are prefixed
// with a one-byte length. A stream is well formed when it consists of zero
// or more records followed by exactly one End record (tag 0) with no bytes
// after it.
//
// The tag space is the original toolchain's: even values from 0 to 84, not
// all assigned. The assigned values are mirrored one-to-one by the Record
// implementations in this package; see RecordKind for the full enumeration.
//
// # Decoding Discipline
//
// Input is untrusted legacy binary data. Every declared length is validated
// against the remaining buffer before anything is sliced or allocated, and
// every failure is reported as a *DecodeError carrying the byte offset and
// the offending tag. A tag this package does not know yields the distinct
// *UnknownTagError so a caller can decide whether to abort or to stop
// consuming the stream; the codec never skips data silently.
//
// # Round Trips
//
// Encoding is the exact inverse of decoding: for any stream accepted by
// DecodeRecords, EncodeRecords reproduces the input byte for byte. The
// archive layer depends on this to keep untouched modules bit-identical
// across rebuilds.
//
// The codec holds no shared state; decoding different buffers from
// different goroutines is safe.
package codec

package codec

import "fmt"

// DecodeError reports a malformed record: a truncated payload, a declared
// length that overruns the buffer, or a stream that does not terminate
// correctly. Offset is the byte position of the failure within the buffer
// handed to the decoder; Tag is the record tag being decoded when the
// failure occurred (0 when no tag was read).
type DecodeError struct {
	Offset int
	Tag    uint8
	Msg    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("record tag %d: %s at offset %d", e.Tag, e.Msg, e.Offset)
}

// UnknownTagError reports a record tag this codec does not implement. The
// stream position is exactly at the unknown tag, so the caller can decide
// whether to abort or to stop consuming.
type UnknownTagError struct {
	Offset int
	Tag    uint8
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown record tag %d at offset %d", e.Tag, e.Offset)
}

package disasm

// ExceptionFlags is the kind of an exception handling clause.
type ExceptionFlags uint16

const (
	ClauseException ExceptionFlags = 0x0000
	ClauseFilter    ExceptionFlags = 0x0001
	ClauseFinally   ExceptionFlags = 0x0002
	ClauseFault     ExceptionFlags = 0x0004
)

func (f ExceptionFlags) String() string {
	switch f {
	case ClauseException:
		return "catch"
	case ClauseFilter:
		return "filter"
	case ClauseFinally:
		return "finally"
	case ClauseFault:
		return "fault"
	}
	return "unknown"
}

// ExceptionHandler is one exception handling clause. Offsets are relative to the RVA space
// the block builder runs in.
type ExceptionHandler struct {
	Flags         ExceptionFlags
	TryOffset     uint32
	TryLength     uint32
	HandlerOffset uint32
	HandlerLength uint32
	// ClassToken is the catch type token for typed handlers, or the filter code offset.
	ClassToken uint32
}

// Covers reports whether rva falls in the try region. Both ends are inclusive, so the
// address right after the region also matches.
func (h ExceptionHandler) Covers(rva uint64) bool {
	start := uint64(h.TryOffset)
	return rva >= start && rva <= start+uint64(h.TryLength)
}

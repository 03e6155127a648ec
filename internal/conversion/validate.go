package conversion

// Decision is the verdict on a finished encode.
type Decision int

const (
	Keep Decision = iota
	DiscardLarger
	DiscardEmpty
)

func (d Decision) String() string {
	switch d {
	case Keep:
		return "keep"
	case DiscardLarger:
		return "discard_larger"
	case DiscardEmpty:
		return "discard_empty"
	default:
		return "unknown"
	}
}

// Validate decides whether an output is worth keeping. Empty outputs are
// checked first, so an empty output is never reported as larger.
func Validate(sourceSize, outputSize int64) Decision {
	switch {
	case outputSize <= 0:
		return DiscardEmpty
	case outputSize > sourceSize:
		return DiscardLarger
	default:
		return Keep
	}
}

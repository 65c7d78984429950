package state

import "fmt"

type ErrorKind int

const (
	ErrorInput ErrorKind = iota
	ErrorResolution
	ErrorTransport
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorInput:
		return "InputError"
	case ErrorResolution:
		return "ResolutionError"
	case ErrorTransport:
		return "TransportError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ProbeError is a failure that ends processing of one target.
type ProbeError struct {
	Kind ErrorKind
	Err  error
}

func NewProbeError(kind ErrorKind, err error) *ProbeError {
	return &ProbeError{Kind: kind, Err: err}
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// Message is the underlying error's text, without the kind prefix.
func (e *ProbeError) Message() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

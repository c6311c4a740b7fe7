package sanderling

import "errors"

var (
	// ErrTransport is returned when the memory reading service could not be
	// reached or answered with a non 2xx status.
	ErrTransport = errors.New("sanderling: transport failure")
	// ErrDecode is returned when a response does not have the shape of the
	// volatile process envelope or of the payload it should carry.
	ErrDecode = errors.New("sanderling: malformed response")
	// ErrSetupNotComplete is returned by one-shot calls that got a setup not
	// complete response where only a completed one is usable.
	ErrSetupNotComplete = errors.New("sanderling: setup not complete")
)

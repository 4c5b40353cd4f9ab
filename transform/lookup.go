package transform

import (
	"fmt"
)

// Lookup resolves the current rigid transform from a source frame to a
// target frame.  Implementations wrap whatever transform tree the host
// system maintains.  A lookup either returns a transform or a definite
// error, in which case the caller skips the frame.  Retry policy, if any,
// belongs to the caller
type Lookup interface {
	Lookup(targetFrame, sourceFrame string) (Rigid, error)
}

// StaticLookup is a Lookup returning fixed transforms keyed by source frame
// name, suitable for statically mounted cameras and testing
type StaticLookup map[string]Rigid

// Lookup returns the static transform registered for the source frame
func (s StaticLookup) Lookup(targetFrame, sourceFrame string) (Rigid, error) {

	t, ok := s[sourceFrame]

	if !ok {
		return Rigid{}, fmt.Errorf("no transform from %q to %q", sourceFrame, targetFrame)
	}

	return t, nil
}

package san

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvedMove is returned when a token matches no candidate move.
	ErrUnresolvedMove = errors.New("unresolved move")
	// ErrAmbiguousMove reports that more than one candidate survived the
	// self-check filter. Resolution still succeeds with the lowest square.
	ErrAmbiguousMove = errors.New("ambiguous move")
)

// MoveError ties a resolution failure to the token and position it came from.
type MoveError struct {
	Token string
	FEN   string
	Err   error
	Cause error // underlying board error, if any
}

func (e *MoveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v %q at %s: %v", e.Err, e.Token, e.FEN, e.Cause)
	}
	return fmt.Sprintf("%v %q at %s", e.Err, e.Token, e.FEN)
}

func (e *MoveError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

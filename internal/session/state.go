package session

import (
	"errors"
	"fmt"
)

// State is the lifecycle stage of a session.
type State int

const (
	// Unloaded: no document. The only valid operation is Upload.
	Unloaded State = iota
	// Loaded: a single-page document is open and rendered, no regions yet.
	Loaded
	// Editing: regions have been drawn or changed since the last Prepare.
	Editing
	// Prepared: a redacted document is ready for download.
	Prepared
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	case Editing:
		return "editing"
	case Prepared:
		return "prepared"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrInvalidState is returned when an operation is not allowed in the
	// current state. It is always wrapped with the state name.
	ErrInvalidState = errors.New("operation not allowed")

	// ErrNoRegions is returned by Prepare when no visible region was drawn.
	ErrNoRegions = errors.New("no redaction regions drawn")

	// ErrTooLarge is returned for uploads above the configured size limit.
	ErrTooLarge = errors.New("upload exceeds size limit")

	// ErrEmptyUpload is returned for zero-byte uploads.
	ErrEmptyUpload = errors.New("upload is empty")

	// ErrInvalidRegion is returned for regions with a negative size or an
	// index that does not exist.
	ErrInvalidRegion = errors.New("invalid region")
)

func invalidState(op string, s State) error {
	return fmt.Errorf("%s in state %s: %w", op, s, ErrInvalidState)
}

// require returns an ErrInvalidState error unless the current state is one of allowed.
func (s *Session) require(op string, allowed ...State) error {
	for _, a := range allowed {
		if s.state == a {
			return nil
		}
	}
	return invalidState(op, s.state)
}

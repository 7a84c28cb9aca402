package game

import (
	"errors"
	"fmt"
)

// Reason classifies why an operation was rejected. Every rejection leaves
// the match exactly as it was, so callers may correct the input and retry.
type Reason uint8

const (
	// ReasonNotRolled means the operation needs dice on the table first.
	ReasonNotRolled Reason = iota + 1
	// ReasonTileNotOpen means the tile is closed or not on this board.
	ReasonTileNotOpen
	// ReasonSelectionMismatch means the selected tiles are not a legal combo.
	ReasonSelectionMismatch
	// ReasonOneDieNotEligible means a single die is not allowed right now.
	ReasonOneDieNotEligible
	// ReasonWrongPhase means the match or turn is not in a state that accepts the operation.
	ReasonWrongPhase
	// ReasonInvalidValue means an argument or option value is malformed.
	ReasonInvalidValue
)

func (r Reason) String() string {
	switch r {
	case ReasonNotRolled:
		return "not rolled"
	case ReasonTileNotOpen:
		return "tile not open"
	case ReasonSelectionMismatch:
		return "selection mismatch"
	case ReasonOneDieNotEligible:
		return "one die not eligible"
	case ReasonWrongPhase:
		return "wrong phase"
	case ReasonInvalidValue:
		return "invalid value"
	default:
		return fmt.Sprintf("Reason(%d)", uint8(r))
	}
}

// RejectedError reports a refused operation.
type RejectedError struct {
	Op     string
	Reason Reason
	Detail string
}

func (e *RejectedError) Error() string {
	msg := e.Reason.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is matches any RejectedError with the same reason, so
// errors.Is(err, ErrTileNotOpen) works regardless of Op and Detail.
func (e *RejectedError) Is(target error) bool {
	t, ok := target.(*RejectedError)
	return ok && t.Reason == e.Reason
}

// Sentinel rejections for use with errors.Is.
var (
	ErrNotRolled         = &RejectedError{Reason: ReasonNotRolled}
	ErrTileNotOpen       = &RejectedError{Reason: ReasonTileNotOpen}
	ErrSelectionMismatch = &RejectedError{Reason: ReasonSelectionMismatch}
	ErrOneDieNotEligible = &RejectedError{Reason: ReasonOneDieNotEligible}
	ErrWrongPhase        = &RejectedError{Reason: ReasonWrongPhase}
	ErrInvalidValue      = &RejectedError{Reason: ReasonInvalidValue}
)

func reject(op string, reason Reason, format string, args ...any) error {
	return &RejectedError{Op: op, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// RejectionReason extracts the rejection reason from err, if it is one.
func RejectionReason(err error) (Reason, bool) {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return 0, false
}

package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrGameFinished    = errors.New("game is already finished")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrNoSession       = errors.New("no active session")
	ErrSessionNotFound = errors.New("session not found")
	ErrBusy            = errors.New("a request is already in flight")
	ErrWrongPhase      = errors.New("action is not allowed in the current selection phase")
	ErrInvalidNotation = errors.New("invalid notation")
	ErrUnknownEngine   = errors.New("unknown engine")
	ErrStopped         = errors.New("controller is stopped")
)

// Kind names the operation a SessionError came from.
type Kind string

const (
	KindInit Kind = "init"
	KindPlay Kind = "play"
	KindBot  Kind = "bot"
)

// SessionError is a failed request to the engine. Network failures and rejections are not told apart.
type SessionError struct {
	Kind Kind
	Err  error
}

func (that *SessionError) Error() string {
	return fmt.Sprintf("%s: %v", that.Kind, that.Err)
}

func (that *SessionError) Unwrap() error {
	return that.Err
}

func NewSessionError(kind Kind, err error) *SessionError {
	return &SessionError{Kind: kind, Err: err}
}

// KindOf returns the kind of the first SessionError in err's chain.
func KindOf(err error) (Kind, bool) {
	var sessionErr *SessionError
	if errors.As(err, &sessionErr) {
		return sessionErr.Kind, true
	}

	return "", false
}

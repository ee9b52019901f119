package subscriber

import (
	"errors"
	"fmt"
)

// State is the lifecycle position of a Subscriber.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateSubscribed
	StateStreaming
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateClosed || s == StateFailed
}

var (
	// ErrSessionClosed is returned by calls on a subscriber in a terminal state.
	ErrSessionClosed = errors.New("subscriber session closed")
	// ErrAlreadyOpen is returned when Open is called more than once.
	ErrAlreadyOpen = errors.New("subscriber already opened")
	// ErrNotOpen is returned by Next before a successful Open.
	ErrNotOpen = errors.New("subscriber not opened")
)

// ConnectionError reports a transport failure that ended the session.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: connection error: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

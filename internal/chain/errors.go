package chain

import "fmt"

// ConnectionError reports a transport failure talking to the node.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: connection error: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ContractCallError reports a failed read-only contract call.
type ContractCallError struct {
	Method string
	Err    error
}

func (e *ContractCallError) Error() string {
	return fmt.Sprintf("contract call %s: %v", e.Method, e.Err)
}

func (e *ContractCallError) Unwrap() error { return e.Err }

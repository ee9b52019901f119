package stream

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"transferScope/internal/model"
)

const (
	jsonRPCVersion      = "2.0"
	methodSubscribe     = "eth_subscribe"
	methodUnsubscribe   = "eth_unsubscribe"
	methodSubscription  = "eth_subscription"
	subscriptionKindLog = "logs"
)

// ErrUnknownFrame is returned for frames that are neither a response nor a notification.
var ErrUnknownFrame = errors.New("unknown frame")

// Request is an outgoing JSON-RPC call.
type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// LogFilter is the filter object of a logs subscription.
// A nil Address is sent as null and matches every contract.
type LogFilter struct {
	Address *common.Address `json:"address"`
	Topics  []common.Hash   `json:"topics"`
}

// SubscribeLogs builds an eth_subscribe request for logs matching filter.
func SubscribeLogs(id uint64, filter LogFilter) Request {
	return Request{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Method:  methodSubscribe,
		Params:  []interface{}{subscriptionKindLog, filter},
	}
}

// Unsubscribe builds an eth_unsubscribe request.
func Unsubscribe(id uint64, subscription string) Request {
	return Request{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Method:  methodUnsubscribe,
		Params:  []interface{}{subscription},
	}
}

// RPCError is the error member of a JSON-RPC response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Response answers a Request.
type Response struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// SubscriptionID returns the identifier carried by a successful eth_subscribe response.
func (r *Response) SubscriptionID() (string, error) {
	if r.Error != nil {
		return "", r.Error
	}
	var id string
	if err := json.Unmarshal(r.Result, &id); err != nil {
		return "", fmt.Errorf("subscription id: %w", err)
	}
	if id == "" {
		return "", fmt.Errorf("subscription id: empty")
	}
	return id, nil
}

// Notification is a server push for a subscription. The embedded log is kept raw
// until the subscription id has been matched.
type Notification struct {
	Subscription string          `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

// Log decodes the notification payload as a log entry.
func (n *Notification) Log() (model.LogEntry, error) {
	var entry model.LogEntry
	if len(n.Result) == 0 {
		return entry, fmt.Errorf("notification: empty result")
	}
	if err := json.Unmarshal(n.Result, &entry); err != nil {
		return entry, fmt.Errorf("notification: %w", err)
	}
	return entry, nil
}

// Frame is one decoded inbound message; exactly one of Response and Notification is set.
type Frame struct {
	Response     *Response
	Notification *Notification
}

type envelope struct {
	ID     *uint64         `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// DecodeFrame classifies and decodes a raw inbound message.
func DecodeFrame(raw []byte) (Frame, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}

	switch {
	case env.Method == methodSubscription:
		var n Notification
		if err := json.Unmarshal(env.Params, &n); err != nil {
			return Frame{}, fmt.Errorf("decode notification: %w", err)
		}
		if n.Subscription == "" {
			return Frame{}, fmt.Errorf("decode notification: missing subscription")
		}
		return Frame{Notification: &n}, nil
	case env.ID != nil && env.Method == "":
		return Frame{Response: &Response{ID: *env.ID, Result: env.Result, Error: env.Error}}, nil
	default:
		return Frame{}, ErrUnknownFrame
	}
}

package subscriber

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"transferScope/internal/erc20"
	"transferScope/internal/metrics"
	"transferScope/internal/model"
	"transferScope/internal/stream"
)

const (
	subscribeRequestID   = 1
	unsubscribeRequestID = 2
)

// Transport is the streaming connection owned by a Subscriber.
// Close must unblock a pending ReadMessage.
type Transport interface {
	WriteJSON(v interface{}) error
	ReadMessage() ([]byte, error)
	Close() error
}

// DialFunc opens a Transport.
type DialFunc func(ctx context.Context, url string) (Transport, error)

// DialWebsocket is the default DialFunc.
func DialWebsocket(ctx context.Context, url string) (Transport, error) {
	conn, err := stream.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Config configures a Subscriber.
type Config struct {
	URL  string
	Dial DialFunc
	// OnDrop, when set, receives every filtered log that could not be decoded.
	OnDrop func(model.DecodeError)
}

// Subscriber is a single Transfer log subscription session. It is not
// restartable: once Closed or Failed, build a new Subscriber.
type Subscriber struct {
	cfg    Config
	logger *zap.Logger
	topic  common.Hash
	decode func(model.LogEntry) (*model.TransferEvent, error)

	mu             sync.Mutex
	state          State
	transport      Transport
	subscriptionID string
	aborted        bool
}

// New builds a Subscriber in the Disconnected state.
func New(cfg Config, logger *zap.Logger) *Subscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Dial == nil {
		cfg.Dial = DialWebsocket
	}
	return &Subscriber{
		cfg:    cfg,
		logger: logger,
		topic:  erc20.TransferTopic,
		decode: erc20.Decode,
	}
}

// State returns the current lifecycle state.
func (s *Subscriber) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SubscriptionID returns the identifier negotiated by Open.
func (s *Subscriber) SubscriptionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscriptionID
}

// Open dials the node and performs the eth_subscribe handshake.
func (s *Subscriber) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateDisconnected {
		st := s.state
		s.mu.Unlock()
		if st.Terminal() {
			return ErrSessionClosed
		}
		return ErrAlreadyOpen
	}
	s.state = StateConnecting
	s.mu.Unlock()

	if s.cfg.URL == "" {
		s.finish(StateFailed)
		return &ConnectionError{Op: "dial", Err: errors.New("stream url is required")}
	}

	transport, err := s.cfg.Dial(ctx, s.cfg.URL)
	if err != nil {
		if ctx.Err() != nil {
			s.finish(StateClosed)
			return ctx.Err()
		}
		s.finish(StateFailed)
		return &ConnectionError{Op: "dial", Err: err}
	}

	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		_ = transport.Close()
		return s.interrupted(ctx)
	}
	s.transport = transport
	s.mu.Unlock()
	metrics.OpenStreams.Inc()

	stop := context.AfterFunc(ctx, s.abort)
	defer stop()

	id, err := s.subscribe(transport)
	if err != nil {
		return s.terminate(ctx, "eth_subscribe", err, false)
	}

	s.mu.Lock()
	if s.aborted || s.state.Terminal() {
		s.mu.Unlock()
		return s.interrupted(ctx)
	}
	s.subscriptionID = id
	s.state = StateSubscribed
	s.mu.Unlock()

	s.logger.Info("subscribed to transfer logs",
		zap.String("subscription", id),
		zap.String("topic0", s.topic.Hex()),
	)
	return nil
}

func (s *Subscriber) subscribe(transport Transport) (string, error) {
	req := stream.SubscribeLogs(subscribeRequestID, stream.LogFilter{Topics: []common.Hash{s.topic}})
	if err := transport.WriteJSON(req); err != nil {
		return "", err
	}

	for {
		raw, err := transport.ReadMessage()
		if err != nil {
			return "", err
		}
		frame, err := stream.DecodeFrame(raw)
		if err != nil {
			s.logger.Debug("skip frame during handshake", zap.Error(err))
			continue
		}
		if frame.Response == nil || frame.Response.ID != subscribeRequestID {
			continue
		}
		return frame.Response.SubscriptionID()
	}
}

// Next blocks until the next Transfer event is decoded. Frames are read only
// while Next is running, so the caller's pace bounds the read rate.
// It returns io.EOF after a clean remote close and ctx.Err() on cancellation;
// both leave the session Closed. Transport failures return *ConnectionError.
func (s *Subscriber) Next(ctx context.Context) (model.TransferEvent, error) {
	s.mu.Lock()
	switch {
	case s.state.Terminal():
		s.mu.Unlock()
		return model.TransferEvent{}, ErrSessionClosed
	case s.state == StateDisconnected || s.state == StateConnecting:
		s.mu.Unlock()
		return model.TransferEvent{}, ErrNotOpen
	}
	transport := s.transport
	if transport == nil {
		s.mu.Unlock()
		return model.TransferEvent{}, ErrSessionClosed
	}
	s.state = StateStreaming
	id := s.subscriptionID
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		s.finish(StateClosed)
		return model.TransferEvent{}, err
	}

	stop := context.AfterFunc(ctx, s.abort)
	defer stop()

	for {
		raw, err := transport.ReadMessage()
		if err != nil {
			return model.TransferEvent{}, s.terminate(ctx, "read", err, true)
		}

		event, ok, err := s.handleFrame(id, raw)
		if err != nil {
			s.finish(StateFailed)
			return model.TransferEvent{}, err
		}
		if ok {
			s.mu.Lock()
			stopped := s.aborted || s.state.Terminal()
			s.mu.Unlock()
			if stopped {
				return model.TransferEvent{}, s.interrupted(ctx)
			}
			return event, nil
		}
	}
}

func (s *Subscriber) handleFrame(id string, raw []byte) (model.TransferEvent, bool, error) {
	metrics.FramesReceived.Inc()

	frame, err := stream.DecodeFrame(raw)
	if err != nil {
		metrics.FramesDropped.WithLabelValues(metrics.DropInvalidFrame).Inc()
		s.logger.Warn("discard undecodable frame", zap.Error(err))
		return model.TransferEvent{}, false, nil
	}

	n := frame.Notification
	if n == nil {
		s.logger.Debug("ignore response frame", zap.Uint64("id", frame.Response.ID))
		return model.TransferEvent{}, false, nil
	}
	if n.Subscription != id {
		metrics.FramesDropped.WithLabelValues(metrics.DropForeignSubscription).Inc()
		s.logger.Debug("discard frame for foreign subscription", zap.String("subscription", n.Subscription))
		return model.TransferEvent{}, false, nil
	}

	entry, err := n.Log()
	if err != nil {
		metrics.FramesDropped.WithLabelValues(metrics.DropInvalidLog).Inc()
		s.logger.Warn("discard invalid log entry", zap.String("subscription", id), zap.Error(err))
		s.reportDrop(id, entry, err)
		return model.TransferEvent{}, false, nil
	}
	if entry.Topic0() != s.topic {
		metrics.FramesDropped.WithLabelValues(metrics.DropTopicMismatch).Inc()
		s.logger.Debug("discard log with unexpected topic0", zap.String("topic0", entry.Topic0().Hex()))
		return model.TransferEvent{}, false, nil
	}

	event, err := s.decode(entry)
	if err != nil {
		if !erc20.IsRecoverable(err) {
			return model.TransferEvent{}, false, fmt.Errorf("decode transfer log: %w", err)
		}
		metrics.FramesDropped.WithLabelValues(metrics.DropDecode).Inc()
		fields := []zap.Field{
			zap.String("tx_hash", entry.TxHash.Hex()),
			zap.Uint64("block_number", uint64(entry.BlockNumber)),
			zap.String("address", entry.Address),
			zap.Error(err),
		}
		if erc20.IsNonStandard(err) {
			s.logger.Warn("drop non-standard transfer log", fields...)
		} else {
			s.logger.Error("drop corrupt transfer log", fields...)
		}
		s.reportDrop(id, entry, err)
		return model.TransferEvent{}, false, nil
	}

	metrics.TransfersDecoded.Inc()
	return *event, true, nil
}

func (s *Subscriber) reportDrop(id string, entry model.LogEntry, err error) {
	if s.cfg.OnDrop != nil {
		s.cfg.OnDrop(model.NewDecodeError(id, entry, err))
	}
}

// Run opens the session if needed and hands each event to fn until the
// stream ends. A clean remote close returns nil. The session is always
// closed on return.
func (s *Subscriber) Run(ctx context.Context, fn func(context.Context, model.TransferEvent) error) error {
	defer s.Close()

	if s.State() == StateDisconnected {
		if err := s.Open(ctx); err != nil {
			return err
		}
	}

	for {
		event, err := s.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(ctx, event); err != nil {
			return err
		}
	}
}

// Close releases the subscription and the transport. It is idempotent and
// may be called concurrently with Next to stop it.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return nil
	}
	transport := s.transport
	id := s.subscriptionID
	aborted := s.aborted
	s.mu.Unlock()

	if transport != nil && id != "" && !aborted {
		if err := transport.WriteJSON(stream.Unsubscribe(unsubscribeRequestID, id)); err != nil {
			s.logger.Debug("unsubscribe failed", zap.String("subscription", id), zap.Error(err))
		}
	}
	s.finish(StateClosed)
	return nil
}

// abort ends the session from a context callback; closing the transport
// makes a blocked read return.
func (s *Subscriber) abort() {
	s.mu.Lock()
	s.aborted = true
	s.mu.Unlock()
	s.finish(StateClosed)
}

// interrupted returns the error for a session stopped while a call was in flight.
func (s *Subscriber) interrupted(ctx context.Context) error {
	s.mu.Lock()
	aborted := s.aborted
	s.mu.Unlock()

	if !aborted {
		return ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return context.Canceled
}

func (s *Subscriber) terminate(ctx context.Context, op string, err error, eofIsClean bool) error {
	s.mu.Lock()
	terminal := s.state.Terminal()
	aborted := s.aborted
	s.mu.Unlock()

	switch {
	case aborted || ctx.Err() != nil:
		s.finish(StateClosed)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return context.Canceled
	case terminal:
		return ErrSessionClosed
	case eofIsClean && errors.Is(err, io.EOF):
		s.finish(StateClosed)
		return io.EOF
	default:
		s.finish(StateFailed)
		return &ConnectionError{Op: op, Err: err}
	}
}

func (s *Subscriber) finish(state State) {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return
	}
	s.state = state
	id := s.subscriptionID
	s.mu.Unlock()

	s.closeTransport()
	metrics.SessionsEnded.WithLabelValues(state.String()).Inc()
	s.logger.Info("subscription session ended",
		zap.String("state", state.String()),
		zap.String("subscription", id),
	)
}

func (s *Subscriber) closeTransport() {
	s.mu.Lock()
	transport := s.transport
	s.transport = nil
	s.mu.Unlock()

	if transport == nil {
		return
	}
	if err := transport.Close(); err != nil {
		s.logger.Debug("close transport", zap.Error(err))
	}
	metrics.OpenStreams.Dec()
}

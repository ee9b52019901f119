package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Frame drop reasons.
const (
	DropInvalidFrame        = "invalid_frame"
	DropForeignSubscription = "foreign_subscription"
	DropInvalidLog          = "invalid_log"
	DropTopicMismatch       = "topic_mismatch"
	DropDecode              = "decode"
)

var (
	// OpenStreams counts subscription transports currently open.
	OpenStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "transferscope_open_streams",
		Help: "The current number of open subscription transports",
	})

	// SessionsEnded counts sessions by terminal state.
	SessionsEnded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transferscope_sessions_ended_total",
		Help: "The total number of subscription sessions per terminal state",
	}, []string{"state"})

	// FramesReceived counts frames read while streaming.
	FramesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transferscope_frames_received_total",
		Help: "The total number of inbound frames read while streaming",
	})

	// FramesDropped counts discarded frames by reason.
	FramesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transferscope_frames_dropped_total",
		Help: "The total number of inbound frames discarded per reason",
	}, []string{"reason"})

	// TransfersDecoded counts events handed to consumers.
	TransfersDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transferscope_transfers_decoded_total",
		Help: "The total number of Transfer events handed to consumers",
	})

	// ChainQueries counts balance reads by query and status.
	ChainQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transferscope_chain_queries_total",
		Help: "The total number of point reads per query and status",
	}, []string{"query", "status"})
)

// Status returns the status label for err.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Debug("metrics server stopped")
		return nil
	}
}

package stream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newEchoServer(t *testing.T, handle func(ws *websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		handle(ws)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestConnRoundTripAndNormalClose(t *testing.T) {
	url := newEchoServer(t, func(ws *websocket.Conn) {
		var req Request
		if err := ws.ReadJSON(&req); err != nil {
			return
		}
		_ = ws.WriteJSON(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": "0xsub"})
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := Dial(ctx, url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(SubscribeLogs(7, LogFilter{})); err != nil {
		t.Fatalf("write: %v", err)
	}

	raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	frame, err := DecodeFrame(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if frame.Response == nil || frame.Response.ID != 7 {
		t.Fatalf("unexpected frame: %s", raw)
	}

	if _, err := conn.ReadMessage(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF on normal close, got %v", err)
	}
}

func TestConnCloseUnblocksRead(t *testing.T) {
	release := make(chan struct{})
	url := newEchoServer(t, func(ws *websocket.Conn) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := Dial(ctx, url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := conn.ReadMessage()
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	_ = conn.Close()
	_ = conn.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected read error after close")
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("read not unblocked by close")
	}
}

func TestDialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := Dial(ctx, "ws://127.0.0.1:1"); err == nil {
		t.Fatalf("expected dial error")
	}
}

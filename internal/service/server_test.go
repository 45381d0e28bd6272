// SPDX-License-Identifier: Unlicense OR MIT

package service

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"touchflow.org/config"
)

func dial(t *testing.T) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(New(config.Default(), slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(srv.Close)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgs ...Message) {
	t.Helper()
	for _, m := range msgs {
		if err := conn.WriteJSON(m); err != nil {
			t.Fatal(err)
		}
	}
}

func expect(t *testing.T, conn *websocket.Conn, n int) []Reply {
	t.Helper()
	replies := make([]Reply, n)
	for i := range replies {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&replies[i]); err != nil {
			t.Fatalf("reply %d: %v", i, err)
		}
	}
	return replies
}

func TestTap(t *testing.T) {
	conn := dial(t)
	send(t, conn,
		Message{T: "down", ID: 1, X: 10, Y: 10, Target: "button"},
		Message{T: "up", ID: 1, X: 11, Y: 10, Ts: 50, Target: "button"},
	)
	r := expect(t, conn, 2)
	if r[0].Kind != "TapDown" || r[1].Kind != "Tap" {
		t.Fatalf("got %+v", r)
	}
	if r[1].Target != "button" || r[1].TapCount != 1 || r[1].Ts != 50 {
		t.Errorf("tap = %+v", r[1])
	}
	if len(r[1].Contacts) != 1 || r[1].Contacts[0] != 1 {
		t.Errorf("contacts = %v", r[1].Contacts)
	}
}

func TestCaptureAndLocate(t *testing.T) {
	conn := dial(t)
	send(t, conn,
		Message{T: "down", ID: 1, X: 0, Y: 0, Target: "a"},
		Message{T: "down", ID: 2, X: 100, Y: 0, Target: "b"},
	)
	expect(t, conn, 2)
	send(t, conn, Message{T: "locate", X: 95, Y: 0})
	if r := expect(t, conn, 1)[0]; r.T != "target" || r.Target != "b" {
		t.Errorf("locate = %+v", r)
	}
	send(t, conn, Message{T: "capture", Target: "a"})
	if r := expect(t, conn, 1)[0]; r.T != "cancel" || r.Target != "b" || r.ID != 2 || r.X != 100 {
		t.Errorf("cancel = %+v", r)
	}
	send(t, conn, Message{T: "locate", X: 95, Y: 0})
	if r := expect(t, conn, 1)[0]; r.T != "target" || r.Target != "" {
		t.Errorf("locate after capture = %+v", r)
	}
}

func TestQueueAndTick(t *testing.T) {
	conn := dial(t)
	send(t, conn,
		Message{T: "down", ID: 4, X: 5, Y: 5, Target: "list", Queue: true},
		Message{T: "ack", Target: "list"},
		Message{T: "tick", Ts: 800},
	)
	r := expect(t, conn, 2)
	if r[0].Kind != "TapDown" || r[1].Kind != "LongPress" || r[1].Target != "list" {
		t.Errorf("got %+v", r)
	}
}

func TestBadMessages(t *testing.T) {
	conn := dial(t)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{")); err != nil {
		t.Fatal(err)
	}
	send(t, conn, Message{T: "hover"}, Message{T: "down", ID: 70000})
	for i, r := range expect(t, conn, 3) {
		if r.T != "error" || r.Error == "" {
			t.Errorf("reply %d = %+v", i, r)
		}
	}
	// The session survives bad input.
	send(t, conn, Message{T: "down", ID: 1, Target: "x"})
	if r := expect(t, conn, 1)[0]; r.Kind != "TapDown" {
		t.Errorf("got %+v", r)
	}
}

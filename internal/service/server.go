// SPDX-License-Identifier: Unlicense OR MIT

// Package service exposes a gesture recognizer over websockets. Each
// connection owns a Router; clients stream touch events and receive
// the recognized gestures.
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"touchflow.org/config"
	"touchflow.org/gesture"
	"touchflow.org/internal/trace"
	"touchflow.org/io/event"
	"touchflow.org/io/input"
	"touchflow.org/io/touch"
)

// Server upgrades HTTP requests to gesture sessions.
type Server struct {
	cfg      config.Config
	log      *slog.Logger
	upgrader websocket.Upgrader
	conns    atomic.Int64
}

// New returns a Server whose sessions use the thresholds and metric
// of cfg.
func New(cfg config.Config, log *slog.Logger) *Server {
	return &Server{
		cfg: cfg,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	return int(s.conns.Load())
}

// ServeHTTP upgrades the connection and serves the session until the
// client disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	s.conns.Add(1)
	defer s.conns.Add(-1)
	log := s.log.With("remote", r.RemoteAddr)
	log.Info("session started")
	sess := newSession(s.cfg, log)
	err = sess.serve(conn)
	conn.Close()
	if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		log.Warn("session failed", "err", err)
		return
	}
	log.Info("session ended")
}

// session is the state of one connection. It is only used by the
// goroutine serving the connection.
type session struct {
	log    *slog.Logger
	router *input.Router
	// out collects the replies of the message being handled.
	out []Reply
}

func newSession(cfg config.Config, log *slog.Logger) *session {
	s := &session{log: log}
	s.router = input.New(
		input.WithConfig(cfg.Gesture),
		input.WithMetric(cfg.Metric),
		input.WithLogger(log),
		input.WithHelper(s),
	)
	return s
}

func (s *session) serve(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.out = append(s.out, Reply{T: "error", Error: fmt.Sprintf("malformed message: %v", err)})
		} else if err := s.handle(msg); err != nil {
			s.out = append(s.out, Reply{T: "error", Error: err.Error()})
		}
		for _, r := range s.out {
			if err := conn.WriteJSON(r); err != nil {
				return err
			}
		}
		s.out = s.out[:0]
	}
}

var errUnknownMessage = errors.New("unknown message type")

func (s *session) handle(m Message) error {
	target := trace.Tag(m.Target)
	if k, ok := touchKinds[m.T]; ok {
		if m.ID < 0 || m.ID > 0xffff {
			return fmt.Errorf("contact id %d out of range", m.ID)
		}
		e := m.touchEvent(k)
		if m.Queue {
			s.router.QueueTouchEventForGesture(target, e)
			return nil
		}
		status := touch.Unconsumed
		if m.Consumed {
			status = touch.Consumed
		}
		s.gestures(s.router.ProcessTouchEventForGesture(e, status, target))
		return nil
	}
	switch m.T {
	case "ack":
		processed := m.Processed == nil || *m.Processed
		s.gestures(s.router.AdvanceTouchQueue(target, processed))
	case "flush":
		s.router.FlushTouchQueue(target)
	case "capture":
		s.gestures(s.router.CancelNonCapturedTouches(target))
	case "locate":
		s.out = append(s.out, Reply{T: "target", Target: trace.Name(s.router.TargetForLocation(m.touchEvent(0).Position))})
	case "tick":
		s.gestures(s.router.Tick(millis(m.Ts)))
	case "leave":
		s.router.CleanupConsumer(target)
	default:
		return fmt.Errorf("%w %q", errUnknownMessage, m.T)
	}
	return nil
}

func (s *session) gestures(evts []gesture.Event) {
	for _, e := range evts {
		s.out = append(s.out, gestureReply(e, trace.Name(s.router.TargetForGestureEvent(e))))
	}
}

// DispatchCancelTouchEvent implements input.Helper.
func (s *session) DispatchCancelTouchEvent(target event.Tag, e touch.Event) {
	s.out = append(s.out, Reply{
		T:      "cancel",
		Target: trace.Name(target),
		ID:     int(e.ID),
		X:      e.Position.X,
		Y:      e.Position.Y,
		Ts:     e.Time.Milliseconds(),
	})
}

// Package itermtest provides an in-process stand-in for the iTerm2 API
// server, for tests.
package itermtest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"itermlink/internal/protocol"

	"github.com/gorilla/websocket"
)

// Handler answers one request. Returning nil makes the server reply
// with an error string.
type Handler func(req *protocol.ClientMessage) *protocol.ServerMessage

// Server is a websocket server speaking the iTerm2 wire format.
type Server struct {
	*httptest.Server

	handler  Handler
	upgrader websocket.Upgrader

	// Notification, when set before the first connection, is sent as an
	// unsolicited message ahead of every reply.
	Notification []byte

	mu       sync.Mutex
	requests []*protocol.ClientMessage
	headers  []http.Header
}

// NewServer starts a server answering with h. It is closed when the test
// ends.
func NewServer(t testing.TB, h Handler) *Server {
	t.Helper()
	s := &Server{
		handler: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			Subprotocols:    []string{"api.iterm2.com"},
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveWS))
	t.Cleanup(s.Close)
	return s
}

// WSURL returns the ws:// URL of the server.
func (s *Server) WSURL() string {
	return "ws" + strings.TrimPrefix(s.Server.URL, "http")
}

// Requests returns every request received so far, in arrival order.
func (s *Server) Requests() []*protocol.ClientMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*protocol.ClientMessage(nil), s.requests...)
}

// Headers returns the handshake headers of every connection so far.
func (s *Server) Headers() []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]http.Header(nil), s.headers...)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.headers = append(s.headers, r.Header.Clone())
	s.mu.Unlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req protocol.ClientMessage
		if err := req.Unmarshal(data); err != nil {
			s.reply(conn, &protocol.ServerMessage{ID: req.ID, HasError: true, Error: err.Error()})
			continue
		}

		s.mu.Lock()
		s.requests = append(s.requests, &req)
		s.mu.Unlock()

		resp := s.handler(&req)
		if resp == nil {
			resp = &protocol.ServerMessage{HasError: true, Error: "unsupported request " + req.Kind()}
		}
		resp.ID = req.ID
		if s.Notification != nil {
			if err := s.reply(conn, &protocol.ServerMessage{Notification: s.Notification}); err != nil {
				return
			}
		}
		if err := s.reply(conn, resp); err != nil {
			return
		}
	}
}

func (s *Server) reply(conn *websocket.Conn, msg *protocol.ServerMessage) error {
	data, err := msg.Marshal()
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.BinaryMessage, data)
}

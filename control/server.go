// Package control exposes the player API to a remote host application over a WebSocket.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/richinsley/shaderplayer/diagnostics"
	"github.com/richinsley/shaderplayer/player"
)

// ErrUnknownMessage is reported for envelopes whose type is not understood.
var ErrUnknownMessage = errors.New("unknown message type")

// Message types on the wire.
const (
	TypeSetFragmentShader = "set_fragment_shader"
	TypeUpdatePlayerState = "update_player_state"
	TypePlay              = "play"
	TypeStop              = "stop"
	TypeGetPlayerState    = "get_player_state"
	TypePlayerState       = "player_state"
	TypeError             = "error"
)

// Message is the JSON envelope used in both directions.
type Message struct {
	Type    string          `json:"type"`
	Source  string          `json:"source,omitempty"`
	State   json.RawMessage `json:"state,omitempty"`
	Kind    string          `json:"kind,omitempty"`
	Message string          `json:"message,omitempty"`
}

const (
	writeWait    = 5 * time.Second
	outboxLength = 32
)

// Server accepts control connections on /ws and serves the merged state on /state.
type Server struct {
	player   *player.Player
	hub      *diagnostics.Hub
	upgrader websocket.Upgrader
}

func NewServer(p *player.Player, hub *diagnostics.Hub) *Server {
	return &Server{
		player: p,
		hub:    hub,
		upgrader: websocket.Upgrader{
			// Hosts are typically pages served from another origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/state", s.serveState)
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Control server listening on %s", listener.Addr())
	if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("control server failed: %w", err)
	}
	return nil
}

func (s *Server) serveState(w http.ResponseWriter, r *http.Request) {
	data, err := json.Marshal(s.player.PlayerState())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		diagnostics.Publishf(s.hub, diagnostics.KindControl, "Control: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := s.hub.Subscribe(outboxLength)
	defer unsubscribe()
	replies := make(chan Message, outboxLength)
	done := make(chan struct{})
	defer close(done)

	go writeLoop(conn, events, replies, done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Control: connection closed: %v", err)
			}
			return
		}
		reply, err := s.handle(data)
		if err != nil {
			diagnostics.Publishf(s.hub, diagnostics.KindInput, "Control message rejected: %v", err)
			continue
		}
		if reply != nil {
			select {
			case replies <- *reply:
			default:
				log.Println("Control: reply dropped, client is not reading")
			}
		}
	}
}

// writeLoop is the only writer on conn.
func writeLoop(conn *websocket.Conn, events <-chan diagnostics.Event, replies <-chan Message, done <-chan struct{}) {
	for {
		var msg Message
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			msg = Message{Type: TypeError, Kind: string(ev.Kind), Message: ev.Message}
		case msg = <-replies:
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("Control: write failed: %v", err)
			return
		}
	}
}

// handle applies one inbound message and returns the reply to send, if any.
func (s *Server) handle(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}
	switch msg.Type {
	case TypeSetFragmentShader:
		s.player.SetFragmentShader(msg.Source)
	case TypeUpdatePlayerState:
		// The player reports parse errors itself.
		s.player.UpdatePlayerState(msg.State)
	case TypePlay:
		s.player.Play()
	case TypeStop:
		s.player.Stop()
	case TypeGetPlayerState:
		state, err := json.Marshal(s.player.PlayerState())
		if err != nil {
			return nil, err
		}
		return &Message{Type: TypePlayerState, State: state}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownMessage, msg.Type)
	}
	return nil, nil
}

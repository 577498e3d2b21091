package control

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/shaderplayer/diagnostics"
	"github.com/richinsley/shaderplayer/player"
	"github.com/richinsley/shaderplayer/shader"
)

func newTestServer(t *testing.T) (*player.Player, *httptest.Server, *websocket.Conn) {
	t.Helper()
	hub := diagnostics.NewHub()
	p := player.New(hub, shader.DefaultImageShader)
	p.Pipeline.TakePending()
	srv := httptest.NewServer(NewServer(p, hub).Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return p, srv, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestUpdateAndGetState(t *testing.T) {
	p, _, conn := newTestServer(t)

	require.NoError(t, conn.WriteJSON(Message{Type: TypeUpdatePlayerState, State: json.RawMessage(`{"uniforms":{"time":3}}`)}))
	require.NoError(t, conn.WriteJSON(Message{Type: TypeStop}))
	require.NoError(t, conn.WriteJSON(Message{Type: TypeGetPlayerState}))

	msg := readMessage(t, conn)
	assert.Equal(t, TypePlayerState, msg.Type)
	assert.JSONEq(t, `{"playback":{"paused":true},"uniforms":{"time":3}}`, string(msg.State))
	assert.True(t, p.PlayerState().IsPaused())

	require.NoError(t, conn.WriteJSON(Message{Type: TypePlay}))
	assert.Eventually(t, func() bool { return !p.PlayerState().IsPaused() }, 2*time.Second, 10*time.Millisecond)
}

func TestSetFragmentShader(t *testing.T) {
	p, _, conn := newTestServer(t)
	code := "void mainImage(out vec4 c, in vec2 f) { c = vec4(0.5); }"
	require.NoError(t, conn.WriteJSON(Message{Type: TypeSetFragmentShader, Source: code}))

	var src string
	assert.Eventually(t, func() bool {
		var ok bool
		src, ok = p.Pipeline.TakePending()
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, shader.WrapImageShader(code), src)
}

func TestMalformedStateIsReported(t *testing.T) {
	p, _, conn := newTestServer(t)
	require.NoError(t, conn.WriteJSON(Message{Type: TypeUpdatePlayerState, State: json.RawMessage(`{"playback":{"speed":"fast"}}`)}))

	msg := readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, string(diagnostics.KindInput), msg.Kind)
	assert.Contains(t, msg.Message, "player state")
	assert.False(t, p.PlayerState().Playback.IsSome())
}

func TestUnknownMessageKeepsConnection(t *testing.T) {
	_, _, conn := newTestServer(t)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"explode"}`)))
	msg := readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Contains(t, msg.Message, "explode")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	msg = readMessage(t, conn)
	assert.Contains(t, msg.Message, "invalid envelope")

	require.NoError(t, conn.WriteJSON(Message{Type: TypeGetPlayerState}))
	msg = readMessage(t, conn)
	assert.Equal(t, TypePlayerState, msg.Type)
	assert.JSONEq(t, `{}`, string(msg.State))
}

func TestDiagnosticsAreBroadcast(t *testing.T) {
	p, srv, conn := newTestServer(t)
	other, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer other.Close()

	// A round trip guarantees each connection is subscribed before publishing.
	for _, c := range []*websocket.Conn{conn, other} {
		require.NoError(t, c.WriteJSON(Message{Type: TypeGetPlayerState}))
		readMessage(t, c)
	}

	diagnostics.Publishf(p.Diag, diagnostics.KindCompile, "Shader compilation error: %s", "oops")
	for _, c := range []*websocket.Conn{conn, other} {
		msg := readMessage(t, c)
		assert.Equal(t, string(diagnostics.KindCompile), msg.Kind)
		assert.Equal(t, "Shader compilation error: oops", msg.Message)
	}
}

func TestStateEndpoint(t *testing.T) {
	p, srv, _ := newTestServer(t)
	p.Stop()
	resp, err := http.Get(srv.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"playback":{"paused":true}}`, string(body))
}

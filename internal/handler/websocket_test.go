package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"trellolite/internal/realtime"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHandleWebSocket_Handshake(t *testing.T) {
	router := newTestHandler(t, newMemStore()).SetupRouter()
	srv := httptest.NewServer(router)
	defer srv.Close()

	ann := register(t, router, "ann", "ann@example.com")

	tests := []struct {
		name   string
		query  string
		header http.Header
		status int
	}{
		{name: "no token", status: http.StatusUnauthorized},
		{name: "bad token", query: "?token=nope", status: http.StatusUnauthorized},
		{
			name:   "foreign origin",
			query:  "?token=" + ann.Token,
			header: http.Header{"Origin": {"http://evil.example"}},
			status: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv)+tt.query, tt.header)
			require.Error(t, err)
			require.NotNil(t, resp)
			require.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestHandleWebSocket_ConnectsAndRelays(t *testing.T) {
	router := newTestHandler(t, newMemStore()).SetupRouter()
	srv := httptest.NewServer(router)
	defer srv.Close()

	ann := register(t, router, "ann", "ann@example.com")
	bob := register(t, router, "bob", "bob@example.com")

	dial := func(header http.Header, query string) *websocket.Conn {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv)+query, header)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}
	read := func(conn *websocket.Conn) realtime.Frame {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var f realtime.Frame
		require.NoError(t, conn.ReadJSON(&f))
		return f
	}

	// token in the query string from an allowed browser origin
	annConn := dial(http.Header{"Origin": {"http://localhost:3000"}}, "?token="+ann.Token)
	// token in the header from a non-browser client
	bobConn := dial(http.Header{"Authorization": {"Bearer " + bob.Token}}, "")

	f := read(annConn)
	require.Equal(t, realtime.EventConnected, f.Event)
	var connected realtime.ConnectedEvent
	require.NoError(t, json.Unmarshal(f.Data, &connected))
	require.Equal(t, ann.User.ID, connected.UserID)

	require.Equal(t, realtime.EventConnected, read(bobConn).Event)

	frame, err := realtime.NewFrame(realtime.EventPrivateMessage, realtime.PrivateMessageRequest{
		Sender:   ann.User.ID,
		Receiver: bob.User.ID,
		Content:  "hey",
	})
	require.NoError(t, err)
	require.NoError(t, annConn.WriteJSON(frame))

	for _, conn := range []*websocket.Conn{annConn, bobConn} {
		got := read(conn)
		require.Equal(t, realtime.EventPrivateMessage, got.Event)
		require.Contains(t, string(got.Data), `"content":"hey"`)
	}
}

package wshub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	log, _ := test.NewNullLogger()
	return NewHub(log)
}

func recv(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var got map[string]any
		require.NoError(t, json.Unmarshal(data, &got))
		return got
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("%s did not receive a message", c.PlayerID)
	}
	return nil
}

func TestSendAllAndSendTo(t *testing.T) {
	h := newTestHub()
	c1 := &Client{PlayerID: "p1", Send: make(chan []byte, 16)}
	c2 := &Client{PlayerID: "p2", Send: make(chan []byte, 16)}
	h.Register(c1)
	h.Register(c2)

	assert.Equal(t, 2, h.SendAll(map[string]string{"type": "room"}))
	assert.Equal(t, "room", recv(t, c1)["type"])
	assert.Equal(t, "room", recv(t, c2)["type"])

	assert.True(t, h.SendTo("p2", map[string]string{"type": "private"}))
	assert.Equal(t, "private", recv(t, c2)["type"])
	select {
	case <-c1.Send:
		t.Fatal("c1 must not receive p2's private message")
	default:
	}

	assert.False(t, h.SendTo("ghost", map[string]string{}))
}

func TestRegisterReplacesSession(t *testing.T) {
	h := newTestHub()
	old := &Client{PlayerID: "p1", Send: make(chan []byte, 16)}
	fresh := &Client{PlayerID: "p1", Send: make(chan []byte, 16)}

	assert.False(t, h.Register(old))
	assert.True(t, h.Register(fresh))
	assert.Equal(t, 1, h.Len())

	_, ok := <-old.Send
	assert.False(t, ok, "old session must be closed")

	assert.False(t, h.Unregister(old), "stale session cannot remove the new one")
	assert.Equal(t, 1, h.Len())
	assert.False(t, h.Reply(old, NewError("X", "y")))
	assert.True(t, h.Reply(fresh, NewError("INVALID_PHASE", "nope")))
	got := recv(t, fresh)
	assert.Equal(t, "error", got["type"])
	assert.Equal(t, "INVALID_PHASE", got["code"])

	assert.True(t, h.Unregister(fresh))
	assert.Equal(t, 0, h.Len())
	_, ok = <-fresh.Send
	assert.False(t, ok)
}

func TestSendDropsWhenFull(t *testing.T) {
	h := newTestHub()
	c := &Client{PlayerID: "p1", Send: make(chan []byte, 1)}
	h.Register(c)
	c.Send <- []byte("filler")

	// must not block
	assert.Equal(t, 0, h.SendAll(map[string]int{"x": 1}))
	assert.False(t, h.SendTo("p1", map[string]int{"x": 1}))

	data := <-c.Send
	assert.Equal(t, "filler", string(data))
}

func TestSendUnencodable(t *testing.T) {
	h := newTestHub()
	c := &Client{PlayerID: "p1", Send: make(chan []byte, 1)}
	h.Register(c)
	assert.Equal(t, 0, h.SendAll(make(chan int)))
}

func TestCloseAll(t *testing.T) {
	h := newTestHub()
	c1 := &Client{PlayerID: "p1", Send: make(chan []byte, 1)}
	c2 := &Client{PlayerID: "p2", Send: make(chan []byte, 1)}
	h.Register(c1)
	h.Register(c2)

	h.CloseAll()
	assert.Equal(t, 0, h.Len())
	_, ok1 := <-c1.Send
	_, ok2 := <-c2.Send
	assert.False(t, ok1)
	assert.False(t, ok2)
	assert.False(t, h.Unregister(c1))
}

func TestPumpsRoundTrip(t *testing.T) {
	h := newTestHub()
	got := make(chan ClientMessage, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient("p1", conn)
		h.Register(c)
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go c.WritePump(ctx)
		_ = c.ReadPump(ctx, func(m ClientMessage) {
			got <- m
			h.SendTo("p1", NewError("ACK", m.Type))
		})
		h.Unregister(c)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.NoError(t, wsjson.Write(ctx, conn, ClientMessage{Type: MsgVote, VotedPlayerID: "p2"}))
	select {
	case m := <-got:
		assert.Equal(t, MsgVote, m.Type)
		assert.Equal(t, "p2", m.VotedPlayerID)
	case <-ctx.Done():
		t.Fatal("server never read the message")
	}

	var reply ErrorMessage
	require.NoError(t, wsjson.Read(ctx, conn, &reply))
	assert.Equal(t, "ACK", reply.Code)
	assert.Equal(t, MsgVote, reply.Message)
}

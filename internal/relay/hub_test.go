package relay

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/iliyamo/tasting-service/internal/event"
	"github.com/iliyamo/tasting-service/internal/model"
	"github.com/iliyamo/tasting-service/internal/wire"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(nil)
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, err := websocket.Dial(url, "", "http://localhost/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg wire.Message) {
	t.Helper()
	b, err := msg.Bytes()
	require.NoError(t, err)
	require.NoError(t, websocket.Message.Send(conn, string(b)))
}

func receive(conn *websocket.Conn, timeout time.Duration) (wire.Message, error) {
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	defer conn.SetReadDeadline(time.Time{})
	var raw []byte
	if err := websocket.Message.Receive(conn, &raw); err != nil {
		return wire.Message{}, err
	}
	return wire.Parse(raw)
}

func snapshot(t *testing.T, name string) wire.Message {
	t.Helper()
	msg, err := wire.NewSnapshot(event.State{Tables: []model.Table{{ID: 1, Name: name}}})
	require.NoError(t, err)
	return msg
}

func waitPeers(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Peers() == n }, time.Second, 5*time.Millisecond)
}

func TestFirstSocketGetsNothing(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, url)
	waitPeers(t, hub, 1)

	_, err := receive(a, 150*time.Millisecond)
	assert.Error(t, err, "no snapshot is cached yet")
	assert.Nil(t, hub.Snapshot())
}

func TestLateJoinerReceivesCachedSnapshot(t *testing.T) {
	hub, url := startHub(t)
	host := dial(t, url)
	early := dial(t, url)
	waitPeers(t, hub, 2)

	send(t, host, snapshot(t, "first"))
	got, err := receive(early, time.Second)
	require.NoError(t, err)
	assert.Equal(t, wire.TypeSnapshot, got.Type)

	send(t, host, snapshot(t, "second"))
	_, err = receive(early, time.Second)
	require.NoError(t, err)

	late := dial(t, url)
	got, err = receive(late, time.Second)
	require.NoError(t, err)
	st, err := got.State()
	require.NoError(t, err)
	assert.Equal(t, "second", st.Tables[0].Name, "only the latest snapshot is kept")

	_, err = receive(host, 100*time.Millisecond)
	assert.Error(t, err, "a sender never hears its own frames")
}

func TestEventsFanOutAndGarbageIsDropped(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, url)
	b := dial(t, url)
	c := dial(t, url)
	waitPeers(t, hub, 3)

	require.NoError(t, websocket.Message.Send(a, "not a frame"))
	require.NoError(t, websocket.Message.Send(a, `{"type":"PING"}`))

	ev, err := wire.NewEvent(event.FireNext{TableID: 1})
	require.NoError(t, err)
	send(t, a, ev)

	for _, conn := range []*websocket.Conn{b, c} {
		got, err := receive(conn, time.Second)
		require.NoError(t, err)
		assert.Equal(t, wire.TypeEvent, got.Type, "the first frame through is the event")
		op, err := got.Op()
		require.NoError(t, err)
		assert.Equal(t, event.FireNext{TableID: 1}, op)
	}
	assert.Nil(t, hub.Snapshot(), "events are not cached")
}

func TestLeavingSocketIsForgotten(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, url)
	_ = dial(t, url)
	waitPeers(t, hub, 2)

	require.NoError(t, a.Close())
	waitPeers(t, hub, 1)
}

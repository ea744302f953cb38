package viewer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndBroadcastFanOut(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := &Client{hub: hub, send: make(chan []byte, 1)}
	b := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register <- a
	hub.Register <- b

	hub.Broadcast <- []byte("tick")

	select {
	case msg := <-a.send:
		assert.Equal(t, []byte("tick"), msg)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast to client a")
	}
	select {
	case msg := <-b.send:
		assert.Equal(t, []byte("tick"), msg)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast to client b")
	}
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register <- c
	hub.Unregister <- c

	time.Sleep(10 * time.Millisecond) // let the hub's loop process the unregister

	_, ok := <-c.send
	require.False(t, ok, "send channel should be closed after unregister")
}

func TestHub_BroadcastDropsOnSlowConsumer(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := &Client{hub: hub, send: make(chan []byte)} // unbuffered: always "full" until read
	hub.Register <- c

	hub.Broadcast <- []byte("frame1")
	hub.Broadcast <- []byte("frame2")
	time.Sleep(10 * time.Millisecond)

	// the hub never blocks on a slow consumer; a late read may see either
	// frame or neither, but the hub loop itself must still be alive.
	hub.Broadcast <- []byte("frame3")
	select {
	case <-c.send:
	case <-time.After(time.Second):
		t.Fatal("hub appears stuck after a slow consumer")
	}
}

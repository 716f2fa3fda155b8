package ws

import "testing"

func TestHubRegisterUnregister(t *testing.T) {
	h := NewHub()
	c := &Client{hub: h, send: make(chan []byte, 1)}
	h.Register(c)
	if h.ClientCount() != 1 {
		t.Fatalf("count %d", h.ClientCount())
	}
	h.Unregister(c)
	if h.ClientCount() != 0 {
		t.Fatalf("count %d", h.ClientCount())
	}
	if _, ok := <-c.send; ok {
		t.Fatal("send channel not closed")
	}
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub()
	a := &Client{hub: h, send: make(chan []byte, 1)}
	b := &Client{hub: h, send: make(chan []byte, 1)}
	h.Register(a)
	h.Register(b)
	h.Broadcast([]byte("x"))
	if got := <-a.send; string(got) != "x" {
		t.Fatalf("a got %q", got)
	}
	if got := <-b.send; string(got) != "x" {
		t.Fatalf("b got %q", got)
	}
}

func TestHubBroadcastDropsWhenFull(t *testing.T) {
	h := NewHub()
	c := &Client{hub: h, send: make(chan []byte, 1)}
	h.Register(c)
	h.Broadcast([]byte("first"))
	h.Broadcast([]byte("second")) // buffer full, must not block
	if got := <-c.send; string(got) != "first" {
		t.Fatalf("got %q", got)
	}
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message %q", msg)
	default:
	}
}

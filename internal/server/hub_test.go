package server

import "testing"

func TestHubAddAndRemove(t *testing.T) {
	h := newHub()
	c := newClient(nil, "g1", "p1")

	if old := h.add(c); old != nil {
		t.Fatalf("add returned old client %v, want nil", old)
	}
	if !h.remove(c) {
		t.Error("remove = false, want true")
	}
	if h.remove(c) {
		t.Error("second remove = true, want false")
	}
}

func TestHubAddReplacesSameSeat(t *testing.T) {
	h := newHub()
	c1 := newClient(nil, "g1", "p1")
	c2 := newClient(nil, "g1", "p1")

	h.add(c1)
	if old := h.add(c2); old != c1 {
		t.Fatalf("add returned %v, want the displaced client", old)
	}

	// The displaced socket's cleanup must not evict the replacement.
	if h.remove(c1) {
		t.Error("remove(displaced) = true, want false")
	}
	if !h.sendTo("g1", "p1", []byte("x")) {
		t.Error("sendTo after replacement = false, want true")
	}
	if got := len(c2.send); got != 1 {
		t.Errorf("replacement queued %d frames, want 1", got)
	}
	if got := len(c1.send); got != 0 {
		t.Errorf("displaced client queued %d frames, want 0", got)
	}
}

func TestHubSendTo(t *testing.T) {
	h := newHub()
	c := newClient(nil, "g1", "p1")
	h.add(c)

	if !h.sendTo("g1", "p1", []byte("hello")) {
		t.Error("sendTo known player = false, want true")
	}
	if h.sendTo("g1", "ghost", []byte("hello")) {
		t.Error("sendTo unknown player = true, want false")
	}
	if h.sendTo("nope", "p1", []byte("hello")) {
		t.Error("sendTo unknown game = true, want false")
	}
	if got := string(<-c.send); got != "hello" {
		t.Errorf("queued frame = %q, want hello", got)
	}
}

func TestHubBroadcastExcept(t *testing.T) {
	h := newHub()
	clients := map[string]*client{
		"p1": newClient(nil, "g1", "p1"),
		"p2": newClient(nil, "g1", "p2"),
		"p3": newClient(nil, "g1", "p3"),
	}
	for _, c := range clients {
		h.add(c)
	}
	other := newClient(nil, "g2", "p9")
	h.add(other)

	h.broadcastExcept("g1", "p2", []byte("frame"))

	for id, want := range map[string]int{"p1": 1, "p2": 0, "p3": 1} {
		if got := len(clients[id].send); got != want {
			t.Errorf("%s queued %d frames, want %d", id, got, want)
		}
	}
	if got := len(other.send); got != 0 {
		t.Errorf("other game queued %d frames, want 0", got)
	}
}

func TestClientPushDropsWhenFull(t *testing.T) {
	c := newClient(nil, "g1", "p1")

	// Overfill past the buffer; push must neither block nor grow it.
	for i := 0; i < sendBuffer+10; i++ {
		c.push([]byte("frame"))
	}
	if got := len(c.send); got != sendBuffer {
		t.Errorf("queued %d frames, want %d", got, sendBuffer)
	}
}
